package welcome

import (
	_ "embed"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

//go:embed templates/welcome-email.html
var defaultTemplate string

// Values fill the welcome e-mail placeholders
type Values struct {
	Domain   string
	Outputs  Outputs
	Password string
	Year     int
}

// LoadTemplate returns the template at path, or the built-in one when path is
// empty or does not exist
func LoadTemplate(appFs afero.Fs, path string) (string, error) {
	if path == "" {
		return defaultTemplate, nil
	}

	data, err := afero.ReadFile(appFs, path)
	if errors.Is(err, fs.ErrNotExist) {
		return defaultTemplate, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", path, err)
	}
	return string(data), nil
}

// Render replaces every {{PLACEHOLDER}} in tmpl with its HTML-escaped value
func Render(tmpl string, v Values) string {
	return strings.NewReplacer(
		"{{DOMAIN}}", html.EscapeString(v.Domain),
		"{{SERVER_IP}}", html.EscapeString(v.Outputs.ServerIP),
		"{{WHM_URL}}", html.EscapeString(v.Outputs.WHMURL),
		"{{CPANEL_URL}}", html.EscapeString(v.Outputs.CPanelURL),
		"{{WEBMAIL_URL}}", html.EscapeString(v.Outputs.WebmailURL),
		"{{NAMESERVER_1}}", html.EscapeString(v.Outputs.nameserver(0)),
		"{{NAMESERVER_2}}", html.EscapeString(v.Outputs.nameserver(1)),
		"{{ROOT_PASSWORD}}", html.EscapeString(v.Password),
		"{{YEAR}}", strconv.Itoa(v.Year),
	).Replace(tmpl)
}

// Subject is the welcome e-mail subject line
func Subject(domain string) string {
	return "Welcome to Your cPanel Hosting - " + domain
}
