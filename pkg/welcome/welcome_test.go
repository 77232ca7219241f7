package welcome

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/spf13/afero"
)

const outputsJSON = `{
  "server_ip":   {"sensitive": false, "type": "string", "value": "203.0.113.10"},
  "whm_url":     {"sensitive": false, "type": "string", "value": "https://203.0.113.10:2087"},
  "cpanel_url":  {"sensitive": false, "type": "string", "value": "https://203.0.113.10:2083"},
  "webmail_url": {"sensitive": false, "type": "string", "value": "https://203.0.113.10:2096"},
  "nameservers": {"sensitive": false, "type": ["list", "string"], "value": ["ns1.example.com", "ns2.example.com"]}
}`

func TestLoadOutputsFile(t *testing.T) {
	memFs := afero.NewMemMapFs()
	if err := afero.WriteFile(memFs, "/deploy/outputs.json", []byte(outputsJSON), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadOutputsFile(memFs, "/deploy/outputs.json")
	if err != nil {
		t.Fatalf("LoadOutputsFile() error = %v", err)
	}
	if got.ServerIP != "203.0.113.10" || got.WHMURL != "https://203.0.113.10:2087" {
		t.Errorf("LoadOutputsFile() = %+v", got)
	}
	if len(got.NameServers) != 2 || got.NameServers[1] != "ns2.example.com" {
		t.Errorf("NameServers = %v", got.NameServers)
	}

	if _, err := LoadOutputsFile(memFs, "/deploy/missing.json"); err == nil {
		t.Error("LoadOutputsFile() with missing file should fail")
	}
}

func TestParseOutputs_Missing(t *testing.T) {
	got := ParseOutputs(map[string]json.RawMessage{
		"server_ip": json.RawMessage(`"203.0.113.10"`),
		"whm_url":   json.RawMessage(`42`),
	})

	if got.ServerIP != "203.0.113.10" {
		t.Errorf("ServerIP = %q", got.ServerIP)
	}
	for name, v := range map[string]string{"whm_url": got.WHMURL, "cpanel_url": got.CPanelURL, "webmail_url": got.WebmailURL} {
		if v != NotAvailable {
			t.Errorf("%s = %q, want %q", name, v, NotAvailable)
		}
	}
	if len(got.NameServers) != 2 || got.NameServers[0] != NotAvailable || got.NameServers[1] != NotAvailable {
		t.Errorf("NameServers = %v, want [N/A N/A]", got.NameServers)
	}
}

func TestGeneratePassword(t *testing.T) {
	seen := map[string]bool{}
	for range 20 {
		p, err := GeneratePassword()
		if err != nil {
			t.Fatalf("GeneratePassword() error = %v", err)
		}
		if len(p) != passwordLength {
			t.Errorf("len = %d, want %d", len(p), passwordLength)
		}
		for _, r := range p {
			if !strings.ContainsRune(passwordAlphabet, r) {
				t.Errorf("password %q contains %q outside the alphabet", p, r)
			}
		}
		seen[p] = true
	}
	if len(seen) < 20 {
		t.Error("GeneratePassword() repeated a password")
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		outputs Outputs
		want    []string
	}{
		{
			name: "all values",
			outputs: Outputs{
				ServerIP:    "203.0.113.10",
				WHMURL:      "https://203.0.113.10:2087",
				CPanelURL:   "https://203.0.113.10:2083",
				WebmailURL:  "https://203.0.113.10:2096",
				NameServers: []string{"ns1.example.com", "ns2.example.com"},
			},
			want: []string{"203.0.113.10", "https://203.0.113.10:2087", "ns2.example.com", "s3cr3t!pass", "© 2026"},
		},
		{
			name:    "single nameserver",
			outputs: ParseOutputs(map[string]json.RawMessage{"nameservers": json.RawMessage(`["ns1.example.com"]`)}),
			want:    []string{"ns1.example.com<br>", "N/A"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(defaultTemplate, Values{
				Domain:   "example.com",
				Outputs:  tt.outputs,
				Password: "s3cr3t!pass",
				Year:     2026,
			})

			if strings.Contains(got, "{{") {
				t.Error("rendered template still contains placeholders")
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("rendered template missing %q", w)
				}
			}
		})
	}
}

func TestRender_EscapesValues(t *testing.T) {
	got := Render("<p>{{ROOT_PASSWORD}}</p><a href=\"{{WHM_URL}}\">{{DOMAIN}}</a>", Values{
		Domain:   "example.com",
		Outputs:  Outputs{WHMURL: `https://203.0.113.10:2087/?a=1&b="2"`},
		Password: "ab<cd&lt12",
	})

	want := `<p>ab&lt;cd&amp;lt12</p><a href="https://203.0.113.10:2087/?a=1&amp;b=&#34;2&#34;">example.com</a>`
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestMailer_Sender(t *testing.T) {
	tests := []struct {
		name     string
		fromName string
		want     string
	}{
		{name: "plain name", fromName: "Your Hosting Company", want: `"Your Hosting Company" <support@yourhosting.com>`},
		{name: "quotes in name", fromName: `Acme "Best" Hosting`, want: `"Acme \"Best\" Hosting" <support@yourhosting.com>`},
		{name: "non-ASCII name", fromName: "Hébergement Néo", want: "=?utf-8?q?H=C3=A9bergement_N=C3=A9o?= <support@yourhosting.com>"},
		{name: "no name", fromName: "", want: "<support@yourhosting.com>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer := NewMailer(&mockSESClient{}, afero.NewMemMapFs(), Options{FromName: tt.fromName, FromEmail: "support@yourhosting.com"})
			if got := mailer.sender(); got != tt.want {
				t.Errorf("sender() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadTemplate(t *testing.T) {
	memFs := afero.NewMemMapFs()
	if err := afero.WriteFile(memFs, "templates/welcome-email.html", []byte("<p>{{DOMAIN}}</p>"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadTemplate(memFs, "templates/welcome-email.html")
	if err != nil || got != "<p>{{DOMAIN}}</p>" {
		t.Errorf("LoadTemplate(existing) = %q, %v", got, err)
	}

	got, err = LoadTemplate(memFs, "missing.html")
	if err != nil || got != defaultTemplate {
		t.Errorf("LoadTemplate(missing) should fall back to the built-in template, err = %v", err)
	}
}

func TestMailer_Send(t *testing.T) {
	var input *ses.SendEmailInput
	client := &mockSESClient{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			input = params
			return &ses.SendEmailOutput{MessageId: aws.String("0100018e-abc")}, nil
		},
	}
	memFs := afero.NewMemMapFs()
	mailer := NewMailer(client, memFs, Options{FromName: "Your Hosting Company", FromEmail: "support@yourhosting.com"})
	mailer.now = func() time.Time { return time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC) }

	result, err := mailer.Send(context.Background(), Request{
		Domain:      "example.com",
		Email:       "customer@example.org",
		Outputs:     ParseOutputs(nil),
		PasswordDir: "/deploy",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if result.MessageID != "0100018e-abc" {
		t.Errorf("MessageID = %q", result.MessageID)
	}
	if result.PasswordFile != "/deploy/root_password.txt" {
		t.Errorf("PasswordFile = %q", result.PasswordFile)
	}

	password, err := afero.ReadFile(memFs, result.PasswordFile)
	if err != nil {
		t.Fatalf("password file not written: %v", err)
	}
	if len(password) != passwordLength {
		t.Errorf("password length = %d", len(password))
	}
	info, err := memFs.Stat(result.PasswordFile)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("password file mode = %v, want 0600", info.Mode().Perm())
	}

	if got := aws.ToString(input.Source); got != `"Your Hosting Company" <support@yourhosting.com>` {
		t.Errorf("Source = %q", got)
	}
	if got := input.Destination.ToAddresses; len(got) != 1 || got[0] != "customer@example.org" {
		t.Errorf("ToAddresses = %v", got)
	}
	if got := aws.ToString(input.Message.Subject.Data); got != "Welcome to Your cPanel Hosting - example.com" {
		t.Errorf("Subject = %q", got)
	}
	body := aws.ToString(input.Message.Body.Html.Data)
	if !strings.Contains(body, html.EscapeString(string(password))) {
		t.Error("HTML body should contain the saved password")
	}
	if strings.Contains(body, "{{") {
		t.Error("HTML body still contains placeholders")
	}
	if aws.ToString(input.Message.Body.Text.Data) != textBody {
		t.Errorf("Text body = %q", aws.ToString(input.Message.Body.Text.Data))
	}
	if aws.ToString(input.Message.Body.Html.Charset) != "UTF-8" {
		t.Error("Html charset should be UTF-8")
	}
}

func TestMailer_Send_ProvidedPasswordAndFailure(t *testing.T) {
	client := &mockSESClient{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("MessageRejected: Email address is not verified")
		},
	}
	memFs := afero.NewMemMapFs()
	mailer := NewMailer(client, memFs, Options{})

	_, err := mailer.Send(context.Background(), Request{
		Domain:      "example.com",
		Email:       "customer@example.org",
		Password:    "given-password",
		PasswordDir: "/deploy",
	})
	if err == nil || !strings.Contains(err.Error(), "MessageRejected") {
		t.Fatalf("Send() error = %v, want MessageRejected", err)
	}

	saved, err := afero.ReadFile(memFs, "/deploy/root_password.txt")
	if err != nil {
		t.Fatalf("password should be saved before sending: %v", err)
	}
	if string(saved) != "given-password" {
		t.Errorf("saved password = %q, want given-password", saved)
	}
}
