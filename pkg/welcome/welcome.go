// Package welcome sends the customer welcome e-mail with access details and
// the root password after a server is provisioned.
package welcome

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	awsprovider "github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/provider/aws"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/status"
)

const (
	charset = "UTF-8"

	// textBody is sent to clients that cannot show HTML
	textBody = "Please view this email in HTML format"
)

// Options configure a Mailer
type Options struct {
	FromName  string
	FromEmail string

	// TemplatePath overrides the built-in template when the file exists
	TemplatePath string
}

// Request is one welcome e-mail
type Request struct {
	Domain string
	Email  string

	// Password is generated when empty
	Password string
	Outputs  Outputs

	// PasswordDir receives root_password.txt
	PasswordDir string
}

// Result describes a sent e-mail
type Result struct {
	MessageID    string
	PasswordFile string
}

// Mailer renders and sends welcome e-mails through SES
type Mailer struct {
	client awsprovider.SESClientAPI
	fs     afero.Fs
	opts   Options
	now    func() time.Time
}

// NewMailer returns a Mailer
func NewMailer(client awsprovider.SESClientAPI, appFs afero.Fs, opts Options) *Mailer {
	return &Mailer{client: client, fs: appFs, opts: opts, now: time.Now}
}

// Send saves the root password, renders the template and sends the e-mail.
// The password file is written before sending so a failed send can be retried
// with --password.
func (m *Mailer) Send(ctx context.Context, req Request) (*Result, error) {
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "welcome.Send")
	defer span.End()

	span.SetAttributes(
		attribute.String("dns.domain", req.Domain),
		attribute.Bool("welcome.generated_password", req.Password == ""),
	)

	password := req.Password
	if password == "" {
		var err error
		if password, err = GeneratePassword(); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	passwordFile, err := SavePassword(m.fs, req.PasswordDir, password)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	status.Infof(ctx, "Root password saved to: %s", passwordFile)

	tmpl, err := LoadTemplate(m.fs, m.opts.TemplatePath)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	body := Render(tmpl, Values{
		Domain:   req.Domain,
		Outputs:  req.Outputs,
		Password: password,
		Year:     m.now().Year(),
	})

	status.Infof(ctx, "Sending welcome email to %s...", req.Email)

	out, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(m.sender()),
		Destination: &types.Destination{ToAddresses: []string{req.Email}},
		Message: &types.Message{
			Subject: content(Subject(req.Domain)),
			Body: &types.Body{
				Html: content(body),
				Text: content(textBody),
			},
		},
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to send welcome email to %s: %w", req.Email, err)
	}

	id := aws.ToString(out.MessageId)
	span.SetAttributes(attribute.String("ses.message_id", id))

	status.Send(ctx, status.NewUpdate(status.LevelSuccess, "Email sent successfully!").
		WithMetadata("message_id", id))

	return &Result{MessageID: id, PasswordFile: passwordFile}, nil
}

func content(s string) *types.Content {
	return &types.Content{Data: aws.String(s), Charset: aws.String(charset)}
}

// sender formats the From address, encoding non-ASCII display names (RFC 2047)
func (m *Mailer) sender() string {
	return (&mail.Address{Name: m.opts.FromName, Address: m.opts.FromEmail}).String()
}
