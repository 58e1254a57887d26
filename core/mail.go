package core

import (
	"bytes"
	"net/mail"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

type (
	Attachment struct {
		Content     *bytes.Buffer
		ContentType string
		Filename    string
	}

	EmailMessage struct {
		To          []mail.Address
		Cc          []mail.Address
		Bcc         []mail.Address
		Subject     string
		BodyStr     string // simple text/plain, non-templated content
		Attachments []Attachment

		// templated contents
		BodyTemplate string
		TemplateData interface{}
		TextContent  string
	}

	// ContextData wraps template data with globals available to all mail templates.
	ContextData struct {
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails.
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// Render resolves the message's final TextContent from BodyStr or BodyTemplate.
func (msg *EmailMessage) Render() error {
	if msg.TextContent != "" {
		return nil
	}
	if msg.BodyTemplate == "" {
		msg.TextContent = msg.BodyStr
		return nil
	}

	tmpl, err := texttmpl.New("body").Parse(msg.BodyTemplate)
	if err != nil {
		return errors.Wrap(err, "parsing body template")
	}
	var buf bytes.Buffer
	if err = tmpl.Execute(&buf, msg.TemplateData); err != nil {
		return errors.Wrap(err, "executing body template")
	}
	msg.TextContent = buf.String()
	return nil
}

func (msg *EmailMessage) HasRecipients() bool {
	return len(msg.To) > 0 || len(msg.Cc) > 0 || len(msg.Bcc) > 0
}

func (msg *EmailMessage) HasContent() bool {
	return msg.BodyStr != "" || msg.BodyTemplate != "" || msg.TextContent != ""
}

func (msg *EmailMessage) HasAttachments() bool {
	return len(msg.Attachments) > 0
}
