package mail

import (
	"bytes"
	"fmt"
	"text/template"
)

var templates = template.Must(template.New("mail").Parse(`
{{define "activation"}}Hello {{.Username}},

Thank you for registering at Tablaturi-BG.
Follow the link below to activate your account:

{{.Link}}

The link is valid for {{.Validity}}.
{{end}}

{{define "reset"}}Hello {{.Username}},

A password reset was requested for your Tablaturi-BG account.
Follow the link below to choose a new password:

{{.Link}}

If you did not request a reset you can ignore this message.
{{end}}

{{define "contact"}}Message from the contact form

Name: {{.Username}}
E-mail: {{.Email}}

{{.Message}}
{{end}}

{{define "comment"}}Hello {{.Recipient}},

{{.Author}} left a comment on your profile:

{{.Content}}

{{.Link}}
{{end}}
`))

func render(name string, data any) string {
	var b bytes.Buffer
	// The templates are static and their data are plain structs.
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return fmt.Sprintf("failed to render %s message: %v", name, err)
	}
	return b.String()
}

// ActivationMessage asks a new member to confirm the address.
func ActivationMessage(username, email, link, validity string) Message {
	return Message{
		To:      email,
		Subject: "Tablaturi-BG account activation",
		Body: render("activation", map[string]string{
			"Username": username,
			"Link":     link,
			"Validity": validity,
		}),
	}
}

// ResetMessage carries a password reset link.
func ResetMessage(username, email, link string) Message {
	return Message{
		To:      email,
		Subject: "Tablaturi-BG password reset",
		Body: render("reset", map[string]string{
			"Username": username,
			"Link":     link,
		}),
	}
}

// ContactMessage forwards a contact form submission to the site owners.
// Replies go to the sender.
func ContactMessage(to, username, email, message string) Message {
	return Message{
		To:      to,
		ReplyTo: email,
		Subject: "Tablaturi-BG contact form: " + username,
		Body: render("contact", map[string]string{
			"Username": username,
			"Email":    email,
			"Message":  message,
		}),
	}
}

// CommentMessage notifies a member about a new comment on their profile.
func CommentMessage(recipient, email, author, content, link string) Message {
	return Message{
		To:      email,
		Subject: "New comment on your Tablaturi-BG profile",
		Body: render("comment", map[string]string{
			"Recipient": recipient,
			"Author":    author,
			"Content":   content,
			"Link":      link,
		}),
	}
}
