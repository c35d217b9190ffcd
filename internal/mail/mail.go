// Package mail renders and delivers outbound notification email.
// Delivery is best-effort by contract: callers log failures and move on,
// a lost email never fails the request that triggered it.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a message. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Product identifies the service in email bodies.
type Product struct {
	Name string
	URL  string
}

var bodyTmpl = template.Must(template.New("body").Parse(`<div style="font-family: sans-serif;">
  <h2>{{.Product.Name}}</h2>
  <p>Hi {{.Name}},</p>
  <p>{{.Intro}}</p>
  {{if .Action}}<p>{{.Action}}</p>
  <p style="font-size: 24px; font-weight: bold;">{{.ActionValue}}</p>{{end}}
  <p>{{.Outro}}</p>
  <p><a href="{{.Product.URL}}">{{.Product.Name}}</a></p>
</div>`))

type bodyData struct {
	Product     Product
	Name        string
	Intro       string
	Action      string
	ActionValue string
	Outro       string
}

func render(data bodyData) (string, error) {
	var buf bytes.Buffer
	if err := bodyTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("mail: render body: %w", err)
	}
	return buf.String(), nil
}

// WelcomeMessage is sent after a successful registration.
func WelcomeMessage(product Product, to, name string) (Message, error) {
	html, err := render(bodyData{
		Product: product,
		Name:    name,
		Intro: fmt.Sprintf("Your email is %s. Congratulations! "+
			"You have successfully registered your account.", to),
		Outro: "If you are not interested, please ignore this email.",
	})
	if err != nil {
		return Message{}, err
	}

	return Message{
		To:      to,
		Subject: "Create account",
		Text:    fmt.Sprintf("Your account %s has been created.", to),
		HTML:    html,
	}, nil
}

// PasswordResetMessage carries the newly generated plaintext password.
// It is the only channel that plaintext ever travels through.
func PasswordResetMessage(product Product, to, name, password string) (Message, error) {
	html, err := render(bodyData{
		Product: product,
		Name:    name,
		Intro: "You are receiving this email because we received a request " +
			"to reset the password for your account.",
		Action:      "Your new password is:",
		ActionValue: password,
		Outro: "If you didn't request to reset your password, " +
			"please ignore this email.",
	})
	if err != nil {
		return Message{}, err
	}

	return Message{
		To:      to,
		Subject: "Reset Your Password",
		Text:    fmt.Sprintf("Your new password is: %s", password),
		HTML:    html,
	}, nil
}
