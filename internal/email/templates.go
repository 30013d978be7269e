package email

import (
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/Ratheshan03/neucon-labs-sub000/internal/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// confirmationData feeds the submitter-facing confirmation template.
type confirmationData struct {
	Name string
}

// notificationData feeds the operator-facing notification template.
type notificationData struct {
	Name    string
	Email   string
	Company string
	Service string
	Message string
}

// BuildConfirmation renders the courtesy confirmation sent to the submitter.
func BuildConfirmation(sub *models.ContactSubmission) (Message, error) {
	var html strings.Builder
	if err := templates.ExecuteTemplate(&html, "confirmation.html.tmpl", confirmationData{Name: sub.Name}); err != nil {
		return Message{}, fmt.Errorf("render confirmation: %w", err)
	}

	return Message{
		To:      sub.Email,
		Subject: "We received your message",
		HTML:    html.String(),
		Text: fmt.Sprintf("Hi %s,\n\nThanks for reaching out to Neucon Labs. "+
			"We received your message and will get back to you within one business day.\n\n— Neucon Labs", sub.Name),
	}, nil
}

// BuildNotification renders the lead notification sent to the operator.
// Reply-To is set to the submitter so the operator can answer directly.
func BuildNotification(operator string, sub *models.ContactSubmission) (Message, error) {
	data := notificationData{
		Name:    sub.Name,
		Email:   sub.Email,
		Message: sub.Message,
	}
	if sub.Company != nil {
		data.Company = *sub.Company
	}
	if sub.Service != nil {
		data.Service = *sub.Service
	}

	var html strings.Builder
	if err := templates.ExecuteTemplate(&html, "notification.html.tmpl", data); err != nil {
		return Message{}, fmt.Errorf("render notification: %w", err)
	}

	return Message{
		To:      operator,
		ReplyTo: sub.Email,
		Subject: fmt.Sprintf("New inquiry from %s", sub.Name),
		HTML:    html.String(),
		Text: fmt.Sprintf("New contact submission\n\nName: %s\nEmail: %s\nCompany: %s\nService: %s\n\n%s",
			data.Name, data.Email, data.Company, data.Service, data.Message),
	}, nil
}
