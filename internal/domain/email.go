package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// InvitationEmailData holds data for the invitation email.
type InvitationEmailData struct {
	Email       string
	InviteeName string
	SenderName  string
	EventName   string
	EventURL    string
}

// ReminderEmailData holds data for the reminder email.
type ReminderEmailData struct {
	Email       string
	InviteeName string
	SenderName  string
	EventName   string
	EventURL    string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendInvitation(ctx context.Context, data *InvitationEmailData) error
	SendReminder(ctx context.Context, data *ReminderEmailData) error
}
