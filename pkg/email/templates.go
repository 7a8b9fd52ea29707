package email

import (
	"fmt"
	"html"
	"strings"
)

// Branding is shared by every template.
type Branding struct {
	AppName string
	BaseURL string
}

func (b Branding) name() string {
	if strings.TrimSpace(b.AppName) == "" {
		return "Mindbook"
	}
	return b.AppName
}

func (c *Client) Branding() Branding {
	return Branding{AppName: c.cfg.AppName, BaseURL: c.cfg.BaseURL}
}

func greeting(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Hi there"
	}
	return "Hi " + name
}

// wrapHTML renders paragraphs into a minimal HTML body. Paragraph text is escaped.
func wrapHTML(b Branding, paragraphs ...string) string {
	var sb strings.Builder
	sb.WriteString(`<!DOCTYPE html><html><body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">`)
	fmt.Fprintf(&sb, `<h2 style="margin-bottom: 16px;">%s</h2>`, html.EscapeString(b.name()))
	for _, p := range paragraphs {
		fmt.Fprintf(&sb, "<p>%s</p>", strings.ReplaceAll(html.EscapeString(p), "\n", "<br>"))
	}
	sb.WriteString(`<p style="color:#888;font-size:12px;">This is an automated message.</p></body></html>`)
	return sb.String()
}

func build(to []string, subject string, b Branding, paragraphs ...string) Message {
	return Message{
		To:       to,
		Subject:  subject,
		TextBody: strings.Join(paragraphs, "\n\n") + "\n",
		HTMLBody: wrapHTML(b, paragraphs...),
	}
}

// ---------------------------------------------------------------------
// Accounts
// ---------------------------------------------------------------------

type TemporaryPasswordData struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// BuildTemporaryPasswordEmail is sent when an admin creates a client or therapist account.
func BuildTemporaryPasswordEmail(b Branding, d TemporaryPasswordData) Message {
	lines := []string{
		greeting(d.Name) + ",",
		fmt.Sprintf("An administrator created a %s account for you on %s.", d.Role, b.name()),
		fmt.Sprintf("Email: %s\nTemporary password: %s", d.Email, d.Password),
		"Please sign in and change your password as soon as possible.",
	}
	if b.BaseURL != "" {
		lines = append(lines, "Sign in at "+strings.TrimRight(b.BaseURL, "/")+"/login")
	}
	return build([]string{d.Email}, fmt.Sprintf("Your %s account", b.name()), b, lines...)
}

type CallbackRequestData struct {
	ClientName  string
	ClientEmail string
	ClientPhone string
	Note        string
}

// BuildCallbackRequestEmail notifies administrators that a client asked to be called back.
func BuildCallbackRequestEmail(b Branding, to []string, d CallbackRequestData) Message {
	lines := []string{
		"A client has requested a callback.",
		fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s", d.ClientName, d.ClientEmail, d.ClientPhone),
	}
	if strings.TrimSpace(d.Note) != "" {
		lines = append(lines, "Note: "+d.Note)
	}
	return build(to, fmt.Sprintf("[%s] Callback requested by %s", b.name(), d.ClientName), b, lines...)
}

// ---------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------

type SessionData struct {
	RecipientName string
	RecipientMail string
	OtherParty    string
	Date          string
	StartTime     string
	EndTime       string
	Status        string
}

// BuildBookingRequestedEmail tells a therapist a client booked a slot.
func BuildBookingRequestedEmail(b Branding, d SessionData) Message {
	return build([]string{d.RecipientMail}, "New session request", b,
		greeting(d.RecipientName)+",",
		fmt.Sprintf("%s requested a session on %s from %s to %s.", d.OtherParty, d.Date, d.StartTime, d.EndTime),
		"Open your dashboard to approve or decline it.",
	)
}

// BuildSessionStatusEmail tells a client their session changed state.
func BuildSessionStatusEmail(b Branding, d SessionData) Message {
	return build([]string{d.RecipientMail}, fmt.Sprintf("Your session was %s", d.Status), b,
		greeting(d.RecipientName)+",",
		fmt.Sprintf("Your session with %s on %s (%s-%s) is now %s.", d.OtherParty, d.Date, d.StartTime, d.EndTime, d.Status),
	)
}

type AssignmentData struct {
	ClientName    string
	ClientEmail   string
	TherapistName string
	Sessions      int
}

// BuildAssignmentEmail tells a client which therapist they were matched with.
func BuildAssignmentEmail(b Branding, d AssignmentData) Message {
	return build([]string{d.ClientEmail}, "You have been matched with a therapist", b,
		greeting(d.ClientName)+",",
		fmt.Sprintf("You have been assigned to %s with %d scheduled session(s).", d.TherapistName, d.Sessions),
	)
}
