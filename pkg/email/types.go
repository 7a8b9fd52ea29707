package email

// Message is one outgoing mail. With several recipients they are put on Bcc
// so admins never see each other's addresses.
type Message struct {
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}
