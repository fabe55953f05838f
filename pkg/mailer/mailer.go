package mailer

// Mailer defines the interface for sending transactional email
type Mailer interface {
	// Send delivers a single message to one recipient.
	// Returns a provider message ID and an error if the send failed.
	Send(to, subject, body string) (string, error)

	// GetName returns the name of the mailer implementation
	GetName() string
}
