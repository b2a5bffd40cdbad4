package port

import "context"

// Mail is a plain-text message handed to the delivery channel.
type Mail struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers transactional email. Implementations must honour the
// context deadline; the caller bounds dispatch so a slow channel cannot
// stall registration.
type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}
