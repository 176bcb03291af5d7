package ports

import "context"

// Mailer delivers a rendered message to a single recipient. Implementations
// report failure synchronously; there is no retry queue in this service.
type Mailer interface {
	Send(ctx context.Context, to, subject, textBody, htmlBody string) error
}
