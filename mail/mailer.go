// Package mail is the notification collaborator. Delivery itself is out of
// scope here; deployments plug in a real sender.
package mail

import (
	"context"
	"log"
)

type Mailer interface {
	SendPasswordReset(ctx context.Context, email, resetURL string) error
}

// LogMailer prints the reset link instead of sending it. Good enough for
// development and for tests.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(_ context.Context, email, resetURL string) error {
	log.Printf("[MAIL] password reset for %s: %s", email, resetURL)
	return nil
}
