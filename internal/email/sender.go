// Package email builds and delivers the transactional messages of the
// contact pipeline. Delivery goes through the Sender interface so services
// can be tested with fakes and the provider can be swapped without touching
// the pipeline.
package email

import "context"

// Message is a single outbound email.
type Message struct {
	To      string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a message. Implementations return an error only when the
// provider rejects or fails the send; interpretation of that failure
// (best-effort vs. mandatory) belongs to the caller.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
