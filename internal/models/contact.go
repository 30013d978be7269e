package models

import "time"

// ContactStatus tracks where a submission is in the follow-up workflow.
type ContactStatus string

const (
	ContactStatusNew       ContactStatus = "NEW"
	ContactStatusInReview  ContactStatus = "IN_REVIEW"
	ContactStatusContacted ContactStatus = "CONTACTED"
	ContactStatusClosed    ContactStatus = "CLOSED"
)

// Valid reports whether s is a known status.
func (s ContactStatus) Valid() bool {
	switch s {
	case ContactStatusNew, ContactStatusInReview, ContactStatusContacted, ContactStatusClosed:
		return true
	}
	return false
}

// ContactSubmission is a record of an inbound inquiry. Rows are created by
// the intake pipeline and only their status changes afterwards.
type ContactSubmission struct {
	ID        string        `db:"id" json:"id"`
	Name      string        `db:"name" json:"name"`
	Email     string        `db:"email" json:"email"`
	Company   *string       `db:"company" json:"company,omitempty"`
	Service   *string       `db:"service" json:"service,omitempty"`
	Message   string        `db:"message" json:"message"`
	Status    ContactStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time     `db:"updated_at" json:"updatedAt"`
}
