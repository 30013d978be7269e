// This file implements ContactService: the contact-form intake pipeline
// with persist-then-notify semantics and the asymmetric dual-send contract.
package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Ratheshan03/neucon-labs-sub000/internal/common"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/email"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/logging"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/models"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/repositories/contacts"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/repositories/repomanager"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/validation"
)

// SendOutcome records one email attempt. Err is nil when the send
// succeeded; Attempted is false when the pipeline never reached it.
type SendOutcome struct {
	Attempted bool
	Err       error
}

// Sent reports whether the send was attempted and succeeded.
func (o SendOutcome) Sent() bool {
	return o.Attempted && o.Err == nil
}

// DispatchReport tracks the two sends of the intake pipeline independently.
// The confirmation is best-effort; the operator notification is mandatory.
type DispatchReport struct {
	Confirmation SendOutcome
	Notification SendOutcome
}

// ContactService runs the contact intake pipeline and serves the admin
// submission views.
type ContactService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	sender   email.Sender
	operator string
	logger   logging.Logger
}

// NewContactService constructs a ContactService. operator is the address
// that receives lead notifications.
func NewContactService(db *sql.DB, repos repomanager.RepositoryManager, sender email.Sender, operator string, logger logging.Logger) *ContactService {
	return &ContactService{
		db:       db,
		repos:    repos,
		sender:   sender,
		operator: operator,
		logger:   logger.With("module", "contact"),
	}
}

// Submit runs the validated intake: persist the submission first, then send
// the courtesy confirmation (failure logged and swallowed), then the
// operator notification (failure aborts with common.ErrDependency). The
// returned report carries both send outcomes regardless of the error. When
// the submission row was stored, it is returned even on a failed dispatch
// so the lead is never silently lost.
func (s *ContactService) Submit(ctx context.Context, in validation.ContactInput) (*models.ContactSubmission, DispatchReport, error) {
	var report DispatchReport

	sub := &models.ContactSubmission{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Message: strings.TrimSpace(in.Message),
	}
	if c := strings.TrimSpace(in.Company); c != "" {
		sub.Company = &c
	}
	if v := strings.TrimSpace(in.Service); v != "" {
		sub.Service = &v
	}

	sub, err := s.repos.Contacts(s.db).Create(ctx, sub)
	if err != nil {
		s.logger.Error(ctx, "storing contact submission failed", "error", err)
		return nil, report, common.ErrDependency
	}
	s.logger.Info(ctx, "contact submission stored", "id", sub.ID)

	report.Confirmation = s.sendConfirmation(ctx, sub)
	report.Notification = s.sendNotification(ctx, sub)

	if report.Notification.Err != nil {
		return sub, report, common.ErrDependency
	}
	return sub, report, nil
}

// sendConfirmation is best-effort: the submitter-facing email is a courtesy
// and its loss never aborts the request.
func (s *ContactService) sendConfirmation(ctx context.Context, sub *models.ContactSubmission) SendOutcome {
	out := SendOutcome{Attempted: true}

	msg, err := email.BuildConfirmation(sub)
	if err == nil {
		err = s.sender.Send(ctx, msg)
	}
	if err != nil {
		out.Err = err
		s.logger.Warn(ctx, "confirmation email failed", "id", sub.ID, "error", err)
	}
	return out
}

// sendNotification is mandatory: the operator email is the only signal that
// a lead exists, so its failure must surface to the caller.
func (s *ContactService) sendNotification(ctx context.Context, sub *models.ContactSubmission) SendOutcome {
	out := SendOutcome{Attempted: true}

	msg, err := email.BuildNotification(s.operator, sub)
	if err == nil {
		err = s.sender.Send(ctx, msg)
	}
	if err != nil {
		out.Err = err
		s.logger.Error(ctx, "operator notification failed", "id", sub.ID, "error", err)
	}
	return out
}

// Submissions lists stored submissions for the admin dashboard.
func (s *ContactService) Submissions(ctx context.Context, filter contacts.ListFilter) ([]*models.ContactSubmission, error) {
	return s.repos.Contacts(s.db).List(ctx, filter)
}

// Submission returns a single stored submission.
func (s *ContactService) Submission(ctx context.Context, id string) (*models.ContactSubmission, error) {
	return s.repos.Contacts(s.db).GetByID(ctx, id)
}

// UpdateStatus moves a submission through the follow-up workflow.
func (s *ContactService) UpdateStatus(ctx context.Context, id string, status models.ContactStatus) error {
	if err := s.repos.Contacts(s.db).UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.logger.Info(ctx, "submission status updated", "id", id, "status", status)
	return nil
}
