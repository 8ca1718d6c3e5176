package services

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/portfolio-web/apiserver/types"
)

const (
	// EventContactSubmitted is the event type published for new messages.
	EventContactSubmitted = "contact.submitted"

	maxContactNameLength    = 200
	maxContactSubjectLength = 200
	maxContactBodyLength    = 5000
)

// ContactRepository defines persistence operations for contact messages.
type ContactRepository interface {
	Create(ctx context.Context, msg types.ContactMessage) (types.ContactMessage, error)
	List(ctx context.Context, status types.ContactStatus, offset, limit int) ([]types.ContactMessage, int, error)
	Get(ctx context.Context, id int) (types.ContactMessage, error)
	SetStatus(ctx context.Context, id int, status types.ContactStatus) (types.ContactMessage, error)
	Delete(ctx context.Context, id int) error
}

// ContactService encapsulates contact form use-cases.
type ContactService struct {
	repo      ContactRepository
	publisher EventPublisher
	channel   string
	logger    *slog.Logger
}

func NewContactService(repo ContactRepository, publisher EventPublisher, channel string, logger *slog.Logger) *ContactService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactService{repo: repo, publisher: publisher, channel: channel, logger: logger}
}

// Submit validates and stores a message, then announces it on the queue.
// A failed publish is logged; the message is already stored.
func (s *ContactService) Submit(ctx context.Context, msg types.ContactMessage) (types.ContactMessage, error) {
	msg, err := normalizeContact(msg)
	if err != nil {
		return types.ContactMessage{}, err
	}
	msg.Status = types.ContactStatusNew

	saved, err := s.repo.Create(ctx, msg)
	if err != nil {
		return types.ContactMessage{}, err
	}

	if s.publisher != nil && s.publisher.Enabled() {
		event := types.ContactSubmittedEvent{
			MessageID: saved.ID,
			Name:      saved.Name,
			Email:     saved.Email,
			Subject:   saved.Subject,
			CreatedAt: saved.CreatedAt,
		}
		if _, err := s.publisher.PublishEvent(ctx, s.channel, EventContactSubmitted, event); err != nil {
			s.logger.WarnContext(ctx, "failed to publish contact event",
				"message_id", saved.ID,
				"error", err,
			)
		}
	}
	return saved, nil
}

func (s *ContactService) List(ctx context.Context, status types.ContactStatus, offset, limit int) ([]types.ContactMessage, int, error) {
	return s.repo.List(ctx, status, offset, clampLimit(limit))
}

func (s *ContactService) Get(ctx context.Context, id int) (types.ContactMessage, error) {
	return s.repo.Get(ctx, id)
}

// MarkStatus moves a message to another moderation state.
func (s *ContactService) MarkStatus(ctx context.Context, id int, status types.ContactStatus) (types.ContactMessage, error) {
	if _, ok := types.ParseContactStatus(string(status)); !ok {
		return types.ContactMessage{}, invalidf("unknown status %q", status)
	}
	return s.repo.SetStatus(ctx, id, status)
}

func (s *ContactService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func normalizeContact(msg types.ContactMessage) (types.ContactMessage, error) {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Subject = strings.TrimSpace(msg.Subject)
	msg.Body = strings.TrimSpace(msg.Body)

	switch {
	case msg.Name == "":
		return msg, invalidf("name is required")
	case len(msg.Name) > maxContactNameLength:
		return msg, invalidf("name must be at most %d characters", maxContactNameLength)
	case msg.Email == "":
		return msg, invalidf("email is required")
	case msg.Body == "":
		return msg, invalidf("message is required")
	case len(msg.Subject) > maxContactSubjectLength:
		return msg, invalidf("subject must be at most %d characters", maxContactSubjectLength)
	case len(msg.Body) > maxContactBodyLength:
		return msg, invalidf("message must be at most %d characters", maxContactBodyLength)
	}

	addr, err := mail.ParseAddress(msg.Email)
	if err != nil || addr.Address != msg.Email {
		return msg, invalidf("email is not a valid address")
	}
	return msg, nil
}
