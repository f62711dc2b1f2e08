package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/souqna/marketplace/internal/domain"
	"github.com/souqna/marketplace/internal/events"
	"github.com/souqna/marketplace/internal/repository"
	apperrors "github.com/souqna/marketplace/pkg/util"
)

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil && logger != nil {
		logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("aggregate_id", event.AggregateID),
			zap.Error(err))
	}
}

func actorFor(identity *domain.Identity) events.Actor {
	if identity == nil {
		return events.Actor{}
	}
	return events.Actor{UserID: identity.SubjectID, Role: identity.Role}
}

// requireOpen rejects mutations from non-admins while maintenance mode is on.
func requireOpen(identity *domain.Identity, settings domain.AppSettings) error {
	if settings.MaintenanceMode && !identity.IsAdmin() {
		return apperrors.NewUnavailable("MAINTENANCE", "the marketplace is under maintenance")
	}
	return nil
}

// duplicateConstraint returns the violated constraint name when err is a unique violation.
func duplicateConstraint(err error) (string, bool) {
	var dup *repository.DuplicateError
	if errors.As(err, &dup) {
		return dup.Constraint, true
	}
	return "", errors.Is(err, repository.ErrDuplicate)
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@"):], ".")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
