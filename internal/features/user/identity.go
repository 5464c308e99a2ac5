package user

import (
	"context"
	"errors"

	"crm-reports/internal/config"

	"go.uber.org/zap"
)

// Identity resolves who should hear about a report run.
type Identity interface {
	Emails(ctx context.Context, userID string) []string
}

type IdentityImpl struct {
	repo        UserRepository
	adminEmails []string
	logger      *zap.Logger
}

func NewIdentity(repo UserRepository, cfg *config.Config, logger *zap.Logger) Identity {
	return &IdentityImpl{
		repo:        repo,
		adminEmails: cfg.AdminEmails,
		logger:      logger,
	}
}

// Emails returns the user's address, or the configured admin contacts when
// the user is unknown or has no address.
func (i *IdentityImpl) Emails(ctx context.Context, userID string) []string {
	if userID != "" {
		u, err := i.repo.FindByID(ctx, userID)
		switch {
		case err == nil && u.Email != "":
			return []string{u.Email}
		case err != nil && !errors.Is(err, ErrUserNotFound):
			i.logger.Error("Failed to look up report user", zap.String("user_id", userID), zap.Error(err))
		}
	}
	i.logger.Warn("User not set for report notification", zap.String("user_id", userID))
	return append([]string(nil), i.adminEmails...)
}
