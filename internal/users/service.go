package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/invoicecapture-backend/internal/access"
	"github.com/angelmondragon/invoicecapture-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/invoicecapture-backend/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service loads caller profiles and validates signups.
type Service interface {
	Profile(ctx context.Context, id uuid.UUID) (*access.Profile, error)
	ValidateSignup(input SignupInput) (*SignupResult, error)
}

type service struct {
	repo          userRepository
	allowedDomain string
}

func NewService(repo userRepository, allowedDomain string) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "user repository required")
	}
	return &service{repo: repo, allowedDomain: allowedDomain}, nil
}

// Profile returns UNAUTHORIZED when the token's subject has no profile row.
func (s *service) Profile(ctx context.Context, id uuid.UUID) (*access.Profile, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return ToProfile(user), nil
}

func (s *service) ValidateSignup(input SignupInput) (*SignupResult, error) {
	return ValidateSignup(input, s.allowedDomain)
}
