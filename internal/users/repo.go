package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/invoicecapture-backend/pkg/db/models"
)

// profileColumns are the fields the authorization layer needs.
var profileColumns = []string{"id", "email", "name", "city", "role"}

// Repository reads profiles provisioned by the identity provider. It never writes.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID returns gorm.ErrRecordNotFound when no profile exists for id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := r.db.WithContext(ctx).
		Select(profileColumns).
		Where("id = ?", id).
		Take(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}
