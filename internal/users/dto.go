package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/invoicecapture-backend/internal/access"
	"github.com/angelmondragon/invoicecapture-backend/pkg/db/models"
	"github.com/angelmondragon/invoicecapture-backend/pkg/enums"
)

// UserDTO is the transport shape of a profile.
type UserDTO struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	Name      string         `json:"name"`
	City      string         `json:"city"`
	Role      enums.UserRole `json:"role"`
	CreatedAt time.Time      `json:"created_at"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		City:      u.City,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// ToProfile maps a stored user onto the authorization profile.
func ToProfile(u *models.User) *access.Profile {
	if u == nil {
		return nil
	}
	return &access.Profile{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		City:  u.City,
		Role:  u.Role,
	}
}
