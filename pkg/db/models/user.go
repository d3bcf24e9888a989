package models

import (
	"time"

	"github.com/angelmondragon/invoicecapture-backend/pkg/enums"
	"github.com/google/uuid"
)

// User is the submitter profile. Rows are provisioned by the identity provider's signup hook.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Email     string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	Name      string         `gorm:"column:name;not null;default:''"`
	City      string         `gorm:"column:city;not null;default:''"`
	Role      enums.UserRole `gorm:"column:role;type:user_role;not null;default:'user'"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
