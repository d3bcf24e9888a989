package access

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/invoicecapture-backend/pkg/enums"
)

// Resource names a guarded capability. Routes declare resources, not roles.
type Resource string

const (
	ResourceInvoicesCapture Resource = "invoices:capture"
	ResourceInvoicesHistory Resource = "invoices:history"
	ResourceInvoicesReview  Resource = "invoices:review"
	ResourceAnalyticsRead   Resource = "analytics:read"
	ResourceExportsRead     Resource = "exports:read"
)

var rolesByResource = map[Resource][]enums.UserRole{
	ResourceInvoicesCapture: {enums.UserRoleUser, enums.UserRoleAdmin},
	ResourceInvoicesHistory: {enums.UserRoleUser, enums.UserRoleAdmin},
	ResourceInvoicesReview:  {enums.UserRoleAdmin},
	ResourceAnalyticsRead:   {enums.UserRoleAdmin},
	ResourceExportsRead:     {enums.UserRoleAdmin},
}

// Profile is the authenticated caller.
type Profile struct {
	ID    uuid.UUID      `json:"id"`
	Email string         `json:"email"`
	Name  string         `json:"name"`
	City  string         `json:"city"`
	Role  enums.UserRole `json:"role"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == enums.UserRoleAdmin
}

// CanAccess is the single authorization predicate.
// A nil profile and unknown resources are always denied.
func CanAccess(p *Profile, resource Resource) bool {
	if p == nil {
		return false
	}
	for _, role := range rolesByResource[resource] {
		if role == p.Role {
			return true
		}
	}
	return false
}
