package domain

import (
	"time"

	"github.com/google/uuid"
)

// Lease is a time-boxed grant of running capacity for one app instance
// ("CA"). FQN encodes both the owning app and the owning user, e.g.
// `alice-blog#bob-x1`. Expiry is in fractional days since the epoch.
type Lease struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Tenant  string    `gorm:"not null;uniqueIndex:idx_lease_tenant_fqn;column:tenant" json:"tenant"`
	FQN     string    `gorm:"not null;uniqueIndex:idx_lease_tenant_fqn;column:fqn" json:"fqn"`
	AppName string    `gorm:"not null;index:idx_lease_tenant_app;column:app_name" json:"app_name"`
	Owner   string    `gorm:"not null;index:idx_lease_tenant_owner;column:owner" json:"owner"`
	Expiry  float64   `gorm:"not null;column:expiry" json:"expiry"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Lease) TableName() string { return "lease" }
