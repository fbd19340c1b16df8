package domain

import (
	"time"

	"github.com/google/uuid"
)

// App is a published application. CostPerUnit is the number of days of
// lease time one unit buys. RegistrationExpiry is in fractional days since
// the epoch, the same scale lease expiries use.
type App struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Tenant             string    `gorm:"not null;uniqueIndex:idx_app_tenant_name;column:tenant" json:"tenant"`
	FullName           string    `gorm:"not null;uniqueIndex:idx_app_tenant_name;column:full_name" json:"full_name"`
	Publisher          string    `gorm:"not null;index:idx_app_tenant_publisher;column:publisher" json:"publisher"`
	CostPerUnit        float64   `gorm:"not null;column:cost_per_unit" json:"cost_per_unit"`
	Plan               string    `gorm:"column:plan" json:"plan"`
	ProfitShare        float64   `gorm:"not null;default:0;column:profit_share" json:"profit_share"`
	RegistrationExpiry float64   `gorm:"not null;default:0;column:registration_expiry" json:"registration_expiry"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (App) TableName() string { return "app" }

// AppUsageSample is one append-only usage measurement for an app: the
// number of active leases observed at TimestampMs.
type AppUsageSample struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Tenant      string    `gorm:"not null;index:idx_usage_tenant_app;column:tenant" json:"tenant"`
	AppName     string    `gorm:"not null;index:idx_usage_tenant_app;column:app_name" json:"app_name"`
	TimestampMs int64     `gorm:"not null;column:timestamp_ms" json:"timestamp"`
	Count       int64     `gorm:"not null;column:count" json:"count"`
}

func (AppUsageSample) TableName() string { return "app_usage_sample" }
