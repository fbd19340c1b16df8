package domain

import (
	"time"

	"github.com/google/uuid"
)

// Transfer is an escrowed unit transfer. The sender is debited when the
// row is created; the row is deleted when the transfer reaches a terminal
// state (Accepted, Expired or Disputed), so its absence doubles as the
// terminal-state marker. Pending offers for a user are the rows with
// from_user = user; pending accepts are the rows with to_user = user.
type Transfer struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"-"`
	Tenant    string    `gorm:"not null;uniqueIndex:idx_transfer_tenant_tid;column:tenant" json:"tenant"`
	TID       string    `gorm:"not null;uniqueIndex:idx_transfer_tenant_tid;column:tid" json:"id"`
	FromUser  string    `gorm:"not null;index:idx_transfer_tenant_from;column:from_user" json:"from"`
	ToUser    string    `gorm:"not null;index:idx_transfer_tenant_to;column:to_user" json:"to"`
	Units     float64   `gorm:"not null;column:units" json:"units"`
	ExpiresMs int64     `gorm:"not null;column:expires_ms" json:"expires"`
	Released  bool      `gorm:"not null;default:false;column:released" json:"released"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Transfer) TableName() string { return "transfer" }

// UserInfo is the aggregate view served by GetUserInfo: balance plus
// everything pending for the user.
type UserInfo struct {
	User       float64              `json:"user"`
	Apps       map[string]float64   `json:"apps"`
	CAs        map[string]float64   `json:"cas"`
	Offers     map[string]*Transfer `json:"offers"`
	Accepts    map[string]*Transfer `json:"accepts"`
	Reputation *Reputation          `json:"reputation"`
}
