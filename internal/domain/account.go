package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account holds the unit balance for one user within a tenant. Balance is
// only ever written through the ledger ApplyDelta primitive.
type Account struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Tenant  string    `gorm:"not null;uniqueIndex:idx_account_tenant_name;column:tenant" json:"tenant"`
	Name    string    `gorm:"not null;uniqueIndex:idx_account_tenant_name;column:name" json:"name"`
	Balance float64   `gorm:"not null;default:0;column:balance" json:"balance"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Account) TableName() string { return "account" }

// Reputation tallies terminal transfer outcomes for one user. Created with
// the account, mutated only by Accept/Dispute/Expire transitions.
type Reputation struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Tenant    string    `gorm:"not null;uniqueIndex:idx_reputation_tenant_user;column:tenant" json:"tenant"`
	User      string    `gorm:"not null;uniqueIndex:idx_reputation_tenant_user;column:user_name" json:"user"`
	Joined    time.Time `gorm:"not null;default:now();column:joined" json:"joined"`
	Completed int64     `gorm:"not null;default:0;column:completed" json:"completed"`
	Disputed  int64     `gorm:"not null;default:0;column:disputed" json:"disputed"`
	Expired   int64     `gorm:"not null;default:0;column:expired" json:"expired"`
}

func (Reputation) TableName() string { return "reputation" }

// NonceRecord stores the last nonce seen for a subject. A repeated nonce
// means the wrapping operation is a retry and must be a no-op.
type NonceRecord struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Tenant  string    `gorm:"not null;uniqueIndex:idx_nonce_tenant_subject;column:tenant" json:"tenant"`
	Subject string    `gorm:"not null;uniqueIndex:idx_nonce_tenant_subject;column:subject" json:"subject"`
	Nonce   string    `gorm:"not null;column:nonce" json:"nonce"`

	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (NonceRecord) TableName() string { return "nonce_record" }

// GlobalStat is the per-tenant running total of units granted net of
// removals. One row per tenant.
type GlobalStat struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Tenant    string    `gorm:"not null;uniqueIndex;column:tenant" json:"tenant"`
	Allocated float64   `gorm:"not null;default:0;column:allocated" json:"allocated"`

	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (GlobalStat) TableName() string { return "global_stat" }

// AuditEntry is one row of the append-only balance audit trail. Rows are
// never updated or deleted; Seq gives a total order per tenant.
type AuditEntry struct {
	Seq        int64     `gorm:"primaryKey;autoIncrement" json:"seq"`
	Tenant     string    `gorm:"not null;index:idx_audit_tenant_user;column:tenant" json:"tenant"`
	User       string    `gorm:"not null;index:idx_audit_tenant_user;column:user_name" json:"user"`
	OldBalance float64   `gorm:"not null;column:old_balance" json:"old"`
	NewBalance float64   `gorm:"not null;column:new_balance" json:"new"`
	Reason     string    `gorm:"not null;column:reason" json:"reason"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (AuditEntry) TableName() string { return "audit_entry" }
