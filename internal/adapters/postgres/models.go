package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/domain"
)

type operatorAccountModel struct {
	AccountID    uuid.UUID  `gorm:"column:account_id;type:uuid;default:gen_random_uuid();primaryKey"`
	Username     string     `gorm:"column:username"`
	PasswordHash string     `gorm:"column:password_hash"`
	Email        string     `gorm:"column:email"`
	Role         string     `gorm:"column:role"`
	Credits      int64      `gorm:"column:credits"`
	CreatedBy    *uuid.UUID `gorm:"column:created_by"`
	IsActive     bool       `gorm:"column:is_active"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	LastLoginIP  *string    `gorm:"column:last_login_ip"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
}

func (operatorAccountModel) TableName() string { return "operator_accounts" }

type resellerPackageModel struct {
	AccountID  uuid.UUID `gorm:"column:account_id;type:uuid;primaryKey"`
	PackageID  uuid.UUID `gorm:"column:package_id;type:uuid;primaryKey"`
	AssignedAt time.Time `gorm:"column:assigned_at"`
}

func (resellerPackageModel) TableName() string { return "reseller_packages" }

type applicationModel struct {
	AppID     uuid.UUID `gorm:"column:app_id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name"`
	Secret    string    `gorm:"column:secret"`
	OwnerID   uuid.UUID `gorm:"column:owner_id"`
	Version   string    `gorm:"column:version"`
	IsActive  bool      `gorm:"column:is_active"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (applicationModel) TableName() string { return "applications" }

type packageModel struct {
	PackageID    uuid.UUID `gorm:"column:package_id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string    `gorm:"column:name"`
	DurationDays int       `gorm:"column:duration_days"`
	AppID        uuid.UUID `gorm:"column:app_id"`
	CreatedBy    uuid.UUID `gorm:"column:created_by"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (packageModel) TableName() string { return "packages" }

type endUserKeyModel struct {
	KeyID        uuid.UUID  `gorm:"column:key_id;type:uuid;primaryKey"`
	Key          string     `gorm:"column:key"`
	Username     string     `gorm:"column:username"`
	PasswordHash string     `gorm:"column:password_hash"`
	AppID        uuid.UUID  `gorm:"column:app_id"`
	PackageID    uuid.UUID  `gorm:"column:package_id"`
	CreatedBy    uuid.UUID  `gorm:"column:created_by"`
	HardwareLock bool       `gorm:"column:hardware_lock"`
	HardwareID   string     `gorm:"column:hardware_id"`
	Expiry       time.Time  `gorm:"column:expiry"`
	IsActive     bool       `gorm:"column:is_active"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	RedeemedAt   *time.Time `gorm:"column:redeemed_at"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	LastLoginIP  *string    `gorm:"column:last_login_ip"`
}

func (endUserKeyModel) TableName() string { return "end_user_keys" }

type appVarModel struct {
	AppID     uuid.UUID `gorm:"column:app_id;type:uuid;primaryKey"`
	VarID     string    `gorm:"column:var_id;primaryKey"`
	Data      string    `gorm:"column:data"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (appVarModel) TableName() string { return "app_vars" }

type auditOutboxModel struct {
	OutboxID       uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType      string     `gorm:"column:event_type"`
	PartitionKey   string     `gorm:"column:partition_key"`
	Payload        string     `gorm:"column:payload;type:jsonb"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	PublishedAt    *time.Time `gorm:"column:published_at"`
	RetryCount     int        `gorm:"column:retry_count"`
	LastError      *string    `gorm:"column:last_error"`
	LastErrorAt    *time.Time `gorm:"column:last_error_at"`
	ClaimToken     *string    `gorm:"column:claim_token"`
	ClaimUntil     *time.Time `gorm:"column:claim_until"`
	DeadLetteredAt *time.Time `gorm:"column:dead_lettered_at"`
}

func (auditOutboxModel) TableName() string { return "audit_outbox" }

func toDomainAccount(row operatorAccountModel, assigned []uuid.UUID) domain.OperatorAccount {
	ip := ""
	if row.LastLoginIP != nil {
		ip = *row.LastLoginIP
	}
	return domain.OperatorAccount{
		AccountID:        row.AccountID,
		Username:         row.Username,
		PasswordHash:     row.PasswordHash,
		Email:            row.Email,
		Role:             domain.Role(row.Role),
		Credits:          row.Credits,
		AssignedPackages: assigned,
		CreatedBy:        row.CreatedBy,
		IsActive:         row.IsActive,
		CreatedAt:        row.CreatedAt,
		LastLoginIP:      ip,
		LastLoginAt:      row.LastLoginAt,
	}
}

func toDomainApplication(row applicationModel) domain.Application {
	return domain.Application{
		AppID:     row.AppID,
		Name:      row.Name,
		Secret:    row.Secret,
		OwnerID:   row.OwnerID,
		Version:   row.Version,
		IsActive:  row.IsActive,
		CreatedAt: row.CreatedAt,
	}
}

func toDomainPackage(row packageModel) domain.Package {
	return domain.Package{
		PackageID:    row.PackageID,
		Name:         row.Name,
		DurationDays: row.DurationDays,
		AppID:        row.AppID,
		CreatedBy:    row.CreatedBy,
		CreatedAt:    row.CreatedAt,
	}
}

func toDomainKey(row endUserKeyModel) domain.EndUserKey {
	ip := ""
	if row.LastLoginIP != nil {
		ip = *row.LastLoginIP
	}
	return domain.EndUserKey{
		KeyID:        row.KeyID,
		Key:          row.Key,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		AppID:        row.AppID,
		PackageID:    row.PackageID,
		CreatedBy:    row.CreatedBy,
		Binding: domain.HardwareBinding{
			LockEnabled: row.HardwareLock,
			ID:          row.HardwareID,
		},
		Expiry:      row.Expiry,
		IsActive:    row.IsActive,
		CreatedAt:   row.CreatedAt,
		RedeemedAt:  row.RedeemedAt,
		LastLoginAt: row.LastLoginAt,
		LastLoginIP: ip,
	}
}

func nullableString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
