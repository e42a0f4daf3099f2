package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/domain"
)

type Config struct {
	TokenTTL    time.Duration
	SessionTTL  time.Duration
	MaxBatch    int
	KeyRetryMax int
}

// CreditBalance is a ledger read. Unlimited balances report their stored
// amount for display but are never debited.
type CreditBalance struct {
	Unlimited bool  `json:"unlimited"`
	Amount    int64 `json:"amount"`
}

type SetupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type OperatorLoginRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	IPAddress string `json:"-"`
}

type OperatorLoginResponse struct {
	Token     string    `json:"token"`
	AccountID uuid.UUID `json:"account_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresIn int64     `json:"expires_in"`
}

type CreateOperatorRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Credits  int64  `json:"credits"`
}

type OperatorView struct {
	AccountID   uuid.UUID     `json:"account_id"`
	Username    string        `json:"username"`
	Email       string        `json:"email"`
	Role        string        `json:"role"`
	Credits     CreditBalance `json:"credits"`
	IsActive    bool          `json:"is_active"`
	CreatedAt   time.Time     `json:"created_at"`
	LastLoginAt *time.Time    `json:"last_login_at,omitempty"`
	LastLoginIP string        `json:"last_login_ip,omitempty"`
}

type CreateApplicationRequest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type ApplicationView struct {
	AppID     uuid.UUID `json:"app_id"`
	Name      string    `json:"name"`
	Secret    string    `json:"secret"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Version   string    `json:"version"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type CreatePackageRequest struct {
	AppID        uuid.UUID `json:"app_id"`
	Name         string    `json:"name"`
	DurationDays int       `json:"duration_days"`
}

type PackageView struct {
	PackageID    uuid.UUID `json:"package_id"`
	Name         string    `json:"name"`
	DurationDays int       `json:"duration_days"`
	AppID        uuid.UUID `json:"app_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProvisionRequest mints a batch of license keys against a package.
// CustomDays overrides the package duration when positive. ExplicitKey
// forces a single unit with an operator-chosen key string.
type ProvisionRequest struct {
	AppID            uuid.UUID `json:"app_id"`
	PackageID        uuid.UUID `json:"package_id"`
	Count            int       `json:"count"`
	CustomDays       int       `json:"custom_days"`
	HardwareLock     bool      `json:"hardware_lock"`
	ExplicitKey      string    `json:"key"`
	ExplicitPassword string    `json:"password"`
}

// ProvisionedKey is the plaintext handout for one minted unit. The password
// is only ever available here; the store keeps the hash.
type ProvisionedKey struct {
	KeyID    uuid.UUID `json:"key_id"`
	Key      string    `json:"key"`
	Password string    `json:"password"`
	Expiry   time.Time `json:"expiry"`
}

type KeyView struct {
	KeyID        uuid.UUID  `json:"key_id"`
	Key          string     `json:"key"`
	Username     string     `json:"username,omitempty"`
	AppID        uuid.UUID  `json:"app_id"`
	PackageID    uuid.UUID  `json:"package_id"`
	HardwareLock bool       `json:"hardware_lock"`
	HardwareID   string     `json:"hardware_id,omitempty"`
	Expiry       time.Time  `json:"expiry"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	RedeemedAt   *time.Time `json:"redeemed_at,omitempty"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	LastLoginIP  string     `json:"last_login_ip,omitempty"`
}

// AuthenticateParams are the client login inputs after session resolution.
type AuthenticateParams struct {
	App        domain.Application
	Login      string
	Password   string
	HardwareID string
	IPAddress  string
}

// RedeemParams claim a distributed, never-used key for an end user.
type RedeemParams struct {
	App        domain.Application
	Username   string
	Password   string
	LicenseKey string
	HardwareID string
}

// InitParams identify the application a client session is opened against.
// Secret resolution wins over name/owner resolution when both are present.
type InitParams struct {
	AppName string
	OwnerID string
	Secret  string
	Version string
	SentKey string
}

// AppInfo is the tenant statistics block returned by session init.
type AppInfo struct {
	NumUsers       int64  `json:"numUsers"`
	NumOnlineUsers int64  `json:"numOnlineUsers"`
	NumKeys        int64  `json:"numKeys"`
	Version        string `json:"version"`
}

// InitResult carries everything the transport needs to answer an init
// request, including the app secret used to sign the response body.
// VersionMismatch is a reportable outcome, not an error, because the
// response must still be signed with the resolved application's secret.
type InitResult struct {
	VersionMismatch bool
	Session         domain.Session
	AppInfo         AppInfo
	AppSecret       string
}

type StatsView struct {
	Operators    int64 `json:"operators"`
	Applications int64 `json:"applications"`
	Keys         int64 `json:"keys"`
	Users        int64 `json:"users"`
}
