package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/domain"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/ports"
)

// ProvisionKeys mints count license units against a package, gated by the
// requester's credit balance at one credit per unit. Credits are debited
// once, after every unit has been persisted; a provisioning failure before
// the debit leaves the balance untouched.
func (s *Service) ProvisionKeys(ctx context.Context, actorID uuid.UUID, req ProvisionRequest) ([]ProvisionedKey, error) {
	actor, err := s.activeOperator(ctx, actorID)
	if err != nil {
		return nil, err
	}

	req.ExplicitKey = strings.TrimSpace(strings.ToUpper(req.ExplicitKey))
	if req.ExplicitKey != "" {
		req.Count = 1
	}
	if req.Count < 1 {
		return nil, fmt.Errorf("%w: count must be at least 1", domain.ErrInvalidInput)
	}
	if s.cfg.MaxBatch > 0 && req.Count > s.cfg.MaxBatch {
		return nil, fmt.Errorf("%w: count exceeds batch limit %d", domain.ErrInvalidInput, s.cfg.MaxBatch)
	}

	pkg, err := s.packages.GetByID(ctx, req.PackageID)
	if err != nil {
		return nil, err
	}
	if req.AppID != uuid.Nil && req.AppID != pkg.AppID {
		return nil, fmt.Errorf("%w: package does not belong to application", domain.ErrInvalidInput)
	}
	app, err := s.apps.GetByID(ctx, pkg.AppID)
	if err != nil {
		return nil, err
	}
	if !actor.CanUsePackage(pkg.PackageID) {
		return nil, fmt.Errorf("%w: package not assigned to reseller", domain.ErrUnauthorized)
	}

	cost := int64(req.Count)
	if !actor.Role.UnlimitedCredits() && actor.Credits < cost {
		return nil, domain.ErrInsufficientCredits
	}

	days := pkg.DurationDays
	if req.CustomDays > 0 {
		days = req.CustomDays
	}
	now := s.nowFn()
	expiry := now.AddDate(0, 0, days)

	minted := make([]ProvisionedKey, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		password := req.ExplicitPassword
		if password == "" {
			password = domain.RandomPassword()
		}
		hash, err := s.hasher.Hash(password)
		if err != nil {
			return nil, fmt.Errorf("hash key password: %w", err)
		}

		unit := domain.EndUserKey{
			KeyID:        uuid.New(),
			PasswordHash: hash,
			AppID:        app.AppID,
			PackageID:    pkg.PackageID,
			CreatedBy:    actor.AccountID,
			Binding:      domain.HardwareBinding{LockEnabled: req.HardwareLock},
			Expiry:       expiry,
			IsActive:     true,
			CreatedAt:    now,
		}

		if req.ExplicitKey != "" {
			unit.Key = req.ExplicitKey
			if err := s.keys.Insert(ctx, unit); err != nil {
				return nil, err
			}
		} else if err := s.insertMinted(ctx, &unit); err != nil {
			// Prior units in the batch remain committed; the debit never ran.
			return nil, err
		}
		minted = append(minted, ProvisionedKey{
			KeyID:    unit.KeyID,
			Key:      unit.Key,
			Password: password,
			Expiry:   expiry,
		})
	}

	if !actor.Role.UnlimitedCredits() {
		if err := s.accounts.DebitCredits(ctx, actor.AccountID, cost); err != nil {
			// A concurrent spender drained the balance between the pre-check
			// and the debit. Withdraw the batch so unfunded keys never reach
			// circulation.
			for _, unit := range minted {
				_ = s.keys.Delete(ctx, unit.KeyID)
			}
			return nil, err
		}
	}

	s.enqueueAudit(ctx, "key.provisioned", app.AppID.String(), map[string]any{
		"app_id":     app.AppID.String(),
		"package_id": pkg.PackageID.String(),
		"created_by": actor.AccountID.String(),
		"count":      req.Count,
	})
	return minted, nil
}

// insertMinted inserts a unit under a freshly generated key string,
// re-minting on the rare collision with an existing key.
func (s *Service) insertMinted(ctx context.Context, unit *domain.EndUserKey) error {
	retries := s.cfg.KeyRetryMax
	if retries <= 0 {
		retries = 5
	}
	for attempt := 0; attempt < retries; attempt++ {
		unit.Key = domain.MintKeyString()
		err := s.keys.Insert(ctx, *unit)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrKeyExists) {
			return err
		}
	}
	return domain.ErrKeyExists
}

// Authenticate validates an end-user login against the key lifecycle rules
// in fixed order: application, key existence and ban state, password,
// expiry, then hardware binding. The first failing check wins so a banned
// expired key always reports as invalid credentials, not expired.
func (s *Service) Authenticate(ctx context.Context, p AuthenticateParams) (domain.EndUserKey, error) {
	if !p.App.IsActive {
		return domain.EndUserKey{}, domain.ErrInvalidApplication
	}
	login := strings.TrimSpace(p.Login)
	if login == "" || p.Password == "" {
		return domain.EndUserKey{}, domain.ErrInvalidCredentials
	}

	key, err := s.keys.GetByLogin(ctx, p.App.AppID, login)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.EndUserKey{}, domain.ErrInvalidCredentials
		}
		return domain.EndUserKey{}, err
	}
	if !key.IsActive {
		return domain.EndUserKey{}, domain.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(key.PasswordHash, p.Password); err != nil {
		return domain.EndUserKey{}, domain.ErrInvalidCredentials
	}
	now := s.nowFn()
	if key.Expired(now) {
		return domain.EndUserKey{}, domain.ErrSubscriptionExpired
	}

	if key.Binding.LockEnabled {
		presented := strings.TrimSpace(p.HardwareID)
		if !key.Binding.Accepts(presented) {
			return domain.EndUserKey{}, domain.ErrHardwareMismatch
		}
		if key.Binding.ID == "" && presented != "" {
			won, err := s.keys.BindHardware(ctx, key.KeyID, presented)
			if err != nil {
				return domain.EndUserKey{}, err
			}
			if !won {
				// Lost a first-login race; only the winner's identifier holds.
				bound, err := s.keys.GetByID(ctx, key.KeyID)
				if err != nil {
					return domain.EndUserKey{}, err
				}
				if !bound.Binding.Accepts(presented) {
					return domain.EndUserKey{}, domain.ErrHardwareMismatch
				}
				key = bound
			} else {
				key.Binding.ID = presented
			}
		}
	}

	if err := s.keys.RecordLogin(ctx, key.KeyID, p.IPAddress, now); err != nil {
		return domain.EndUserKey{}, err
	}
	key.LastLoginAt = &now
	key.LastLoginIP = p.IPAddress
	return key, nil
}

// Redeem claims a distributed, never-used license key for an end user,
// binding a username and password of their choosing. The claim is a
// conditional store update, so concurrent redemptions of one key admit a
// single winner.
func (s *Service) Redeem(ctx context.Context, p RedeemParams) (domain.EndUserKey, error) {
	if !p.App.IsActive {
		return domain.EndUserKey{}, domain.ErrInvalidApplication
	}
	username := strings.TrimSpace(p.Username)
	licenseKey := strings.TrimSpace(strings.ToUpper(p.LicenseKey))
	if username == "" || p.Password == "" || licenseKey == "" {
		return domain.EndUserKey{}, fmt.Errorf("%w: username, password and license key are required", domain.ErrInvalidInput)
	}

	key, err := s.keys.GetByKeyString(ctx, licenseKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.EndUserKey{}, domain.ErrInvalidKey
		}
		return domain.EndUserKey{}, err
	}
	if key.AppID != p.App.AppID || !key.IsActive {
		return domain.EndUserKey{}, domain.ErrInvalidKey
	}
	now := s.nowFn()
	if key.Expired(now) {
		return domain.EndUserKey{}, domain.ErrSubscriptionExpired
	}
	if key.Redeemed() || key.LastLoginAt != nil {
		return domain.EndUserKey{}, domain.ErrKeyAlreadyUsed
	}
	taken, err := s.keys.UsernameTaken(ctx, p.App.AppID, username)
	if err != nil {
		return domain.EndUserKey{}, err
	}
	if taken {
		return domain.EndUserKey{}, domain.ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(p.Password)
	if err != nil {
		return domain.EndUserKey{}, fmt.Errorf("hash password: %w", err)
	}
	hardwareID := ""
	if key.Binding.LockEnabled {
		hardwareID = strings.TrimSpace(p.HardwareID)
	}
	claimed, err := s.keys.Claim(ctx, key.KeyID, username, hash, hardwareID, now)
	if err != nil {
		return domain.EndUserKey{}, err
	}
	if !claimed {
		return domain.EndUserKey{}, domain.ErrKeyAlreadyUsed
	}

	key.Username = username
	key.PasswordHash = hash
	key.RedeemedAt = &now
	if key.Binding.LockEnabled {
		key.Binding.ID = hardwareID
	}
	s.enqueueAudit(ctx, "key.redeemed", key.AppID.String(), map[string]any{
		"app_id": key.AppID.String(),
		"key_id": key.KeyID.String(),
	})
	return key, nil
}

// ExtendKey lengthens a subscription by days. An unexpired key extends from
// its current expiry; an expired key restarts from now, so end users never
// pay for dead time.
func (s *Service) ExtendKey(ctx context.Context, actorID, keyID uuid.UUID, days int) (time.Time, error) {
	if days <= 0 {
		return time.Time{}, fmt.Errorf("%w: days must be positive", domain.ErrInvalidInput)
	}
	key, err := s.manageableKey(ctx, actorID, keyID)
	if err != nil {
		return time.Time{}, err
	}
	now := s.nowFn()
	base := key.Expiry
	if base.Before(now) {
		base = now
	}
	expiry := base.AddDate(0, 0, days)
	if err := s.keys.SetExpiry(ctx, keyID, expiry); err != nil {
		return time.Time{}, err
	}
	s.enqueueAudit(ctx, "key.extended", key.AppID.String(), map[string]any{
		"key_id": keyID.String(),
		"days":   days,
	})
	return expiry, nil
}

// BanKey disables a key immediately. All protocol surfaces report a banned
// key as invalid credentials.
func (s *Service) BanKey(ctx context.Context, actorID, keyID uuid.UUID) error {
	return s.setKeyActive(ctx, actorID, keyID, false)
}

// UnbanKey restores a banned key with its expiry and binding intact.
func (s *Service) UnbanKey(ctx context.Context, actorID, keyID uuid.UUID) error {
	return s.setKeyActive(ctx, actorID, keyID, true)
}

func (s *Service) setKeyActive(ctx context.Context, actorID, keyID uuid.UUID, active bool) error {
	key, err := s.manageableKey(ctx, actorID, keyID)
	if err != nil {
		return err
	}
	if err := s.keys.SetActive(ctx, keyID, active); err != nil {
		return err
	}
	event := "key.banned"
	if active {
		event = "key.unbanned"
	}
	s.enqueueAudit(ctx, event, key.AppID.String(), map[string]any{"key_id": keyID.String()})
	return nil
}

// ResetKeyHardware clears a captured machine identifier so the next locked
// login re-binds.
func (s *Service) ResetKeyHardware(ctx context.Context, actorID, keyID uuid.UUID) error {
	key, err := s.manageableKey(ctx, actorID, keyID)
	if err != nil {
		return err
	}
	if err := s.keys.ResetHardware(ctx, keyID); err != nil {
		return err
	}
	s.enqueueAudit(ctx, "key.hwid_reset", key.AppID.String(), map[string]any{"key_id": keyID.String()})
	return nil
}

// DeleteKey removes a key permanently. Spent provisioning credits are not
// refunded.
func (s *Service) DeleteKey(ctx context.Context, actorID, keyID uuid.UUID) error {
	if _, err := s.manageableKey(ctx, actorID, keyID); err != nil {
		return err
	}
	return s.keys.Delete(ctx, keyID)
}

// ListKeys returns keys visible to the actor: resellers see only keys they
// provisioned, everyone else sees the whole application.
func (s *Service) ListKeys(ctx context.Context, actorID uuid.UUID, appID *uuid.UUID) ([]KeyView, error) {
	actor, err := s.activeOperator(ctx, actorID)
	if err != nil {
		return nil, err
	}
	filter := ports.KeyFilter{AppID: appID}
	if actor.Role == domain.RoleReseller {
		filter.CreatedBy = &actor.AccountID
	}
	keys, err := s.keys.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]KeyView, 0, len(keys))
	for _, key := range keys {
		views = append(views, keyView(key))
	}
	return views, nil
}

// manageableKey loads a key and checks the actor may operate on it:
// superadmins always, application owners for their apps, resellers for
// keys they provisioned.
func (s *Service) manageableKey(ctx context.Context, actorID, keyID uuid.UUID) (domain.EndUserKey, error) {
	actor, err := s.activeOperator(ctx, actorID)
	if err != nil {
		return domain.EndUserKey{}, err
	}
	key, err := s.keys.GetByID(ctx, keyID)
	if err != nil {
		return domain.EndUserKey{}, err
	}
	if actor.Role == domain.RoleSuperadmin || key.CreatedBy == actor.AccountID {
		return key, nil
	}
	app, err := s.apps.GetByID(ctx, key.AppID)
	if err != nil {
		return domain.EndUserKey{}, err
	}
	if app.OwnerID != actor.AccountID {
		return domain.EndUserKey{}, domain.ErrUnauthorized
	}
	return key, nil
}

func keyView(key domain.EndUserKey) KeyView {
	return KeyView{
		KeyID:        key.KeyID,
		Key:          key.Key,
		Username:     key.Username,
		AppID:        key.AppID,
		PackageID:    key.PackageID,
		HardwareLock: key.Binding.LockEnabled,
		HardwareID:   key.Binding.ID,
		Expiry:       key.Expiry,
		IsActive:     key.IsActive,
		CreatedAt:    key.CreatedAt,
		RedeemedAt:   key.RedeemedAt,
		LastLoginAt:  key.LastLoginAt,
		LastLoginIP:  key.LastLoginIP,
	}
}
