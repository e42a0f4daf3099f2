package application_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/application"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/domain"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/ports"
)

type fixture struct {
	service  *application.Service
	accounts *fakeAccounts
	apps     *fakeApps
	packages *fakePackages
	keys     *fakeKeys
	vars     *fakeVars
	outbox   *fakeOutbox
	sessions *fakeSessions
	presence *fakePresence
}

func defaultTestConfig() application.Config {
	return application.Config{
		TokenTTL:    24 * time.Hour,
		SessionTTL:  time.Hour,
		MaxBatch:    100,
		KeyRetryMax: 5,
	}
}

func newFixture() *fixture {
	accounts := &fakeAccounts{byID: map[uuid.UUID]domain.OperatorAccount{}}
	apps := &fakeApps{byID: map[uuid.UUID]domain.Application{}}
	packages := &fakePackages{byID: map[uuid.UUID]domain.Package{}}
	keys := &fakeKeys{byID: map[uuid.UUID]domain.EndUserKey{}}
	vars := &fakeVars{items: map[string]string{}}
	outbox := &fakeOutbox{}
	sessions := &fakeSessions{byID: map[string]domain.Session{}}
	presence := &fakePresence{online: map[uuid.UUID]map[string]time.Time{}}

	svc := application.NewService(application.Dependencies{
		Config:       defaultTestConfig(),
		Accounts:     accounts,
		Applications: apps,
		Packages:     packages,
		Keys:         keys,
		Vars:         vars,
		Outbox:       outbox,
		Sessions:     sessions,
		Presence:     presence,
		Hasher:       &fakeHasher{},
		TokenSigner:  &fakeSigner{tokens: map[string]ports.OperatorClaims{}},
	})

	return &fixture{
		service:  svc,
		accounts: accounts,
		apps:     apps,
		packages: packages,
		keys:     keys,
		vars:     vars,
		outbox:   outbox,
		sessions: sessions,
		presence: presence,
	}
}

// seedTenant bootstraps a superadmin, one application and one package via
// the same use-cases operators call, returning their identifiers.
func (f *fixture) seedTenant(ctx context.Context) (root uuid.UUID, app application.ApplicationView, pkg application.PackageView, err error) {
	setupRes, err := f.service.Setup(ctx, application.SetupRequest{Username: "root", Password: "root-pass"})
	if err != nil {
		return uuid.Nil, application.ApplicationView{}, application.PackageView{}, err
	}
	root = setupRes.AccountID
	app, err = f.service.CreateApplication(ctx, root, application.CreateApplicationRequest{Name: "loader", Version: "1.0"})
	if err != nil {
		return uuid.Nil, application.ApplicationView{}, application.PackageView{}, err
	}
	pkg, err = f.service.CreatePackage(ctx, root, application.CreatePackageRequest{
		AppID:        app.AppID,
		Name:         "monthly",
		DurationDays: 30,
	})
	if err != nil {
		return uuid.Nil, application.ApplicationView{}, application.PackageView{}, err
	}
	return root, app, pkg, nil
}

func keyFilterForApp(appID uuid.UUID) ports.KeyFilter {
	return ports.KeyFilter{AppID: &appID}
}

type fakeAccounts struct {
	mu   sync.Mutex
	byID map[uuid.UUID]domain.OperatorAccount
}

func (f *fakeAccounts) Create(_ context.Context, params ports.AccountCreateParams) (domain.OperatorAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.Username == params.Username {
			return domain.OperatorAccount{}, domain.ErrConflict
		}
	}
	account := domain.OperatorAccount{
		AccountID:    uuid.New(),
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
		Email:        params.Email,
		Role:         params.Role,
		Credits:      params.Credits,
		CreatedBy:    params.CreatedBy,
		IsActive:     true,
		CreatedAt:    params.CreatedAt,
	}
	f.byID[account.AccountID] = account
	return account, nil
}

func (f *fakeAccounts) GetByID(_ context.Context, accountID uuid.UUID) (domain.OperatorAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.byID[accountID]
	if !ok {
		return domain.OperatorAccount{}, domain.ErrNotFound
	}
	return account, nil
}

func (f *fakeAccounts) GetByUsername(_ context.Context, username string) (domain.OperatorAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.byID {
		if account.Username == username {
			return account, nil
		}
	}
	return domain.OperatorAccount{}, domain.ErrNotFound
}

func (f *fakeAccounts) List(_ context.Context, role domain.Role) ([]domain.OperatorAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.OperatorAccount, 0, len(f.byID))
	for _, account := range f.byID {
		if role != "" && account.Role != role {
			continue
		}
		out = append(out, account)
	}
	return out, nil
}

func (f *fakeAccounts) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.byID)), nil
}

func (f *fakeAccounts) SetActive(_ context.Context, accountID uuid.UUID, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.byID[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	account.IsActive = active
	f.byID[accountID] = account
	return nil
}

func (f *fakeAccounts) RecordLogin(_ context.Context, accountID uuid.UUID, ip string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.byID[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	account.LastLoginIP = ip
	account.LastLoginAt = &at
	f.byID[accountID] = account
	return nil
}

func (f *fakeAccounts) Delete(_ context.Context, accountID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[accountID]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, accountID)
	return nil
}

func (f *fakeAccounts) AddCredits(_ context.Context, accountID uuid.UUID, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.byID[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	account.Credits += amount
	f.byID[accountID] = account
	return nil
}

func (f *fakeAccounts) DebitCredits(_ context.Context, accountID uuid.UUID, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.byID[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	if account.Credits < amount {
		return domain.ErrInsufficientCredits
	}
	account.Credits -= amount
	f.byID[accountID] = account
	return nil
}

func (f *fakeAccounts) AssignPackage(_ context.Context, accountID, packageID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.byID[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, id := range account.AssignedPackages {
		if id == packageID {
			return nil
		}
	}
	account.AssignedPackages = append(account.AssignedPackages, packageID)
	f.byID[accountID] = account
	return nil
}

func (f *fakeAccounts) UnassignPackage(_ context.Context, accountID, packageID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.byID[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	kept := account.AssignedPackages[:0]
	for _, id := range account.AssignedPackages {
		if id != packageID {
			kept = append(kept, id)
		}
	}
	account.AssignedPackages = kept
	f.byID[accountID] = account
	return nil
}

type fakeApps struct {
	mu   sync.Mutex
	byID map[uuid.UUID]domain.Application
}

func (f *fakeApps) Create(_ context.Context, params ports.ApplicationCreateParams) (domain.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, app := range f.byID {
		if app.OwnerID == params.OwnerID && app.Name == params.Name {
			return domain.Application{}, domain.ErrConflict
		}
	}
	app := domain.Application{
		AppID:     uuid.New(),
		Name:      params.Name,
		Secret:    params.Secret,
		OwnerID:   params.OwnerID,
		Version:   params.Version,
		IsActive:  true,
		CreatedAt: params.CreatedAt,
	}
	f.byID[app.AppID] = app
	return app, nil
}

func (f *fakeApps) GetByID(_ context.Context, appID uuid.UUID) (domain.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.byID[appID]
	if !ok {
		return domain.Application{}, domain.ErrNotFound
	}
	return app, nil
}

func (f *fakeApps) GetBySecret(_ context.Context, secret string) (domain.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, app := range f.byID {
		if app.Secret == secret {
			return app, nil
		}
	}
	return domain.Application{}, domain.ErrNotFound
}

func (f *fakeApps) GetByNameOwner(_ context.Context, name string, ownerID uuid.UUID) (domain.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, app := range f.byID {
		if app.Name == name && app.OwnerID == ownerID {
			return app, nil
		}
	}
	return domain.Application{}, domain.ErrNotFound
}

func (f *fakeApps) List(_ context.Context, ownerID *uuid.UUID) ([]domain.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Application, 0, len(f.byID))
	for _, app := range f.byID {
		if ownerID != nil && app.OwnerID != *ownerID {
			continue
		}
		out = append(out, app)
	}
	return out, nil
}

func (f *fakeApps) SetActive(_ context.Context, appID uuid.UUID, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.byID[appID]
	if !ok {
		return domain.ErrNotFound
	}
	app.IsActive = active
	f.byID[appID] = app
	return nil
}

func (f *fakeApps) Delete(_ context.Context, appID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[appID]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, appID)
	return nil
}

type fakePackages struct {
	mu   sync.Mutex
	byID map[uuid.UUID]domain.Package
}

func (f *fakePackages) Create(_ context.Context, params ports.PackageCreateParams) (domain.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pkg := domain.Package{
		PackageID:    uuid.New(),
		Name:         params.Name,
		DurationDays: params.DurationDays,
		AppID:        params.AppID,
		CreatedBy:    params.CreatedBy,
		CreatedAt:    params.CreatedAt,
	}
	f.byID[pkg.PackageID] = pkg
	return pkg, nil
}

func (f *fakePackages) GetByID(_ context.Context, packageID uuid.UUID) (domain.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pkg, ok := f.byID[packageID]
	if !ok {
		return domain.Package{}, domain.ErrNotFound
	}
	return pkg, nil
}

func (f *fakePackages) List(_ context.Context, appID uuid.UUID) ([]domain.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Package, 0, len(f.byID))
	for _, pkg := range f.byID {
		if pkg.AppID == appID {
			out = append(out, pkg)
		}
	}
	return out, nil
}

func (f *fakePackages) Delete(_ context.Context, packageID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[packageID]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, packageID)
	return nil
}

type fakeKeys struct {
	mu   sync.Mutex
	byID map[uuid.UUID]domain.EndUserKey
}

func (f *fakeKeys) Insert(_ context.Context, key domain.EndUserKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Key == key.Key {
			return domain.ErrKeyExists
		}
	}
	f.byID[key.KeyID] = key
	return nil
}

func (f *fakeKeys) GetByID(_ context.Context, keyID uuid.UUID) (domain.EndUserKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key, ok := f.byID[keyID]
	if !ok {
		return domain.EndUserKey{}, domain.ErrNotFound
	}
	return key, nil
}

func (f *fakeKeys) GetByKeyString(_ context.Context, keyString string) (domain.EndUserKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range f.byID {
		if key.Key == keyString {
			return key, nil
		}
	}
	return domain.EndUserKey{}, domain.ErrNotFound
}

func (f *fakeKeys) GetByLogin(_ context.Context, appID uuid.UUID, login string) (domain.EndUserKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range f.byID {
		if key.AppID != appID {
			continue
		}
		if key.Key == login || (key.Username != "" && key.Username == login) {
			return key, nil
		}
	}
	return domain.EndUserKey{}, domain.ErrNotFound
}

func (f *fakeKeys) List(_ context.Context, filter ports.KeyFilter) ([]domain.EndUserKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.EndUserKey, 0, len(f.byID))
	for _, key := range f.byID {
		if filter.AppID != nil && key.AppID != *filter.AppID {
			continue
		}
		if filter.CreatedBy != nil && key.CreatedBy != *filter.CreatedBy {
			continue
		}
		out = append(out, key)
	}
	return out, nil
}

func (f *fakeKeys) Count(ctx context.Context, filter ports.KeyFilter) (int64, error) {
	keys, err := f.List(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(keys)), nil
}

func (f *fakeKeys) CountRedeemed(_ context.Context, appID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, key := range f.byID {
		if key.AppID == appID && key.Username != "" {
			n++
		}
	}
	return n, nil
}

func (f *fakeKeys) UsernameTaken(_ context.Context, appID uuid.UUID, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range f.byID {
		if key.AppID != appID {
			continue
		}
		if key.Username == username || key.Key == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeKeys) Claim(_ context.Context, keyID uuid.UUID, username, passwordHash, hardwareID string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key, ok := f.byID[keyID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if key.Username != "" || key.RedeemedAt != nil {
		return false, nil
	}
	key.Username = username
	key.PasswordHash = passwordHash
	key.Binding.ID = hardwareID
	key.RedeemedAt = &at
	f.byID[keyID] = key
	return true, nil
}

func (f *fakeKeys) BindHardware(_ context.Context, keyID uuid.UUID, hardwareID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key, ok := f.byID[keyID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if key.Binding.ID != "" {
		return false, nil
	}
	key.Binding.ID = hardwareID
	f.byID[keyID] = key
	return true, nil
}

func (f *fakeKeys) ResetHardware(_ context.Context, keyID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key, ok := f.byID[keyID]
	if !ok {
		return domain.ErrNotFound
	}
	key.Binding.ID = ""
	f.byID[keyID] = key
	return nil
}

func (f *fakeKeys) SetExpiry(_ context.Context, keyID uuid.UUID, expiry time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key, ok := f.byID[keyID]
	if !ok {
		return domain.ErrNotFound
	}
	key.Expiry = expiry
	f.byID[keyID] = key
	return nil
}

func (f *fakeKeys) SetActive(_ context.Context, keyID uuid.UUID, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key, ok := f.byID[keyID]
	if !ok {
		return domain.ErrNotFound
	}
	key.IsActive = active
	f.byID[keyID] = key
	return nil
}

func (f *fakeKeys) RecordLogin(_ context.Context, keyID uuid.UUID, ip string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key, ok := f.byID[keyID]
	if !ok {
		return domain.ErrNotFound
	}
	key.LastLoginIP = ip
	key.LastLoginAt = &at
	f.byID[keyID] = key
	return nil
}

func (f *fakeKeys) Delete(_ context.Context, keyID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[keyID]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, keyID)
	return nil
}

type fakeVars struct {
	mu    sync.Mutex
	items map[string]string
}

func varKey(appID uuid.UUID, varID string) string {
	return appID.String() + "/" + varID
}

func (f *fakeVars) Upsert(_ context.Context, appID uuid.UUID, varID, data string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[varKey(appID, varID)] = data
	return nil
}

func (f *fakeVars) Get(_ context.Context, appID uuid.UUID, varID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.items[varKey(appID, varID)]
	if !ok {
		return "", domain.ErrNotFound
	}
	return data, nil
}

func (f *fakeVars) List(_ context.Context, appID uuid.UUID) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]string{}
	prefix := appID.String() + "/"
	for k, v := range f.items {
		if strings.HasPrefix(k, prefix) {
			out[strings.TrimPrefix(k, prefix)] = v
		}
	}
	return out, nil
}

func (f *fakeVars) Delete(_ context.Context, appID uuid.UUID, varID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, varKey(appID, varID))
	return nil
}

type fakeOutbox struct {
	mu      sync.Mutex
	records []ports.OutboxRecord
}

func (f *fakeOutbox) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, ports.OutboxRecord{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      event.Payload,
		CreatedAt:    event.OccurredAt,
	})
	return nil
}

func (f *fakeOutbox) ClaimUnpublished(_ context.Context, limit int, claimToken string, claimUntil time.Time) ([]ports.OutboxRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ports.OutboxRecord, 0, limit)
	for i := range f.records {
		if len(out) == limit {
			break
		}
		r := &f.records[i]
		if r.PublishedAt != nil || r.DeadLetteredAt != nil || r.ClaimToken != nil {
			continue
		}
		token := claimToken
		until := claimUntil
		r.ClaimToken = &token
		r.ClaimUntil = &until
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeOutbox) MarkPublished(_ context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error {
	return f.mark(outboxID, claimToken, func(r *ports.OutboxRecord) {
		r.PublishedAt = &at
		r.ClaimToken = nil
		r.ClaimUntil = nil
	})
}

func (f *fakeOutbox) MarkFailed(_ context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error {
	return f.mark(outboxID, claimToken, func(r *ports.OutboxRecord) {
		r.RetryCount++
		r.LastError = &errMsg
		r.LastErrorAt = &at
		r.ClaimToken = nil
		r.ClaimUntil = nil
	})
}

func (f *fakeOutbox) MarkDeadLettered(_ context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error {
	return f.mark(outboxID, claimToken, func(r *ports.OutboxRecord) {
		r.LastError = &errMsg
		r.DeadLetteredAt = &at
		r.ClaimToken = nil
		r.ClaimUntil = nil
	})
}

func (f *fakeOutbox) mark(outboxID uuid.UUID, claimToken string, apply func(*ports.OutboxRecord)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		r := &f.records[i]
		if r.OutboxID != outboxID {
			continue
		}
		if r.ClaimToken == nil || *r.ClaimToken != claimToken {
			return domain.ErrNotFound
		}
		apply(r)
		return nil
	}
	return domain.ErrNotFound
}

func (f *fakeOutbox) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]string, 0, len(f.records))
	for _, r := range f.records {
		types = append(types, r.EventType)
	}
	return types
}

type fakeSessions struct {
	mu   sync.Mutex
	byID map[string]domain.Session
}

func (f *fakeSessions) Put(_ context.Context, session domain.Session, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[session.SessionID] = session
	return nil
}

func (f *fakeSessions) Get(_ context.Context, sessionID string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.byID[sessionID]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (f *fakeSessions) Delete(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, sessionID)
	return nil
}

type fakePresence struct {
	mu     sync.Mutex
	online map[uuid.UUID]map[string]time.Time
}

func (f *fakePresence) Track(_ context.Context, appID uuid.UUID, sessionID string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.online[appID] == nil {
		f.online[appID] = map[string]time.Time{}
	}
	f.online[appID][sessionID] = expiresAt
	return nil
}

func (f *fakePresence) CountOnline(_ context.Context, appID uuid.UUID, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, expiresAt := range f.online[appID] {
		if expiresAt.After(now) {
			n++
		}
	}
	return n, nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("hash mismatch")
	}
	return nil
}

type fakeSigner struct {
	mu     sync.Mutex
	seq    int
	tokens map[string]ports.OperatorClaims
}

func (f *fakeSigner) Sign(claims ports.OperatorClaims) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	token := fmt.Sprintf("token-%d", f.seq)
	f.tokens[token] = claims
	return token, nil
}

func (f *fakeSigner) ParseAndValidate(token string) (ports.OperatorClaims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	claims, ok := f.tokens[token]
	if !ok {
		return ports.OperatorClaims{}, errors.New("unknown token")
	}
	return claims, nil
}

func (f *fakeSigner) PublicJWKs() ([]map[string]any, error) {
	return []map[string]any{}, nil
}
