package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/domain"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/ports"
)

// Setup bootstraps the very first superadmin. It only works while the
// operator table is empty; afterwards the endpoint is a hard conflict so a
// deployed instance cannot be re-seized.
func (s *Service) Setup(ctx context.Context, req SetupRequest) (OperatorLoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return OperatorLoginResponse{}, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}
	count, err := s.accounts.Count(ctx)
	if err != nil {
		return OperatorLoginResponse{}, err
	}
	if count > 0 {
		return OperatorLoginResponse{}, fmt.Errorf("%w: setup already completed", domain.ErrConflict)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return OperatorLoginResponse{}, fmt.Errorf("hash password: %w", err)
	}
	account, err := s.accounts.Create(ctx, ports.AccountCreateParams{
		Username:     username,
		PasswordHash: hash,
		Email:        strings.TrimSpace(req.Email),
		Role:         domain.RoleSuperadmin,
		CreatedAt:    s.nowFn(),
	})
	if err != nil {
		return OperatorLoginResponse{}, err
	}
	s.enqueueAudit(ctx, "operator.setup", account.AccountID.String(), map[string]any{
		"account_id": account.AccountID.String(),
		"username":   account.Username,
	})
	return s.issueToken(account)
}

// OperatorLogin authenticates a dashboard operator and issues an API token.
func (s *Service) OperatorLogin(ctx context.Context, req OperatorLoginRequest) (OperatorLoginResponse, error) {
	account, err := s.accounts.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return OperatorLoginResponse{}, domain.ErrInvalidCredentials
		}
		return OperatorLoginResponse{}, err
	}
	if !account.IsActive {
		return OperatorLoginResponse{}, domain.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(account.PasswordHash, req.Password); err != nil {
		return OperatorLoginResponse{}, domain.ErrInvalidCredentials
	}
	if err := s.accounts.RecordLogin(ctx, account.AccountID, req.IPAddress, s.nowFn()); err != nil {
		return OperatorLoginResponse{}, err
	}
	return s.issueToken(account)
}

func (s *Service) issueToken(account domain.OperatorAccount) (OperatorLoginResponse, error) {
	now := s.nowFn()
	token, err := s.tokenSigner.Sign(ports.OperatorClaims{
		AccountID: account.AccountID,
		Username:  account.Username,
		Role:      string(account.Role),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.TokenTTL),
	})
	if err != nil {
		return OperatorLoginResponse{}, fmt.Errorf("sign token: %w", err)
	}
	return OperatorLoginResponse{
		Token:     token,
		AccountID: account.AccountID,
		Username:  account.Username,
		Role:      string(account.Role),
		ExpiresIn: int64(s.cfg.TokenTTL.Seconds()),
	}, nil
}

// ValidateOperatorToken parses a dashboard API token and confirms the
// account behind it still exists and is active.
func (s *Service) ValidateOperatorToken(ctx context.Context, token string) (ports.OperatorClaims, error) {
	claims, err := s.tokenSigner.ParseAndValidate(token)
	if err != nil {
		return ports.OperatorClaims{}, domain.ErrUnauthorized
	}
	account, err := s.accounts.GetByID(ctx, claims.AccountID)
	if err != nil || !account.IsActive {
		return ports.OperatorClaims{}, domain.ErrUnauthorized
	}
	return claims, nil
}

// PublicJWKs exposes token verification keys for internal consumers.
func (s *Service) PublicJWKs() ([]map[string]any, error) {
	return s.tokenSigner.PublicJWKs()
}

// activeOperator loads an operator and rejects disabled accounts.
func (s *Service) activeOperator(ctx context.Context, accountID uuid.UUID) (domain.OperatorAccount, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return domain.OperatorAccount{}, err
	}
	if !account.IsActive {
		return domain.OperatorAccount{}, domain.ErrUnauthorized
	}
	return account, nil
}

// CreateOperator creates a subordinate account. Superadmins create admins
// and resellers; admins create resellers. Starting credits for a finite
// tier come out of the creator's balance via the ledger transfer rules.
func (s *Service) CreateOperator(ctx context.Context, actorID uuid.UUID, req CreateOperatorRequest) (OperatorView, error) {
	actor, err := s.activeOperator(ctx, actorID)
	if err != nil {
		return OperatorView{}, err
	}
	role := domain.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	if !role.Valid() {
		return OperatorView{}, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, req.Role)
	}
	if !actor.Role.CanCreate(role) {
		return OperatorView{}, domain.ErrUnauthorized
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return OperatorView{}, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}
	if req.Credits < 0 {
		return OperatorView{}, fmt.Errorf("%w: credits cannot be negative", domain.ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return OperatorView{}, fmt.Errorf("hash password: %w", err)
	}
	createdBy := actor.AccountID
	account, err := s.accounts.Create(ctx, ports.AccountCreateParams{
		Username:     username,
		PasswordHash: hash,
		Email:        strings.TrimSpace(req.Email),
		Role:         role,
		CreatedBy:    &createdBy,
		CreatedAt:    s.nowFn(),
	})
	if err != nil {
		return OperatorView{}, err
	}

	if req.Credits > 0 {
		if err := s.Transfer(ctx, actor.AccountID, account.AccountID, req.Credits); err != nil {
			return OperatorView{}, err
		}
		account.Credits = req.Credits
	}
	s.enqueueAudit(ctx, "operator.created", account.AccountID.String(), map[string]any{
		"account_id": account.AccountID.String(),
		"username":   account.Username,
		"role":       string(account.Role),
		"created_by": actor.AccountID.String(),
	})
	return operatorView(account), nil
}

// ListOperators returns accounts, optionally filtered by role. Only
// superadmins see the full roster; admins see resellers.
func (s *Service) ListOperators(ctx context.Context, actorID uuid.UUID, role domain.Role) ([]OperatorView, error) {
	actor, err := s.activeOperator(ctx, actorID)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case domain.RoleSuperadmin:
	case domain.RoleAdmin:
		role = domain.RoleReseller
	default:
		return nil, domain.ErrUnauthorized
	}
	accounts, err := s.accounts.List(ctx, role)
	if err != nil {
		return nil, err
	}
	views := make([]OperatorView, 0, len(accounts))
	for _, account := range accounts {
		views = append(views, operatorView(account))
	}
	return views, nil
}

// ToggleOperator enables or disables an account. Superadmins cannot be
// disabled through this path and nobody disables themselves.
func (s *Service) ToggleOperator(ctx context.Context, actorID, accountID uuid.UUID, active bool) error {
	actor, err := s.activeOperator(ctx, actorID)
	if err != nil {
		return err
	}
	if actor.Role != domain.RoleSuperadmin && actor.Role != domain.RoleAdmin {
		return domain.ErrUnauthorized
	}
	if actorID == accountID {
		return fmt.Errorf("%w: cannot change own active state", domain.ErrInvalidInput)
	}
	target, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if target.Role == domain.RoleSuperadmin {
		return domain.ErrUnauthorized
	}
	return s.accounts.SetActive(ctx, accountID, active)
}

// DeleteOperator removes an account permanently. Superadmin accounts and
// self-deletion are refused.
func (s *Service) DeleteOperator(ctx context.Context, actorID, accountID uuid.UUID) error {
	actor, err := s.activeOperator(ctx, actorID)
	if err != nil {
		return err
	}
	if actor.Role != domain.RoleSuperadmin {
		return domain.ErrUnauthorized
	}
	if actorID == accountID {
		return fmt.Errorf("%w: cannot delete own account", domain.ErrInvalidInput)
	}
	target, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if target.Role == domain.RoleSuperadmin {
		return domain.ErrUnauthorized
	}
	return s.accounts.Delete(ctx, accountID)
}

// IssueCredits grants credits from the unlimited pool. Superadmin only;
// everyone else funds subordinates through transfers.
func (s *Service) IssueCredits(ctx context.Context, actorID, accountID uuid.UUID, amount int64) error {
	actor, err := s.activeOperator(ctx, actorID)
	if err != nil {
		return err
	}
	if actor.Role != domain.RoleSuperadmin {
		return domain.ErrUnauthorized
	}
	return s.Credit(ctx, accountID, amount)
}

// TransferCredits moves credits from the actor to another operator.
func (s *Service) TransferCredits(ctx context.Context, actorID, toID uuid.UUID, amount int64) error {
	if _, err := s.activeOperator(ctx, actorID); err != nil {
		return err
	}
	return s.Transfer(ctx, actorID, toID, amount)
}

// CreateApplication registers a tenant application with a fresh secret.
func (s *Service) CreateApplication(ctx context.Context, actorID uuid.UUID, req CreateApplicationRequest) (ApplicationView, error) {
	actor, err := s.activeOperator(ctx, actorID)
	if err != nil {
		return ApplicationView{}, err
	}
	if actor.Role == domain.RoleReseller {
		return ApplicationView{}, domain.ErrUnauthorized
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return ApplicationView{}, fmt.Errorf("%w: application name is required", domain.ErrInvalidInput)
	}
	app, err := s.apps.Create(ctx, ports.ApplicationCreateParams{
		Name:      name,
		Secret:    domain.NewAppSecret(),
		OwnerID:   actor.AccountID,
		Version:   strings.TrimSpace(req.Version),
		CreatedAt: s.nowFn(),
	})
	if err != nil {
		return ApplicationView{}, err
	}
	s.enqueueAudit(ctx, "application.created", app.AppID.String(), map[string]any{
		"app_id":   app.AppID.String(),
		"owner_id": actor.AccountID.String(),
		"name":     app.Name,
	})
	return applicationView(app), nil
}

// ListApplications returns the actor's applications, or all of them for a
// superadmin.
func (s *Service) ListApplications(ctx context.Context, actorID uuid.UUID) ([]ApplicationView, error) {
	actor, err := s.activeOperator(ctx, actorID)
	if err != nil {
		return nil, err
	}
	var owner *uuid.UUID
	if actor.Role != domain.RoleSuperadmin {
		owner = &actor.AccountID
	}
	apps, err := s.apps.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	views := make([]ApplicationView, 0, len(apps))
	for _, app := range apps {
		views = append(views, applicationView(app))
	}
	return views, nil
}

// ToggleApplication pauses or resumes a tenant. A paused application fails
// every client protocol call, including already-initialized sessions.
func (s *Service) ToggleApplication(ctx context.Context, actorID, appID uuid.UUID, active bool) error {
	if _, err := s.ownedApplication(ctx, actorID, appID); err != nil {
		return err
	}
	return s.apps.SetActive(ctx, appID, active)
}

// DeleteApplication removes a tenant and everything scoped to it.
func (s *Service) DeleteApplication(ctx context.Context, actorID, appID uuid.UUID) error {
	app, err := s.ownedApplication(ctx, actorID, appID)
	if err != nil {
		return err
	}
	if err := s.apps.Delete(ctx, appID); err != nil {
		return err
	}
	s.enqueueAudit(ctx, "application.deleted", appID.String(), map[string]any{
		"app_id": appID.String(),
		"name":   app.Name,
	})
	return nil
}

// CreatePackage adds a duration template to an application.
func (s *Service) CreatePackage(ctx context.Context, actorID uuid.UUID, req CreatePackageRequest) (PackageView, error) {
	actor, err := s.activeOperator(ctx, actorID)
	if err != nil {
		return PackageView{}, err
	}
	if _, err := s.ownedApplication(ctx, actorID, req.AppID); err != nil {
		return PackageView{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || req.DurationDays <= 0 {
		return PackageView{}, fmt.Errorf("%w: package name and a positive duration are required", domain.ErrInvalidInput)
	}
	pkg, err := s.packages.Create(ctx, ports.PackageCreateParams{
		Name:         name,
		DurationDays: req.DurationDays,
		AppID:        req.AppID,
		CreatedBy:    actor.AccountID,
		CreatedAt:    s.nowFn(),
	})
	if err != nil {
		return PackageView{}, err
	}
	return packageView(pkg), nil
}

// ListPackages returns the duration templates of one application.
func (s *Service) ListPackages(ctx context.Context, actorID, appID uuid.UUID) ([]PackageView, error) {
	actor, err := s.activeOperator(ctx, actorID)
	if err != nil {
		return nil, err
	}
	// Resellers list packages to pick one for provisioning; visibility is
	// limited to their assignments.
	pkgs, err := s.packages.List(ctx, appID)
	if err != nil {
		return nil, err
	}
	views := make([]PackageView, 0, len(pkgs))
	for _, pkg := range pkgs {
		if !actor.CanUsePackage(pkg.PackageID) {
			continue
		}
		views = append(views, packageView(pkg))
	}
	return views, nil
}

// DeletePackage removes a duration template. Existing keys keep the expiry
// they were minted with.
func (s *Service) DeletePackage(ctx context.Context, actorID, packageID uuid.UUID) error {
	pkg, err := s.packages.GetByID(ctx, packageID)
	if err != nil {
		return err
	}
	if _, err := s.ownedApplication(ctx, actorID, pkg.AppID); err != nil {
		return err
	}
	return s.packages.Delete(ctx, packageID)
}

// AssignPackage entitles a reseller to provision against a package.
func (s *Service) AssignPackage(ctx context.Context, actorID, resellerID, packageID uuid.UUID) error {
	pkg, err := s.packages.GetByID(ctx, packageID)
	if err != nil {
		return err
	}
	if _, err := s.ownedApplication(ctx, actorID, pkg.AppID); err != nil {
		return err
	}
	reseller, err := s.accounts.GetByID(ctx, resellerID)
	if err != nil {
		return err
	}
	if reseller.Role != domain.RoleReseller {
		return fmt.Errorf("%w: packages are assigned to resellers only", domain.ErrInvalidInput)
	}
	return s.accounts.AssignPackage(ctx, resellerID, packageID)
}

// UnassignPackage revokes a reseller entitlement. Keys already minted
// under it are unaffected.
func (s *Service) UnassignPackage(ctx context.Context, actorID, resellerID, packageID uuid.UUID) error {
	pkg, err := s.packages.GetByID(ctx, packageID)
	if err != nil {
		return err
	}
	if _, err := s.ownedApplication(ctx, actorID, pkg.AppID); err != nil {
		return err
	}
	return s.accounts.UnassignPackage(ctx, resellerID, packageID)
}

// Stats summarizes the actor's slice of the system.
func (s *Service) Stats(ctx context.Context, actorID uuid.UUID) (StatsView, error) {
	actor, err := s.activeOperator(ctx, actorID)
	if err != nil {
		return StatsView{}, err
	}

	var stats StatsView
	if actor.Role == domain.RoleSuperadmin {
		if stats.Operators, err = s.accounts.Count(ctx); err != nil {
			return StatsView{}, err
		}
	}

	var owner *uuid.UUID
	if actor.Role != domain.RoleSuperadmin {
		owner = &actor.AccountID
	}
	apps, err := s.apps.List(ctx, owner)
	if err != nil {
		return StatsView{}, err
	}
	stats.Applications = int64(len(apps))

	filter := ports.KeyFilter{}
	if actor.Role == domain.RoleReseller {
		filter.CreatedBy = &actor.AccountID
	}
	if actor.Role == domain.RoleReseller || actor.Role == domain.RoleSuperadmin {
		if stats.Keys, err = s.keys.Count(ctx, filter); err != nil {
			return StatsView{}, err
		}
	} else {
		for _, app := range apps {
			appID := app.AppID
			n, err := s.keys.Count(ctx, ports.KeyFilter{AppID: &appID})
			if err != nil {
				return StatsView{}, err
			}
			stats.Keys += n
		}
	}

	for _, app := range apps {
		n, err := s.keys.CountRedeemed(ctx, app.AppID)
		if err != nil {
			return StatsView{}, err
		}
		stats.Users += n
	}
	return stats, nil
}

// ownedApplication checks the actor owns the application or is superadmin.
func (s *Service) ownedApplication(ctx context.Context, actorID, appID uuid.UUID) (domain.Application, error) {
	actor, err := s.activeOperator(ctx, actorID)
	if err != nil {
		return domain.Application{}, err
	}
	app, err := s.apps.GetByID(ctx, appID)
	if err != nil {
		return domain.Application{}, err
	}
	if actor.Role != domain.RoleSuperadmin && app.OwnerID != actor.AccountID {
		return domain.Application{}, domain.ErrUnauthorized
	}
	return app, nil
}

func operatorView(account domain.OperatorAccount) OperatorView {
	return OperatorView{
		AccountID: account.AccountID,
		Username:  account.Username,
		Email:     account.Email,
		Role:      string(account.Role),
		Credits: CreditBalance{
			Unlimited: account.Role.UnlimitedCredits(),
			Amount:    account.Credits,
		},
		IsActive:    account.IsActive,
		CreatedAt:   account.CreatedAt,
		LastLoginAt: account.LastLoginAt,
		LastLoginIP: account.LastLoginIP,
	}
}

func applicationView(app domain.Application) ApplicationView {
	return ApplicationView{
		AppID:     app.AppID,
		Name:      app.Name,
		Secret:    app.Secret,
		OwnerID:   app.OwnerID,
		Version:   app.Version,
		IsActive:  app.IsActive,
		CreatedAt: app.CreatedAt,
	}
}

func packageView(pkg domain.Package) PackageView {
	return PackageView{
		PackageID:    pkg.PackageID,
		Name:         pkg.Name,
		DurationDays: pkg.DurationDays,
		AppID:        pkg.AppID,
		CreatedAt:    pkg.CreatedAt,
	}
}
