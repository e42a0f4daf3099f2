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

// InitSession opens a client protocol session. The application resolves by
// secret when one is presented, otherwise by name plus owner; a version
// mismatch is still answered under the resolved application's secret so
// the client can verify the rejection.
func (s *Service) InitSession(ctx context.Context, p InitParams) (InitResult, error) {
	app, err := s.resolveApp(ctx, p)
	if err != nil {
		return InitResult{}, err
	}

	// An application with a stored version enforces it unconditionally: an
	// omitted declared version counts as a mismatch, otherwise an outdated
	// client could dodge the forced-update rejection by sending nothing.
	if app.Version != "" && p.Version != app.Version {
		return InitResult{VersionMismatch: true, AppSecret: app.Secret}, nil
	}

	now := s.nowFn()
	session := domain.Session{
		SessionID: domain.NewSessionID(),
		AppID:     app.AppID,
		SentKey:   p.SentKey,
		CreatedAt: now,
	}
	if err := s.sessions.Put(ctx, session, s.cfg.SessionTTL); err != nil {
		return InitResult{}, err
	}
	if s.presence != nil {
		_ = s.presence.Track(ctx, app.AppID, session.SessionID, now.Add(s.cfg.SessionTTL))
	}

	info, err := s.appInfo(ctx, app)
	if err != nil {
		return InitResult{}, err
	}
	return InitResult{
		Session:   session,
		AppInfo:   info,
		AppSecret: app.Secret,
	}, nil
}

func (s *Service) resolveApp(ctx context.Context, p InitParams) (domain.Application, error) {
	var (
		app domain.Application
		err error
	)
	switch {
	case p.Secret != "":
		app, err = s.apps.GetBySecret(ctx, p.Secret)
	case p.AppName != "" && p.OwnerID != "":
		ownerID, parseErr := uuid.Parse(strings.TrimSpace(p.OwnerID))
		if parseErr != nil {
			return domain.Application{}, domain.ErrInvalidApplication
		}
		app, err = s.apps.GetByNameOwner(ctx, p.AppName, ownerID)
	default:
		return domain.Application{}, domain.ErrInvalidApplication
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Application{}, domain.ErrInvalidApplication
		}
		return domain.Application{}, err
	}
	if !app.IsActive {
		return domain.Application{}, domain.ErrInvalidApplication
	}
	return app, nil
}

func (s *Service) appInfo(ctx context.Context, app domain.Application) (AppInfo, error) {
	appID := app.AppID
	numKeys, err := s.keys.Count(ctx, ports.KeyFilter{AppID: &appID})
	if err != nil {
		return AppInfo{}, err
	}
	numUsers, err := s.keys.CountRedeemed(ctx, appID)
	if err != nil {
		return AppInfo{}, err
	}
	var online int64
	if s.presence != nil {
		online, err = s.presence.CountOnline(ctx, appID, s.nowFn())
		if err != nil {
			return AppInfo{}, err
		}
	}
	return AppInfo{
		NumUsers:       numUsers,
		NumOnlineUsers: online,
		NumKeys:        numKeys,
		Version:        app.Version,
	}, nil
}

// ResolveSession loads a session and its application. Every failure mode,
// missing, expired or orphaned by a deleted application, collapses into
// ErrSessionNotFound; signing material must never leak through error shape.
func (s *Service) ResolveSession(ctx context.Context, sessionID string) (domain.Session, domain.Application, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.Session{}, domain.Application{}, domain.ErrSessionNotFound
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.Session{}, domain.Application{}, err
	}
	if session == nil {
		return domain.Session{}, domain.Application{}, domain.ErrSessionNotFound
	}
	app, err := s.apps.GetByID(ctx, session.AppID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Session{}, domain.Application{}, domain.ErrSessionNotFound
		}
		return domain.Session{}, domain.Application{}, err
	}
	if !app.IsActive {
		return domain.Session{}, domain.Application{}, domain.ErrSessionNotFound
	}
	return *session, app, nil
}

// InspectKey is the internal (service-to-service) key lookup. The caller
// authenticates as the tenant by presenting the application secret.
func (s *Service) InspectKey(ctx context.Context, appSecret, keyString string) (domain.EndUserKey, domain.Application, error) {
	app, err := s.resolveApp(ctx, InitParams{Secret: appSecret})
	if err != nil {
		return domain.EndUserKey{}, domain.Application{}, err
	}
	key, err := s.keys.GetByKeyString(ctx, strings.ToUpper(strings.TrimSpace(keyString)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.EndUserKey{}, domain.Application{}, domain.ErrInvalidKey
		}
		return domain.EndUserKey{}, domain.Application{}, err
	}
	if key.AppID != app.AppID {
		return domain.EndUserKey{}, domain.Application{}, domain.ErrInvalidKey
	}
	return key, app, nil
}

// ApplicationInfo exposes tenant statistics to sibling services.
func (s *Service) ApplicationInfo(ctx context.Context, appSecret string) (AppInfo, error) {
	app, err := s.resolveApp(ctx, InitParams{Secret: appSecret})
	if err != nil {
		return AppInfo{}, err
	}
	return s.appInfo(ctx, app)
}

// SubscriptionName resolves the package name backing a key. Keys whose
// package was deleted fall back to the application name so the login
// response stays well formed.
func (s *Service) SubscriptionName(ctx context.Context, key domain.EndUserKey, app domain.Application) string {
	if pkg, err := s.packages.GetByID(ctx, key.PackageID); err == nil {
		return pkg.Name
	}
	return app.Name
}

// GetVar reads a server-side variable for an authenticated client.
func (s *Service) GetVar(ctx context.Context, appID uuid.UUID, varID string) (string, error) {
	varID = strings.TrimSpace(varID)
	if varID == "" {
		return "", domain.ErrNotFound
	}
	return s.vars.Get(ctx, appID, varID)
}

// SetVar creates or overwrites a server-side variable.
func (s *Service) SetVar(ctx context.Context, appID uuid.UUID, varID, data string) error {
	varID = strings.TrimSpace(varID)
	if varID == "" {
		return fmt.Errorf("%w: var id is required", domain.ErrInvalidInput)
	}
	return s.vars.Upsert(ctx, appID, varID, data)
}
