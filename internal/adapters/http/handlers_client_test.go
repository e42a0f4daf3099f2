package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/adapters/security"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/application"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/domain"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/ports"
)

// Stubs cover only the calls the client protocol handlers reach; the
// embedded interface panics on anything else, which is the point.

type stubApps struct {
	ports.ApplicationRepository
	app domain.Application
}

func (s stubApps) GetBySecret(_ context.Context, secret string) (domain.Application, error) {
	if secret == s.app.Secret {
		return s.app, nil
	}
	return domain.Application{}, domain.ErrNotFound
}

func (s stubApps) GetByID(_ context.Context, appID uuid.UUID) (domain.Application, error) {
	if appID == s.app.AppID {
		return s.app, nil
	}
	return domain.Application{}, domain.ErrNotFound
}

type stubSessions struct {
	mu   sync.Mutex
	byID map[string]domain.Session
}

func (s *stubSessions) Put(_ context.Context, session domain.Session, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[session.SessionID] = session
	return nil
}

func (s *stubSessions) Get(_ context.Context, sessionID string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.byID[sessionID]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (s *stubSessions) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, sessionID)
	return nil
}

type stubVars struct {
	ports.VarRepository
	mu    sync.Mutex
	items map[string]string
}

func (s *stubVars) Upsert(_ context.Context, _ uuid.UUID, varID, data string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[varID] = data
	return nil
}

func (s *stubVars) Get(_ context.Context, _ uuid.UUID, varID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.items[varID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return data, nil
}

type stubKeys struct {
	ports.KeyRepository
}

func (stubKeys) Count(_ context.Context, _ ports.KeyFilter) (int64, error) {
	return 0, nil
}

func (stubKeys) CountRedeemed(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}

type protocolFixture struct {
	router http.Handler
	signer *security.HMACSigner
	app    domain.Application
}

func newProtocolFixture() *protocolFixture {
	app := domain.Application{
		AppID:    uuid.New(),
		Name:     "loader",
		Secret:   "f3c9a1b2d4e5f60718293a4b5c6d7e8f",
		Version:  "1.0",
		IsActive: true,
	}
	svc := application.NewService(application.Dependencies{
		Config:       application.Config{SessionTTL: time.Hour},
		Applications: stubApps{app: app},
		Keys:         stubKeys{},
		Vars:         &stubVars{items: map[string]string{}},
		Sessions:     &stubSessions{byID: map[string]domain.Session{}},
	})
	signer := security.NewHMACSigner()
	return &protocolFixture{
		router: NewRouter(NewHandler(svc, signer, nil)),
		signer: signer,
		app:    app,
	}
}

func (f *protocolFixture) post(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *protocolFixture) initSession(t *testing.T, sentKey string) string {
	t.Helper()
	rec := f.post(t, "/api/v1/init", url.Values{
		"secret": {f.app.Secret},
		"ver":    {f.app.Version},
		"enckey": {sentKey},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("init status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success   bool   `json:"success"`
		SessionID string `json:"sessionid"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode init: %v", err)
	}
	if !resp.Success || resp.SessionID == "" {
		t.Fatalf("init did not open a session: %s", rec.Body.String())
	}
	return resp.SessionID
}

func (f *protocolFixture) requireSigned(t *testing.T, rec *httptest.ResponseRecorder, key []byte) {
	t.Helper()
	if !f.signer.Verify(rec.Body.Bytes(), key, rec.Header().Get("signature")) {
		t.Fatalf("response not signed over transmitted bytes: %s", rec.Body.String())
	}
}

func TestClientInitOmittedVersionIsRejected(t *testing.T) {
	t.Parallel()

	f := newProtocolFixture()
	rec := f.post(t, "/api/v1/init", url.Values{
		"secret": {f.app.Secret},
		"enckey": {"client-nonce"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if want := `{"success":false,"message":"Invalid application version."}`; rec.Body.String() != want {
		t.Fatalf("body = %q, want %q", rec.Body.String(), want)
	}
	f.requireSigned(t, rec, []byte(f.app.Secret))
}

func TestClientSetVarDistinguishesBlankNameFromMiss(t *testing.T) {
	t.Parallel()

	f := newProtocolFixture()
	sessionID := f.initSession(t, "client-nonce")
	key := security.DerivedSessionKey("client-nonce", f.app.Secret)

	rec := f.post(t, "/api/v1/setvar", url.Values{
		"sessionid": {sessionID},
		"varid":     {"   "},
		"data":      {"x"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("blank setvar status = %d", rec.Code)
	}
	if want := `{"success":false,"message":"Invalid variable name."}`; rec.Body.String() != want {
		t.Fatalf("blank setvar body = %q, want %q", rec.Body.String(), want)
	}
	f.requireSigned(t, rec, key)

	rec = f.post(t, "/api/v1/var", url.Values{
		"sessionid": {sessionID},
		"varid":     {"missing"},
	})
	if want := `{"success":false,"message":"Variable not found."}`; rec.Body.String() != want {
		t.Fatalf("var miss body = %q, want %q", rec.Body.String(), want)
	}
	f.requireSigned(t, rec, key)

	rec = f.post(t, "/api/v1/setvar", url.Values{
		"sessionid": {sessionID},
		"varid":     {"motd"},
		"data":      {"welcome"},
	})
	if want := `{"success":true,"message":"Variable set"}`; rec.Body.String() != want {
		t.Fatalf("setvar body = %q, want %q", rec.Body.String(), want)
	}
	rec = f.post(t, "/api/v1/var", url.Values{
		"sessionid": {sessionID},
		"varid":     {"motd"},
	})
	if want := `{"success":true,"message":"welcome"}`; rec.Body.String() != want {
		t.Fatalf("var body = %q, want %q", rec.Body.String(), want)
	}
	f.requireSigned(t, rec, key)
}

func TestClientSessionMissIsUnsigned401(t *testing.T) {
	t.Parallel()

	f := newProtocolFixture()
	rec := f.post(t, "/api/v1/check", url.Values{"sessionid": {"nope"}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if rec.Header().Get("signature") != "" {
		t.Fatalf("session miss must not carry a signature")
	}
}
