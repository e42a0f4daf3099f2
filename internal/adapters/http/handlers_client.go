package http

import (
	"errors"
	"net/http"

	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/adapters/security"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/application"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/domain"
)

// protocolFailureMessage maps application sentinels onto the fixed strings
// legacy SDKs branch on. Anything unmapped is an integrity fault.
func protocolFailureMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrInvalidApplication):
		return "Invalid application", true
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Invalid credentials", true
	case errors.Is(err, domain.ErrSubscriptionExpired):
		return "Subscription expired", true
	case errors.Is(err, domain.ErrHardwareMismatch):
		return "HWID mismatch", true
	case errors.Is(err, domain.ErrInvalidKey):
		return "Invalid license key", true
	case errors.Is(err, domain.ErrKeyAlreadyUsed):
		return "License key already used", true
	case errors.Is(err, domain.ErrUsernameTaken):
		return "Username already taken", true
	default:
		return "", false
	}
}

func (h *Handler) clientInit(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	params := application.InitParams{
		AppName: r.PostFormValue("name"),
		OwnerID: r.PostFormValue("ownerid"),
		Secret:  r.PostFormValue("secret"),
		Version: r.PostFormValue("ver"),
		SentKey: r.PostFormValue("enckey"),
	}

	result, err := h.service.InitSession(r.Context(), params)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidApplication) {
			writeSentinel(w)
			return
		}
		logHTTPOperationError(r.Context(), "client_init", http.StatusInternalServerError, "INTERNAL_ERROR", "init failed", err)
		writeProtocolFatal(w)
		return
	}

	signingKey := []byte(result.AppSecret)
	if result.VersionMismatch {
		writeProtocolFailure(w, h.signer, signingKey, "Invalid application version.")
		return
	}

	writeSigned(w, http.StatusOK, h.signer, signingKey, initResponse{
		Success:    true,
		Message:    "Initialized",
		SessionID:  result.Session.SessionID,
		AppInfo:    result.AppInfo,
		NewSession: true,
	})
}

// sessionScope resolves the session named in the form body and derives the
// per-session signing key. On failure it has already written the response.
func (h *Handler) sessionScope(w http.ResponseWriter, r *http.Request) (domain.Session, domain.Application, []byte, bool) {
	_ = r.ParseForm()
	session, app, err := h.service.ResolveSession(r.Context(), r.PostFormValue("sessionid"))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeSessionMiss(w)
		} else {
			logHTTPOperationError(r.Context(), "client_session_resolve", http.StatusInternalServerError, "INTERNAL_ERROR", "session lookup failed", err)
			writeProtocolFatal(w)
		}
		return domain.Session{}, domain.Application{}, nil, false
	}
	return session, app, security.DerivedSessionKey(session.SentKey, app.Secret), true
}

func (h *Handler) clientLogin(w http.ResponseWriter, r *http.Request) {
	_, app, signingKey, ok := h.sessionScope(w, r)
	if !ok {
		return
	}

	login := r.PostFormValue("username")
	key, err := h.service.Authenticate(r.Context(), application.AuthenticateParams{
		App:        app,
		Login:      login,
		Password:   r.PostFormValue("pass"),
		HardwareID: r.PostFormValue("hwid"),
		IPAddress:  clientIP(r),
	})
	if err != nil {
		message, mapped := protocolFailureMessage(err)
		if !mapped {
			logHTTPOperationError(r.Context(), "client_login", http.StatusInternalServerError, "INTERNAL_ERROR", "login failed", err)
			writeProtocolFatal(w)
			return
		}
		writeProtocolFailure(w, h.signer, signingKey, message)
		return
	}

	username := key.Username
	if username == "" {
		username = login
	}
	lastLogin := key.CreatedAt.Unix()
	if key.LastLoginAt != nil {
		lastLogin = key.LastLoginAt.Unix()
	}
	subscriptions := []subscriptionInfo{}
	if !key.Expiry.IsZero() {
		subscriptions = append(subscriptions, subscriptionInfo{
			Subscription: h.service.SubscriptionName(r.Context(), key, app),
			Expiry:       key.Expiry.Unix(),
		})
	}

	writeSigned(w, http.StatusOK, h.signer, signingKey, loginResponse{
		Success: true,
		Message: "Logged in!",
		Info: loginInfo{
			Username:      username,
			IP:            key.LastLoginIP,
			HWID:          key.Binding.ID,
			CreateDate:    key.CreatedAt.Unix(),
			LastLogin:     lastLogin,
			Subscriptions: subscriptions,
		},
	})
}

func (h *Handler) clientRegister(w http.ResponseWriter, r *http.Request) {
	_, app, signingKey, ok := h.sessionScope(w, r)
	if !ok {
		return
	}

	_, err := h.service.Redeem(r.Context(), application.RedeemParams{
		App:        app,
		Username:   r.PostFormValue("username"),
		Password:   r.PostFormValue("pass"),
		LicenseKey: r.PostFormValue("key"),
		HardwareID: r.PostFormValue("hwid"),
	})
	if err != nil {
		message, mapped := protocolFailureMessage(err)
		if !mapped {
			logHTTPOperationError(r.Context(), "client_register", http.StatusInternalServerError, "INTERNAL_ERROR", "register failed", err)
			writeProtocolFatal(w)
			return
		}
		writeProtocolFailure(w, h.signer, signingKey, message)
		return
	}

	writeSigned(w, http.StatusOK, h.signer, signingKey, protocolResponse{Success: true, Message: "Registered"})
}

func (h *Handler) clientCheck(w http.ResponseWriter, r *http.Request) {
	_, _, signingKey, ok := h.sessionScope(w, r)
	if !ok {
		return
	}
	writeSigned(w, http.StatusOK, h.signer, signingKey, protocolResponse{Success: true, Message: "Session valid"})
}

func (h *Handler) clientVar(w http.ResponseWriter, r *http.Request) {
	_, app, signingKey, ok := h.sessionScope(w, r)
	if !ok {
		return
	}

	value, err := h.service.GetVar(r.Context(), app.AppID, r.PostFormValue("varid"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProtocolFailure(w, h.signer, signingKey, "Variable not found.")
			return
		}
		logHTTPOperationError(r.Context(), "client_var", http.StatusInternalServerError, "INTERNAL_ERROR", "var lookup failed", err)
		writeProtocolFatal(w)
		return
	}

	writeSigned(w, http.StatusOK, h.signer, signingKey, protocolResponse{Success: true, Message: value})
}

func (h *Handler) clientSetVar(w http.ResponseWriter, r *http.Request) {
	_, app, signingKey, ok := h.sessionScope(w, r)
	if !ok {
		return
	}

	err := h.service.SetVar(r.Context(), app.AppID, r.PostFormValue("varid"), r.PostFormValue("data"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeProtocolFailure(w, h.signer, signingKey, "Invalid variable name.")
			return
		}
		logHTTPOperationError(r.Context(), "client_setvar", http.StatusInternalServerError, "INTERNAL_ERROR", "var write failed", err)
		writeProtocolFatal(w)
		return
	}

	writeSigned(w, http.StatusOK, h.signer, signingKey, protocolResponse{Success: true, Message: "Variable set"})
}
