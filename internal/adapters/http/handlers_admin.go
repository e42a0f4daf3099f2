package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/application"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/domain"
)

// authMiddleware validates the operator bearer token and stashes its
// claims in the request context.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerTokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
			return
		}
		claims, err := h.service.ValidateOperatorToken(r.Context(), token)
		if err != nil {
			statusCode, code, message := mapDomainError(err)
			if statusCode >= 500 {
				logHTTPOperationError(r.Context(), "operator_auth", statusCode, code, message, err)
			}
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
			return
		}
		ctx := contextWithClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	statusCode, code, message := mapDomainError(err)
	logHTTPOperationError(r.Context(), operation, statusCode, code, message, err)
	writeError(w, statusCode, code, message)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "malformed request body")
		return false
	}
	return true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "malformed "+name)
		return uuid.Nil, false
	}
	return id, true
}

func actorID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing credentials")
		return uuid.Nil, false
	}
	return claims.AccountID, true
}

func (h *Handler) setup(w http.ResponseWriter, r *http.Request) {
	var req application.SetupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.service.Setup(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, r, "setup", err)
		return
	}
	writeSuccess(w, http.StatusCreated, resp)
}

func (h *Handler) operatorLogin(w http.ResponseWriter, r *http.Request) {
	var req application.OperatorLoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.IPAddress = clientIP(r)
	resp, err := h.service.OperatorLogin(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, r, "operator_login", err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (h *Handler) jwks(w http.ResponseWriter, r *http.Request) {
	keys, err := h.service.PublicJWKs()
	if err != nil {
		h.writeDomainError(w, r, "jwks", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"keys": keys})
}

func (h *Handler) createOperator(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	var req application.CreateOperatorRequest
	if !decodeBody(w, r, &req) {
		return
	}
	view, err := h.service.CreateOperator(r.Context(), actor, req)
	if err != nil {
		h.writeDomainError(w, r, "create_operator", err)
		return
	}
	writeSuccess(w, http.StatusCreated, view)
}

func (h *Handler) listOperators(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	role := domain.Role(r.URL.Query().Get("role"))
	views, err := h.service.ListOperators(r.Context(), actor, role)
	if err != nil {
		h.writeDomainError(w, r, "list_operators", err)
		return
	}
	writeSuccess(w, http.StatusOK, views)
}

func (h *Handler) toggleOperator(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	accountID, ok := pathUUID(w, r, "account_id")
	if !ok {
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.service.ToggleOperator(r.Context(), actor, accountID, req.Active); err != nil {
		h.writeDomainError(w, r, "toggle_operator", err)
		return
	}
	writeMessage(w, http.StatusOK, "operator updated")
}

func (h *Handler) deleteOperator(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	accountID, ok := pathUUID(w, r, "account_id")
	if !ok {
		return
	}
	if err := h.service.DeleteOperator(r.Context(), actor, accountID); err != nil {
		h.writeDomainError(w, r, "delete_operator", err)
		return
	}
	writeMessage(w, http.StatusOK, "operator deleted")
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	bal, err := h.service.Balance(r.Context(), actor)
	if err != nil {
		h.writeDomainError(w, r, "balance", err)
		return
	}
	writeSuccess(w, http.StatusOK, bal)
}

func (h *Handler) issueCredits(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	accountID, ok := pathUUID(w, r, "account_id")
	if !ok {
		return
	}
	var req struct {
		Amount int64 `json:"amount"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.service.IssueCredits(r.Context(), actor, accountID, req.Amount); err != nil {
		h.writeDomainError(w, r, "issue_credits", err)
		return
	}
	writeMessage(w, http.StatusOK, "credits issued")
}

func (h *Handler) transferCredits(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	accountID, ok := pathUUID(w, r, "account_id")
	if !ok {
		return
	}
	var req struct {
		Amount int64 `json:"amount"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.service.TransferCredits(r.Context(), actor, accountID, req.Amount); err != nil {
		h.writeDomainError(w, r, "transfer_credits", err)
		return
	}
	writeMessage(w, http.StatusOK, "credits transferred")
}

func (h *Handler) createApplication(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	var req application.CreateApplicationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	view, err := h.service.CreateApplication(r.Context(), actor, req)
	if err != nil {
		h.writeDomainError(w, r, "create_application", err)
		return
	}
	writeSuccess(w, http.StatusCreated, view)
}

func (h *Handler) listApplications(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	views, err := h.service.ListApplications(r.Context(), actor)
	if err != nil {
		h.writeDomainError(w, r, "list_applications", err)
		return
	}
	writeSuccess(w, http.StatusOK, views)
}

func (h *Handler) toggleApplication(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	appID, ok := pathUUID(w, r, "app_id")
	if !ok {
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.service.ToggleApplication(r.Context(), actor, appID, req.Active); err != nil {
		h.writeDomainError(w, r, "toggle_application", err)
		return
	}
	writeMessage(w, http.StatusOK, "application updated")
}

func (h *Handler) deleteApplication(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	appID, ok := pathUUID(w, r, "app_id")
	if !ok {
		return
	}
	if err := h.service.DeleteApplication(r.Context(), actor, appID); err != nil {
		h.writeDomainError(w, r, "delete_application", err)
		return
	}
	writeMessage(w, http.StatusOK, "application deleted")
}

func (h *Handler) createPackage(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	var req application.CreatePackageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	view, err := h.service.CreatePackage(r.Context(), actor, req)
	if err != nil {
		h.writeDomainError(w, r, "create_package", err)
		return
	}
	writeSuccess(w, http.StatusCreated, view)
}

func (h *Handler) listPackages(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	appID, ok := pathUUID(w, r, "app_id")
	if !ok {
		return
	}
	views, err := h.service.ListPackages(r.Context(), actor, appID)
	if err != nil {
		h.writeDomainError(w, r, "list_packages", err)
		return
	}
	writeSuccess(w, http.StatusOK, views)
}

func (h *Handler) deletePackage(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	packageID, ok := pathUUID(w, r, "package_id")
	if !ok {
		return
	}
	if err := h.service.DeletePackage(r.Context(), actor, packageID); err != nil {
		h.writeDomainError(w, r, "delete_package", err)
		return
	}
	writeMessage(w, http.StatusOK, "package deleted")
}

func (h *Handler) assignPackage(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	accountID, ok := pathUUID(w, r, "account_id")
	if !ok {
		return
	}
	packageID, ok := pathUUID(w, r, "package_id")
	if !ok {
		return
	}
	if err := h.service.AssignPackage(r.Context(), actor, accountID, packageID); err != nil {
		h.writeDomainError(w, r, "assign_package", err)
		return
	}
	writeMessage(w, http.StatusOK, "package assigned")
}

func (h *Handler) unassignPackage(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	accountID, ok := pathUUID(w, r, "account_id")
	if !ok {
		return
	}
	packageID, ok := pathUUID(w, r, "package_id")
	if !ok {
		return
	}
	if err := h.service.UnassignPackage(r.Context(), actor, accountID, packageID); err != nil {
		h.writeDomainError(w, r, "unassign_package", err)
		return
	}
	writeMessage(w, http.StatusOK, "package unassigned")
}

func (h *Handler) provisionKeys(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	var req application.ProvisionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	minted, err := h.service.ProvisionKeys(r.Context(), actor, req)
	if err != nil {
		h.writeDomainError(w, r, "provision_keys", err)
		return
	}
	writeSuccess(w, http.StatusCreated, minted)
}

func (h *Handler) listKeys(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	var appID *uuid.UUID
	if raw := r.URL.Query().Get("app_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "malformed app_id")
			return
		}
		appID = &id
	}
	views, err := h.service.ListKeys(r.Context(), actor, appID)
	if err != nil {
		h.writeDomainError(w, r, "list_keys", err)
		return
	}
	writeSuccess(w, http.StatusOK, views)
}

func (h *Handler) banKey(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	keyID, ok := pathUUID(w, r, "key_id")
	if !ok {
		return
	}
	if err := h.service.BanKey(r.Context(), actor, keyID); err != nil {
		h.writeDomainError(w, r, "ban_key", err)
		return
	}
	writeMessage(w, http.StatusOK, "key banned")
}

func (h *Handler) unbanKey(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	keyID, ok := pathUUID(w, r, "key_id")
	if !ok {
		return
	}
	if err := h.service.UnbanKey(r.Context(), actor, keyID); err != nil {
		h.writeDomainError(w, r, "unban_key", err)
		return
	}
	writeMessage(w, http.StatusOK, "key unbanned")
}

func (h *Handler) extendKey(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	keyID, ok := pathUUID(w, r, "key_id")
	if !ok {
		return
	}
	var req struct {
		Days int `json:"days"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	expiry, err := h.service.ExtendKey(r.Context(), actor, keyID, req.Days)
	if err != nil {
		h.writeDomainError(w, r, "extend_key", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"expiry": expiry})
}

func (h *Handler) resetKeyHardware(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	keyID, ok := pathUUID(w, r, "key_id")
	if !ok {
		return
	}
	if err := h.service.ResetKeyHardware(r.Context(), actor, keyID); err != nil {
		h.writeDomainError(w, r, "reset_key_hardware", err)
		return
	}
	writeMessage(w, http.StatusOK, "hardware id reset")
}

func (h *Handler) deleteKey(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	keyID, ok := pathUUID(w, r, "key_id")
	if !ok {
		return
	}
	if err := h.service.DeleteKey(r.Context(), actor, keyID); err != nil {
		h.writeDomainError(w, r, "delete_key", err)
		return
	}
	writeMessage(w, http.StatusOK, "key deleted")
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	view, err := h.service.Stats(r.Context(), actor)
	if err != nil {
		h.writeDomainError(w, r, "stats", err)
		return
	}
	writeSuccess(w, http.StatusOK, view)
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "NOT_READY", "dependencies unavailable")
			return
		}
	}
	writeMessage(w, http.StatusOK, "ok")
}
