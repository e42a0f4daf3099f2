package http

import (
	"encoding/json"
	"net/http"

	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/application"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/ports"
)

type apiError struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, map[string]any{
		"status": "success",
		"data":   data,
	})
}

func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{
		"status":  "success",
		"message": message,
	})
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, apiError{
		Status:  "error",
		Code:    code,
		Message: message,
	})
}

// Client protocol bodies. Field order is fixed because legacy clients
// verify the signature over the exact transmitted bytes.

type protocolResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type initResponse struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	SessionID  string              `json:"sessionid"`
	AppInfo    application.AppInfo `json:"appinfo"`
	NewSession bool                `json:"newSession"`
}

type subscriptionInfo struct {
	Subscription string `json:"subscription"`
	Expiry       int64  `json:"expiry"`
}

type loginInfo struct {
	Username      string             `json:"username"`
	IP            string             `json:"ip"`
	HWID          string             `json:"hwid"`
	CreateDate    int64              `json:"createdate"`
	LastLogin     int64              `json:"lastlogin"`
	Subscriptions []subscriptionInfo `json:"subscriptions"`
}

type loginResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Info    loginInfo `json:"info"`
}

// writeSigned marshals the payload once, signs those exact bytes with the
// given key and sends body plus `signature` header. json.NewEncoder is
// avoided here: its trailing newline would not match the signed bytes on
// clients that hash the body verbatim.
func writeSigned(w http.ResponseWriter, statusCode int, signer ports.ResponseSigner, key []byte, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		writeProtocolFatal(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("signature", signer.Sign(body, key))
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

// writeProtocolFailure reports a policy failure as HTTP 200 with a signed
// success:false body. Legacy clients branch on the message text, not the
// status code, so these strings are part of the compatibility surface.
func writeProtocolFailure(w http.ResponseWriter, signer ports.ResponseSigner, key []byte, message string) {
	writeSigned(w, http.StatusOK, signer, key, protocolResponse{Success: false, Message: message})
}

// writeSentinel answers an init whose application could not be resolved.
// There is no secret to sign with, so the body is the bare legacy marker.
func writeSentinel(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Skyline_Invalid"))
}

// writeSessionMiss is the one unsigned JSON failure: without a session
// there is no derived key, so the rejection cannot carry a signature.
func writeSessionMiss(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, protocolResponse{Success: false, Message: "Session not found."})
}

// writeProtocolFatal reports a store or signing fault. Unsigned, since an
// integrity fault may mean the signing material itself is unavailable.
func writeProtocolFatal(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, protocolResponse{Success: false, Message: "Internal error."})
}
