package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/application"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/ports"
)

// Handler is the HTTP adapter entrypoint for both surfaces: the legacy
// signed client protocol and the operator JSON API.
type Handler struct {
	service *application.Service
	signer  ports.ResponseSigner
	ready   func(context.Context) error
}

// NewHandler constructs an HTTP handler bound to the application service.
// The ready func gates /readyz on backing store health and may be nil.
func NewHandler(service *application.Service, signer ports.ResponseSigner, ready func(context.Context) error) *Handler {
	return &Handler{service: service, signer: signer, ready: ready}
}

// NewRouter registers all routes and the middleware stack. Centralizing
// routes here keeps auth and error behavior consistent across endpoints.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)
	r.Get("/.well-known/jwks.json", handler.jwks)

	// Legacy client protocol. Form-encoded bodies, signed responses.
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/init", handler.clientInit)
		r.Post("/login", handler.clientLogin)
		r.Post("/register", handler.clientRegister)
		r.Post("/check", handler.clientCheck)
		r.Post("/var", handler.clientVar)
		r.Post("/setvar", handler.clientSetVar)
	})

	// Operator API. JSON bodies, bearer tokens.
	r.Route("/admin/v1", func(r chi.Router) {
		r.Post("/setup", handler.setup)
		r.Post("/login", handler.operatorLogin)

		r.Group(func(r chi.Router) {
			r.Use(handler.authMiddleware)

			r.Get("/me/balance", handler.balance)
			r.Get("/stats", handler.stats)

			r.Post("/operators", handler.createOperator)
			r.Get("/operators", handler.listOperators)
			r.Patch("/operators/{account_id}/active", handler.toggleOperator)
			r.Delete("/operators/{account_id}", handler.deleteOperator)
			r.Post("/operators/{account_id}/credits", handler.issueCredits)
			r.Post("/operators/{account_id}/transfer", handler.transferCredits)
			r.Put("/operators/{account_id}/packages/{package_id}", handler.assignPackage)
			r.Delete("/operators/{account_id}/packages/{package_id}", handler.unassignPackage)

			r.Post("/applications", handler.createApplication)
			r.Get("/applications", handler.listApplications)
			r.Patch("/applications/{app_id}/active", handler.toggleApplication)
			r.Delete("/applications/{app_id}", handler.deleteApplication)
			r.Get("/applications/{app_id}/packages", handler.listPackages)

			r.Post("/packages", handler.createPackage)
			r.Delete("/packages/{package_id}", handler.deletePackage)

			r.Post("/keys", handler.provisionKeys)
			r.Get("/keys", handler.listKeys)
			r.Post("/keys/{key_id}/ban", handler.banKey)
			r.Post("/keys/{key_id}/unban", handler.unbanKey)
			r.Post("/keys/{key_id}/extend", handler.extendKey)
			r.Post("/keys/{key_id}/reset-hwid", handler.resetKeyHardware)
			r.Delete("/keys/{key_id}", handler.deleteKey)
		})
	})

	return r
}
