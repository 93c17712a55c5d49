package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/KrunalTTech03/rbac-console/internal/guard"
	"github.com/KrunalTTech03/rbac-console/internal/platform/httpx"
	"github.com/KrunalTTech03/rbac-console/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	sessions  *shared.SessionManager
	guard     guard.Guard
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, g guard.Guard) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		sessions:  sessions,
		guard:     g,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/register", h.handleRegister)
	r.Post("/logout", h.handleLogout)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAuth())
		r.Get("/profile", h.handleProfile)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Permission(shared.PermMimicUser))
		r.Post("/mimic", h.handleMimic)
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginResponse struct {
	UserID      string   `json:"userId"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "email and password are required")
		return
	}

	identity, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn("login failed", slog.String("email", req.Email), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Fail(w, http.StatusInternalServerError, "session unavailable")
		return
	}
	sess.Login(identity)
	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Welcome back"})

	httpx.OK(w, loginResponse{
		UserID:      identity.UserID,
		Roles:       identity.Roles,
		Permissions: identity.Permissions,
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "email and password are required")
		return
	}
	if err := h.service.Register(r.Context(), req.Email, req.Password); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, nil)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		sess.Logout()
		h.sessions.Destroy(sess)
	}
	httpx.OK(w, nil)
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Profile(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, profile)
}

type mimicRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *Handler) handleMimic(w http.ResponseWriter, r *http.Request) {
	var req mimicRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	identity, err := h.service.Mimic(r.Context(), req.Email)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Fail(w, http.StatusInternalServerError, "session unavailable")
		return
	}
	// Replace the current identity wholesale; the mimicked user's claims
	// now drive every guard decision.
	sess.Login(identity)

	httpx.OK(w, loginResponse{
		UserID:      identity.UserID,
		Roles:       identity.Roles,
		Permissions: identity.Permissions,
	})
}
