package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gojo5t5/papertrade/internal/auth"
	"github.com/gojo5t5/papertrade/internal/engine"
	"github.com/gojo5t5/papertrade/internal/models"
	"github.com/gojo5t5/papertrade/internal/session"
)

const sessionCookie = "session_id"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	engine   *engine.Engine
	auth     *auth.Service
	sessions session.Store
	quotes   engine.QuoteProvider
	logger   *zap.Logger
}

// NewHandler creates a new Handler
func NewHandler(eng *engine.Engine, authSvc *auth.Service, sessions session.Store, quotes engine.QuoteProvider, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		engine:   eng,
		auth:     authSvc,
		sessions: sessions,
		quotes:   quotes,
		logger:   logger,
	}
}

type credentialsRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Confirmation string `json:"confirmation,omitempty"`
}

type tradeRequest struct {
	Symbol string          `json:"symbol"`
	Shares decimal.Decimal `json:"shares"`
}

type passwordRequest struct {
	Old          string `json:"old"`
	New          string `json:"new"`
	Confirmation string `json:"confirmation"`
}

// Register handles POST /api/v1/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Password, req.Confirmation)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	// A fresh registration is logged straight in.
	sessionID, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to create session", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	setSessionCookie(w, sessionID)

	respondJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/v1/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	sessionID, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to create session", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	setSessionCookie(w, sessionID)

	respondJSON(w, http.StatusOK, user)
}

// Logout handles POST /api/v1/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if err := h.sessions.Destroy(r.Context(), cookie.Value); err != nil {
			h.logger.Warn("failed to destroy session", zap.Error(err))
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword handles PUT /api/v1/account/password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.auth.ChangePassword(r.Context(), userIDFrom(r), req.Old, req.New, req.Confirmation)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// GetQuote handles GET /api/v1/quote/{symbol}
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	quote, err := h.quotes.Lookup(r.Context(), symbol)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

// Buy handles POST /api/v1/buy
func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	balance, err := h.engine.Buy(r.Context(), userIDFrom(r), req.Symbol, req.Shares)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"cash": balance.String()})
}

// Sell handles POST /api/v1/sell
func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	balance, err := h.engine.Sell(r.Context(), userIDFrom(r), req.Symbol, req.Shares)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"cash": balance.String()})
}

// GetPortfolio handles GET /api/v1/portfolio
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.engine.Snapshot(r.Context(), userIDFrom(r))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

// GetHistory handles GET /api/v1/history
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.engine.History(r.Context(), userIDFrom(r))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"trades": history,
		"count":  len(history),
	})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// respondDomainError maps domain sentinel errors to HTTP rejections.
// Anything unrecognized is a storage or internal failure: logged and
// reported as a 500 without leaking detail.
func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrInsufficientFunds),
		errors.Is(err, models.ErrInsufficientShares):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrUnknownSymbol):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrUserNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrUsernameTaken):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, models.ErrQuoteUnavailable):
		respondError(w, http.StatusBadGateway, models.ErrQuoteUnavailable.Error())
	case errors.Is(err, auth.ErrMissingUsername),
		errors.Is(err, auth.ErrMissingPassword),
		errors.Is(err, auth.ErrPasswordMismatch):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
