package site

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"southern-night/internal/catalog"
	"southern-night/internal/logger"
	"southern-night/internal/models"
	"southern-night/internal/services/order"
	"southern-night/internal/session"
)

// SessionHeader carries the visitor's session id on every cart and form request
const SessionHeader = "X-Session-ID"

const maxBodyBytes = 64 << 10

// HealthCheck reports whether a dependency is usable
type HealthCheck func(ctx context.Context) error

// Handler handles HTTP requests for the restaurant site
type Handler struct {
	catalog  *catalog.Catalog
	sessions *session.Store
	validate *validator.Validate
	checks   map[string]HealthCheck
	origins  []string
	logger   *logger.Logger
}

// NewHandler creates a new site handler. checks may be nil.
func NewHandler(cat *catalog.Catalog, sessions *session.Store, checks map[string]HealthCheck, allowedOrigins []string, log *logger.Logger) *Handler {
	return &Handler{
		catalog:  cat,
		sessions: sessions,
		validate: newValidator(),
		checks:   checks,
		origins:  allowedOrigins,
		logger:   log,
	}
}

// SetupRoutes builds the router wrapped with request logging and CORS
func (h *Handler) SetupRoutes() http.Handler {
	r := mux.NewRouter()
	r.Use(h.withLogging)

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/menu", h.GetMenu).Methods(http.MethodGet)
	r.HandleFunc("/sessions", h.CreateSession).Methods(http.MethodPost)

	r.HandleFunc("/cart", h.GetCart).Methods(http.MethodGet)
	r.HandleFunc("/cart/items", h.AddItem).Methods(http.MethodPost)
	r.HandleFunc("/cart/items/{id}", h.RemoveItem).Methods(http.MethodDelete)
	r.HandleFunc("/cart/items/{id}", h.AdjustItem).Methods(http.MethodPatch)

	r.HandleFunc("/forms", h.GetForms).Methods(http.MethodGet)
	r.HandleFunc("/forms/order", h.SaveOrderForm).Methods(http.MethodPut)
	r.HandleFunc("/forms/booking", h.SaveBookingForm).Methods(http.MethodPut)

	r.HandleFunc("/orders", h.SubmitOrder).Methods(http.MethodPost)
	r.HandleFunc("/bookings", h.SubmitBooking).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeErrorResponse(w, http.StatusNotFound, "Not found", "")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", "")
	})

	c := cors.New(cors.Options{
		AllowedOrigins: h.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", SessionHeader},
		ExposedHeaders: []string{"X-Request-ID"},
	})
	return c.Handler(r)
}

// HealthCheck handles GET /health requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	healthy := true
	components := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			healthy = false
			components[name] = err.Error()
			continue
		}
		components[name] = "ok"
	}

	response := map[string]interface{}{
		"status":     "ok",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"service":    "site-service",
		"healthy":    healthy,
		"components": components,
		"sessions":   h.sessions.Len(),
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
		response["status"] = "unhealthy"
	}
	h.writeJSON(w, status, response, logger.RequestIDFromContext(r.Context()))
}

// GetMenu handles GET /menu, optionally narrowed with ?category=
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFromContext(r.Context())

	if raw := r.URL.Query().Get("category"); raw != "" {
		category := models.Category(raw)
		if !category.Valid() {
			h.writeErrorResponse(w, http.StatusBadRequest, "Unknown category: "+raw, requestID)
			return
		}
		h.writeJSON(w, http.StatusOK, catalog.Section{Category: category, Entries: h.catalog.ByCategory(category)}, requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"sections": h.catalog.Sections(),
	}, requestID)
}

// CreateSession handles POST /sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Create()
	h.writeJSON(w, http.StatusCreated, map[string]string{"session_id": sess.ID}, logger.RequestIDFromContext(r.Context()))
}

// GetCart handles GET /cart
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, sess.Cart(), logger.RequestIDFromContext(r.Context()))
}

type addItemRequest struct {
	ID string `json:"id" validate:"required"`
}

// AddItem handles POST /cart/items
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFromContext(r.Context())
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	view, err := sess.AddItem(r.Context(), req.ID)
	if err != nil {
		if errors.Is(err, catalog.ErrEntryNotFound) {
			h.writeErrorResponse(w, http.StatusNotFound, "Menu item not found: "+req.ID, requestID)
			return
		}
		h.logger.Error("item_add_failed", "Failed to add item", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
		return
	}
	h.writeJSON(w, http.StatusOK, view, requestID)
}

// RemoveItem handles DELETE /cart/items/{id}
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	view := sess.RemoveItem(mux.Vars(r)["id"])
	h.writeJSON(w, http.StatusOK, view, logger.RequestIDFromContext(r.Context()))
}

type adjustItemRequest struct {
	Delta int `json:"delta"`
}

// AdjustItem handles PATCH /cart/items/{id}
func (h *Handler) AdjustItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req adjustItemRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	view := sess.AdjustQuantity(mux.Vars(r)["id"], req.Delta)
	h.writeJSON(w, http.StatusOK, view, logger.RequestIDFromContext(r.Context()))
}

// GetForms handles GET /forms
func (h *Handler) GetForms(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, sess.Forms(), logger.RequestIDFromContext(r.Context()))
}

// SaveOrderForm handles PUT /forms/order. Drafts are stored as typed,
// without field checks.
func (h *Handler) SaveOrderForm(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.OrderRequest
	if !h.decode(w, r, &req) {
		return
	}
	sess.SaveOrderForm(req)
	h.writeJSON(w, http.StatusOK, sess.Forms(), logger.RequestIDFromContext(r.Context()))
}

// SaveBookingForm handles PUT /forms/booking
func (h *Handler) SaveBookingForm(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.BookingRequest
	if !h.decode(w, r, &req) {
		return
	}
	sess.SaveBookingForm(req)
	h.writeJSON(w, http.StatusOK, sess.Forms(), logger.RequestIDFromContext(r.Context()))
}

// SubmitOrder handles POST /orders
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFromContext(r.Context())
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.OrderRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	confirmation, err := sess.SubmitOrder(r.Context(), req)
	if err != nil {
		var vErr order.ValidationError
		if errors.As(err, &vErr) {
			h.writeErrorResponse(w, http.StatusUnprocessableEntity, vErr.Message, requestID)
			return
		}
		h.logger.Error("order_submission_failed", "Failed to submit order", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, confirmation, requestID)
}

// SubmitBooking handles POST /bookings
func (h *Handler) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.BookingRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	confirmation := sess.SubmitBooking(r.Context(), req)
	h.writeJSON(w, http.StatusOK, confirmation, logger.RequestIDFromContext(r.Context()))
}

// session resolves the caller's session or writes the error response
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	requestID := logger.RequestIDFromContext(r.Context())

	id := r.Header.Get(SessionHeader)
	if id == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, SessionHeader+" header is required", requestID)
		return nil, false
	}

	sess, err := h.sessions.Get(id)
	if err != nil {
		h.writeErrorResponse(w, http.StatusNotFound, "Session not found", requestID)
		return nil, false
	}
	return sess, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	requestID := logger.RequestIDFromContext(r.Context())

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		h.logger.Error("validation_failed", "Failed to parse request body", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return false
	}
	return true
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if !h.decode(w, r, dst) {
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		requestID := logger.RequestIDFromContext(r.Context())
		msg := formError(err)
		h.logger.Debug("validation_failed", "Request validation failed", requestID, map[string]interface{}{
			"reason": msg,
		})
		h.writeErrorResponse(w, http.StatusBadRequest, msg, requestID)
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, body interface{}, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}

// writeErrorResponse writes an error response in JSON format
func (h *Handler) writeErrorResponse(w http.ResponseWriter, statusCode int, message, requestID string) {
	h.writeJSON(w, statusCode, map[string]interface{}{
		"error":      message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
	}, requestID)
}
