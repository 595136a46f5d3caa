package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/tinywideclouds/go-microservice-base/pkg/response"
	"github.com/tinywideclouds/go-local-notifications/pkg/notification"
	"github.com/tinywideclouds/go-local-notifications/pkg/notifier"
)

type NotificationAPI struct {
	Notifier *notifier.Notifier
	Logger   *slog.Logger
}

func NewNotificationAPI(n *notifier.Notifier, logger *slog.Logger) *NotificationAPI {
	return &NotificationAPI{
		Notifier: n,
		Logger:   logger.With("component", "NotificationAPI"),
	}
}

// --- Authorization ---

type AuthorizationStatusResponse struct {
	Status notification.AuthorizationStatus `json:"status"`
}

type AuthorizationResponse struct {
	Granted bool `json:"granted"`
}

func (api *NotificationAPI) GetAuthorization(w http.ResponseWriter, r *http.Request) {
	status, err := api.Notifier.AuthorizationStatus(r.Context())
	if err != nil {
		api.Logger.Error("GetAuthorization: status query failed", "err", err)
		response.WriteJSONError(w, http.StatusInternalServerError, "status query failed")
		return
	}
	writeJSON(w, http.StatusOK, AuthorizationStatusResponse{Status: status})
}

// RequestAuthorization triggers the prompt if the user has not answered yet.
func (api *NotificationAPI) RequestAuthorization(w http.ResponseWriter, r *http.Request) {
	granted, err := api.Notifier.RequestAuthorization(r.Context())
	if err != nil {
		response.WriteJSONError(w, http.StatusInternalServerError, "authorization request failed")
		return
	}
	writeJSON(w, http.StatusOK, AuthorizationResponse{Granted: granted})
}

// --- Scheduling ---

type ScheduleRequest struct {
	Title        string  `json:"title"`
	Body         string  `json:"body"`
	AfterSeconds float64 `json:"after_seconds"`
	Identifier   string  `json:"identifier,omitempty"`
}

// maxAfterSeconds is the largest delay a time.Duration can hold.
const maxAfterSeconds = float64(math.MaxInt64 / int64(time.Second))

type ScheduleResponse struct {
	Identifier string `json:"identifier"`
}

func (api *NotificationAPI) Schedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Logger.Warn("Schedule: JSON Decode failed", "err", err)
		response.WriteJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if math.IsNaN(req.AfterSeconds) || math.IsInf(req.AfterSeconds, 0) || req.AfterSeconds > maxAfterSeconds {
		response.WriteJSONError(w, http.StatusBadRequest, "after_seconds out of range")
		return
	}

	opts := []notifier.ScheduleOption{notifier.After(time.Duration(req.AfterSeconds * float64(time.Second)))}
	if req.Identifier != "" {
		opts = append(opts, notifier.WithIdentifier(req.Identifier))
	}

	id, err := api.Notifier.Schedule(r.Context(), req.Title, req.Body, opts...)
	if err != nil {
		var schedErr *notification.SchedulingError
		switch {
		case notifier.IsNotAuthorized(err):
			response.WriteJSONError(w, http.StatusForbidden, "notifications not authorized")
		case errors.As(err, &schedErr):
			response.WriteJSONError(w, http.StatusUnprocessableEntity, schedErr.Err.Error())
		default:
			response.WriteJSONError(w, http.StatusInternalServerError, "scheduling failed")
		}
		return
	}
	writeJSON(w, http.StatusCreated, ScheduleResponse{Identifier: id})
}

// --- Pending ---

func (api *NotificationAPI) ListPending(w http.ResponseWriter, r *http.Request) {
	pending, err := api.Notifier.Pending(r.Context())
	if err != nil {
		api.Logger.Error("ListPending failed", "err", err)
		response.WriteJSONError(w, http.StatusInternalServerError, "storage failed")
		return
	}
	writeJSON(w, http.StatusOK, pending)
}

// CancelPending is idempotent: unknown identifiers still get 204.
func (api *NotificationAPI) CancelPending(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		response.WriteJSONError(w, http.StatusBadRequest, "missing identifier")
		return
	}
	if err := api.Notifier.CancelPending(r.Context(), id); err != nil {
		response.WriteJSONError(w, http.StatusInternalServerError, "failed to cancel notification")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *NotificationAPI) CancelAllPending(w http.ResponseWriter, r *http.Request) {
	if err := api.Notifier.CancelAllPending(r.Context()); err != nil {
		response.WriteJSONError(w, http.StatusInternalServerError, "failed to cancel notifications")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Delivered ---

func (api *NotificationAPI) ListDelivered(w http.ResponseWriter, r *http.Request) {
	delivered, err := api.Notifier.Delivered(r.Context())
	if err != nil {
		api.Logger.Error("ListDelivered failed", "err", err)
		response.WriteJSONError(w, http.StatusInternalServerError, "storage failed")
		return
	}
	writeJSON(w, http.StatusOK, delivered)
}

func (api *NotificationAPI) RemoveAllDelivered(w http.ResponseWriter, r *http.Request) {
	if err := api.Notifier.RemoveAllDelivered(r.Context()); err != nil {
		response.WriteJSONError(w, http.StatusInternalServerError, "failed to clear delivered notifications")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Badge ---

type BadgeResponse struct {
	Count int `json:"count"`
}

func (api *NotificationAPI) GetBadge(w http.ResponseWriter, r *http.Request) {
	n, err := api.Notifier.BadgeCount(r.Context())
	if err != nil {
		api.Logger.Error("GetBadge failed", "err", err)
		response.WriteJSONError(w, http.StatusInternalServerError, "storage failed")
		return
	}
	writeJSON(w, http.StatusOK, BadgeResponse{Count: n})
}

func (api *NotificationAPI) ResetBadge(w http.ResponseWriter, r *http.Request) {
	if err := api.Notifier.ResetBadge(r.Context()); err != nil {
		response.WriteJSONError(w, http.StatusInternalServerError, "failed to reset badge")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
