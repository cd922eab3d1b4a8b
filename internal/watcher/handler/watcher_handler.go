package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	domainerrors "github.com/central-university-dev/go-content-watch/internal/domain/errors"
	"github.com/central-university-dev/go-content-watch/internal/domain/models"
)

type WatcherService interface {
	RegisterMonitor(
		ctx context.Context,
		orgCode, name string,
		contentType models.ContentType,
		intervalMinutes int,
		sites []string,
		maxResults int,
		keyword string,
	) (*models.Monitor, error)

	GetMonitor(ctx context.Context, id int64) (*models.Monitor, error)

	GetMonitors(ctx context.Context) ([]*models.Monitor, error)

	SetEnabled(ctx context.Context, id int64, enabled bool) error

	RestartMonitor(ctx context.Context, id int64) error

	RaiseAlert(ctx context.Context, monitorID int64, reason models.AlertReason, effectiveFrom time.Time) (*models.AlertEvent, error)

	ResolveEvent(ctx context.Context, monitorID int64, kind models.EventKind, eventID, status, user string) error
}

type WatcherHandler struct {
	service WatcherService
	logger  *slog.Logger
}

func NewWatcherHandler(service WatcherService, logger *slog.Logger) *WatcherHandler {
	return &WatcherHandler{
		service: service,
		logger:  logger,
	}
}

func (h *WatcherHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/monitors", h.listMonitors)
	mux.HandleFunc("POST /api/v1/monitors", h.registerMonitor)
	mux.HandleFunc("GET /api/v1/monitors/{id}", h.getMonitor)
	mux.HandleFunc("POST /api/v1/monitors/{id}/enable", h.enableMonitor)
	mux.HandleFunc("POST /api/v1/monitors/{id}/disable", h.disableMonitor)
	mux.HandleFunc("POST /api/v1/monitors/{id}/restart", h.restartMonitor)
	mux.HandleFunc("POST /api/v1/monitors/{id}/alerts", h.raiseAlert)
	mux.HandleFunc("POST /api/v1/monitors/{id}/events/{eventId}/resolve", h.resolveEvent)
}

type monitorResponse struct {
	ID              int64    `json:"id"`
	OrgCode         string   `json:"orgCode"`
	ContentType     string   `json:"contentType"`
	Name            string   `json:"name"`
	GUID            string   `json:"guid"`
	IntervalMinutes int      `json:"intervalMinutes"`
	Sites           []string `json:"sites"`
	MaxResults      int      `json:"maxResults,omitempty"`
	Keyword         string   `json:"keyword,omitempty"`
	Enabled         bool     `json:"enabled"`
	State           string   `json:"state"`
	LastExecuted    string   `json:"lastExecuted,omitempty"`
	LastSucceeded   string   `json:"lastSucceeded,omitempty"`
	SnapshotCount   int      `json:"snapshotCount"`
	OpenEventKind   string   `json:"openEventKind,omitempty"`
	OpenEventID     string   `json:"openEventId,omitempty"`
	ErrorMessage    string   `json:"errorMessage,omitempty"`
	RetryCount      int      `json:"retryCount"`
	PageTitle       string   `json:"pageTitle,omitempty"`
}

type registerMonitorRequest struct {
	OrgCode         string   `json:"orgCode"`
	Name            string   `json:"name"`
	ContentType     string   `json:"contentType"`
	IntervalMinutes int      `json:"intervalMinutes"`
	Sites           []string `json:"sites"`
	MaxResults      int      `json:"maxResults"`
	Keyword         string   `json:"keyword"`
}

type raiseAlertRequest struct {
	Reason        string `json:"reason"`
	EffectiveFrom string `json:"effectiveFrom"`
}

type resolveEventRequest struct {
	Kind   string `json:"kind"`
	Status string `json:"status"`
	User   string `json:"user"`
}

type eventResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	MonitorID int64  `json:"monitorId"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
}

type errorResponse struct {
	Description string `json:"description"`
}

func (h *WatcherHandler) listMonitors(w http.ResponseWriter, r *http.Request) {
	monitors, err := h.service.GetMonitors(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	response := make([]monitorResponse, 0, len(monitors))
	for _, monitor := range monitors {
		response = append(response, toMonitorResponse(monitor))
	}

	h.writeJSON(w, http.StatusOK, response)
}

func (h *WatcherHandler) registerMonitor(w http.ResponseWriter, r *http.Request) {
	var req registerMonitorRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Description: "некорректное тело запроса"})
		return
	}

	if req.OrgCode == "" || req.Name == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Description: "orgCode и name обязательны"})
		return
	}

	monitor, err := h.service.RegisterMonitor(
		r.Context(),
		req.OrgCode,
		req.Name,
		models.ContentType(req.ContentType),
		req.IntervalMinutes,
		req.Sites,
		req.MaxResults,
		req.Keyword,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toMonitorResponse(monitor))
}

func (h *WatcherHandler) getMonitor(w http.ResponseWriter, r *http.Request) {
	id, ok := h.monitorID(w, r)
	if !ok {
		return
	}

	monitor, err := h.service.GetMonitor(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toMonitorResponse(monitor))
}

func (h *WatcherHandler) enableMonitor(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, true)
}

func (h *WatcherHandler) disableMonitor(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, false)
}

func (h *WatcherHandler) setEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	id, ok := h.monitorID(w, r)
	if !ok {
		return
	}

	if err := h.service.SetEnabled(r.Context(), id, enabled); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *WatcherHandler) restartMonitor(w http.ResponseWriter, r *http.Request) {
	id, ok := h.monitorID(w, r)
	if !ok {
		return
	}

	if err := h.service.RestartMonitor(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *WatcherHandler) raiseAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := h.monitorID(w, r)
	if !ok {
		return
	}

	var req raiseAlertRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Description: "некорректное тело запроса"})
		return
	}

	reason := models.AlertReason(req.Reason)
	if reason == "" {
		reason = models.AlertManual
	}

	effectiveFrom := time.Now()

	if req.EffectiveFrom != "" {
		parsed, err := time.Parse(time.RFC3339, req.EffectiveFrom)
		if err != nil {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Description: "некорректная дата effectiveFrom"})
			return
		}

		effectiveFrom = parsed
	}

	event, err := h.service.RaiseAlert(r.Context(), id, reason, effectiveFrom)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if event == nil {
		// монитор уже в ALERT, новое событие не создано
		w.WriteHeader(http.StatusConflict)
		return
	}

	h.writeJSON(w, http.StatusCreated, eventResponse{
		ID:        event.ID,
		Kind:      string(models.KindAlert),
		MonitorID: event.MonitorID,
		Status:    string(event.Status),
		Reason:    string(event.Reason),
	})
}

func (h *WatcherHandler) resolveEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.monitorID(w, r)
	if !ok {
		return
	}

	eventID := r.PathValue("eventId")

	var req resolveEventRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Description: "некорректное тело запроса"})
		return
	}

	err := h.service.ResolveEvent(r.Context(), id, models.EventKind(req.Kind), eventID, req.Status, req.User)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *WatcherHandler) monitorID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Description: "некорректный идентификатор монитора"})
		return 0, false
	}

	return id, true
}

func (h *WatcherHandler) writeError(w http.ResponseWriter, err error) {
	var (
		monitorNotFound *domainerrors.ErrMonitorNotFound
		eventNotFound   *domainerrors.ErrEventNotFound
		alreadyExists   *domainerrors.ErrMonitorAlreadyExists
		unknownType     *domainerrors.ErrUnknownContentType
		invalidValue    *domainerrors.ErrInvalidValue
	)

	switch {
	case errors.As(err, &monitorNotFound), errors.As(err, &eventNotFound):
		h.writeJSON(w, http.StatusNotFound, errorResponse{Description: err.Error()})
	case errors.As(err, &alreadyExists):
		h.writeJSON(w, http.StatusConflict, errorResponse{Description: err.Error()})
	case errors.As(err, &unknownType), errors.As(err, &invalidValue):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Description: err.Error()})
	default:
		h.logger.Error("Внутренняя ошибка API",
			"error", err,
		)

		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Description: "внутренняя ошибка сервиса"})
	}
}

func (h *WatcherHandler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Ошибка при сериализации ответа",
			"error", err,
		)
	}
}

func toMonitorResponse(monitor *models.Monitor) monitorResponse {
	response := monitorResponse{
		ID:              monitor.ID,
		OrgCode:         monitor.OrgCode,
		ContentType:     string(monitor.ContentType),
		Name:            monitor.Name,
		GUID:            monitor.GUID(),
		IntervalMinutes: monitor.IntervalMinutes,
		Sites:           monitor.Sites,
		MaxResults:      monitor.MaxResults,
		Keyword:         monitor.Keyword,
		Enabled:         monitor.Enabled,
		State:           string(monitor.State),
		SnapshotCount:   monitor.Snapshot.Count(),
		ErrorMessage:    monitor.ErrorMessage,
		RetryCount:      monitor.RetryCount,
		PageTitle:       monitor.PageTitle,
	}

	if !monitor.LastExecuted.IsZero() {
		response.LastExecuted = monitor.LastExecuted.Format(time.RFC3339)
	}

	if !monitor.LastSucceeded.IsZero() {
		response.LastSucceeded = monitor.LastSucceeded.Format(time.RFC3339)
	}

	if monitor.OpenEvent != nil {
		response.OpenEventKind = string(monitor.OpenEvent.Kind)
		response.OpenEventID = monitor.OpenEvent.ID
	}

	return response
}
