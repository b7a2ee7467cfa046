// Package httpapi provides the REST HTTP adapter for the server surfaces.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/evanschultz/agenda/internal/adapters/server/common"
	"github.com/evanschultz/agenda/internal/domain"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// Handler serves the REST subrouter mounted under `/api`.
type Handler struct {
	service common.AgendaService
	now     func() time.Time
}

// Envelope wraps every successful response.
type Envelope struct {
	Success bool             `json:"success"`
	Data    any              `json:"data,omitempty"`
	Meta    *domain.PageMeta `json:"meta,omitempty"`
	Message string           `json:"message,omitempty"`
}

// ErrorEnvelope wraps every failed response.
type ErrorEnvelope struct {
	Success bool     `json:"success"`
	Code    string   `json:"code"`
	Error   string   `json:"error"`
	Errors  []string `json:"errors,omitempty"`
}

// statusRequest is the PATCH `/tasks/{id}/status` body.
type statusRequest struct {
	Status string `json:"status"`
}

// nextStepsRequest is the POST `/appointments/{id}/next-steps` body.
type nextStepsRequest struct {
	MeetingNotes string `json:"notas_reuniao"`
}

// NewHandler constructs one HTTP API adapter over the agenda service.
func NewHandler(service common.AgendaService) *Handler {
	return &Handler{
		service: service,
		now:     time.Now,
	}
}

// ServeHTTP routes one API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeErrorFrom(w, fmt.Errorf("agenda service is not configured: %w", common.ErrServiceUnavailable))
		return
	}
	segments := strings.Split(normalizePath(r.URL.Path), "/")
	switch segments[0] {
	case "tasks":
		h.routeTasks(w, r, segments[1:])
	case "appointments":
		h.routeAppointments(w, r, segments[1:])
	case "dashboard":
		h.routeDashboard(w, r, segments[1:])
	default:
		writeNotFound(w)
	}
}

// routeTasks dispatches `/tasks` routes.
func (h *Handler) routeTasks(w http.ResponseWriter, r *http.Request, rest []string) {
	switch {
	case len(rest) == 0:
		switch r.Method {
		case http.MethodGet:
			h.handleListTasks(w, r)
		case http.MethodPost:
			h.handleCreateTask(w, r)
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	case len(rest) == 1 && rest[0] == "completed":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleListCompletedTasks(w, r)
	case len(rest) == 1:
		switch r.Method {
		case http.MethodGet:
			h.handleGetTask(w, r, rest[0])
		case http.MethodPut:
			h.handleUpdateTask(w, r, rest[0])
		case http.MethodDelete:
			h.handleDeleteTask(w, r, rest[0])
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
		}
	case len(rest) == 2 && rest[1] == "status":
		if r.Method != http.MethodPatch {
			writeMethodNotAllowed(w, http.MethodPatch)
			return
		}
		h.handleUpdateTaskStatus(w, r, rest[0])
	default:
		writeNotFound(w)
	}
}

// routeAppointments dispatches `/appointments` routes.
func (h *Handler) routeAppointments(w http.ResponseWriter, r *http.Request, rest []string) {
	switch {
	case len(rest) == 0:
		switch r.Method {
		case http.MethodGet:
			h.handleListAppointments(w, r)
		case http.MethodPost:
			h.handleCreateAppointment(w, r)
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	case len(rest) == 1:
		switch r.Method {
		case http.MethodGet:
			h.handleGetAppointment(w, r, rest[0])
		case http.MethodPut:
			h.handleUpdateAppointment(w, r, rest[0])
		case http.MethodDelete:
			h.handleDeleteAppointment(w, r, rest[0])
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
		}
	case len(rest) == 2 && rest[1] == "next-steps":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleGenerateNextSteps(w, r, rest[0])
	default:
		writeNotFound(w)
	}
}

// routeDashboard dispatches `/dashboard` routes.
func (h *Handler) routeDashboard(w http.ResponseWriter, r *http.Request, rest []string) {
	if len(rest) != 1 {
		writeNotFound(w)
		return
	}
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	switch rest[0] {
	case "stats":
		stats, err := h.service.DashboardStats(r.Context())
		if err != nil {
			writeErrorFrom(w, err)
			return
		}
		writeData(w, http.StatusOK, stats)
	case "urgent":
		items, err := h.service.UrgentItems(r.Context())
		if err != nil {
			writeErrorFrom(w, err)
			return
		}
		writeData(w, http.StatusOK, items)
	case "calendar":
		h.handleCalendar(w, r)
	default:
		writeNotFound(w)
	}
}

// handleListTasks serves GET `/tasks`.
func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, perPage, err := parsePage(query)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	result, err := h.service.ListTasks(r.Context(), common.ListTasksRequest{
		Page:     page,
		PerPage:  perPage,
		Status:   strings.TrimSpace(query.Get("status")),
		Priority: strings.TrimSpace(query.Get("prioridade")),
		Category: strings.TrimSpace(query.Get("categoria")),
		Keyword:  strings.TrimSpace(query.Get("palavra_chave")),
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: result.Items, Meta: &result.Meta})
}

// handleListCompletedTasks serves GET `/tasks/completed`.
func (h *Handler) handleListCompletedTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.ListCompletedTasks(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeData(w, http.StatusOK, tasks)
}

// handleGetTask serves GET `/tasks/{id}`.
func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request, id string) {
	task, err := h.service.GetTask(r.Context(), id)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeData(w, http.StatusOK, task)
}

// handleCreateTask serves POST `/tasks`.
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in domain.TaskInput
	if err := decodeJSONBody(r.Context(), w, r, &in); err != nil {
		writeErrorFrom(w, err)
		return
	}
	task, err := h.service.CreateTask(r.Context(), in)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeData(w, http.StatusCreated, task)
}

// handleUpdateTask serves PUT `/tasks/{id}`.
func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request, id string) {
	var in domain.TaskInput
	if err := decodeJSONBody(r.Context(), w, r, &in); err != nil {
		writeErrorFrom(w, err)
		return
	}
	task, err := h.service.UpdateTask(r.Context(), id, in)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeData(w, http.StatusOK, task)
}

// handleUpdateTaskStatus serves PATCH `/tasks/{id}/status`.
func (h *Handler) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request, id string) {
	var in statusRequest
	if err := decodeJSONBody(r.Context(), w, r, &in); err != nil {
		writeErrorFrom(w, err)
		return
	}
	if strings.TrimSpace(in.Status) == "" {
		writeJSONError(w, http.StatusBadRequest, ErrorEnvelope{Code: "invalid_request", Error: "status is required"})
		return
	}
	task, err := h.service.UpdateTaskStatus(r.Context(), id, in.Status)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeData(w, http.StatusOK, task)
}

// handleDeleteTask serves DELETE `/tasks/{id}`.
func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.DeleteTask(r.Context(), id); err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "tarefa excluída"})
}

// handleListAppointments serves GET `/appointments`.
func (h *Handler) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, perPage, err := parsePage(query)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	result, err := h.service.ListAppointments(r.Context(), common.ListAppointmentsRequest{
		Page:    page,
		PerPage: perPage,
		From:    strings.TrimSpace(query.Get("data_inicio")),
		To:      strings.TrimSpace(query.Get("data_fim")),
		Keyword: strings.TrimSpace(query.Get("palavra_chave")),
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: result.Items, Meta: &result.Meta})
}

// handleGetAppointment serves GET `/appointments/{id}`.
func (h *Handler) handleGetAppointment(w http.ResponseWriter, r *http.Request, id string) {
	appt, err := h.service.GetAppointment(r.Context(), id)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeData(w, http.StatusOK, appt)
}

// handleCreateAppointment serves POST `/appointments`.
func (h *Handler) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	var in domain.AppointmentInput
	if err := decodeJSONBody(r.Context(), w, r, &in); err != nil {
		writeErrorFrom(w, err)
		return
	}
	appt, err := h.service.CreateAppointment(r.Context(), in)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeData(w, http.StatusCreated, appt)
}

// handleUpdateAppointment serves PUT `/appointments/{id}`.
func (h *Handler) handleUpdateAppointment(w http.ResponseWriter, r *http.Request, id string) {
	var in domain.AppointmentInput
	if err := decodeJSONBody(r.Context(), w, r, &in); err != nil {
		writeErrorFrom(w, err)
		return
	}
	appt, err := h.service.UpdateAppointment(r.Context(), id, in)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeData(w, http.StatusOK, appt)
}

// handleDeleteAppointment serves DELETE `/appointments/{id}`.
func (h *Handler) handleDeleteAppointment(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.DeleteAppointment(r.Context(), id); err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "compromisso excluído"})
}

// handleGenerateNextSteps serves POST `/appointments/{id}/next-steps`.
func (h *Handler) handleGenerateNextSteps(w http.ResponseWriter, r *http.Request, id string) {
	var in nextStepsRequest
	if err := decodeOptionalJSONBody(r.Context(), w, r, &in); err != nil {
		writeErrorFrom(w, err)
		return
	}
	result, err := h.service.GenerateNextSteps(r.Context(), id, in.MeetingNotes)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

// handleCalendar serves GET `/dashboard/calendar`; missing year or month default to the current one.
func (h *Handler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	query := r.URL.Query()
	year, err := parseIntParam(query, "year", now.Year())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	month, err := parseIntParam(query, "month", int(now.Month()))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	buckets, err := h.service.CalendarMonth(r.Context(), common.CalendarRequest{Year: year, Month: month})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeData(w, http.StatusOK, buckets)
}

// parsePage reads `page` and `per_page` query values; zero means default.
func parsePage(query url.Values) (int, int, error) {
	page, err := parseIntParam(query, "page", 0)
	if err != nil {
		return 0, 0, err
	}
	perPage, err := parseIntParam(query, "per_page", 0)
	if err != nil {
		return 0, 0, err
	}
	return page, perPage, nil
}

// parseIntParam parses one optional integer query value.
func parseIntParam(query url.Values, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(query.Get(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, errors.Join(common.ErrInvalidRequest, err))
	}
	return value, nil
}

// normalizePath canonicalizes one request path for route matching.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, "/")
	return path
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	if err == nil {
		writeJSONError(w, http.StatusInternalServerError, ErrorEnvelope{
			Code:  "internal_error",
			Error: "unknown error",
		})
		return
	}

	env := ErrorEnvelope{Error: err.Error()}
	var reqErr *common.Error
	if errors.As(err, &reqErr) {
		messages := reqErr.Messages()
		env.Error = strings.Join(messages, "; ")
		if len(messages) > 1 {
			env.Errors = messages
		}
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrNotFound):
		status, env.Code = http.StatusNotFound, "not_found"
	case errors.Is(err, common.ErrInvalidRequest):
		status, env.Code = http.StatusBadRequest, "invalid_request"
	case errors.Is(err, common.ErrServiceUnavailable):
		status, env.Code = http.StatusServiceUnavailable, "service_unavailable"
	default:
		env.Code = "internal_error"
	}
	writeJSONError(w, status, env)
}

// writeNotFound writes a structured 404 for unknown endpoints.
func writeNotFound(w http.ResponseWriter) {
	writeJSONError(w, http.StatusNotFound, ErrorEnvelope{
		Code:  "not_found",
		Error: "endpoint not found",
	})
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, ErrorEnvelope{
		Code:  "method_not_allowed",
		Error: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, env ErrorEnvelope) {
	env.Success = false
	writeJSON(w, statusCode, env)
}

// writeData writes one success envelope carrying data.
func writeData(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, Envelope{Success: true, Data: data})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"success":false,"code":"encode_error","error":%q}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	// Reject trailing payloads so malformed JSON bodies fail closed.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", common.ErrInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}

// decodeOptionalJSONBody decodes one optional JSON body and ignores empty payloads.
func decodeOptionalJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(out)
	if err == nil {
		select {
		case <-ctx.Done():
			return fmt.Errorf("request canceled: %w", ctx.Err())
		default:
			return nil
		}
	}
	if errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
}
