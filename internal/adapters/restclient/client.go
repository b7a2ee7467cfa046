// Package restclient is the thin HTTP client the terminal UI uses to reach the agenda REST API.
package restclient

import (
	"bytes"
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

	"github.com/evanschultz/agenda/internal/app"
	"github.com/evanschultz/agenda/internal/domain"
	"github.com/google/uuid"
)

// defaultTimeout bounds one request when the caller's context has no deadline.
const defaultTimeout = 15 * time.Second

// maxResponseBytes bounds decoded response bodies.
const maxResponseBytes int64 = 8 << 20

// APIError is a non-2xx response reported by the server.
type APIError struct {
	Status  int
	Code    string
	Message string
	Errors  []string
}

// Error returns the server-provided message.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("http %d", e.Status)
}

// IsNotFound reports whether err is a 404 API error.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client calls one agenda REST API base URL.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		if c != nil {
			client.http = c
		}
	}
}

// New builds a client for the API mounted at baseURL, for example `http://127.0.0.1:8080/api`.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("api base url is required")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("api base url %q must use http or https", baseURL)
	}
	client := &Client{
		baseURL: parsed,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// envelope is the success response shape.
type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Meta    *domain.PageMeta `json:"meta"`
}

// errorEnvelope is the failure response shape.
type errorEnvelope struct {
	Code   string   `json:"code"`
	Error  string   `json:"error"`
	Errors []string `json:"errors"`
}

// ListTasks fetches one filtered page of tasks.
func (c *Client) ListTasks(ctx context.Context, filter domain.TaskFilter, page domain.PageRequest) (domain.Page[domain.Task], error) {
	query := pageQuery(page)
	setIf(query, "status", string(filter.Status))
	setIf(query, "prioridade", string(filter.Priority))
	setIf(query, "categoria", filter.Category)
	setIf(query, "palavra_chave", filter.Keyword)

	var items []domain.Task
	meta, err := c.do(ctx, http.MethodGet, "tasks", query, nil, &items)
	if err != nil {
		return domain.Page[domain.Task]{}, err
	}
	return domain.Page[domain.Task]{Items: items, Meta: metaOrDefault(meta, page, len(items))}, nil
}

// ListCompletedTasks fetches every concluded task.
func (c *Client) ListCompletedTasks(ctx context.Context) ([]domain.Task, error) {
	var items []domain.Task
	if _, err := c.do(ctx, http.MethodGet, "tasks/completed", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetTask fetches one task.
func (c *Client) GetTask(ctx context.Context, id string) (domain.Task, error) {
	var task domain.Task
	_, err := c.do(ctx, http.MethodGet, "tasks/"+url.PathEscape(id), nil, nil, &task)
	return task, err
}

// CreateTask creates one task.
func (c *Client) CreateTask(ctx context.Context, in domain.TaskInput) (domain.Task, error) {
	var task domain.Task
	_, err := c.do(ctx, http.MethodPost, "tasks", nil, in, &task)
	return task, err
}

// UpdateTask replaces one task's editable fields.
func (c *Client) UpdateTask(ctx context.Context, id string, in domain.TaskInput) (domain.Task, error) {
	var task domain.Task
	_, err := c.do(ctx, http.MethodPut, "tasks/"+url.PathEscape(id), nil, in, &task)
	return task, err
}

// UpdateTaskStatus patches one task's status.
func (c *Client) UpdateTaskStatus(ctx context.Context, id string, status domain.Status) (domain.Task, error) {
	var task domain.Task
	body := map[string]string{"status": string(status)}
	_, err := c.do(ctx, http.MethodPatch, "tasks/"+url.PathEscape(id)+"/status", nil, body, &task)
	return task, err
}

// DeleteTask removes one task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "tasks/"+url.PathEscape(id), nil, nil, nil)
	return err
}

// ListAppointments fetches one filtered page of appointments.
func (c *Client) ListAppointments(ctx context.Context, filter domain.AppointmentFilter, page domain.PageRequest) (domain.Page[domain.Appointment], error) {
	query := pageQuery(page)
	setIf(query, "data_inicio", filter.From)
	setIf(query, "data_fim", filter.To)
	setIf(query, "palavra_chave", filter.Keyword)

	var items []domain.Appointment
	meta, err := c.do(ctx, http.MethodGet, "appointments", query, nil, &items)
	if err != nil {
		return domain.Page[domain.Appointment]{}, err
	}
	return domain.Page[domain.Appointment]{Items: items, Meta: metaOrDefault(meta, page, len(items))}, nil
}

// GetAppointment fetches one appointment.
func (c *Client) GetAppointment(ctx context.Context, id string) (domain.Appointment, error) {
	var appt domain.Appointment
	_, err := c.do(ctx, http.MethodGet, "appointments/"+url.PathEscape(id), nil, nil, &appt)
	return appt, err
}

// CreateAppointment creates one appointment.
func (c *Client) CreateAppointment(ctx context.Context, in domain.AppointmentInput) (domain.Appointment, error) {
	var appt domain.Appointment
	_, err := c.do(ctx, http.MethodPost, "appointments", nil, in, &appt)
	return appt, err
}

// UpdateAppointment replaces one appointment's editable fields.
func (c *Client) UpdateAppointment(ctx context.Context, id string, in domain.AppointmentInput) (domain.Appointment, error) {
	var appt domain.Appointment
	_, err := c.do(ctx, http.MethodPut, "appointments/"+url.PathEscape(id), nil, in, &appt)
	return appt, err
}

// DeleteAppointment removes one appointment.
func (c *Client) DeleteAppointment(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "appointments/"+url.PathEscape(id), nil, nil, nil)
	return err
}

// GenerateNextSteps asks the server to derive and store next steps from meeting notes.
func (c *Client) GenerateNextSteps(ctx context.Context, id, notes string) (string, error) {
	var out struct {
		NextSteps string `json:"proximos_passos"`
	}
	body := map[string]string{"notas_reuniao": notes}
	if _, err := c.do(ctx, http.MethodPost, "appointments/"+url.PathEscape(id)+"/next-steps", nil, body, &out); err != nil {
		return "", err
	}
	return out.NextSteps, nil
}

// DashboardStats fetches aggregate counts.
func (c *Client) DashboardStats(ctx context.Context) (app.DashboardStats, error) {
	var stats app.DashboardStats
	_, err := c.do(ctx, http.MethodGet, "dashboard/stats", nil, nil, &stats)
	return stats, err
}

// UrgentItems fetches urgent tasks and imminent appointments.
func (c *Client) UrgentItems(ctx context.Context) (app.UrgentItems, error) {
	var items app.UrgentItems
	_, err := c.do(ctx, http.MethodGet, "dashboard/urgent", nil, nil, &items)
	return items, err
}

// CalendarMonth fetches the date-keyed buckets for one month.
func (c *Client) CalendarMonth(ctx context.Context, year int, month time.Month) (domain.CalendarMonth, error) {
	query := url.Values{}
	query.Set("year", strconv.Itoa(year))
	query.Set("month", strconv.Itoa(int(month)))
	out := domain.CalendarMonth{}
	if _, err := c.do(ctx, http.MethodGet, "dashboard/calendar", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do sends one request and decodes the data member of the response envelope into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) (*domain.PageMeta, error) {
	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp.StatusCode, raw)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode %s %s data: %w", method, path, err)
		}
	}
	return env.Meta, nil
}

// decodeAPIError builds an APIError from one failure body.
func decodeAPIError(status int, raw []byte) error {
	apiErr := &APIError{Status: status}
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil {
		apiErr.Code = env.Code
		apiErr.Message = env.Error
		apiErr.Errors = env.Errors
	}
	if apiErr.Message == "" && len(apiErr.Errors) > 0 {
		apiErr.Message = strings.Join(apiErr.Errors, "; ")
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// pageQuery encodes page and per_page when set.
func pageQuery(page domain.PageRequest) url.Values {
	query := url.Values{}
	if page.Page > 0 {
		query.Set("page", strconv.Itoa(page.Page))
	}
	if page.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(page.PerPage))
	}
	return query
}

// setIf sets key when value is non-empty.
func setIf(query url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		query.Set(key, value)
	}
}

// metaOrDefault falls back to a single-page meta when the server omits one.
func metaOrDefault(meta *domain.PageMeta, page domain.PageRequest, count int) domain.PageMeta {
	if meta != nil {
		return *meta
	}
	return domain.NewPageMeta(page, count)
}
