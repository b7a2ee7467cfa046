package restclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/evanschultz/agenda/internal/adapters/server"
	"github.com/evanschultz/agenda/internal/adapters/server/common"
	"github.com/evanschultz/agenda/internal/adapters/storage/sqlite"
	"github.com/evanschultz/agenda/internal/app"
	"github.com/evanschultz/agenda/internal/domain"
	"github.com/google/uuid"
)

// newBackend starts a full in-memory backend and returns a client for it.
func newBackend(t *testing.T) *Client {
	t.Helper()
	repo, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	svc := app.NewService(repo, uuid.NewString, time.Now, app.ServiceConfig{})
	handler, _, err := server.NewHandler(server.Config{}, server.Dependencies{Service: common.NewAppServiceAdapter(svc)})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(srv.URL+"/api/", WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func TestNewValidatesBaseURL(t *testing.T) {
	for _, raw := range []string{"", "   ", "ftp://example.com", "://bad"} {
		if _, err := New(raw); err == nil {
			t.Fatalf("New(%q) expected error", raw)
		}
	}
	client, err := New("http://127.0.0.1:8080/api/")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if client.BaseURL() != "http://127.0.0.1:8080/api" {
		t.Fatalf("BaseURL() = %q", client.BaseURL())
	}
}

func TestClientTaskRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newBackend(t)

	for i, title := range []string{"Alpha", "Beta", "Gamma"} {
		priority := domain.PriorityLow
		if i == 2 {
			priority = domain.PriorityUrgent
		}
		if _, err := client.CreateTask(ctx, domain.TaskInput{Title: title, Category: "Dev", Priority: priority}); err != nil {
			t.Fatalf("CreateTask(%q) error = %v", title, err)
		}
	}

	page, err := client.ListTasks(ctx, domain.TaskFilter{}, domain.PageRequest{Page: 1, PerPage: 2})
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if page.Meta.Total != 3 || page.Meta.TotalPages != 2 || len(page.Items) != 2 {
		t.Fatalf("unexpected page %#v", page.Meta)
	}
	if page.Items[0].Title != "Gamma" {
		t.Fatalf("expected urgent task first, got %q", page.Items[0].Title)
	}

	task := page.Items[1]
	task.Title = "Beta 2"
	updated, err := client.UpdateTask(ctx, task.ID, task.Input())
	if err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	if updated.Title != "Beta 2" {
		t.Fatalf("unexpected updated title %q", updated.Title)
	}

	moved, err := client.UpdateTaskStatus(ctx, task.ID, domain.StatusDone)
	if err != nil {
		t.Fatalf("UpdateTaskStatus() error = %v", err)
	}
	if moved.Status != domain.StatusDone {
		t.Fatalf("unexpected status %q", moved.Status)
	}
	completed, err := client.ListCompletedTasks(ctx)
	if err != nil {
		t.Fatalf("ListCompletedTasks() error = %v", err)
	}
	if len(completed) != 1 || completed[0].ID != task.ID {
		t.Fatalf("unexpected completed tasks %#v", completed)
	}

	if err := client.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if _, err := client.GetTask(ctx, task.ID); !IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestClientSurfacesValidationErrors(t *testing.T) {
	client := newBackend(t)

	_, err := client.CreateTask(context.Background(), domain.TaskInput{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.Status != http.StatusBadRequest || len(apiErr.Errors) != 2 || apiErr.Message == "" {
		t.Fatalf("unexpected api error %#v", apiErr)
	}
}

func TestClientAppointmentsAndDashboard(t *testing.T) {
	ctx := context.Background()
	client := newBackend(t)
	today := time.Now()
	date := domain.FormatDate(today)

	appt, err := client.CreateAppointment(ctx, domain.AppointmentInput{
		Title:     "Daily",
		Date:      date,
		StartTime: "09:00",
		EndTime:   "09:15",
	})
	if err != nil {
		t.Fatalf("CreateAppointment() error = %v", err)
	}
	if _, err := client.CreateTask(ctx, domain.TaskInput{Title: "Prazo", Category: "Ops", DueDate: date}); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	page, err := client.ListAppointments(ctx, domain.AppointmentFilter{From: date, To: date}, domain.PageRequest{})
	if err != nil {
		t.Fatalf("ListAppointments() error = %v", err)
	}
	if len(page.Items) != 1 || page.Meta.PerPage != domain.DefaultPerPage {
		t.Fatalf("unexpected appointment page %#v", page)
	}

	steps, err := client.GenerateNextSteps(ctx, appt.ID, "Decisão: adiar. Enviar ata.")
	if err != nil {
		t.Fatalf("GenerateNextSteps() error = %v", err)
	}
	if steps != "• Documentar decisão tomada\n• Enviar material/email" {
		t.Fatalf("unexpected next steps %q", steps)
	}
	if _, err := client.GenerateNextSteps(ctx, appt.ID, ""); err == nil {
		t.Fatal("expected error for empty notes")
	}

	stats, err := client.DashboardStats(ctx)
	if err != nil {
		t.Fatalf("DashboardStats() error = %v", err)
	}
	if stats.Tasks.Total != 1 || stats.Appointments.Today != 1 {
		t.Fatalf("unexpected stats %#v", stats)
	}
	urgent, err := client.UrgentItems(ctx)
	if err != nil {
		t.Fatalf("UrgentItems() error = %v", err)
	}
	if len(urgent.Tasks) != 1 || len(urgent.Appointments) != 1 {
		t.Fatalf("unexpected urgent items %#v", urgent)
	}

	month, err := client.CalendarMonth(ctx, today.Year(), today.Month())
	if err != nil {
		t.Fatalf("CalendarMonth() error = %v", err)
	}
	if month[date].Total() != 2 {
		t.Fatalf("expected 2 events on %s, got %#v", date, month[date])
	}

	if err := client.DeleteAppointment(ctx, appt.ID); err != nil {
		t.Fatalf("DeleteAppointment() error = %v", err)
	}
	if _, err := client.GetAppointment(ctx, appt.ID); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestClientErrorWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("missing request id header")
		}
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = client.DashboardStats(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadGateway || apiErr.Message != http.StatusText(http.StatusBadGateway) {
		t.Fatalf("unexpected api error %#v", apiErr)
	}
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := New(url)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = client.ListTasks(context.Background(), domain.TaskFilter{}, domain.PageRequest{})
	if err == nil {
		t.Fatal("expected transport error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("expected transport error, got api error %#v", apiErr)
	}
}
