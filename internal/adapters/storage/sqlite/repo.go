package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanschultz/agenda/internal/app"
	"github.com/evanschultz/agenda/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Repository stores tasks and appointments in sqlite.
type Repository struct {
	db *sql.DB
}

// Open opens the requested operation.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens a private in-memory database.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// One connection keeps every query on the same in-memory database.
	db.SetMaxOpenConns(1)
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tarefas (
			id TEXT PRIMARY KEY,
			titulo TEXT NOT NULL,
			descricao TEXT NOT NULL DEFAULT '',
			categoria TEXT NOT NULL,
			palavra_chave TEXT NOT NULL DEFAULT '',
			prioridade TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pendente',
			data_limite TEXT NOT NULL DEFAULT '',
			responsaveis TEXT NOT NULL DEFAULT '',
			observacoes TEXT NOT NULL DEFAULT '',
			checklist TEXT NOT NULL DEFAULT '',
			criado_em TEXT NOT NULL,
			atualizado_em TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS compromissos (
			id TEXT PRIMARY KEY,
			titulo TEXT NOT NULL,
			participantes TEXT NOT NULL DEFAULT '',
			assunto_principal TEXT NOT NULL DEFAULT '',
			palavra_chave TEXT NOT NULL DEFAULT '',
			local_link TEXT NOT NULL DEFAULT '',
			data TEXT NOT NULL,
			horario_inicio TEXT NOT NULL,
			horario_fim TEXT NOT NULL,
			objetivo TEXT NOT NULL DEFAULT '',
			lembretes TEXT NOT NULL DEFAULT '',
			notas_reuniao TEXT NOT NULL DEFAULT '',
			proximos_passos TEXT NOT NULL DEFAULT '',
			criado_em TEXT NOT NULL,
			atualizado_em TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tarefas_status ON tarefas(status);`,
		`CREATE INDEX IF NOT EXISTS idx_tarefas_data_limite ON tarefas(data_limite);`,
		`CREATE INDEX IF NOT EXISTS idx_compromissos_data ON compromissos(data, horario_inicio);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

const taskColumns = `id, titulo, descricao, categoria, palavra_chave, prioridade, status, data_limite,
	responsaveis, observacoes, checklist, criado_em, atualizado_em`

// taskOrder sorts urgent first, then by due date with undated tasks last.
const taskOrder = ` ORDER BY
	CASE prioridade
		WHEN 'urgente' THEN 1
		WHEN 'alta' THEN 2
		WHEN 'media' THEN 3
		ELSE 4
	END,
	CASE WHEN data_limite = '' THEN 1 ELSE 0 END,
	data_limite ASC,
	criado_em ASC`

// CreateTask creates task.
func (r *Repository) CreateTask(ctx context.Context, t domain.Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tarefas(`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID,
		t.Title,
		t.Description,
		t.Category,
		t.Keyword,
		string(t.Priority),
		string(t.Status),
		t.DueDate,
		t.Owners,
		t.Notes,
		t.Checklist,
		ts(t.CreatedAt),
		ts(t.UpdatedAt),
	)
	return err
}

// UpdateTask updates state for the requested operation.
func (r *Repository) UpdateTask(ctx context.Context, t domain.Task) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tarefas
		SET titulo = ?, descricao = ?, categoria = ?, palavra_chave = ?, prioridade = ?, status = ?, data_limite = ?,
			responsaveis = ?, observacoes = ?, checklist = ?, atualizado_em = ?
		WHERE id = ?
	`,
		t.Title,
		t.Description,
		t.Category,
		t.Keyword,
		string(t.Priority),
		string(t.Status),
		t.DueDate,
		t.Owners,
		t.Notes,
		t.Checklist,
		ts(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetTask returns one task by id.
func (r *Repository) GetTask(ctx context.Context, id string) (domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tarefas WHERE id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, app.ErrNotFound
	}
	return task, err
}

// DeleteTask deletes task.
func (r *Repository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tarefas WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// ListTasks lists one filtered page of tasks and the total match count.
func (r *Repository) ListTasks(ctx context.Context, filter domain.TaskFilter, page domain.PageRequest) ([]domain.Task, int, error) {
	where, args := taskWhere(filter)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tarefas`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	query := `SELECT ` + taskColumns + ` FROM tarefas` + where + taskOrder + ` LIMIT ? OFFSET ?`
	tasks, err := r.queryTasks(ctx, query, append(args, page.PerPage, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// ListAllTasks lists every task.
func (r *Repository) ListAllTasks(ctx context.Context) ([]domain.Task, error) {
	return r.queryTasks(ctx, `SELECT `+taskColumns+` FROM tarefas`+taskOrder)
}

// ListTasksDueBetween lists tasks whose due date falls within [from, to].
func (r *Repository) ListTasksDueBetween(ctx context.Context, from, to string) ([]domain.Task, error) {
	return r.queryTasks(ctx, `SELECT `+taskColumns+` FROM tarefas WHERE data_limite != '' AND data_limite >= ? AND data_limite <= ?`+taskOrder, from, to)
}

// queryTasks runs one task query and scans every row.
func (r *Repository) queryTasks(ctx context.Context, query string, args ...any) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

// taskWhere builds the WHERE clause for a task filter.
func taskWhere(filter domain.TaskFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if filter.Status != "" {
		clauses = append(clauses, `status = ?`)
		args = append(args, strings.ToLower(string(filter.Status)))
	}
	if filter.Priority != "" {
		clauses = append(clauses, `prioridade = ?`)
		args = append(args, strings.ToLower(string(filter.Priority)))
	}
	if filter.Category != "" {
		clauses = append(clauses, `categoria LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(filter.Category))
	}
	if filter.Keyword != "" {
		clauses = append(clauses, `palavra_chave LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(filter.Keyword))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(clauses, ` AND `), args
}

const appointmentColumns = `id, titulo, participantes, assunto_principal, palavra_chave, local_link, data, horario_inicio,
	horario_fim, objetivo, lembretes, notas_reuniao, proximos_passos, criado_em, atualizado_em`

const appointmentOrder = ` ORDER BY data ASC, horario_inicio ASC`

// CreateAppointment creates appointment.
func (r *Repository) CreateAppointment(ctx context.Context, a domain.Appointment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO compromissos(`+appointmentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.ID,
		a.Title,
		a.Participants,
		a.Subject,
		a.Keyword,
		a.Location,
		a.Date,
		a.StartTime,
		a.EndTime,
		a.Objective,
		a.Reminders,
		a.MeetingNotes,
		a.NextSteps,
		ts(a.CreatedAt),
		ts(a.UpdatedAt),
	)
	return err
}

// UpdateAppointment updates state for the requested operation.
func (r *Repository) UpdateAppointment(ctx context.Context, a domain.Appointment) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE compromissos
		SET titulo = ?, participantes = ?, assunto_principal = ?, palavra_chave = ?, local_link = ?, data = ?,
			horario_inicio = ?, horario_fim = ?, objetivo = ?, lembretes = ?, notas_reuniao = ?, proximos_passos = ?,
			atualizado_em = ?
		WHERE id = ?
	`,
		a.Title,
		a.Participants,
		a.Subject,
		a.Keyword,
		a.Location,
		a.Date,
		a.StartTime,
		a.EndTime,
		a.Objective,
		a.Reminders,
		a.MeetingNotes,
		a.NextSteps,
		ts(a.UpdatedAt),
		a.ID,
	)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetAppointment returns one appointment by id.
func (r *Repository) GetAppointment(ctx context.Context, id string) (domain.Appointment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+appointmentColumns+` FROM compromissos WHERE id = ?`, id)
	appt, err := scanAppointment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Appointment{}, app.ErrNotFound
	}
	return appt, err
}

// DeleteAppointment deletes appointment.
func (r *Repository) DeleteAppointment(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM compromissos WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// ListAppointments lists one filtered page of appointments and the total match count.
func (r *Repository) ListAppointments(ctx context.Context, filter domain.AppointmentFilter, page domain.PageRequest) ([]domain.Appointment, int, error) {
	where, args := appointmentWhere(filter)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM compromissos`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	query := `SELECT ` + appointmentColumns + ` FROM compromissos` + where + appointmentOrder + ` LIMIT ? OFFSET ?`
	appts, err := r.queryAppointments(ctx, query, append(args, page.PerPage, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	return appts, total, nil
}

// ListAllAppointments lists every appointment matching the filter.
func (r *Repository) ListAllAppointments(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	where, args := appointmentWhere(filter)
	return r.queryAppointments(ctx, `SELECT `+appointmentColumns+` FROM compromissos`+where+appointmentOrder, args...)
}

// queryAppointments runs one appointment query and scans every row.
func (r *Repository) queryAppointments(ctx context.Context, query string, args ...any) ([]domain.Appointment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Appointment{}
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, appt)
	}
	return out, rows.Err()
}

// appointmentWhere builds the WHERE clause for an appointment filter.
func appointmentWhere(filter domain.AppointmentFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if filter.From != "" {
		clauses = append(clauses, `data >= ?`)
		args = append(args, filter.From)
	}
	if filter.To != "" {
		clauses = append(clauses, `data <= ?`)
		args = append(args, filter.To)
	}
	if filter.Keyword != "" {
		pattern := likePattern(filter.Keyword)
		clauses = append(clauses, `(palavra_chave LIKE ? ESCAPE '\' OR titulo LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(clauses, ` AND `), args
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTask scans one task row.
func scanTask(s scanner) (domain.Task, error) {
	var (
		t                     domain.Task
		priority, status      string
		createdRaw, updateRaw string
	)
	if err := s.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Category,
		&t.Keyword,
		&priority,
		&status,
		&t.DueDate,
		&t.Owners,
		&t.Notes,
		&t.Checklist,
		&createdRaw,
		&updateRaw,
	); err != nil {
		return domain.Task{}, err
	}
	t.Priority = domain.Priority(priority)
	t.Status = domain.Status(status)
	t.CreatedAt = parseTS(createdRaw)
	t.UpdatedAt = parseTS(updateRaw)
	return t, nil
}

// scanAppointment scans one appointment row.
func scanAppointment(s scanner) (domain.Appointment, error) {
	var (
		a                     domain.Appointment
		createdRaw, updateRaw string
	)
	if err := s.Scan(
		&a.ID,
		&a.Title,
		&a.Participants,
		&a.Subject,
		&a.Keyword,
		&a.Location,
		&a.Date,
		&a.StartTime,
		&a.EndTime,
		&a.Objective,
		&a.Reminders,
		&a.MeetingNotes,
		&a.NextSteps,
		&createdRaw,
		&updateRaw,
	); err != nil {
		return domain.Appointment{}, err
	}
	a.CreatedAt = parseTS(createdRaw)
	a.UpdatedAt = parseTS(updateRaw)
	return a, nil
}

// likePattern escapes LIKE wildcards so user input matches literally.
func likePattern(v string) string {
	v = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(v)
	return "%" + v + "%"
}

// translateNoRows handles translate no rows.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses input into a normalized form.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}
