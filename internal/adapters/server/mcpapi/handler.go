// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/evanschultz/agenda/internal/adapters/server/common"
	"github.com/evanschultz/agenda/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing task, appointment and dashboard tools.
func NewHandler(cfg Config, service common.AgendaService) (*Handler, error) {
	if service == nil {
		return nil, fmt.Errorf("agenda service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerTaskTools(mcpSrv, service)
	registerAppointmentTools(mcpSrv, service)
	registerDashboardTools(mcpSrv, service)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "agenda"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// statusValues lists the accepted status enum values.
func statusValues() []string {
	out := make([]string, 0, 4)
	for _, status := range domain.Statuses() {
		out = append(out, string(status))
	}
	return out
}

// priorityValues lists the accepted priority enum values.
func priorityValues() []string {
	out := make([]string, 0, 4)
	for _, priority := range domain.Priorities() {
		out = append(out, string(priority))
	}
	return out
}

// registerTaskTools registers the task list/get/create/move tools.
func registerTaskTools(srv *mcpserver.MCPServer, tasks common.TaskService) {
	srv.AddTool(
		mcp.NewTool(
			"agenda.list_tasks",
			mcp.WithDescription("List tasks ordered by priority then due date, with optional filters."),
			mcp.WithString("status", mcp.Description("Filter by status"), mcp.Enum(statusValues()...)),
			mcp.WithString("prioridade", mcp.Description("Filter by priority"), mcp.Enum(priorityValues()...)),
			mcp.WithString("categoria", mcp.Description("Category substring")),
			mcp.WithString("palavra_chave", mcp.Description("Keyword substring")),
			mcp.WithNumber("page", mcp.Description("1-based page number")),
			mcp.WithNumber("per_page", mcp.Description("Page size (default 10)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			page, err := tasks.ListTasks(ctx, common.ListTasksRequest{
				Page:     req.GetInt("page", 1),
				PerPage:  req.GetInt("per_page", domain.DefaultPerPage),
				Status:   req.GetString("status", ""),
				Priority: req.GetString("prioridade", ""),
				Category: req.GetString("categoria", ""),
				Keyword:  req.GetString("palavra_chave", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"items": page.Items,
				"meta":  page.Meta,
			})
			if err != nil {
				return nil, fmt.Errorf("encode list_tasks result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"agenda.get_task",
			mcp.WithDescription("Return one task by id."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			task, err := tasks.GetTask(ctx, id)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(task)
			if err != nil {
				return nil, fmt.Errorf("encode get_task result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"agenda.create_task",
			mcp.WithDescription("Create one task. Priority defaults to media and status to pendente."),
			mcp.WithString("titulo", mcp.Required(), mcp.Description("Task title")),
			mcp.WithString("categoria", mcp.Required(), mcp.Description("Task category")),
			mcp.WithString("descricao", mcp.Description("Task description")),
			mcp.WithString("palavra_chave", mcp.Description("Keyword")),
			mcp.WithString("prioridade", mcp.Description("Priority"), mcp.Enum(priorityValues()...)),
			mcp.WithString("status", mcp.Description("Initial status"), mcp.Enum(statusValues()...)),
			mcp.WithString("data_limite", mcp.Description("Due date (YYYY-MM-DD)")),
			mcp.WithString("responsaveis", mcp.Description("Owners")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			title, err := req.RequireString("titulo")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			category, err := req.RequireString("categoria")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			task, err := tasks.CreateTask(ctx, domain.TaskInput{
				Title:       title,
				Category:    category,
				Description: req.GetString("descricao", ""),
				Keyword:     req.GetString("palavra_chave", ""),
				Priority:    domain.Priority(req.GetString("prioridade", "")),
				Status:      domain.Status(req.GetString("status", "")),
				DueDate:     req.GetString("data_limite", ""),
				Owners:      req.GetString("responsaveis", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(task)
			if err != nil {
				return nil, fmt.Errorf("encode create_task result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"agenda.move_task",
			mcp.WithDescription("Move one task to another kanban lane by changing its status."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task id")),
			mcp.WithString("status", mcp.Required(), mcp.Description("Target status"), mcp.Enum(statusValues()...)),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			status, err := req.RequireString("status")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			task, err := tasks.UpdateTaskStatus(ctx, id, status)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(task)
			if err != nil {
				return nil, fmt.Errorf("encode move_task result: %w", err)
			}
			return result, nil
		},
	)
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, common.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, common.ErrServiceUnavailable):
		return mcp.NewToolResultError("service_unavailable: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
