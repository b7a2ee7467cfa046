package mcpapi

import (
	"context"
	"fmt"
	"time"

	"github.com/evanschultz/agenda/internal/adapters/server/common"
	"github.com/evanschultz/agenda/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// registerAppointmentTools registers appointment listing and next-steps tools.
func registerAppointmentTools(srv *mcpserver.MCPServer, appointments common.AppointmentService) {
	srv.AddTool(
		mcp.NewTool(
			"agenda.list_appointments",
			mcp.WithDescription("List appointments ordered by date and start time, with optional date range and keyword."),
			mcp.WithString("data_inicio", mcp.Description("Earliest date (YYYY-MM-DD)")),
			mcp.WithString("data_fim", mcp.Description("Latest date (YYYY-MM-DD)")),
			mcp.WithString("palavra_chave", mcp.Description("Keyword or title substring")),
			mcp.WithNumber("page", mcp.Description("1-based page number")),
			mcp.WithNumber("per_page", mcp.Description("Page size (default 10)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			page, err := appointments.ListAppointments(ctx, common.ListAppointmentsRequest{
				Page:    req.GetInt("page", 1),
				PerPage: req.GetInt("per_page", domain.DefaultPerPage),
				From:    req.GetString("data_inicio", ""),
				To:      req.GetString("data_fim", ""),
				Keyword: req.GetString("palavra_chave", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"items": page.Items,
				"meta":  page.Meta,
			})
			if err != nil {
				return nil, fmt.Errorf("encode list_appointments result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"agenda.generate_next_steps",
			mcp.WithDescription("Derive follow-up actions from meeting notes and store them on the appointment."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Appointment id")),
			mcp.WithString("notas_reuniao", mcp.Required(), mcp.Description("Meeting notes")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			notes, err := req.RequireString("notas_reuniao")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			steps, err := appointments.GenerateNextSteps(ctx, id, notes)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(steps)
			if err != nil {
				return nil, fmt.Errorf("encode generate_next_steps result: %w", err)
			}
			return result, nil
		},
	)
}

// registerDashboardTools registers dashboard aggregate tools.
func registerDashboardTools(srv *mcpserver.MCPServer, dashboard common.DashboardService) {
	srv.AddTool(
		mcp.NewTool(
			"agenda.dashboard_stats",
			mcp.WithDescription("Return task counts by status, priority and category plus appointment counts."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			stats, err := dashboard.DashboardStats(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(stats)
			if err != nil {
				return nil, fmt.Errorf("encode dashboard_stats result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"agenda.urgent_items",
			mcp.WithDescription("Return open tasks that are urgent or due soon, and appointments for today and tomorrow."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			items, err := dashboard.UrgentItems(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(items)
			if err != nil {
				return nil, fmt.Errorf("encode urgent_items result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"agenda.calendar_month",
			mcp.WithDescription("Return appointments and due tasks bucketed by date for one month."),
			mcp.WithNumber("year", mcp.Description("Year (defaults to the current year)")),
			mcp.WithNumber("month", mcp.Description("Month 1-12 (defaults to the current month)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			now := time.Now()
			month, err := dashboard.CalendarMonth(ctx, common.CalendarRequest{
				Year:  req.GetInt("year", now.Year()),
				Month: req.GetInt("month", int(now.Month())),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(month)
			if err != nil {
				return nil, fmt.Errorf("encode calendar_month result: %w", err)
			}
			return result, nil
		},
	)
}
