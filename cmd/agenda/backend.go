package main

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/evanschultz/agenda/internal/adapters/restclient"
	"github.com/evanschultz/agenda/internal/adapters/server"
	"github.com/evanschultz/agenda/internal/adapters/server/common"
	"github.com/evanschultz/agenda/internal/adapters/storage/sqlite"
	"github.com/evanschultz/agenda/internal/app"
	"github.com/evanschultz/agenda/internal/tui"
	"github.com/google/uuid"
)

// serveRunner blocks serving HTTP until ctx is canceled.
var serveRunner = server.Run

// embeddedServe serves the in-process backend the TUI talks to.
var embeddedServe = server.Serve

// openLocalService opens the sqlite repository behind one application service.
func openLocalService(env *runtimeEnv) (*app.Service, func(), error) {
	dbPath := env.cfg.Database.Path
	env.logger.Info("opening sqlite repository", "db_path", dbPath)
	repo, err := sqlite.Open(dbPath)
	if err != nil {
		env.logger.Error("sqlite open failed", "db_path", dbPath, "err", err)
		return nil, nil, fmt.Errorf("open sqlite repository: %w", err)
	}
	env.logger.Info("sqlite repository ready", "db_path", dbPath, "migrations", "ensured")

	svc := app.NewService(repo, uuid.NewString, nil, app.ServiceConfig{})
	closeRepo := func() {
		if closeErr := repo.Close(); closeErr != nil {
			env.logger.Warn("sqlite close failed", "db_path", dbPath, "err", closeErr)
		}
	}
	return svc, closeRepo, nil
}

// openBackend returns a REST client when a server is configured, else the local service.
func openBackend(env *runtimeEnv) (tui.Service, func(), error) {
	if base := env.cfg.Server.URL; base != "" {
		client, err := restclient.New(apiBaseURL(base, env.cfg.HTTP.APIEndpoint))
		if err != nil {
			return nil, nil, fmt.Errorf("configure api client: %w", err)
		}
		env.logger.Info("using remote backend", "api", client.BaseURL())
		return client, func() {}, nil
	}
	return openLocalService(env)
}

// openTUIBackend returns the REST client the TUI uses. Without a configured
// server it starts one on a loopback port for the lifetime of the TUI.
func openTUIBackend(ctx context.Context, env *runtimeEnv) (tui.Service, func(), error) {
	if env.cfg.Server.URL != "" {
		return openBackend(env)
	}
	svc, closeRepo, err := openLocalService(env)
	if err != nil {
		return nil, nil, err
	}
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		closeRepo()
		return nil, nil, fmt.Errorf("listen embedded server: %w", err)
	}
	addr := listener.Addr().String()
	cfg := serverConfig(env, addr)
	client, err := restclient.New(apiBaseURL("http://"+addr, cfg.APIEndpoint))
	if err != nil {
		_ = listener.Close()
		closeRepo()
		return nil, nil, fmt.Errorf("configure api client: %w", err)
	}

	serveCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- embeddedServe(serveCtx, listener, cfg, server.Dependencies{
			Service: common.NewAppServiceAdapter(svc),
			Logger:  env.logger.requestLogger(),
		})
	}()
	env.logger.Info("embedded server started", "addr", addr)

	stop := func() {
		cancel()
		if err := <-done; err != nil {
			env.logger.Warn("embedded server stopped with error", "err", err)
		}
		closeRepo()
	}
	return client, stop, nil
}

// serverConfig builds the transport config for bind.
func serverConfig(env *runtimeEnv, bind string) server.Config {
	return server.Config{
		HTTPBind:      bind,
		APIEndpoint:   env.cfg.HTTP.APIEndpoint,
		MCPEndpoint:   env.cfg.HTTP.MCPEndpoint,
		ServerName:    "agenda",
		ServerVersion: version,
	}
}

// apiBaseURL joins a server root URL and the API endpoint path.
func apiBaseURL(base, endpoint string) string {
	endpoint = strings.Trim(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		endpoint = "api"
	}
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if strings.HasSuffix(base, "/"+endpoint) {
		return base
	}
	return base + "/" + endpoint
}
