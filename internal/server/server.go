// Package server orchestrates all components: COMMS client, DB, registry, invoker, dispatcher, HTTP health.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	comms "github.com/nats-io/nats.go"

	"github.com/chainmint/interface-registry/internal/config"
	"github.com/chainmint/interface-registry/pkg/commsutil"
	"github.com/chainmint/interface-registry/pkg/db"
	"github.com/chainmint/interface-registry/pkg/dispatcher"
	"github.com/chainmint/interface-registry/pkg/events"
	"github.com/chainmint/interface-registry/pkg/invoker"
	"github.com/chainmint/interface-registry/pkg/registry"
)

const logPrefix = "server:server"

// registryForServer is the subset of registry methods the HTTP handlers use.
type registryForServer interface {
	Health(ctx context.Context) *registry.HealthOutput
	Discover(ctx context.Context, input *registry.DiscoverInput) (*registry.DiscoverOutput, error)
	Describe(ctx context.Context, input *registry.DescribeInput) (*registry.DescribeOutput, error)
}

// Server is the interface-registry orchestrator.
type Server struct {
	cfg        *config.Config
	nc         *comms.Conn
	pool       *pgxpool.Pool
	httpServer *http.Server
	reg        registryForServer
}

// Run starts the server, blocks until shutdown signal, then cleans up.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("%s - failed to load config: %w", logPrefix, err)
	}

	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info(fmt.Sprintf("%s - Starting interface-registry", logPrefix))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &Server{cfg: cfg}

	registrySubject := cfg.RegistrySubject
	if registrySubject == "" {
		registrySubject = commsutil.SubjectRegistry
	}
	slog.Info(fmt.Sprintf("%s - Registry subject: %s", logPrefix, registrySubject))

	// Step 1: Connect to COMMS
	nc, err := commsutil.Connect(cfg.COMMSURL, cfg.COMMSName)
	if err != nil {
		return fmt.Errorf("%s - failed to connect to NATS: %w", logPrefix, err)
	}
	s.nc = nc
	slog.Info(fmt.Sprintf("%s - Connected to NATS at %s", logPrefix, cfg.COMMSURL))

	// Step 2: Connect to database
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		nc.Close()
		return fmt.Errorf("%s - failed to connect to database: %w", logPrefix, err)
	}
	s.pool = pool

	// Step 2b: Run migrations if enabled
	if cfg.RunMigrations {
		migrationSQL, err := db.LoadMigrationFiles(cfg.MigrationPath)
		if err != nil {
			pool.Close()
			nc.Close()
			return fmt.Errorf("%s - failed to load migrations: %w", logPrefix, err)
		}
		if err := db.RunMigrations(ctx, pool, migrationSQL); err != nil {
			pool.Close()
			nc.Close()
			return fmt.Errorf("%s - failed to run migrations: %w", logPrefix, err)
		}
	}

	// Step 3: Create registry (with CommsUrl for resolve responses)
	repo := db.NewRepository(pool)
	publisherOpts := &events.CommsPublisherOpts{}
	if cfg.ChangeEventSubject != "" {
		publisherOpts.GlobalChangeSubject = cfg.ChangeEventSubject
	}
	publisher := events.NewCommsPublisher(nc, publisherOpts)
	regConfig := registry.DefaultConfig()
	regConfig.DefaultEnv = cfg.DefaultEnv
	regConfig.CommsUrl = cfg.CommsClientURL
	if regConfig.CommsUrl == "" {
		regConfig.CommsUrl = cfg.COMMSURL
	}
	reg := registry.NewRegistry(registry.NewRegistryParams{
		Repo:      repo,
		Publisher: publisher,
		Config:    regConfig,
	})
	s.reg = reg

	// Step 4: Create invoker and dispatcher, subscribe
	inv := invoker.NewInvoker(invoker.NewInvokerParams{
		Resolver: reg,
		Conn:     nc,
		Timeout:  cfg.InvokeTimeout,
	})
	disp := dispatcher.NewDispatcher(reg, inv)

	requestTimeout := cfg.RequestTimeout
	sub, err := nc.Subscribe(registrySubject, func(msg *comms.Msg) {
		var req dispatcher.RegistryRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			slog.Error(fmt.Sprintf("%s - failed to decode request: %v", logPrefix, err))
			resp := &dispatcher.RegistryResponse{
				Ok: false,
				Error: &dispatcher.ErrorDetail{
					Code:    "INVALID_REQUEST",
					Message: "Failed to decode request",
				},
			}
			data, _ := json.Marshal(resp)
			msg.Respond(data)
			return
		}

		// Per-request context with timeout; optionally respect client timeout
		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		if req.Ctx != nil && req.Ctx.TimeoutMs > 0 {
			if d := time.Duration(req.Ctx.TimeoutMs) * time.Millisecond; d < requestTimeout {
				reqCtx, cancel = context.WithTimeout(ctx, d)
			}
		}
		defer cancel()

		resp := disp.Dispatch(reqCtx, &req)

		data, err := json.Marshal(resp)
		if err != nil {
			slog.Error(fmt.Sprintf("%s - failed to encode response: %v", logPrefix, err))
			return
		}
		msg.Respond(data)
	})
	if err != nil {
		pool.Close()
		nc.Close()
		return fmt.Errorf("%s - failed to subscribe to %s: %w", logPrefix, registrySubject, err)
	}
	slog.Info(fmt.Sprintf("%s - Subscribed to %s", logPrefix, registrySubject))

	// Step 5: Start HTTP health server
	healthTimeout := cfg.HealthCheckTimeout
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome())
	mux.HandleFunc("/contract/", s.handleContractDetail())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		healthCtx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		h := reg.Health(healthCtx)
		w.Header().Set("Content-Type", "application/json")
		if h.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(h)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	httpAddr := cfg.HTTPAddr
	if httpAddr == "" {
		httpAddr = fmt.Sprintf(":%d", cfg.HTTPPort)
	}
	s.httpServer = &http.Server{Addr: httpAddr, Handler: mux}
	go func() {
		slog.Info(fmt.Sprintf("%s - HTTP server listening on %s", logPrefix, httpAddr))
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error(fmt.Sprintf("%s - HTTP server error: %v", logPrefix, err))
		}
	}()

	slog.Info(fmt.Sprintf("%s - Interface registry is ready", logPrefix))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info(fmt.Sprintf("%s - Received signal %s, shutting down", logPrefix, sig))

	sub.Unsubscribe()
	s.httpServer.Shutdown(ctx)
	nc.Drain()
	pool.Close()

	slog.Info(fmt.Sprintf("%s - Shutdown complete", logPrefix))
	return nil
}

// homePageTemplate is the HTML for the registry home page.
const homePageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Interface Registry</title>
  <style>
    * { box-sizing: border-box; }
    body { background: #fff; color: #000; font-family: system-ui, sans-serif; margin: 0; padding: 2rem; line-height: 1.5; }
    a { color: #0066cc; }
    h1, h2, h3 { color: #0066cc; }
    .status-healthy { color: #0066cc; font-weight: bold; }
    .status-unhealthy { color: #cc0000; font-weight: bold; }
    table { border-collapse: collapse; width: 100%; max-width: 900px; margin-top: 0.5rem; }
    th, td { text-align: left; padding: 0.5rem 0.75rem; border: 1px solid #ccc; }
    th { background: #f0f4f8; color: #0066cc; }
    .stat { font-weight: bold; color: #0066cc; }
    .meta { color: #333; font-size: 0.9rem; margin-top: 1rem; }
    section { margin-bottom: 2rem; }
    .error { color: #cc0000; }
  </style>
</head>
<body>
  <h1>Interface Registry</h1>
  <p class="meta">Registered contract interfaces, versions, and health.</p>

  <section>
    <h2>Health</h2>
    <p>Status: <span class="status-{{.Health.Status}}">{{.Health.Status}}</span></p>
    <p>Database: {{if .Health.Checks.Database}}<span class="stat">OK</span>{{else}}<span class="error">Failed</span>{{end}}</p>
    <p>Timestamp: {{.Health.Timestamp}}</p>
  </section>

  <section>
    <h2>Contracts</h2>
    {{if .DiscoverError}}
    <p class="error">Could not load registry contents: {{.DiscoverError}}</p>
    {{else}}
    <p>Total contracts: <span class="stat">{{.Discover.Pagination.Total}}</span></p>
    {{if not .Discover.Contracts}}
    <p>No contracts registered.</p>
    {{else}}
    <table>
      <thead>
        <tr><th>Contract</th><th>App</th><th>Name</th><th>Active major</th><th>Latest version</th><th>Status</th></tr>
      </thead>
      <tbody>
        {{range .Discover.Contracts}}
        <tr>
          <td><a href="/contract/{{.App}}/{{.Name}}">{{.Contract}}</a></td>
          <td>{{.App}}</td>
          <td>{{.Name}}</td>
          <td>{{.ActiveMajor}}</td>
          <td>{{.LatestVersion}}</td>
          <td>{{.Status}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>
    {{end}}
    {{end}}
  </section>
</body>
</html>
`

// contractDetailPageTemplate is the HTML for a single contract detail page (describe output).
const contractDetailPageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{if .Describe}}{{.Describe.Contract}}{{else}}Contract{{end}} – Interface Registry</title>
  <style>
    * { box-sizing: border-box; }
    body { background: #fff; color: #000; font-family: system-ui, sans-serif; margin: 0; padding: 2rem; line-height: 1.5; }
    a { color: #0066cc; }
    h1, h2, h3 { color: #0066cc; }
    table { border-collapse: collapse; width: 100%; max-width: 900px; margin-top: 0.5rem; }
    th, td { text-align: left; padding: 0.5rem 0.75rem; border: 1px solid #ccc; vertical-align: top; }
    th { background: #f0f4f8; color: #0066cc; }
    .meta { color: #333; font-size: 0.9rem; margin-top: 0.5rem; }
    section { margin-bottom: 2rem; }
    .error { color: #cc0000; }
    code { background: #f5f5f5; padding: 0.1rem 0.3rem; font-size: 0.9rem; }
    .back { margin-bottom: 1rem; }
  </style>
</head>
<body>
  <p class="back"><a href="/">← Back to registry</a></p>
  {{if .DescribeError}}
  <p class="error">Could not load contract: {{.DescribeError}}</p>
  {{else}}
  <h1>{{.Describe.Contract}}</h1>
  {{if .Describe.Description}}<p class="meta">{{.Describe.Description}}</p>{{end}}

  <section>
    <h2>Details</h2>
    <table>
      <tr><th>App</th><td>{{.Describe.App}}</td></tr>
      <tr><th>Name</th><td>{{.Describe.Name}}</td></tr>
      <tr><th>Version</th><td>{{.Describe.Version}}</td></tr>
      <tr><th>Major</th><td>{{.Describe.Major}}</td></tr>
      <tr><th>Status</th><td>{{.Describe.Status}}</td></tr>
      {{if .Describe.Tags}}
      <tr><th>Tags</th><td>{{range .Describe.Tags}}{{.}} {{end}}</td></tr>
      {{end}}
    </table>
  </section>

  {{if .Describe.Changelog}}
  <section>
    <h2>Changelog</h2>
    <p>{{.Describe.Changelog}}</p>
  </section>
  {{end}}

  <section>
    <h2>Functions</h2>
    {{if not .Describe.Functions}}
    <p>No functions defined.</p>
    {{else}}
    <table>
      <thead>
        <tr><th>Signature</th><th>Selector</th><th>Mutability</th><th>Description</th></tr>
      </thead>
      <tbody>
        {{range .Describe.Functions}}
        <tr>
          <td><code>{{.Signature}}</code></td>
          <td><code>{{.Selector}}</code></td>
          <td>{{.StateMutability}}</td>
          <td>{{.Description}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>
    {{end}}
  </section>
  {{end}}
</body>
</html>
`

// homeData is the data passed to the home page template.
type homeData struct {
	Health        *registry.HealthOutput
	Discover      *registry.DiscoverOutput
	DiscoverError string
}

// handleHome returns an HTTP handler for the registry home page.
func (s *Server) handleHome() http.HandlerFunc {
	tmpl := template.Must(template.New("home").Parse(homePageTemplate))
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.HealthCheckTimeout)
		defer cancel()

		data := homeData{Health: s.reg.Health(ctx)}

		discover, err := s.reg.Discover(ctx, &registry.DiscoverInput{
			Status: "all",
			Limit:  100,
			Page:   1,
		})
		if err != nil {
			data.DiscoverError = err.Error()
		} else {
			data.Discover = discover
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			slog.Error(fmt.Sprintf("%s - home template execute: %v", logPrefix, err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

// contractDetailData is the data passed to the contract detail page template.
type contractDetailData struct {
	Describe      *registry.DescribeOutput
	DescribeError string
}

// handleContractDetail returns an HTTP handler for the contract detail page.
// Paths look like /contract/<app>/<name>.
func (s *Server) handleContractDetail() http.HandlerFunc {
	tmpl := template.Must(template.New("contractDetail").Parse(contractDetailPageTemplate))
	return func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/contract/")
		parts := strings.Split(strings.Trim(path, "/"), "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			http.NotFound(w, r)
			return
		}
		contractRef := parts[0] + "/" + parts[1]

		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.HealthCheckTimeout)
		defer cancel()

		describe, err := s.reg.Describe(ctx, &registry.DescribeInput{Contract: contractRef})
		if err != nil {
			if regErr, ok := err.(*registry.RegistryError); ok && regErr.Code == "NOT_FOUND" {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusInternalServerError)
			tmpl.Execute(w, contractDetailData{DescribeError: err.Error()})
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, contractDetailData{Describe: describe}); err != nil {
			slog.Error(fmt.Sprintf("%s - contract detail template execute: %v", logPrefix, err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}
