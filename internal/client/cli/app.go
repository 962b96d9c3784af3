package cli

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/dmitrijs2005/nutrisync/internal/client/client"
	"github.com/dmitrijs2005/nutrisync/internal/client/connectivity"
	"github.com/dmitrijs2005/nutrisync/internal/client/coordinator"
	"github.com/dmitrijs2005/nutrisync/internal/client/processor"
	"github.com/dmitrijs2005/nutrisync/internal/client/scheduler"
	"github.com/dmitrijs2005/nutrisync/internal/client/services"
	"github.com/dmitrijs2005/nutrisync/internal/config"
	"github.com/dmitrijs2005/nutrisync/internal/logging"
	"github.com/go-playground/validator/v10"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	logCloser io.Closer
	out       io.Writer

	repos    *client.Repositories
	api      client.Client
	ownsAPI  bool
	validate *validator.Validate

	writer      services.QueueWriter
	mutator     *services.LocalMutator
	processor   *processor.Processor
	observer    *connectivity.Observer
	coordinator *coordinator.Coordinator
	scheduler   *scheduler.Scheduler
}

// AppOption customizes NewApp, mostly for tests.
type AppOption func(*appOptions)

type appOptions struct {
	api            client.Client
	logger         logging.Logger
	interfaceCheck func() bool
}

// WithAPI uses c instead of dialing the configured server. The App does not
// close it.
func WithAPI(c client.Client) AppOption {
	return func(o *appOptions) { o.api = c }
}

func WithLogger(l logging.Logger) AppOption {
	return func(o *appOptions) { o.logger = l }
}

// WithInterfaceCheck replaces the network interface check of the
// connectivity observer.
func WithInterfaceCheck(fn func() bool) AppOption {
	return func(o *appOptions) { o.interfaceCheck = fn }
}

func NewApp(ctx context.Context, c *config.Config, out io.Writer, opts ...AppOption) (*App, error) {
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}

	app := &App{config: c, out: &lockedWriter{w: out}, validate: validator.New(validator.WithRequiredStructEnabled())}

	if o.logger != nil {
		app.logger, app.logCloser = o.logger, nopCloser{}
	} else {
		app.logger, app.logCloser = logging.New(logging.Options{Level: c.LogLevel, File: c.LogFile})
	}

	repos, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		_ = app.logCloser.Close()
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	app.repos = repos

	if o.api != nil {
		app.api = o.api
	} else {
		apiClient, err := client.NewNutritionClientService(c.ServerEndpointAddr, client.WithTimeout(c.RequestTimeout))
		if err != nil {
			_ = repos.Close()
			_ = app.logCloser.Close()
			return nil, err
		}
		app.api, app.ownsAPI = apiClient, true
	}

	interfaceCheck := o.interfaceCheck
	if interfaceCheck == nil {
		interfaceCheck = connectivity.HasActiveInterface
		if isLoopback(c.ServerEndpointAddr) {
			interfaceCheck = func() bool { return true }
		}
	}

	app.writer = services.NewQueueWriter(repos.Queue)
	app.mutator = services.NewLocalMutator(app.writer, repos.Records, repos.Users)
	app.processor = processor.New(repos.Queue, app.api, repos.Records, repos.Users,
		processor.WithLogger(app.logger))
	app.observer = connectivity.NewObserver(app.api.Ping,
		connectivity.WithInterval(c.OnlineCheckInterval),
		connectivity.WithProbeTimeout(c.RequestTimeout),
		connectivity.WithInterfaceCheck(interfaceCheck),
		connectivity.WithLogger(app.logger))
	app.coordinator = coordinator.New(repos.Queue, app.processor, app.observer,
		coordinator.WithConfig(c),
		coordinator.WithLogger(app.logger))
	app.scheduler = scheduler.New(app.coordinator, c.SyncInterval, scheduler.WithLogger(app.logger))

	return app, nil
}

// Close releases the database, the API connection and the log file.
func (a *App) Close() error {
	var first error
	if a.ownsAPI {
		first = a.api.Close()
	}
	if err := a.repos.Close(); err != nil && first == nil {
		first = err
	}
	if err := a.logCloser.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// lockedWriter serializes writes from the daemon's reporting goroutines.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// isLoopback reports whether addr points at this machine, in which case no
// network interface is needed to reach it.
func isLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	if host == "" || host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
