package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/cardtracker/internal"
	cardrecords "github.com/frahmantamala/cardtracker/internal/card/records"
	"github.com/frahmantamala/cardtracker/internal/core/events"
	"github.com/frahmantamala/cardtracker/internal/recordstore"
	"github.com/frahmantamala/cardtracker/internal/reminder"
	"github.com/frahmantamala/cardtracker/internal/transport/rest"
	"github.com/frahmantamala/cardtracker/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var withReminders bool

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	Store  recordstore.Store
	Bus    *events.EventBus
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "backend", deps.Config.Storage.Backend)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	ctx, stopReminders := context.WithCancel(context.Background())
	defer stopReminders()
	if withReminders {
		go newReminderScheduler(deps, deps.Bus).Run(ctx, deps.Config.Reminder.Interval)
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		stopReminders()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Bus.Wait()
	if err := deps.Store.Close(); err != nil {
		deps.Logger.Error("Record store close error", "error", err)
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)
	lg := logger.LoggerWrapper()

	store, err := initStore(config.Storage, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize record store: %w", err)
	}

	bus := newEventBus(lg)

	router, err := rest.NewRouter(context.Background(), store, bus, rest.Options{
		Logger:           lg,
		Location:         config.Locale.Location(),
		AllowedOrigins:   config.Server.Origins(),
		ValidateRequests: config.Server.ValidateRequests,
		StoreName:        config.Storage.Backend,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to build router: %w", err)
	}

	return &Dependencies{
		Config: config,
		Store:  store,
		Bus:    bus,
		Router: router,
		Logger: lg,
	}, nil
}

// newEventBus logs every domain event the service emits.
func newEventBus(lg *slog.Logger) *events.EventBus {
	bus := events.NewEventBus(lg)
	for _, eventType := range []string{
		events.EventTypeCardPaymentCompleted,
		events.EventTypePaymentRecorded,
		events.EventTypeCardDueReminder,
	} {
		bus.Subscribe(eventType, events.LogSubscriber(lg))
	}
	return bus
}

func newReminderScheduler(deps *Dependencies, publisher events.Publisher) *reminder.Scheduler {
	return reminder.NewScheduler(
		cardrecords.NewCardRepository(deps.Store),
		publisher,
		deps.Config.Reminder.DaysBefore,
		deps.Config.Locale.Location(),
		deps.Logger,
	)
}

func init() {
	httpServerCmd.Flags().BoolVar(&withReminders, "with-reminders", false, "Run the due-date reminder scheduler in the server process")
}
