package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/frahmantamala/cardtracker/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers such as the due-date reminder scheduler.`,
}

var reminderWorkerCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Start the due-date reminder worker",
	Long:  `Scan cards on an interval and publish reminders for unpaid cards that fall due soon.`,
	Run: func(cmd *cobra.Command, args []string) {
		startReminderWorker()
	},
}

var runOnce bool

func startReminderWorker() {
	config, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)
	lg := logger.LoggerWrapper()

	store, err := initStore(config.Storage, lg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize record store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	deps := &Dependencies{Config: config, Store: store, Bus: newEventBus(lg), Logger: lg}

	if runOnce {
		n, err := newReminderScheduler(deps, deps.Bus.Sync()).ScanOnce(context.Background())
		if err != nil {
			lg.Error("reminder scan failed", "error", err)
			os.Exit(1)
		}
		lg.Info("reminder scan complete", "published", n)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	lg.Info("reminder worker started",
		"interval", config.Reminder.Interval,
		"days_before", config.Reminder.DaysBefore,
		"timezone", config.Locale.Timezone)

	newReminderScheduler(deps, deps.Bus).Run(ctx, config.Reminder.Interval)

	deps.Bus.Wait()
	lg.Info("reminder worker stopped")
}

func init() {
	reminderWorkerCmd.Flags().BoolVar(&runOnce, "once", false, "Scan once and exit")

	workerCmd.AddCommand(reminderWorkerCmd)
	rootCmd.AddCommand(workerCmd)
}
