package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yeonholee/hr-payroll/internal/core/events"
	"github.com/yeonholee/hr-payroll/internal/incentive"
	"github.com/yeonholee/hr-payroll/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start worker pools for various services",
	Long:  `Start and manage worker pools, e.g. the incentive simulation pool or the event bus.`,
}

var incentiveWorkerCmd = &cobra.Command{
	Use:   "incentive",
	Short: "Start incentive simulation worker pool",
	Long:  `Start the worker pool that evaluates incentive formulas for batch simulations`,
	Run: func(cmd *cobra.Command, args []string) {
		startIncentiveWorker()
	},
}

var eventWorkerCmd = &cobra.Command{
	Use:   "events",
	Short: "Start event bus worker",
	Long:  `Start the event bus`,
	Run: func(cmd *cobra.Command, args []string) {
		startEventWorker()
	},
}

var (
	maxWorkers   int
	jobQueueSize int
)

func startIncentiveWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logger.LoggerWrapper()

	engine, err := incentive.NewEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build formula engine: %v\n", err)
		os.Exit(1)
	}

	simulatorConfig := incentive.SimulatorConfig{
		MaxWorkers:   getIntFlag(maxWorkers, config.Incentive.MaxWorkers),
		JobQueueSize: getIntFlag(jobQueueSize, config.Incentive.JobQueueSize),
		EvalTimeout:  config.Incentive.EvalTimeout,
	}

	logger.Info("starting incentive worker",
		"max_workers", simulatorConfig.MaxWorkers,
		"job_queue_size", simulatorConfig.JobQueueSize,
		"eval_timeout", simulatorConfig.EvalTimeout)

	simulator := incentive.NewSimulator(engine, simulatorConfig, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("incentive worker is running. Press Ctrl+C to stop.")

	sig := <-sigChan
	logger.Info("received signal, shutting down incentive worker", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownDone := make(chan struct{})
	go func() {
		simulator.Shutdown()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		logger.Info("incentive worker pool shutdown complete")
	case <-ctx.Done():
		logger.Warn("shutdown timeout reached, forcing exit")
	}
}

func startEventWorker() {
	_, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logger.LoggerWrapper()

	eventBus := events.NewEventBus(logger)

	for _, eventType := range []string{
		events.EventLeaveApproved,
		events.EventPayrollConfirmed,
		events.EventIncentiveBatchFinished,
	} {
		eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			logger.Info("received event",
				"event_id", event.EventID(),
				"event_type", event.EventType(),
				"payload", event.Payload())
			return nil
		})
	}

	logger.Info("event bus worker started. Waiting for events...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("received signal, shutting down event bus", "signal", sig)
	logger.Info("event bus shutdown complete")
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	incentiveWorkerCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Maximum number of workers (overrides config)")
	incentiveWorkerCmd.Flags().IntVar(&jobQueueSize, "job-queue-size", 0, "Job queue buffer size (overrides config)")

	workerCmd.AddCommand(incentiveWorkerCmd)
	workerCmd.AddCommand(eventWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
