package cmd

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/cmd/setup"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/graceful"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"
	"github.com/francois202/gigabanksystem1-sub000/internal/deliveries/job"

	kafkaconsumer "github.com/francois202/gigabanksystem1-sub000/internal/deliveries/consumer/kafka"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "worker",
	Short: "Worker application running background jobs of the transaction pipeline",
	Long:  ``,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(relayCmd)
	rootCmd.AddCommand(relayOnceCmd)
}

var (
	relayCmd = &cobra.Command{
		Use:     "relay",
		Short:   "Run the outbox relay",
		Long:    `Publish staged outbox records to the outbox topic on a fixed interval until a shutdown signal is received.`,
		Example: "worker relay",
		Run:     runRelay,
	}
	relayOnceCmd = &cobra.Command{
		Use:     "relay-once",
		Short:   "Run a single outbox relay cycle",
		Example: "worker relay-once",
		Run:     runRelayOnce,
	}
)

func runRelay(ccmd *cobra.Command, args []string) {
	ctx := context.Background()

	s, stopperContract, err := setup.Init("relay")
	if err != nil {
		_ = graceful.StopProcess(5*time.Second, stopperContract...)
		log.Fatalf("failed to setup app: %v", err)
	}

	worker := job.NewRelayWorker(s.Service.OutboxRelay, s.Config.OutboxRelay.Interval, job.WithNewRelic(s.NewRelic))
	healthCheckProcess := kafkaconsumer.NewHTTPServer(s.Config, s.Metrics, nil, s.HealthChecks()...)

	var stoppers []graceful.ProcessStopper
	stoppers = append(stoppers, stopperContract...)
	stoppers = append(stoppers, worker.Stop())
	stoppers = append(stoppers, healthCheckProcess.Stop())

	graceful.StartProcessAtBackground(worker.Start(), healthCheckProcess.Start())
	xlog.Info(ctx, "outbox relay started, waiting for shutdown signal...")

	graceful.StopProcessAtBackground(s.Config.App.GracefulTimeout, stoppers...)
	xlog.Info(ctx, "outbox relay stopped!")
}

func runRelayOnce(ccmd *cobra.Command, args []string) {
	ctx := context.Background()

	s, stopperContract, err := setup.Init("relay")
	if err != nil {
		_ = graceful.StopProcess(5*time.Second, stopperContract...)
		log.Fatalf("failed to setup app: %v", err)
	}
	defer func() {
		_ = graceful.StopProcess(s.Config.App.GracefulTimeout, stopperContract...)
	}()

	worker := job.NewRelayWorker(s.Service.OutboxRelay, s.Config.OutboxRelay.Interval, job.WithNewRelic(s.NewRelic))
	if _, err = worker.RunOnce(ctx); err != nil {
		xlog.Errorf(ctx, "outbox relay cycle failed: %v", err)
	}
}
