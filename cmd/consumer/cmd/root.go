package cmd

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/cmd/setup"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/graceful"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"
	"github.com/francois202/gigabanksystem1-sub000/internal/deliveries/consumer"

	kafkaconsumer "github.com/francois202/gigabanksystem1-sub000/internal/deliveries/consumer/kafka"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "consumer",
	Short: "Consumer applies transaction events to the ledger with a chosen delivery discipline",
	Long:  ``,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runConsumerCmd)

	runConsumerCmd.Flags().StringP(runConsumerCmdName, "n", "", "consumer name")
	runConsumerCmd.MarkFlagRequired(runConsumerCmdName)
}

var (
	runConsumerCmd = &cobra.Command{
		Use:     "run",
		Short:   "Run consumer",
		Long:    `Run consumer of the transactions topic, available consumer names: ` + strings.Join(consumer.Names, ", "),
		Example: "consumer run -n={consumer-name}",
		Run:     runConsumer,
	}
	runConsumerCmdName = "name"
)

func runConsumer(ccmd *cobra.Command, args []string) {
	var (
		ctx      = context.Background()
		starters []graceful.ProcessStarter
		stoppers []graceful.ProcessStopper
	)

	consumerName, _ := ccmd.Flags().GetString(runConsumerCmdName)

	// Step 1: Initialize setup
	s, stopperContract, err := setup.Init("consumer-" + consumerName)
	if err != nil {
		_ = graceful.StopProcess(defaultStopTimeout(s), stopperContract...)
		log.Fatalf("failed to setup app: %v", err)
	}
	xlog.Infof(ctx, "initializing consumer: %s", consumerName)

	// Step 2: Create Kafka consumer
	consumerProcess, err := consumer.NewKafkaConsumer(ctx, consumerName, s)
	if err != nil {
		// Only stop setup resources, the consumer does not exist yet
		_ = graceful.StopProcess(s.Config.App.GracefulTimeout, stopperContract...)
		xlog.Fatalf(ctx, "failed to setup consumer: %v", err)
	}

	// Step 3: Create health check server
	healthCheckProcess := kafkaconsumer.NewHTTPServer(s.Config, s.Metrics, s.Service.Processing, s.HealthChecks()...)

	// Step 4: Collect all starters and stoppers
	starters = append(starters, consumerProcess.Start(), healthCheckProcess.Start())
	// StopProcess runs stoppers in reverse, so append in the opposite order:
	stoppers = append(stoppers, stopperContract...)        // stops last (producers, DB, cache)
	stoppers = append(stoppers, consumerProcess.Stop())    // stops second (kafka consumer)
	stoppers = append(stoppers, healthCheckProcess.Stop()) // stops first (health check HTTP)

	xlog.Info(ctx, "starting consumer services in background...")
	graceful.StartProcessAtBackground(starters...)

	xlog.Infof(ctx, "consumer %s started, waiting for shutdown signal...", consumerName)
	graceful.StopProcessAtBackground(s.Config.App.GracefulTimeout, stoppers...)

	xlog.Infof(ctx, "consumer %s stopped successfully!", consumerName)
}

func defaultStopTimeout(s *setup.Setup) time.Duration {
	if s != nil && s.Config.App.GracefulTimeout != 0 {
		return s.Config.App.GracefulTimeout
	}
	return 5 * time.Second
}
