package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"gptproxy/backend"
	"gptproxy/config"
	"gptproxy/handler"
	"gptproxy/logging"
	"gptproxy/monitor"
)

var (
	cliArgs config.CliConfig

	rootCmd = &cobra.Command{
		Use:           "gpt-proxy",
		Short:         "HTTP proxy for multimodal inference requests",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServer,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(handler.Version)
		},
	}
)

func init() {
	cliArgs.BindFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	// A missing .env file is fine.
	if cliArgs.EnvFile != "" {
		if err := godotenv.Load(cliArgs.EnvFile); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: error loading %s: %v\n", cliArgs.EnvFile, err)
		}
	}

	cfg, err := config.LoadConfig(cliArgs.ConfigFile, cmd.Flags())
	if err != nil {
		return err
	}

	if cfg.Debug {
		logging.InitLogger(logrus.DebugLevel)
	} else {
		logging.InitLogger(logrus.InfoLevel)
	}
	log := logging.GetLogger()

	gateway, err := backend.New(cfg)
	if err != nil {
		return err
	}

	mon := monitor.NewInflightMonitor(log, time.Second)
	mon.Start()
	defer mon.Shutdown()

	server := &http.Server{
		Addr:              cfg.ListenAddress(),
		Handler:           handler.NewHTTPHandler(cfg, gateway, mon),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s (model=%s, mode=%s)", server.Addr, cfg.Model, gateway.Name())
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Infoln("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
