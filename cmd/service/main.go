package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/dirk.krummacker/people-service/internal/config"
	"gitlab.com/dirk.krummacker/people-service/internal/logging"
	"gitlab.com/dirk.krummacker/people-service/internal/metrics"
	"gitlab.com/dirk.krummacker/people-service/internal/people"
	"gitlab.com/dirk.krummacker/people-service/internal/service"
	"gitlab.com/dirk.krummacker/people-service/internal/store"
)

// shutdownTimeout is how long in-flight requests may take after a termination signal.
const shutdownTimeout = 10 * time.Second

var rootCmd = &cobra.Command{
	Use:          "people-service",
	Short:        "CRUD API for managing person records",
	Long:         `Serves the people REST API. Every flag can also be set with the upper case environment variable of the same name, '-' replaced by '_' (e.g. GIN_LOGGING=off). Values in .env and .env.local are read as well.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	config.RegisterFlags(rootCmd.Flags())
}

// Usage example on the command line:
// > PORT=8080 DBUSER=dirk DBPWD=bullo92 GIN_MODE=release GIN_LOGGING=OFF go run main.go
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	conf, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	logger := logging.New(conf.LogLevel, os.Stdout)
	log := logger.With().Str(logging.PACKAGE, "main").Logger()

	sqlDB, err := service.CreateDatabase(conf)
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	s, err := store.New(sqlDB)
	if err != nil {
		log.Error().Err(err).Msg("could not prepare database statements")
		return err
	}
	defer s.Close()

	router := service.SetupHttpRouter(people.New(s, logger), service.Options{
		Logger:         logger,
		RequestLogging: conf.RequestLogging,
		Metrics:        metrics.New(),
	})
	server := &http.Server{
		Addr:              conf.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("listening")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
