package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/aretw0/spool/internal/adapters/http"
	redisAdapter "github.com/aretw0/spool/internal/adapters/redis"
	"github.com/aretw0/spool/pkg/adapters/memory"
	"github.com/aretw0/spool/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP compile-and-run server",
	Long: `Starts the JSON API: compile programs, run machines, store them under
names, and step simulations interactively. Metrics are exposed at
/metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetString("port")
		redisAddr, _ := cmd.Flags().GetString("redis")
		logger := newLogger(cmd)

		var store ports.MachineStore = memory.New()
		if redisAddr != "" {
			redisStore := redisAdapter.New(redisAddr, "", 0)
			defer redisStore.Close()
			store = redisStore
			logger.Info("using redis machine store", "addr", redisAddr)
		}

		handler := httpAdapter.NewHandler(store, prometheus.NewRegistry(), logger)
		srv := &http.Server{
			Addr:    ":" + port,
			Handler: handler,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("spool server listening", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown failed", "error", err)
				if err := srv.Close(); err != nil {
					logger.Error("server close failed", "error", err)
				}
			}
			logger.Info("spool server stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for the machine store (default: in-memory)")
}
