package main

import (
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lemonberrylabs/calc/pkg/api"
	grpcapi "github.com/lemonberrylabs/calc/pkg/api/grpc"
	"github.com/lemonberrylabs/calc/pkg/config"
	"github.com/lemonberrylabs/calc/pkg/store"
	"github.com/lemonberrylabs/calc/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the calculator over HTTP and gRPC",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	addServeFlags(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().Int("port", 0, "HTTP server port (default 8787, env CALC_PORT)")
	cmd.Flags().Int("grpc-port", 0, "gRPC server port (default 8788, env CALC_GRPC_PORT)")
	cmd.Flags().String("host", "", "Bind address (default 0.0.0.0, env CALC_HOST)")
	// -1 leaves the configured limit alone; 0 is a valid value meaning unbounded.
	cmd.Flags().Int("history-limit", -1, "Evaluations kept in memory, 0 for unbounded (default 1000, env CALC_HISTORY_LIMIT)")
}

// serveConfig layers the serve flags over the config file and environment.
func serveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetInt("port"); v != 0 {
		cfg.Server.Port = v
	}
	if v, _ := cmd.Flags().GetInt("grpc-port"); v != 0 {
		cfg.Server.GRPCPort = v
	}
	if v, _ := cmd.Flags().GetString("host"); v != "" {
		cfg.Server.Host = v
	}
	if v, _ := cmd.Flags().GetInt("history-limit"); v >= 0 {
		cfg.Server.HistoryLimit = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := serveConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	grpcAddr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.GRPCPort))

	s := store.New(cfg.Server.HistoryLimit)
	server := api.New(s, cfg.MaxLineLength, logger.With().Str("component", "http").Logger())
	grpcServer := grpcapi.New(s, cfg.MaxLineLength, logger.With().Str("component", "grpc").Logger())
	web.New(s, cfg.MaxLineLength).Register(server.App())

	go func() {
		logger.Info().Str("addr", grpcAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(grpcAddr); err != nil {
			logger.Fatal().Err(err).Msg("gRPC server error")
		}
	}()

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info().Msg("shutting down")
		grpcServer.GracefulStop()
		if err := server.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("error during shutdown")
		}
	}()

	logger.Info().
		Str("addr", addr).
		Int("historyLimit", cfg.Server.HistoryLimit).
		Str("version", version).
		Msg("calculator listening")
	return server.Listen(addr)
}
