package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/njchilds90/diffcalc"
	"github.com/njchilds90/diffcalc/internal/rpc"
	"github.com/njchilds90/diffcalc/internal/server"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var (
		host     string
		port     int
		withGRPC bool
		grpcPort int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculator over HTTP and WebSocket, optionally gRPC",
		Long: `Starts the HTTP server, and the gRPC server when enabled in the
config or with --grpc.

HTTP endpoints:
  POST /api/evaluate  evaluate one input
  POST /api/sweep     step-size sweep
  POST /tool          tool call
  GET  /schema        tool schema for agent registration
  GET  /health        health check
  GET  /ws            live session

gRPC service diffcalc.v1.Calculator (json codec):
  Evaluate, Sweep, Tool, plus grpc.health.v1.Health`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := g.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if withGRPC || cmd.Flags().Changed("grpc-port") {
				cfg.GRPC.Enabled = true
			}
			if cmd.Flags().Changed("grpc-port") {
				cfg.GRPC.Port = grpcPort
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			calc := diffcalc.New(cfg.CalculatorOptions())
			errCh := make(chan error, 2)
			running := 1
			go func() { errCh <- server.New(calc, cfg.Server, log).Run(ctx, cfg.Address()) }()
			if cfg.GRPC.Enabled {
				running++
				go func() { errCh <- rpc.NewServer(calc, cfg.GRPC, log).Run(ctx, cfg.GRPCAddress()) }()
			}

			// The first server to stop takes the other one down with it.
			var first error
			for i := 0; i < running; i++ {
				if err := <-errCh; err != nil && first == nil {
					first = err
				}
				cancel()
			}
			return first
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (default from config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config)")
	cmd.Flags().BoolVar(&withGRPC, "grpc", false, "also serve gRPC")
	cmd.Flags().IntVar(&grpcPort, "grpc-port", 0, "gRPC listen port, implies --grpc (default from config)")
	return cmd
}
