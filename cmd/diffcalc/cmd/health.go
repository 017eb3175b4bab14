package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/njchilds90/diffcalc/internal/rpc"
)

func newHealthCmd(g *globalFlags) *cobra.Command {
	var (
		remote  string
		asJSON  bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:     "health",
		Short:   "Check a diffcalc gRPC server",
		Example: `  diffcalc health --remote localhost:9090 --json`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := g.load(cmd)
			if err != nil {
				return err
			}
			if remote == "" {
				remote = cfg.GRPCAddress()
			}

			client, err := rpc.Dial(remote)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			resp, err := client.Health(ctx)
			if err != nil {
				return fmt.Errorf("health check %s: %w", remote, err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				b, err := protojson.Marshal(resp)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(b))
			} else {
				fmt.Fprintf(out, "%s: %s\n", remote, resp.GetStatus())
			}
			if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
				return fmt.Errorf("not serving")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&remote, "remote", "", "gRPC server host:port (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the health response as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "call timeout")
	return cmd
}
