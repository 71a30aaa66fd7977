package cmd

import (
	"fmt"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/k3dev/k3dev/internal/cluster"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the local cluster",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		manager, err := newManager(cfg)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if err := manager.Ping(ctx); err != nil {
			return err
		}

		containerName := cfg.Infrastructure.ContainerName()
		fmt.Fprintf(out, "cluster:   %s\n", cfg.Infrastructure.ClusterName)
		fmt.Fprintf(out, "container: %s\n", containerName)
		fmt.Fprintf(out, "network:   %s\n", cfg.Infrastructure.NetworkName())

		status, ok := manager.ContainerStatus(ctx, containerName)
		if !ok {
			fmt.Fprintln(out, "status:    not created")
			return nil
		}
		fmt.Fprintf(out, "status:    %s\n", status)

		snapshotter := cluster.NewSnapshotter(manager, &cfg.Infrastructure)
		if snapshotter.Exists(ctx) {
			fmt.Fprintf(out, "snapshot:  %s\n", snapshotter.ImageName())
		} else {
			fmt.Fprintln(out, "snapshot:  none")
		}

		if status != "running" {
			return nil
		}

		stats, err := manager.AggregateStats(ctx, containerName)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "cpu:       %.1f%%\n", stats.CPUPercent)
		fmt.Fprintf(out, "memory:    %s / %s\n",
			units.BytesSize(float64(stats.MemoryUsage)), units.BytesSize(float64(stats.MemoryLimit)))
		fmt.Fprintf(out, "network:   rx %s, tx %s\n",
			units.BytesSize(float64(stats.NetworkRx)), units.BytesSize(float64(stats.NetworkTx)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
