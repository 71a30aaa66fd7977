package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/k3dev/k3dev/internal/cluster"
)

var removeSnapshots bool

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Tear down the local cluster",
	Long:  "Stops and removes every cluster container, then removes the cluster network and the persistent volume storage.",
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
		infra := &cfg.Infrastructure

		log.Info("tearing down cluster", "cluster", infra.ClusterName)
		if err := manager.CleanupContainersByPrefix(ctx, infra.ClusterName); err != nil {
			return err
		}

		// Best-effort; absence and in-use errors are tolerated.
		_ = manager.RemoveNetwork(ctx, infra.NetworkName())
		_ = manager.RemoveVolume(ctx, "k3s-local-pv-data")

		if removeSnapshots {
			snapshots, err := manager.ListImagesByPattern(ctx, cluster.SnapshotPrefix)
			if err != nil {
				return err
			}
			for _, snapshot := range snapshots {
				if err := manager.RemoveImage(ctx, snapshot); err != nil {
					log.Warn("failed to remove snapshot", "image", snapshot, "error", err)
				}
			}
		}

		log.Info("cluster removed", "cluster", infra.ClusterName)
		return nil
	},
}

func init() {
	downCmd.Flags().BoolVar(&removeSnapshots, "snapshots", false, "also remove snapshot images")
	rootCmd.AddCommand(downCmd)
}
