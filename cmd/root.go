package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/k3dev/k3dev/internal/config"
	"github.com/k3dev/k3dev/internal/docker"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "k3dev",
	Short: "k3dev - local Kubernetes development clusters on Docker",
	Long: `k3dev runs a single-node k3s cluster inside a Docker container for local
development, with snapshot-based fast startup and a validated YAML config.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ./k3dev.yml, the user config dir, then /etc/k3dev)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

func newManager(cfg *config.Config) (*docker.Manager, error) {
	return docker.NewManager(cfg.Docker.SocketPath)
}
