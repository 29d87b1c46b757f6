package main

import (
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-castle/internal/config"
	"github.com/vovakirdan/tui-castle/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagMetricsAddr string
	flagServeConfig string
	flagServePreset string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the castle SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH connection gets its own session with a mode and difficulty menu.
Runs are stored per-server (all users share the same leaderboard).

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.castle/host_key

Examples:
  castle serve                           # Listen on :23234 with auto-generated key
  castle serve --ssh :2222               # Listen on port 2222
  castle serve --metrics :9100           # Also expose Prometheus metrics
  castle serve --db ./castle.db          # Use specific database

Users can connect with:
  ssh localhost -p 23234`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().StringVar(&flagMetricsAddr, "metrics", "", "Prometheus metrics address, e.g. :9100 (disabled when empty)")
	serveCmd.Flags().StringVar(&flagServeConfig, "config", "", "Path to custom castle config YAML")
	serveCmd.Flags().StringVar(&flagServePreset, "difficulty", "normal", "Preselected difficulty preset")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(cmd *cobra.Command, _ []string) error {
	preset, err := parsePreset(flagServePreset)
	if err != nil {
		return err
	}
	if preset == "" {
		preset = config.DifficultyNormal
	}

	cfg := tui.SSHServerConfig{
		Address:        flagSSHAddr,
		HostKeyPath:    flagHostKey,
		DBPath:         flagDBPath,
		ConfigPath:     flagServeConfig,
		Preset:         preset,
		MetricsAddress: flagMetricsAddr,
		TickRate:       flagFPS,
		IdleTimeout:    time.Duration(flagIdleTimeout) * time.Minute,
	}

	server, err := tui.NewSSHServer(cfg, logger.WithPrefix("castle-ssh"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, port, err := net.SplitHostPort(cfg.Address); err == nil {
		logger.Print("Connect with: ssh localhost -p " + port)
	}
	return server.ListenAndServe(ctx)
}
