package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/sheepfold/internal/pasture"
	"github.com/vovakirdan/sheepfold/internal/platform/tui"
	"github.com/vovakirdan/sheepfold/internal/scene"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
	flagAdminUsers  []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sheepfold SSH server",
	Long: `Start an SSH server where every user tends their own pasture.
The SSH user name is the owner id, so 'ssh alice@host' opens alice's flock.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.sheepfold/host_key

Examples:
  sheepfold serve                           # Listen on :23235
  sheepfold serve --ssh :2222               # Listen on port 2222
  sheepfold serve --admin-users alice,bob   # These users pray without limits
  sheepfold serve --db postgres://localhost/sheepfold

Users can connect with:
  ssh localhost -p 23235`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&flagSSHAddr, "ssh", ":23235", "SSH server address (host:port)")
	f.StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	f.IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	f.StringSliceVar(&flagAdminUsers, "admin-users", nil, "SSH users allowed to pray past the daily limit")
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(os.Stderr, pasture.DefaultConfig())
	if err != nil {
		return err
	}
	defer a.store.Close()

	server, err := tui.NewSSHServer(tui.SSHServerConfig{
		Address:     flagSSHAddr,
		HostKeyPath: flagHostKey,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
		AdminUsers:  flagAdminUsers,
		Params:      scene.DefaultParams(),
	}, a.manager, a.logger)
	if err != nil {
		return err
	}

	port := server.Addr()[strings.LastIndex(server.Addr(), ":")+1:]
	fmt.Printf("Starting sheepfold SSH server on %s\n", server.Addr())
	fmt.Printf("Connect with: ssh localhost -p %s\n", port)
	fmt.Println("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serveThenFlush(ctx, a.manager.Run, server.ListenAndServe)
}
