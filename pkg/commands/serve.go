package commands

import (
	"github.com/spf13/cobra"

	"github.com/tietlabs/thapargpt/pkg/history"
	"github.com/tietlabs/thapargpt/pkg/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve the assistant over HTTP.

Exposes /chat for questions and file uploads, /register, /login,
/forgot-password and /reset-password for accounts, /history/:user_id
for past exchanges, /health for liveness checks and /admin/* for user
management (HTTP Basic auth with the configured admin credentials).`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, _, err := buildAssistant(ctx, cfg)
	if err != nil {
		return err
	}

	store, err := history.NewStore(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := server.New(cfg, a, store)
	return srv.Run()
}
