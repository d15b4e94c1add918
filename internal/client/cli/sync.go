package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push local changes to the sync peer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, func(ctx context.Context, a *App) error {
				res, err := a.sync.Sync(ctx)
				if err != nil {
					return err
				}
				if !res.Pushed() {
					fmt.Fprintln(a.out, "Nothing to sync.")
					return nil
				}
				fmt.Fprintf(a.out, "Synced %d rows up to %s.\n", res.Sent, formatStamp(res.To))
				return nil
			})
		},
	}
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sync state and pending changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, func(ctx context.Context, a *App) error {
				st, err := a.sync.Status(ctx)
				if err != nil {
					return err
				}
				enabled := "disabled"
				if st.Enabled {
					enabled = "enabled (" + a.config.SyncAddr + ")"
				}
				fmt.Fprintf(a.out, "Database:    %s\n", a.config.DBPath)
				fmt.Fprintf(a.out, "Sync:        %s\n", enabled)
				fmt.Fprintf(a.out, "Last synced: %s\n", formatStamp(st.LastSynced))
				fmt.Fprintf(a.out, "Pending:     %d rows\n", st.Pending)
				return nil
			})
		},
	}
}

func formatStamp(ts int64) string {
	if ts == 0 {
		return "never"
	}
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}
