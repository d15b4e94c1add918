package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/snip/internal/common"
	"github.com/spf13/cobra"
)

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var tags []string

	cmd := &cobra.Command{
		Use:   "add [-t tag]... NAME...",
		Short: "Add a new snippet",
		Long: `Add a new snippet. The content is written in $EDITOR, or read from
stdin when stdin is not a terminal. Adding a name that was deleted before
brings the old snippet back with the new content.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, func(ctx context.Context, a *App) error {
				return a.add(ctx, strings.Join(args, " "), tags)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&tags, "tag", "t", nil, "tag to attach (repeatable)")

	return cmd
}

func (a *App) add(ctx context.Context, name string, tags []string) error {
	text, err := a.content.Read(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to get snippet content: %w", err)
	}

	id, err := a.snippets.Add(ctx, name, text, tags)
	if errors.Is(err, common.DuplicateName) && !a.content.Interactive() {
		// scripted adds treat an existing name as done
		fmt.Fprintln(a.out, "Error: duplicate snippet name")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to save snippet: %w", err)
	}

	fmt.Fprintf(a.out, "Created snippet %d.\n", id)
	return nil
}
