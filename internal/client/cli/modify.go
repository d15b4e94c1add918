package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// idCommand builds a command whose first argument is a snippet id.
func idCommand(rootOpts *RootOptions, use, short string, args cobra.PositionalArgs, fn func(ctx context.Context, a *App, id int64, rest []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, argv []string) error {
			id, err := parseID(argv[0])
			if err != nil {
				return err
			}
			return run(rootOpts, cmd, func(ctx context.Context, a *App) error {
				return fn(ctx, a, id, argv[1:])
			})
		},
	}
}

// NewRenameCommand creates the rename command.
func NewRenameCommand(rootOpts *RootOptions) *cobra.Command {
	return idCommand(rootOpts, "rename ID NAME...", "Rename a snippet", cobra.MinimumNArgs(2),
		func(ctx context.Context, a *App, id int64, rest []string) error {
			if err := a.snippets.Rename(ctx, id, strings.Join(rest, " ")); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Renamed snippet %d.\n", id)
			return nil
		})
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	return idCommand(rootOpts, "edit ID", "Replace a snippet's content", cobra.ExactArgs(1),
		func(ctx context.Context, a *App, id int64, _ []string) error {
			s, err := a.snippets.Get(ctx, id)
			if err != nil {
				return err
			}
			text, err := a.content.Read(ctx, s.Content)
			if err != nil {
				return fmt.Errorf("failed to get snippet content: %w", err)
			}
			if text == s.Content {
				fmt.Fprintf(a.out, "Snippet %d unchanged.\n", id)
				return nil
			}
			if err := a.snippets.SetContent(ctx, id, text); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Updated snippet %d.\n", id)
			return nil
		})
}

// NewTagCommand creates the tag command.
func NewTagCommand(rootOpts *RootOptions) *cobra.Command {
	return idCommand(rootOpts, "tag ID TAG...", "Add tags to a snippet", cobra.MinimumNArgs(2),
		func(ctx context.Context, a *App, id int64, tags []string) error {
			return a.snippets.AddTags(ctx, id, tags)
		})
}

// NewUntagCommand creates the untag command.
func NewUntagCommand(rootOpts *RootOptions) *cobra.Command {
	return idCommand(rootOpts, "untag ID TAG...", "Remove tags from a snippet", cobra.MinimumNArgs(2),
		func(ctx context.Context, a *App, id int64, tags []string) error {
			return a.snippets.RemoveTags(ctx, id, tags)
		})
}

// NewRetagCommand creates the retag command.
func NewRetagCommand(rootOpts *RootOptions) *cobra.Command {
	return idCommand(rootOpts, "retag ID [TAG...]", "Replace all tags of a snippet", cobra.MinimumNArgs(1),
		func(ctx context.Context, a *App, id int64, tags []string) error {
			return a.snippets.Retag(ctx, id, tags)
		})
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := idCommand(rootOpts, "delete ID", "Delete a snippet", cobra.ExactArgs(1),
		func(ctx context.Context, a *App, id int64, _ []string) error {
			if err := a.snippets.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted snippet %d.\n", id)
			return nil
		})
	cmd.Aliases = []string{"rm"}
	return cmd
}
