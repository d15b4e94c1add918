package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/snip/internal/client/search"
	"github.com/spf13/cobra"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Print a snippet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(rootOpts, cmd, func(ctx context.Context, a *App) error {
				s, err := a.snippets.Get(ctx, id)
				if err != nil {
					return fmt.Errorf("failed to load snippet: %w", err)
				}
				renderSnippet(a.out, s)
				return nil
			})
		},
	}
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var q search.Query

	cmd := &cobra.Command{
		Use:     "list [-n name] [-t tag]...",
		Aliases: []string{"ls"},
		Short:   "List snippets, optionally filtered",
		Long: `List live snippets. -n keeps snippets whose name contains the text;
each -t keeps snippets carrying a tag that contains the text. All given
filters must match.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, func(ctx context.Context, a *App) error {
				list, err := a.snippets.Search(ctx, q)
				if err != nil {
					return fmt.Errorf("failed to search snippets: %w", err)
				}
				renderList(a.out, list)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&q.Name, "name", "n", "", "name substring")
	cmd.Flags().StringArrayVarP(&q.Tags, "tag", "t", nil, "tag substring (repeatable, all must match)")

	return cmd
}

// NewTagsCommand creates the tags command.
func NewTagsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List tags in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, func(ctx context.Context, a *App) error {
				names, err := a.snippets.Tags(ctx)
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Fprintln(a.out, n)
				}
				return nil
			})
		},
	}
}
