package main

import (
	"context"

	"socialhub/application/commands"
	"socialhub/application/queries"
	"socialhub/infrastructure/di"

	"github.com/spf13/cobra"
)

func newRemoveIdentityCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-identity <identity-id>",
		Short: "Remove an identity and every follow edge that references it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(cmd.Context(), func(ctx context.Context, c *di.Container) error {
				result, err := c.CommandBus.Send(ctx, commands.RemoveIdentityCommand{IdentityID: args[0]})
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), result)
			})
		},
	}
}

func newCountsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "counts <identity-id>",
		Short: "Print follower and following counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(cmd.Context(), func(ctx context.Context, c *di.Container) error {
				result, err := c.QueryBus.Ask(ctx, queries.GetFollowCountsQuery{IdentityID: args[0]})
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), result)
			})
		},
	}
}
