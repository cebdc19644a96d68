package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fundvote/internal/model"
)

func listCmd(a *app) *cobra.Command {
	var status, search, sortBy, output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List proposals, filtered and sorted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := model.ParseFilter(status, search, sortBy)
			if err != nil {
				return err
			}
			p, err := newPrinter(output)
			if err != nil {
				return err
			}
			return a.withBackend(cmd, func(ctx context.Context, b *backend) error {
				res, err := b.svc.List(ctx, f)
				if err != nil {
					return err
				}
				return p.proposals(cmd.OutOrStdout(), res.Items)
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "all", "Status filter (all, pending, approved, rejected)")
	cmd.Flags().StringVarP(&search, "search", "q", "", "Case-insensitive search over title, abstract and institution")
	cmd.Flags().StringVar(&sortBy, "sort", "recent", "Sort key (recent, votes, funding)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json, yaml)")
	return cmd
}

func getCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(output)
			if err != nil {
				return err
			}
			return a.withBackend(cmd, func(ctx context.Context, b *backend) error {
				prop, found, err := b.svc.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("proposal %q not found", args[0])
				}
				return p.proposal(cmd.OutOrStdout(), prop)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json, yaml)")
	return cmd
}

func voteCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "vote <id> <up|down>",
		Short: "Add one upvote or downvote to a proposal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := model.ParseDirection(args[1])
			if err != nil {
				return err
			}
			p, err := newPrinter(output)
			if err != nil {
				return err
			}
			return a.withBackend(cmd, func(ctx context.Context, b *backend) error {
				prop, found, err := b.svc.Vote(ctx, args[0], dir)
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("proposal %q not found", args[0])
				}
				return p.proposal(cmd.OutOrStdout(), prop)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json, yaml)")
	return cmd
}

var errNoObjectStorage = errors.New("object storage is not configured (set MINIO_ENDPOINT)")

func snapshotCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Export the catalog to object storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd, func(ctx context.Context, b *backend) error {
				if b.exporter == nil {
					return errNoObjectStorage
				}
				res, err := b.exporter.Export(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d proposals, %d bytes)\n", res.Object.Key, res.Count, res.Object.Size)
				if res.URL != "" {
					fmt.Fprintln(cmd.OutOrStdout(), res.URL)
				}
				return nil
			})
		},
	}
}
