package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

func (a *app) newCleanupCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete resources that walkthroughs left behind",
		Long: "Delete every resource the ledger remembers for the current endpoint,\n" +
			"locations first, then agents, then brands. Resources that are already\n" +
			"gone are forgotten without error.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			l, err := a.openLedger(ctx)
			if err != nil {
				return err
			}
			defer l.Close()

			if dryRun {
				entries, err := l.List(ctx)
				if err != nil {
					return err
				}

				if a.flags.json {
					return a.printObject(entries)
				}

				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{string(e.Kind), e.Name, e.CreatedAt.Format(time.RFC3339)})
				}

				return renderTable(a.stdout, []string{"KIND", "NAME", "CREATED"}, rows)
			}

			c, err := a.client(ctx)
			if err != nil {
				return err
			}

			res, err := l.Cleanup(ctx, c)
			if res != nil {
				for _, name := range res.Deleted {
					a.statusf("Deleted %s\n", name)
				}

				failed := make([]string, 0, len(res.Failed))
				for name := range res.Failed {
					failed = append(failed, name)
				}

				sort.Strings(failed)

				for _, name := range failed {
					a.statusf("Failed %s: %v\n", name, res.Failed[name])
				}

				if err == nil && len(failed) > 0 {
					return fmt.Errorf("cleanup: %d of %d resources could not be deleted",
						len(failed), len(failed)+len(res.Deleted))
				}
			}

			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list what would be deleted")

	return cmd
}
