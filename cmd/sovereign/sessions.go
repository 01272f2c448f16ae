package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/flemzord/sovereign/pkg/app"
	"github.com/spf13/cobra"
)

func sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List stored session transcripts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := storeRuntime(cmd)
			if err != nil {
				return err
			}
			defer closeRuntime(rt)

			infos, err := rt.Store.Sessions()
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No stored sessions.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTURNS\tUPDATED")
			for _, info := range infos {
				fmt.Fprintf(w, "%s\t%d\t%s\n", info.ID, info.Turns, info.UpdatedAt.Local().Format(time.DateTime))
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "purge <id>",
		Short: "Delete a stored session transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := storeRuntime(cmd)
			if err != nil {
				return err
			}
			defer closeRuntime(rt)

			if err := rt.Store.Purge(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %s.\n", args[0])
			return nil
		},
	})
	return cmd
}

func storeRuntime(cmd *cobra.Command) (*app.Runtime, error) {
	rt, err := buildRuntime(cmd)
	if err != nil {
		return nil, err
	}
	if rt.Store == nil {
		closeRuntime(rt)
		return nil, errors.New("no transcript store configured (set store.path)")
	}
	return rt, nil
}
