package main

import (
	"context"
	"fmt"
	"time"

	"github.com/flemzord/sovereign/internal/study"
	"github.com/spf13/cobra"
)

func pingCmd() *cobra.Command {
	var healthOnly bool

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the model server is reachable and answering",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			rt, err := buildRuntime(cmd)
			if err != nil {
				return err
			}
			defer closeRuntime(rt)

			fmt.Fprintf(out, "Endpoint: %s\nModel:    %s\n",
				rt.Redactor.Redact(rt.Provider.BaseURL()), rt.Provider.ModelName())

			start := time.Now()
			hctx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err = rt.Provider.HealthCheck(hctx)
			cancel()
			if err != nil {
				fmt.Fprintf(out, "Health:   FAIL (%s)\n", study.Describe(err))
				return fmt.Errorf("health check failed: %w", err)
			}
			fmt.Fprintf(out, "Health:   ok (%s)\n", time.Since(start).Round(time.Millisecond))

			if healthOnly {
				return nil
			}

			s, err := rt.NewSession("")
			if err != nil {
				return err
			}
			start = time.Now()
			reply, err := study.CheckConnection(ctx, s)
			if err != nil {
				fmt.Fprintf(out, "Chat:     FAIL (%s)\n", study.Describe(err))
				return fmt.Errorf("connection check failed: %w", err)
			}
			fmt.Fprintf(out, "Chat:     ok (%s) %q\n", time.Since(start).Round(time.Millisecond), reply)
			return nil
		},
	}
	cmd.Flags().BoolVar(&healthOnly, "health-only", false, "Only probe the endpoint, do not send a chat request")
	return cmd
}
