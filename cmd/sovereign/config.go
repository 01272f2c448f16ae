package main

import (
	"fmt"

	"github.com/flemzord/sovereign/internal/config"
	"github.com/flemzord/sovereign/pkg/app"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check [path]",
		Short: "Validate configuration and print the effective settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			if len(args) == 1 {
				path = args[0]
			}

			cfg, resolved, err := config.LoadOrDefault(path)
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			dump, err := redactedYAML(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if resolved == "" {
				resolved = "defaults"
			}
			fmt.Fprintf(out, "Configuration OK (%s)\n\n%s", resolved, dump)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "paths",
		Short: "List the configuration search path",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, p := range config.SearchPaths() {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
		},
	})
	return cmd
}

// redactedYAML renders cfg with secret-looking keys and values masked.
func redactedYAML(cfg *config.Config) ([]byte, error) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: encoding: %w", err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("config: encoding: %w", err)
	}
	app.NewRedactor(cfg).RedactMap(m)
	return yaml.Marshal(m)
}
