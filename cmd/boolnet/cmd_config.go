package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nvandessel/boolnet/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show boolnet configuration",
		Long: `View the effective configuration: defaults, then ~/.boolnet/config.yaml
(or --config), then BOOLNET_* environment variables, then global flags.

Examples:
  boolnet config list
  boolnet config get engine.workers
  boolnet config path`,
	}
	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigPathCmd(),
	)
	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			return s.emit(s.cfg, func(w io.Writer) {
				for _, key := range config.Keys() {
					v, _ := s.cfg.Get(key)
					fmt.Fprintf(w, "%-30s %v\n", key+":", valueOrDefault(v))
				}
			})
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			key := args[0]
			value, found := s.cfg.Get(key)
			if !found {
				return fmt.Errorf("unknown configuration key: %s", key)
			}
			return s.emit(map[string]any{"key": key, "value": value}, func(w io.Writer) {
				fmt.Fprintf(w, "%s = %v\n", key, value)
			})
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the default config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Path()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func valueOrDefault(v any) any {
	if s, ok := v.(string); ok && s == "" {
		return "(default)"
	}
	return v
}
