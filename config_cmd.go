package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/businesscomms/bcctl/internal/config"
)

func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(a.newConfigShowCmd())
	cmd.AddCommand(a.newConfigInitCmd())

	return cmd
}

func (a *app) newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration after all overrides",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if a.cfg == nil {
				return fmt.Errorf("no configuration loaded")
			}

			if a.flags.json {
				return a.printObject(a.cfg)
			}

			return config.RenderEffective(a.cfg, a.stdout)
		},
	}
}

func (a *app) newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a commented default config file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path := a.flags.configPath
			if path == "" {
				path = config.ReadEnvOverrides().ConfigPath
			}

			if path == "" {
				path = config.DefaultConfigPath()
			}

			if path == "" {
				return fmt.Errorf("cannot determine config path, use --config")
			}

			if err := config.WriteDefault(path); err != nil {
				return err
			}

			a.statusf("Wrote %s\n", path)

			return nil
		},
	}
}
