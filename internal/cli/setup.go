package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cyclekit/pothole-report/internal/config"
	"github.com/cyclekit/pothole-report/internal/credentials"
)

// identity resolves the keyring entry from keyring_account in the config,
// when one can be read.
func identity(configPath string) credentials.Identity {
	return credentials.DefaultIdentity(config.KeyringAccount(config.SearchPaths(configPath, config.FileName)))
}

func (a *App) newSetupCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:                   "setup",
		Short:                 "Store the reporter email in the OS keyring",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Args:                  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := identity(configPath)
			fmt.Fprint(a.Out, promptStyle.Sprint("Email for reporting: "))
			line, err := a.reader().ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return fatal(fmt.Errorf("read email: %w", err))
			}
			email := strings.TrimSpace(line)
			if email == "" {
				return fatal(ErrEmptyEmail)
			}
			if err := a.Store.SetEmail(id, email); err != nil {
				return fatal(err)
			}
			a.presenter().Success("Email stored in keyring.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	return cmd
}

func (a *App) newRemoveKeyringCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:                   "remove-keyring",
		Short:                 "Remove the stored reporter email from the OS keyring",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Args:                  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := a.presenter()
			err := a.Store.DeleteEmail(identity(configPath))
			switch {
			case errors.Is(err, credentials.ErrNotStored):
				out.Detail("No keyring entry found (already removed or never set).")
				return nil
			case err != nil:
				return fatal(err)
			}
			out.Success("Removed keyring entry.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	return cmd
}

func (a *App) newAttributesCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:                   "attributes",
		Short:                 "List the attribute values defined in the config",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Args:                  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.Options{Path: configPath, Store: a.Store})
			if err != nil {
				return fatal(err)
			}
			a.presenter().Attributes(cfg.Attributes)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	return cmd
}
