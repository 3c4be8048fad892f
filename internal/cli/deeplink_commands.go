package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/statisfy/statisfy/internal/config"
	"github.com/statisfy/statisfy/internal/deeplink"
	"github.com/statisfy/statisfy/internal/singleinstance"
)

// loadConfig resolves the config honoring the global --config flag.
func loadConfig() (*config.Config, error) {
	cfg, path, exists, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Debug().Str("path", path).Msg("Loaded configuration")
	}
	return cfg, nil
}

// newRegisterCmd re-runs the OS scheme registration outside the GUI. Useful
// after moving the binary or when the desktop environment lost the handler.
func newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Register the statisfy:// URI scheme with the operating system",
		Long: `Associate the deep-link URI scheme with this executable.

The desktop app does this automatically on every start; this command is
for repairing the association without opening a window, for example after
the binary moved on disk.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			registrar := deeplink.NewRegistrar(cfg.App.Scheme, logger)
			if err := registrar.Register(); err != nil {
				return err
			}

			fmt.Printf("Registered %s:// handler for %s\n", cfg.App.Scheme, executablePath())
			return nil
		},
	}
}

// newSendCmd injects a deep link into the running instance, the same way a
// second launch with the URL on the command line would.
func newSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <url>",
		Short: "Deliver a deep link to the running Statisfy instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			url := args[0]
			if !deeplink.IsSchemeURL(url, cfg.App.Scheme) {
				return fmt.Errorf("not a %s:// URL: %q", cfg.App.Scheme, url)
			}

			inv := singleinstance.CurrentInvocation()
			inv.Args = []string{os.Args[0], url}

			guard := singleinstance.New(logger)
			if err := guard.Forward(inv); err != nil {
				if errors.Is(err, singleinstance.ErrPrimaryUnreachable) {
					return fmt.Errorf("no running instance to deliver to (start the app first)")
				}
				return err
			}

			fmt.Println("Delivered.")
			return nil
		},
	}
}

// newStatusCmd reports whether a primary instance currently holds the lock.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a Statisfy instance is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			lock := flock.New(singleinstance.LockPath())
			held, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("probe instance lock: %w", err)
			}
			if held {
				// We got the lock, so nothing else holds it.
				_ = lock.Unlock()
				fmt.Println("Not running.")
				return nil
			}
			fmt.Println("Running.")
			return nil
		},
	}
}

func executablePath() string {
	exe, err := os.Executable()
	if err != nil {
		return os.Args[0]
	}
	return exe
}
