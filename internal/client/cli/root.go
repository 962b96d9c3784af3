package cli

import (
	"context"

	"github.com/dmitrijs2005/nutrisync/internal/config"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the nutrisync command tree. opts are passed to every
// App the commands create.
func NewRootCmd(opts ...AppOption) *cobra.Command {
	root := &cobra.Command{
		Use:   "nutrisync",
		Short: "Offline-first sync client for nutrition data",
	}

	pf := root.PersistentFlags()
	pf.SortFlags = false
	pf.StringP("config", "c", "", "JSON config file")
	pf.String("env-file", ".env", "dotenv file with NUTRISYNC_* variables")
	config.RegisterFlags(pf)

	withApp := func(fn func(ctx context.Context, a *App, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			app, err := NewApp(ctx, cfg, cmd.OutOrStdout(), opts...)
			if err != nil {
				return err
			}
			defer app.Close()

			return fn(ctx, app, args)
		}
	}

	root.AddCommand(
		newRunCmd(withApp),
		newSyncCmd(withApp),
		newStatusCmd(withApp),
		newQueueCmd(withApp),
		newClearCmd(withApp),
		newFoodCmd(withApp),
		newWeightCmd(withApp),
		newUserCmd(withApp),
	)

	return root
}

// appRunner adapts an App-level action to a cobra RunE.
type appRunner func(fn func(ctx context.Context, a *App, args []string) error) func(*cobra.Command, []string) error

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	configFile, _ := flags.GetString("config")
	envFile, _ := flags.GetString("env-file")

	return config.Load(config.LoadOptions{
		ConfigFile: configFile,
		EnvFile:    envFile,
		Flags:      flags,
	})
}
