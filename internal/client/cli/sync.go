package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one sync cycle now",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
			return a.sync(ctx)
		}),
	}
}

func (a *App) sync(ctx context.Context) error {
	online := a.observer.Check(ctx)
	if !online {
		fmt.Fprintf(a.out, "%s, changes stay queued\n", renderOnline(false))
	}

	a.coordinator.SyncNow(ctx)

	pending, err := a.coordinator.GetPendingCount(ctx)
	if err != nil {
		return err
	}

	writeField(a.out, "status", renderStatus(a.coordinator.Status()))
	writeField(a.out, "pending", fmt.Sprint(pending))
	return nil
}
