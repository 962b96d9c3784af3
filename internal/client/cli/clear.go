package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errNotConfirmed = errors.New("refusing to clear the queue without --yes")

func newClearCmd(withApp appRunner) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every queued change (unsynced changes are lost)",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
			if !yes {
				return errNotConfirmed
			}
			return a.clear(ctx)
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm data loss")

	return cmd
}

func (a *App) clear(ctx context.Context) error {
	pending, err := a.coordinator.GetPendingCount(ctx)
	if err != nil {
		return err
	}
	if err := a.coordinator.ClearPending(ctx); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "queue cleared, %s unsynced change(s) discarded\n", red.Render(fmt.Sprint(pending)))
	return nil
}
