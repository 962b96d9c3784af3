package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/nutrisync/internal/client/models"
	"github.com/spf13/cobra"
)

func newQueueCmd(withApp appRunner) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "List queued changes",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
			return a.listQueue(ctx, limit)
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "maximum number of entries to show")

	cmd.AddCommand(&cobra.Command{
		Use:   "drop <entity-type> <entity-id>",
		Short: "Remove unsynced changes for one entity without syncing them",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, a *App, args []string) error {
			return a.dropQueued(ctx, args[0], args[1])
		}),
	})

	return cmd
}

func (a *App) listQueue(ctx context.Context, limit int) error {
	entries, err := a.repos.Queue.List(ctx, limit)
	if err != nil {
		return err
	}
	writeEntries(a.out, entries, time.Now())
	return nil
}

func (a *App) dropQueued(ctx context.Context, entityType, entityID string) error {
	et, err := models.ParseEntityType(entityType)
	if err != nil {
		return err
	}

	n, err := a.writer.RemovePending(ctx, et, entityID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "dropped %d queued change(s) for %s/%s\n", n, et, entityID)
	return nil
}
