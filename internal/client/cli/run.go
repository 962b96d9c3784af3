package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/nutrisync/internal/common"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newRunCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the sync daemon until interrupted",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.Run(ctx)
		}),
	}
}

// Run starts the connectivity observer, the periodic scheduler and the
// coordinator, and blocks until ctx is done or one of them fails. Only one
// daemon may run per database.
func (a *App) Run(ctx context.Context) error {
	lock := flock.New(a.config.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", lock.Path(), err)
	}
	if !locked {
		return fmt.Errorf("%w: %s is held by another process", common.ErrAlreadyRunning, lock.Path())
	}
	defer lock.Unlock()

	a.logger.Info(ctx, "Starting sync daemon...",
		"db", a.config.DatabasePath, "server", a.config.ServerEndpointAddr, "interval", a.config.SyncInterval)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.observer.Run(ctx) })
	g.Go(func() error { return a.coordinator.Run(ctx) })
	g.Go(func() error { return a.scheduler.Run(ctx) })
	g.Go(func() error { return a.reportStatus(ctx) })
	g.Go(func() error { return a.reportConflicts(ctx) })
	g.Go(func() error { return a.reportPending(ctx) })

	err = g.Wait()
	a.logger.Info(ctx, "Sync daemon stopped")
	return err
}

func (a *App) reportStatus(ctx context.Context) error {
	ch, cancel := a.coordinator.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-ch:
			fmt.Fprintf(a.out, "%s %s\n", gray.Render("status"), renderStatus(s))
		}
	}
}

func (a *App) reportConflicts(ctx context.Context) error {
	ch, cancel := a.processor.Conflicts().Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-ch:
			fmt.Fprintf(a.out, "%s %s/%s: %s\n", yellow.Render("conflict"), c.EntityType, c.EntityID, c.Message)
		}
	}
}

func (a *App) reportPending(ctx context.Context) error {
	for c := range a.repos.Queue.WatchCounts(ctx) {
		fmt.Fprintf(a.out, "%s %d pending, %d failed\n", gray.Render("queue"), c.Pending, c.PendingOrFailed-c.Pending)
	}
	return nil
}
