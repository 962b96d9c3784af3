package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show connectivity and queue state",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
			return a.status(ctx)
		}),
	}
}

func (a *App) status(ctx context.Context) error {
	q := a.repos.Queue

	pending, err := q.CountPending(ctx)
	if err != nil {
		return err
	}
	summary, err := q.FailureSummary(ctx)
	if err != nil {
		return err
	}
	user, err := a.repos.Users.Current(ctx)
	if err != nil {
		return err
	}

	writeField(a.out, "server", fmt.Sprintf("%s (%s)", a.config.ServerEndpointAddr, renderOnline(a.observer.Check(ctx))))
	if user != nil {
		writeField(a.out, "user", fmt.Sprintf("%s <%s>", user.ID, user.Email))
	} else {
		writeField(a.out, "user", gray.Render("none"))
	}
	writeField(a.out, "pending", fmt.Sprint(pending))
	writeField(a.out, "failed", fmt.Sprint(summary.Failed))
	if summary.LastError != "" {
		writeField(a.out, "last error", red.Render(summary.LastError))
	}
	return nil
}
