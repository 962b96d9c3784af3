package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/nutrisync/internal/client/models"
	"github.com/spf13/cobra"
)

func newWeightCmd(withApp appRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weight",
		Short: "Manage weight entries",
	}

	var req models.WeightEntryRequest
	add := &cobra.Command{
		Use:   "add",
		Short: "Record a weight measurement",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
			if req.Date == "" {
				req.Date = time.Now().Format(time.DateOnly)
			}
			return a.addWeight(ctx, req)
		}),
	}
	add.Flags().StringVar(&req.Date, "date", "", "measurement date, YYYY-MM-DD (default today)")
	add.Flags().Float64Var(&req.WeightKg, "kg", 0, "weight in kg")
	add.Flags().StringVar(&req.Note, "note", "", "note")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a weight entry",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *App, args []string) error {
			if err := a.mutator.DeleteWeight(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "deleted weight entry %s\n", args[0])
			return nil
		}),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List local weight entries",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
			entries, err := a.repos.Records.WeightEntries.List(ctx)
			if err != nil {
				return err
			}
			for _, w := range entries {
				fmt.Fprintf(a.out, "%s  %s  %.1f kg\n", w.ID, w.Date, w.WeightKg)
			}
			return nil
		}),
	}

	cmd.AddCommand(add, del, list)
	return cmd
}

// addWeight validates everything but the user id, which is resolved from
// the signed-in user now or at sync time.
func (a *App) addWeight(ctx context.Context, req models.WeightEntryRequest) error {
	if err := a.validate.StructExceptCtx(ctx, req, "UserID"); err != nil {
		return err
	}
	w, err := a.mutator.AddWeight(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "added weight %.1f kg on %s (%s)\n", w.WeightKg, w.Date, w.ID)
	return nil
}
