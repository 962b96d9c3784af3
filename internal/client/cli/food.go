package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/nutrisync/internal/client/models"
	"github.com/spf13/cobra"
)

func foodFlags(cmd *cobra.Command, req *models.FoodRequest) {
	f := cmd.Flags()
	f.StringVar(&req.Name, "name", "", "food name")
	f.StringVar(&req.Brand, "brand", "", "brand")
	f.IntVar(&req.Calories, "calories", 0, "kcal per serving")
	f.Float64Var(&req.ProteinG, "protein", 0, "protein per serving, g")
	f.Float64Var(&req.CarbsG, "carbs", 0, "carbohydrates per serving, g")
	f.Float64Var(&req.FatG, "fat", 0, "fat per serving, g")
	f.Float64Var(&req.ServingSize, "serving-size", 0, "serving size")
	f.StringVar(&req.ServingUnit, "serving-unit", "", "serving unit")
}

func newFoodCmd(withApp appRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "food",
		Short: "Manage foods",
	}

	var addReq models.FoodRequest
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a food",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
			return a.addFood(ctx, addReq)
		}),
	}
	foodFlags(add, &addReq)

	var updReq models.FoodRequest
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a food",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *App, args []string) error {
			return a.updateFood(ctx, args[0], updReq)
		}),
	}
	foodFlags(update, &updReq)

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a food",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *App, args []string) error {
			if err := a.mutator.DeleteFood(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "deleted food %s\n", args[0])
			return nil
		}),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List local foods",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
			return a.listFoods(ctx)
		}),
	}

	cmd.AddCommand(add, update, del, list)
	return cmd
}

func (a *App) addFood(ctx context.Context, req models.FoodRequest) error {
	if err := a.validate.StructCtx(ctx, req); err != nil {
		return err
	}
	f, err := a.mutator.AddFood(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "added food %s (%s)\n", bold.Render(f.Name), f.ID)
	return nil
}

func (a *App) updateFood(ctx context.Context, id string, req models.FoodRequest) error {
	if err := a.validate.StructCtx(ctx, req); err != nil {
		return err
	}
	f, err := a.mutator.UpdateFood(ctx, id, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "updated food %s (%s)\n", bold.Render(f.Name), f.ID)
	return nil
}

func (a *App) listFoods(ctx context.Context) error {
	foods, err := a.repos.Records.Foods.List(ctx)
	if err != nil {
		return err
	}
	for _, f := range foods {
		id := f.ID
		if models.IsPlaceholder(id) {
			id = yellow.Render(id)
		}
		fmt.Fprintf(a.out, "%s  %s  %d kcal\n", id, bold.Render(f.Name), f.Calories)
	}
	return nil
}
