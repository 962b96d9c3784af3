package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/nutrisync/internal/client/models"
	"github.com/spf13/cobra"
)

func newUserCmd(withApp appRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage the signed-in user",
	}

	var name string
	set := &cobra.Command{
		Use:   "set <id> <email>",
		Short: "Set the user that owns local data",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, a *App, args []string) error {
			u := models.User{ID: args[0], Email: args[1], DisplayName: name}
			if err := a.repos.Users.SetCurrent(ctx, u); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "signed in as %s\n", bold.Render(u.Email))
			return nil
		}),
	}
	set.Flags().StringVar(&name, "name", "", "display name")

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
			u, err := a.repos.Users.Current(ctx)
			if err != nil {
				return err
			}
			if u == nil {
				fmt.Fprintln(a.out, gray.Render("no user"))
				return nil
			}
			writeField(a.out, "id", u.ID)
			writeField(a.out, "email", u.Email)
			if u.DisplayName != "" {
				writeField(a.out, "name", u.DisplayName)
			}
			return nil
		}),
	}

	signOut := &cobra.Command{
		Use:   "clear",
		Short: "Sign out locally",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
			return a.repos.Users.ClearCurrent(ctx)
		}),
	}

	cmd.AddCommand(set, show, signOut)
	return cmd
}
