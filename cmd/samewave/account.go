package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/samewave/internal/model"
	"github.com/sakif/samewave/internal/render"
)

func newSignupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			res, err := a.api.Signup(cmd.Context(), username, email, password)
			if err != nil {
				return err
			}
			return a.loggedIn(cmd, res.User)
		},
	}
	cmd.Flags().String("username", "", "username")
	cmd.Flags().String("email", "", "email address")
	cmd.Flags().String("password", "", "password")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to an existing account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			res, err := a.api.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			return a.loggedIn(cmd, res.User)
		},
	}
	cmd.Flags().String("email", "", "email address")
	cmd.Flags().String("password", "", "password")
	return cmd
}

func (a *app) loggedIn(cmd *cobra.Command, user *model.User) error {
	if err := a.session.Login(cmd.Context(), user); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", user.Handle())
	return nil
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the account and the pseudonym",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current identity and its contributions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			handle, err := a.session.CurrentIdentity(ctx)
			if err != nil {
				return err
			}

			var mine []model.Suggestion
			for _, s := range a.sync.Suggestions() {
				if s.CreatedBy == handle {
					mine = append(mine, s)
				}
			}
			stats := a.sync.Stats(handle)
			fmt.Fprintf(a.out, "(%s)\n", a.session.State())
			return render.Profile(a.out, handle, stats.Threads, mine, a.sync.Threads())
		},
	}
}
