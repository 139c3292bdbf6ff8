package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bijaykarki4742/summer-class-web/client/session"
)

func loginCmd(flags *rootFlags) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: run(flags, func(ctx context.Context, a *app, _ []string) error {
			email, err := a.prompt("Email", email)
			if err != nil {
				return err
			}
			password, err := a.prompt("Password", password)
			if err != nil {
				return err
			}
			if err := a.report(a.session.SignIn(ctx, email, password)); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Signed in as %s\n", a.session.User().Email)
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	return cmd
}

func signupCmd(flags *rootFlags) *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: run(flags, func(ctx context.Context, a *app, _ []string) error {
			name, err := a.prompt("Full name", name)
			if err != nil {
				return err
			}
			email, err := a.prompt("Email", email)
			if err != nil {
				return err
			}
			password, err := a.prompt("Password", password)
			if err != nil {
				return err
			}
			if err := session.ValidateNewPassword(password, password); err != nil {
				return err
			}
			return a.report(a.session.SignUp(ctx, email, password, name))
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	cmd.Flags().StringVar(&name, "name", "", "Full name")
	return cmd
}

func logoutCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: run(flags, func(ctx context.Context, a *app, _ []string) error {
			a.session.SignOut(ctx)
			fmt.Fprintln(a.out, "Signed out.")
			return nil
		}),
	}
}

func whoamiCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: run(flags, func(_ context.Context, a *app, _ []string) error {
			snap := a.session.Snapshot()
			if !snap.Configured {
				fmt.Fprintln(a.out, "Authentication is not configured (set SUPABASE_URL and SUPABASE_ANON_KEY).")
				return nil
			}
			if snap.User == nil {
				fmt.Fprintln(a.out, "Not signed in.")
				return nil
			}
			fmt.Fprintf(a.out, "Email: %s\n", snap.User.Email)
			fmt.Fprintf(a.out, "ID:    %s\n", snap.User.ID)
			if name := snap.User.FullName(); name != "" {
				fmt.Fprintf(a.out, "Name:  %s\n", name)
			}
			return nil
		}),
	}
}

func forgotPasswordCmd(flags *rootFlags) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Email a password reset link",
		RunE: run(flags, func(ctx context.Context, a *app, _ []string) error {
			email, err := a.prompt("Email", email)
			if err != nil {
				return err
			}
			return a.report(a.session.RequestPasswordReset(ctx, email))
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	return cmd
}

func setPasswordCmd(flags *rootFlags) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "set-password",
		Short: "Change the signed-in user's password",
		RunE: run(flags, func(ctx context.Context, a *app, _ []string) error {
			if err := a.requireSignIn(); err != nil {
				return err
			}
			confirm := password
			password, err := a.prompt("New password", password)
			if err != nil {
				return err
			}
			if confirm == "" {
				if confirm, err = a.prompt("Confirm password", ""); err != nil {
					return err
				}
			}
			if err := session.ValidateNewPassword(password, confirm); err != nil {
				return err
			}
			return a.report(a.session.UpdatePassword(ctx, password))
		}),
	}
	cmd.Flags().StringVar(&password, "password", "", "New password (prompted twice when omitted)")
	return cmd
}
