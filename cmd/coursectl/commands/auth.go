package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/jrsteele09/course-session-gateway/apiclient"
	"github.com/jrsteele09/course-session-gateway/auth"
	"github.com/spf13/cobra"
)

const passwordEnvVar = "COURSECTL_PASSWORD"

func passwordFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "password", "", "account password (defaults to $"+passwordEnvVar+")")
}

func password(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(passwordEnvVar)
}

func newSignInCmd(a *app) *cobra.Command {
	var params auth.SignInParams

	cmd := &cobra.Command{
		Use:   "sign-in",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			params.Password = password(params.Password)
			payload, err := a.auth.SignIn(cmd.Context(), a.store, params)
			if err != nil {
				return fmt.Errorf("sign in: %w", err)
			}
			if payload == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Signed in, but the backend returned no usable access token")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", payload.ID, payload.Role)
			return nil
		}),
	}

	cmd.Flags().StringVar(&params.Email, "email", "", "account email")
	passwordFlag(cmd, &params.Password)
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newSignUpCmd(a *app) *cobra.Command {
	var params auth.SignUpParams

	cmd := &cobra.Command{
		Use:   "sign-up",
		Short: "Register a new account",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			params.Password = password(params.Password)
			resp, err := a.auth.SignUp(cmd.Context(), a.store, params)
			if err != nil {
				return fmt.Errorf("sign up: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered (%d)\n", resp.StatusCode)
			return nil
		}),
	}

	cmd.Flags().StringVar(&params.Email, "email", "", "account email")
	cmd.Flags().StringVar(&params.Name, "name", "", "display name")
	passwordFlag(cmd, &params.Password)
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newSignOutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sign-out",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			a.auth.SignOut(cmd.Context(), a.store)
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		}),
	}
}

func newSessionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Show the current session, refreshing it when the access token has expired",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			payload, err := a.auth.CurrentSession(cmd.Context(), a.store)
			if err != nil {
				return sessionError(err)
			}
			return printJSON(cmd.OutOrStdout(), payload)
		}),
	}
}

// sessionError turns an ended session into a hint to sign in again
func sessionError(err error) error {
	var ended *apiclient.SessionEndedError
	if errors.As(err, &ended) {
		return fmt.Errorf("%w: run coursectl sign-in", err)
	}
	return err
}
