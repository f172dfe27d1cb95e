package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"pydojo/internal/app"
	"pydojo/internal/auth"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type userJSON struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	LastLogin time.Time `json:"last_login,omitzero"`
}

func newLoginCmd(o *rootOptions) *cobra.Command {
	var (
		username      string
		passwordStdin bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as the local admin",
		Args:  cobra.NoArgs,
		RunE: o.plain(func(cmd *cobra.Command, a *app.App, _ []string) error {
			password, err := readPassword(cmd, "Password: ", passwordStdin)
			if err != nil {
				return err
			}
			u, err := a.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), a, userJSON{Username: u.Username, Role: u.Role, LastLogin: u.LastLogin},
				fmt.Sprintf("Welcome back, %s!\n", u.Username))
		}),
	}
	cmd.Flags().StringVarP(&username, "username", "u", auth.DefaultUsername, "account name")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func newLogoutCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: o.plain(func(cmd *cobra.Command, a *app.App, _ []string) error {
			if err := a.Logout(cmd.Context()); err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), a, map[string]bool{"logged_out": true}, "Logged out.\n")
		}),
	}
}

func newWhoAmICmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: o.plain(func(cmd *cobra.Command, a *app.App, _ []string) error {
			u, err := a.WhoAmI(cmd.Context())
			if errors.Is(err, auth.ErrNotAuthenticated) {
				return emit(cmd.OutOrStdout(), a, map[string]any{"username": nil}, "Not logged in.\n")
			}
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), a, userJSON{Username: u.Username, Role: u.Role, LastLogin: u.LastLogin},
				fmt.Sprintf("%s (%s)\n", u.Username, u.Role))
		}),
	}
}

func newPasswdCmd(o *rootOptions) *cobra.Command {
	var (
		username      string
		passwordStdin bool
	)
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Set a new password and unlock the account",
		Args:  cobra.NoArgs,
		RunE: o.plain(func(cmd *cobra.Command, a *app.App, _ []string) error {
			password, err := readPassword(cmd, "New password: ", passwordStdin)
			if err != nil {
				return err
			}
			if err := a.ResetPassword(cmd.Context(), username, password); err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), a, map[string]string{"username": username}, "Password updated.\n")
		}),
	}
	cmd.Flags().StringVarP(&username, "username", "u", auth.DefaultUsername, "account name")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func readPassword(cmd *cobra.Command, prompt string, fromStdin bool) (string, error) {
	if !fromStdin && stdinIsTerminal() {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
