package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/and161185/perpus/internal/model"
)

func newLoginCmd(a *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" && username != "" {
				p, err := readSecret(a.stdin, a.stderr, "Password: ")
				if err != nil {
					return err
				}
				password = p
			}
			sess, err := a.sess.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "logged in as %s (user %s)\n", sess.Username, sess.UserID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.sess.Logout(cmd.Context())
			fmt.Fprintln(a.stdout, "logged out")
			return nil
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	var in model.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Password == "" && in.Username != "" {
				p, err := readSecret(a.stdin, a.stderr, "Password: ")
				if err != nil {
					return err
				}
				in.Password = p
			}
			if err := a.sess.Register(cmd.Context(), in); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "registered %s, now run `perpus login -u %s`\n", in.Username, in.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.Username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&in.Name, "name", "n", "", "Full name")
	cmd.Flags().StringVarP(&in.Email, "email", "e", "", "Email address")
	cmd.Flags().StringVarP(&in.Password, "password", "p", "", "Password (prompted when omitted)")
	return cmd
}

type whoami struct {
	Username  string   `json:"username"`
	UserID    model.ID `json:"userId"`
	ExpiresAt string   `json:"expiresAt,omitempty"`
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the saved session",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			s, ok := a.sess.Current()
			if !ok {
				fmt.Fprintln(a.stdout, "anonymous")
				return nil
			}
			out := whoami{Username: s.Username, UserID: s.UserID}
			if !s.ExpiresAt.IsZero() {
				out.ExpiresAt = s.ExpiresAt.UTC().Format(time.RFC3339)
			}
			return printJSON(a.stdout, out)
		},
	}
}
