package main

import (
	"fmt"

	"pos-service/pkg/syncapi"

	"github.com/spf13/cobra"
)

func newAccountCmds(a *app) []*cobra.Command {
	var req syncapi.RegisterRequest
	register := &cobra.Command{
		Use:   "register",
		Short: "Create a server account for this business",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := a.client.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := a.saveSession(cmd.Context(), resp.Token, resp.User.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (user id %s)\n", resp.User.Email, resp.User.ID)
			return nil
		},
	}
	register.Flags().StringVar(&req.Email, "email", "", "account email")
	register.Flags().StringVar(&req.Password, "password", "", "account password (min 8 chars)")
	register.Flags().StringVar(&req.Name, "name", "", "owner name")
	register.Flags().StringVar(&req.BusinessName, "business", "", "business name")
	_ = register.MarkFlagRequired("email")
	_ = register.MarkFlagRequired("password")
	_ = register.MarkFlagRequired("name")

	var email, password string
	login := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the sync server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				email = a.cfg.Email
			}
			resp, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := a.saveSession(cmd.Context(), resp.Token, resp.User.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", resp.User.Email)
			return nil
		},
	}
	login.Flags().StringVar(&email, "email", "", "account email (default from config)")
	login.Flags().StringVar(&password, "password", "", "account password")
	_ = login.MarkFlagRequired("password")

	return []*cobra.Command{register, login}
}
