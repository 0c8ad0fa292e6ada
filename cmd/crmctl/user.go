package main

import (
	identityapp "github.com/crm/backend/internal/application/identity"
	"github.com/spf13/cobra"
)

func newUserCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage API users",
	}
	cmd.AddCommand(newUserCreateCmd(root))
	return cmd
}

func newUserCreateCmd(root *rootOptions) *cobra.Command {
	in := identityapp.CreateUserInput{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user that can log in to the API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.Close()

			in.TenantID = a.tenant
			user, err := a.services.Users.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "login email")
	cmd.Flags().StringVar(&in.DisplayName, "name", "", "display name")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&in.Role, "role", "member", "admin or member")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
