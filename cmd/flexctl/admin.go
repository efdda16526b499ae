package main

import (
	"fmt"

	"flex-design-backend/internal/env"
	"flex-design-backend/internal/policy"
	authsvc "flex-design-backend/internal/service/auth"

	"github.com/spf13/cobra"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an ADMIN account",
	RunE:  runAdminCreate,
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminName, "name", "", "display name")
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "login email")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "password (DEFAULT_ADMIN_PASSWORD when omitted)")
	_ = adminCreateCmd.MarkFlagRequired("name")
	_ = adminCreateCmd.MarkFlagRequired("email")
	adminCmd.AddCommand(adminCreateCmd)
}

func runAdminCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	tk, err := newToolkit(ctx)
	if err != nil {
		return err
	}
	defer tk.log.Sync()

	pol := policy.NewAdminPolicy(tk.site.Admins.SuperAdmin, tk.site.Admins.Emails)
	// No tokens are issued from the CLI.
	svc := authsvc.New(tk.db, nil, pol, tk.site, tk.log)
	svc.SetDefaultAdminPassword(env.Get(env.DefaultAdminPassword))

	user, err := svc.CreateAdmin(ctx, nil, authsvc.CreateAdminParams{
		Name:     adminName,
		Email:    adminEmail,
		Password: adminPassword,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (%s)\n", user.Email, user.UserID)
	return nil
}
