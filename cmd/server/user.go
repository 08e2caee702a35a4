package main

import (
	"errors"
	"fmt"

	"github.com/marketdev/internal/config"
	"github.com/marketdev/internal/db"
	"github.com/spf13/cobra"
)

var (
	initUsername string
	initPassword string
)

var initUserCmd = &cobra.Command{
	Use:   "init-user",
	Short: "Create an admin account for the page editor",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if initUsername == "" || initPassword == "" {
			return errors.New("--username and --password are required")
		}
		if err := db.Init(config.Load().DatabasePath); err != nil {
			return err
		}
		if err := db.CreateUser(db.DB, initUsername, initPassword); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %s\n", initUsername)
		return nil
	},
}

func init() {
	initUserCmd.Flags().StringVarP(&initUsername, "username", "u", "", "Admin username")
	initUserCmd.Flags().StringVarP(&initPassword, "password", "p", "", "Admin password")
}
