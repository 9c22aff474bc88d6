/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChrisX930/sync/server/domain"
)

var adduserRank int

// adduserCmd represents the adduser command
var adduserCmd = &cobra.Command{
	Use:   "adduser <name> <password>",
	Short: "Creates a registered user account.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		name, password := args[0], args[1]
		if !domain.IsValidUserName(name) {
			fmt.Fprintf(os.Stderr, "Invalid user name %q\n", name)
			return
		}
		taken, err := repo.IsUsernameTaken(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error checking name %s: %v\n", name, err)
			return
		}
		if taken {
			fmt.Fprintf(os.Stderr, "User name %s is already registered\n", name)
			return
		}
		if err := repo.CreateUser(name, password, adduserRank); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating user %s: %v\n", name, err)
			return
		}
		fmt.Printf("User created: %s (global rank %d)\n", name, adduserRank)
	},
}

func init() {
	adduserCmd.Flags().IntVar(&adduserRank, "rank", domain.RankDefault, "Global rank for the new account")
	rootCmd.AddCommand(adduserCmd)
}
