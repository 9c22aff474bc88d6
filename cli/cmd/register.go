/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// registerCmd represents the register command
var registerCmd = &cobra.Command{
	Use:   "register <channel> <owner>",
	Short: "Registers a channel to a user.",
	Long: `Registers a channel in the directory and provisions its rank, ban
and library stores. The owner is granted at least moderator rank.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		name, owner := args[0], args[1]
		rec, err := channels.Register(name, owner)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error registering %s: %v\n", name, err)
			return
		}
		fmt.Printf("Channel registered: %s (owner: %s)\n", rec.Name, owner)
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
}
