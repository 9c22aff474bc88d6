/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	banIP     string
	banReason string
)

// banCmd represents the ban command
var banCmd = &cobra.Command{
	Use:   "ban <channel> <name>",
	Short: "Bans a user from a channel.",
	Long: `Adds a ban entry to a channel's ban store. With --ip the entry also
matches the given address; an address like 1.2.3.* bans the whole /24
range. Without --ip the ban is name-only.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		channel, name := args[0], args[1]
		ip := banIP
		if ip == "" {
			ip = "*"
		}
		if err := channels.Ban(channel, ip, name, banReason, "syncadmin"); err != nil {
			fmt.Fprintf(os.Stderr, "Error banning %s from %s: %v\n", name, channel, err)
			return
		}
		fmt.Printf("Banned %s from %s\n", name, channel)
	},
}

func init() {
	banCmd.Flags().StringVar(&banIP, "ip", "", "Address or 1.2.3.* range to ban alongside the name")
	banCmd.Flags().StringVar(&banReason, "reason", "", "Reason recorded with the ban")
	rootCmd.AddCommand(banCmd)
}
