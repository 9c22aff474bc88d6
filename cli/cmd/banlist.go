/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// banlistCmd represents the banlist command
var banlistCmd = &cobra.Command{
	Use:   "banlist <channel>",
	Short: "Lists a channel's bans.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		bans, err := channels.Banlist(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing bans for %s: %v\n", args[0], err)
			return
		}
		if len(bans) == 0 {
			fmt.Println("No bans.")
			return
		}
		for _, b := range bans {
			fmt.Printf("#%-6d %-16s %-20s by %-20s %s\n", b.ID, b.IP, b.Name, b.BannedBy, b.Reason)
		}
	},
}

func init() {
	rootCmd.AddCommand(banlistCmd)
}
