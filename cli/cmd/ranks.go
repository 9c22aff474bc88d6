/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ranksCmd represents the ranks command
var ranksCmd = &cobra.Command{
	Use:   "ranks <channel>",
	Short: "Lists a channel's stored rank entries.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		entries, err := channels.AllRanks(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ranks for %s: %v\n", args[0], err)
			return
		}
		if len(entries) == 0 {
			fmt.Println("No rank entries.")
			return
		}
		for _, e := range entries {
			fmt.Printf("%-20s %d\n", e.Name, e.Rank)
		}
	},
}

func init() {
	rootCmd.AddCommand(ranksCmd)
}
