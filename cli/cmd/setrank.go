/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// setrankCmd represents the setrank command
var setrankCmd = &cobra.Command{
	Use:   "setrank <channel> <name> <rank>",
	Short: "Sets a user's rank in a channel.",
	Long: `Sets a user's moderator rank in a channel's rank store. Ranks below
2 are the implicit default and remove the stored entry instead.`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		channel, name := args[0], args[1]
		rank, err := strconv.Atoi(args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid rank %q: %v\n", args[2], err)
			return
		}
		if err := channels.SetRank(channel, name, rank); err != nil {
			fmt.Fprintf(os.Stderr, "Error setting rank: %v\n", err)
			return
		}
		fmt.Printf("Rank of %s in %s set to %d\n", name, channel, rank)
	},
}

func init() {
	rootCmd.AddCommand(setrankCmd)
}
