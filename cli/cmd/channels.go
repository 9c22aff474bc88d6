/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// channelsCmd represents the channels command
var channelsCmd = &cobra.Command{
	Use:   "channels <owner>",
	Short: "Lists the channels registered to a user.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		recs, err := channels.ListByOwner(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing channels for %s: %v\n", args[0], err)
			return
		}
		if len(recs) == 0 {
			fmt.Printf("No channels registered to %s.\n", args[0])
			return
		}
		for _, rec := range recs {
			fmt.Printf("%-30s %s\n", rec.Name, rec.CreatedAt.Format("2006-01-02 15:04:05"))
		}
	},
}

func init() {
	rootCmd.AddCommand(channelsCmd)
}
