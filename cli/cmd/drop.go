/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// dropCmd represents the drop command
var dropCmd = &cobra.Command{
	Use:   "drop <channel...>",
	Short: "Unregisters one or more channels.",
	Long: `Removes each channel's rank, ban and library stores and its
directory record. Deletion steps keep going past failures; a channel is
reported clean only when every step succeeded.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range args {
			clean, err := channels.Drop(name)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error dropping %s: %v\n", name, err)
				continue
			}
			if clean {
				fmt.Printf("Channel dropped: %s\n", name)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(dropCmd)
}
