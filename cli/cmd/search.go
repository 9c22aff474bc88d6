/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var searchByOwner bool

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Searches registered channels.",
	Long: `Searches the channel directory for names containing the query.
With --owner, the query matches owner names instead.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		search := channels.Search
		if searchByOwner {
			search = channels.SearchByOwner
		}
		recs, err := search(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error searching channels: %v\n", err)
			return
		}
		if len(recs) == 0 {
			fmt.Println("No channels found.")
			return
		}
		for _, rec := range recs {
			fmt.Printf("%-30s %-20s %s\n", rec.Name, rec.Owner, rec.CreatedAt.Format("2006-01-02 15:04:05"))
		}
	},
}

func init() {
	searchCmd.Flags().BoolVar(&searchByOwner, "owner", false, "Match owner names instead of channel names")
	rootCmd.AddCommand(searchCmd)
}
