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
	unbanIP string
	unbanID int64
)

// unbanCmd represents the unban command
var unbanCmd = &cobra.Command{
	Use:   "unban <channel> [name]",
	Short: "Removes bans from a channel.",
	Long: `Removes ban entries from a channel's ban store: by name (name-only
bans), by address with --ip, or a single entry by id with --id.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		channel := args[0]
		switch {
		case cmd.Flags().Changed("id"):
			if err := channels.UnbanID(channel, unbanID); err != nil {
				fmt.Fprintf(os.Stderr, "Error removing ban #%d: %v\n", unbanID, err)
				return
			}
			fmt.Printf("Removed ban #%d from %s\n", unbanID, channel)
		case unbanIP != "":
			if err := channels.UnbanIP(channel, unbanIP); err != nil {
				fmt.Fprintf(os.Stderr, "Error unbanning %s: %v\n", unbanIP, err)
				return
			}
			fmt.Printf("Unbanned %s from %s\n", unbanIP, channel)
		case len(args) == 2:
			if err := channels.UnbanName(channel, args[1]); err != nil {
				fmt.Fprintf(os.Stderr, "Error unbanning %s: %v\n", args[1], err)
				return
			}
			fmt.Printf("Unbanned %s from %s\n", args[1], channel)
		default:
			fmt.Fprintln(os.Stderr, "Nothing to remove: give a name, --ip, or --id")
		}
	},
}

func init() {
	unbanCmd.Flags().StringVar(&unbanIP, "ip", "", "Address whose ban entries should be removed")
	unbanCmd.Flags().Int64Var(&unbanID, "id", 0, "Ban entry id to remove")
	rootCmd.AddCommand(unbanCmd)
}
