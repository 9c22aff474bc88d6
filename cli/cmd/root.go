/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/mattn/go-shellwords"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ChrisX930/sync/server/repository"
	"github.com/ChrisX930/sync/server/usecase"
)

var (
	cfgFile  string
	db       *sql.DB
	repo     usecase.Repository
	channels *usecase.ChannelService
)

const (
	databaseKey = "database"
	dumpDirKey  = "chandump_dir"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "syncadmin",
	Short: "Administration tool for the sync server database",
	Long: `syncadmin operates directly on the sync server's sqlite database:
registering and dropping channels, managing channel ranks and bans,
and creating user accounts. Run it with a subcommand for one-shot
use, or without arguments for an interactive shell.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if db != nil {
			return nil
		}
		conn, err := sql.Open("sqlite3", viper.GetString(databaseKey))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		if err := repository.InitSchema(conn); err != nil {
			conn.Close()
			return fmt.Errorf("initializing schema: %w", err)
		}
		db = conn
		repo = repository.NewRepository(conn)
		channels = usecase.NewChannelService(repo, clock.New(), zap.NewNop(), viper.GetString(dumpDirKey))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	defer func() {
		if db != nil {
			db.Close()
		}
	}()

	// one‑shot
	if len(os.Args) > 1 {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
			return
		}
		return
	}

	// REPL
	fmt.Println("entering interactive mode, type 'exit' to quit")
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("❯❯❯ ")
		line, _ := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		args, _ := shellwords.Parse(line)
		rootCmd.SetArgs(args)
		if err := rootCmd.Execute(); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sync.yaml)")
	rootCmd.PersistentFlags().String("database", "./sync.db", "Path to the sync server sqlite database")
	rootCmd.PersistentFlags().String("chandump-dir", "./chandump", "Directory holding persisted channel dumps")

	viper.BindPFlag(databaseKey, rootCmd.PersistentFlags().Lookup("database"))
	viper.BindPFlag(dumpDirKey, rootCmd.PersistentFlags().Lookup("chandump-dir"))
	viper.SetDefault(databaseKey, "./sync.db")
	viper.SetDefault(dumpDirKey, "./chandump")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".sync" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".sync")
	}

	viper.AutomaticEnv() // read in environment variables that match

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}
}
