package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ChrisX930/sync/server/adaptor"
	"github.com/ChrisX930/sync/server/domain"
	"github.com/ChrisX930/sync/server/repository"
	"github.com/ChrisX930/sync/server/usecase"
)

const (
	listenKey          = "listen"
	databaseKey        = "database"
	dumpDirKey         = "chandump_dir"
	guestLoginDelayKey = "guest_login_delay"
	afkTimeoutKey      = "afk_timeout"
)

func initConfig() {
	viper.SetConfigName("sync")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/sync")

	viper.SetDefault(listenKey, ":8080")
	viper.SetDefault(databaseKey, "./sync.db")
	viper.SetDefault(dumpDirKey, "./chandump")
	viper.SetDefault(guestLoginDelayKey, 60*time.Second)
	viper.SetDefault(afkTimeoutKey, 10*time.Minute)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(err)
		}
		// No config file is fine; defaults and env apply.
	}
}

func main() {
	initConfig()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := sql.Open("sqlite3", viper.GetString(databaseKey))
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := repository.InitSchema(db); err != nil {
		log.Fatal("failed to initialize schema", zap.Error(err))
	}

	clk := clock.New()
	repo := repository.NewRepository(db)
	channels := usecase.NewChannelService(repo, clk, log, viper.GetString(dumpDirKey))
	throttle := domain.NewGuestLoginThrottle(clk, viper.GetDuration(guestLoginDelayKey))
	auth := usecase.NewAuthService(repo, channels, throttle, log)
	manager := domain.NewChannelManager(domain.ChannelOptions{
		AFKTimeout: viper.GetDuration(afkTimeoutKey),
	})
	behavior := usecase.NewStandardBehavior(channels, log)
	router := usecase.NewRouter(channels, auth, manager, behavior, log)

	mux := http.NewServeMux()
	mux.Handle("/socket", adaptor.NewAdaptor(router, clk, log))

	addr := viper.GetString(listenKey)
	log.Info("server is running", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("failed to serve", zap.Error(err))
	}
}
