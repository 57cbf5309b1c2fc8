package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bookkeep/bookkeep/config"
	"github.com/bookkeep/bookkeep/library"
	"github.com/bookkeep/bookkeep/log"
	"github.com/bookkeep/bookkeep/server"
	"github.com/bookkeep/bookkeep/store"
	"github.com/bookkeep/bookkeep/store/db"
	"github.com/bookkeep/bookkeep/worker"
)

const greetingBanner = `
██████   ██████   ██████  ██   ██ ██   ██ ███████ ███████ ██████
██   ██ ██    ██ ██    ██ ██  ██  ██  ██  ██      ██      ██   ██
██████  ██    ██ ██    ██ █████   █████   █████   █████   ██████
██   ██ ██    ██ ██    ██ ██  ██  ██  ██  ██      ██      ██
██████   ██████   ██████  ██   ██ ██   ██ ███████ ███████ ██
`

var (
	configFile string

	rootCmd = &cobra.Command{
		Use:   "bookkeep",
		Short: "Bookkeep is a personal book library server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			database, err := db.NewDB(config.Opts.DSN)
			if err != nil {
				log.Error("Error connecting to database", zap.Error(err))
				return
			}
			defer database.Close()
			if err := database.Migrate(ctx); err != nil {
				log.Error("Error migrating database", zap.Error(err))
				return
			}

			s := store.NewStore(database.DB)
			if err := s.Ping(); err != nil {
				log.Error("Error pinging database", zap.Error(err))
				return
			}
			defer s.Close()

			shelfPool := worker.NewShelfSyncPool(s, config.Opts.WorkerPoolSize)
			manager := library.NewManager(s)

			fmt.Print(greetingBanner)
			httpServer, err := server.StartServer(ctx, s, manager, shelfPool)
			if err != nil {
				log.Error("Error starting server", zap.Error(err))
				return
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			log.Info("Shutting down server")

			shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
			defer shutdownCancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				log.Error("Error shutting down server", zap.Error(err))
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")

	cobra.OnInitialize(func() {
		if _, err := config.GetConfig(); err != nil {
			fmt.Println("Error loading config:", err)
			os.Exit(1)
		}
		if configFile != "" {
			if _, err := config.ParseFile(configFile); err != nil {
				fmt.Println("Error parsing config file:", err)
				os.Exit(1)
			}
		}
		log.Logger = log.NewLogger()
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Logger.Sync()
}
