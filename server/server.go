package server

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	v1 "github.com/bookkeep/bookkeep/api/v1"
	"github.com/bookkeep/bookkeep/config"
	"github.com/bookkeep/bookkeep/library"
	"github.com/bookkeep/bookkeep/store"
	"github.com/bookkeep/bookkeep/version"
	"github.com/bookkeep/bookkeep/worker"
)

// StartServer starts the HTTP server
func StartServer(ctx context.Context, store *store.Store, manager *library.Manager, shelfPool worker.WorkPool) (*http.Server, error) {
	addr := config.Opts.Host
	port := config.Opts.Port
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", addr, port),
		Handler: setupHandler(store, manager, shelfPool),
	}

	startHTTPServer(server)

	return server, nil
}

func startHTTPServer(server *http.Server) {
	go func() {
		fmt.Println("Starting HTTP server in:", server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			fmt.Println("HTTP server error", err)
			os.Exit(1)
		}
	}()
}

func setupHandler(store *store.Store, manager *library.Manager, shelfPool worker.WorkPool) http.Handler {
	router := mux.NewRouter()

	apiHandler := v1.NewHandler(store, manager, shelfPool)
	v1.Server(router, apiHandler)

	router.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(); err != nil {
			http.Error(w, "Database Connection Error", http.StatusInternalServerError)
			return
		}

		w.Write([]byte("OK"))
	}).Name("healthcheck")

	router.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(version.GetCurrentVersion()))
	}).Name("version")

	return router
}
