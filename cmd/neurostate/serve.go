package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/samuel-1-avson/Neurostate-sub001/internal/httpapi"
	"github.com/samuel-1-avson/Neurostate-sub001/pkg/fsm"
	"github.com/samuel-1-avson/Neurostate-sub001/pkg/fsm/config"
	"github.com/samuel-1-avson/Neurostate-sub001/pkg/fsm/history"
	"github.com/samuel-1-avson/Neurostate-sub001/pkg/fsm/project"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Serves the graph store and simulation executor as a JSON API over
HTTP. Optionally pre-populates the graph from a project file.`,
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")
		projectPath, _ := cmd.Flags().GetString("project")
		configPath, _ := cmd.Flags().GetString("config")

		name := "untitled"
		historyPath := ""
		if configPath != "" {
			cfg, err := config.FromFile(configPath)
			if err != nil {
				fmt.Printf("Error loading config: %v\n", err)
				os.Exit(1)
			}
			addr = cfg.String("addr", addr)
			historyPath = cfg.String("history", historyPath)
			name = cfg.String("name", name)
		}

		g := fsm.NewGraph()
		if projectPath != "" {
			p, err := project.Load(projectPath)
			if err != nil {
				fmt.Printf("Error loading project: %v\n", err)
				os.Exit(1)
			}
			g = p.Graph()
			if p.Name != "" {
				name = p.Name
			}
		}

		opts := []fsm.Option{fsm.WithLogger(newLogger(cmd))}
		if historyPath != "" {
			store, err := history.NewSQLiteStore(historyPath)
			if err != nil {
				fmt.Printf("Error opening history store: %v\n", err)
				os.Exit(1)
			}
			defer store.Close()
			opts = append(opts, fsm.WithHistory(store))
		}
		exec := fsm.NewExecutor(g, opts...)

		srv := &http.Server{
			Addr:    addr,
			Handler: httpapi.New(name, g, exec).Handler(),
		}

		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("Neurostate API listening on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nShutting down (signal: %v)\n", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete: %v\n", err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error closing server: %v\n", err)
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	serveCmd.Flags().String("project", "", "Project file to pre-populate the graph from")
	serveCmd.Flags().String("config", "", "YAML or JSON config file")
}
