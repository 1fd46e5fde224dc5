package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"threat-sentinel/api/internal/handlers"
	"threat-sentinel/internal/app"
	"threat-sentinel/internal/supervisor"
	"threat-sentinel/internal/utils"

	"github.com/gorilla/mux"
)

func main() {
	var (
		configFile = flag.String("config", utils.DefaultConfigFile, "Configuration file path (YAML)")
		port       = flag.String("port", "", "API server port (overrides application.api_port)")
	)
	flag.Parse()

	config, err := utils.LoadConfigOrDefault(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != "" {
		config.Application.APIPort = *port
	}

	logger, err := utils.NewLoggerFromConfig(config.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	sentinel, err := app.New(config, logger)
	if err != nil {
		logger.Fatalf("Failed to build sentinel: %v", err)
	}

	h := handlers.NewHandlers(sentinel.Processor, sentinel.Broadcaster, sentinel.Analyzer, logger)

	router := mux.NewRouter()
	h.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", config.Application.APIPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
	}

	tree := supervisor.NewTree(logger, supervisor.DefaultTreeConfig())
	// Alerts reach the dashboard over the WebSocket, the printer output is not needed
	sentinel.AddServices(tree, io.Discard)
	tree.AddAPIService(supervisor.NewHTTPServerService("api-server", srv, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Infof("API server starting on port %s", config.Application.APIPort)

	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		logger.Errorf("Supervisor stopped: %v", err)
		os.Exit(1)
	}
	sentinel.Scheduler.Stop()
	logger.Info("API server stopped")
}
