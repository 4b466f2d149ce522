package main

import (
	"io/ioutil"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"

	"btcdraw/internal/blocksource"
	"btcdraw/internal/config"
	"btcdraw/internal/handlers"
	"btcdraw/internal/services"
	"btcdraw/internal/store"
)

const defaultConfigPath = "./btcdraw.toml"

func main() {
	// 1. Route all logs to stderr.
	log := logger.Init("btcdraw", true, false, ioutil.Discard)
	defer log.Close()

	// 2. Load the server configuration (defaults when no file exists).
	configPath := defaultConfigPath
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configPath = ""
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// 3. Open the draw archive.
	st, err := store.Open(cfg.StorePath)
	if err != nil {
		logger.Fatalf("Failed to open draw store: %v", err)
	}
	defer st.Close()

	// 4. Initialize the draw service and the block provider client.
	drawService := services.NewDrawService()
	blocks := blocksource.NewClient(cfg.ProviderBaseURL, cfg.Timeout())

	// 5. Set up the Gin router and register routes.
	r := gin.Default()
	httpHandler := handlers.NewHTTPHandler(drawService, blocks, st)
	httpHandler.RegisterRoutes(r)

	// 6. Run the server.
	logger.Infof("Server starting on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		logger.Fatalf("Failed to run server: %v", err)
	}
}
