// Command bgserver runs the bgrules HTTP/WebSocket API server.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/yourusername/bgrules/internal/config"
	"github.com/yourusername/bgrules/internal/logging"
	"github.com/yourusername/bgrules/pkg/api"
	"github.com/yourusername/bgrules/pkg/engine"
	"github.com/yourusername/bgrules/pkg/session"
)

const version = "0.1.0"

func main() {
	configFile := flag.String("config", "", "Path to a YAML or TOML config file")
	host := flag.String("host", "", "Host to bind to (use 0.0.0.0 for all interfaces)")
	port := flag.Int("port", 0, "Port to listen on")
	publicURL := flag.String("public-url", "", "Base URL used in share links")
	store := flag.String("store", "", "Session store: memory, sqlite or none")
	dbPath := flag.String("db", "", "SQLite database path")
	dev := flag.Bool("dev", false, "Human-readable development logging")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("bgrules API Server v%s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Flags given explicitly win over the file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Server.Host = *host
		case "port":
			cfg.Server.Port = *port
		case "public-url":
			cfg.Server.PublicURL = *publicURL
		case "store":
			cfg.Store.Driver = *store
		case "db":
			cfg.Store.Path = *dbPath
		case "dev":
			cfg.Log.Development = *dev
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	sessions, err := openStore(cfg.Store, logger)
	if err != nil {
		logger.Fatal("failed to open session store", zap.Error(err))
	}
	if sessions != nil {
		defer sessions.Close()
	}

	eng := engine.NewEngine(engine.EngineOptions{Seed: cfg.Game.Seed})

	server := api.NewServer(eng, sessions, api.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxFastWorkers: cfg.Server.MaxFastWorkers,
		MaxSlowWorkers: cfg.Server.MaxSlowWorkers,
		PublicURL:      cfg.Server.PublicURL,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		DefaultVariant: cfg.Game.DefaultVariant,
		MaxSimGames:    cfg.Game.MaxSimGames,
	}, logger, version)

	if err := server.ListenAndServeWithGracefulShutdown(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// openStore returns the configured session store, or nil when sessions
// are disabled.
func openStore(cfg config.StoreConfig, logger *zap.Logger) (session.Store, error) {
	switch cfg.Driver {
	case "sqlite":
		return session.OpenSQLite(cfg.Path, logger)
	case "none":
		return nil, nil
	}
	return session.NewMemoryStore(), nil
}
