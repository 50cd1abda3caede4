// Command mango-serve runs a document store server over a memory or
// SQLite engine.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/nasdf/mango"
	"github.com/nasdf/mango/remote"
	"github.com/nasdf/mango/store"
	"github.com/nasdf/mango/store/memory"
	"github.com/nasdf/mango/store/sqlite"
)

func main() {
	var (
		configPath string
		engineName string
		dataPath   string
		addr       string
	)
	flag.StringVar(&configPath, "config", "", "path to a YAML config file")
	flag.StringVar(&engineName, "engine", "memory", "storage engine: memory or sqlite")
	flag.StringVar(&dataPath, "data", "mango.db", "path to the sqlite database file")
	flag.StringVar(&addr, "addr", "", "listen address (overrides config)")
	flag.Parse()

	cfg := mango.DefaultConfig()
	if configPath != "" {
		loaded, err := mango.LoadConfig(configPath)
		if err != nil {
			slog.Error("failed to load config", "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if addr != "" {
		cfg.Address = addr
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(log)

	var engine store.Store
	switch engineName {
	case "memory":
		engine = memory.New()
	case "sqlite":
		st, err := sqlite.Open(dataPath)
		if err != nil {
			log.Error("failed to open sqlite store", "path", dataPath, "err", err)
			os.Exit(1)
		}
		engine = st
	default:
		log.Error("unknown engine", "engine", engineName)
		os.Exit(1)
	}
	defer engine.Close()

	server, err := remote.NewServer(engine,
		remote.WithLogger(log),
		remote.WithMaxConnections(cfg.MaxConnections),
	)
	if err != nil {
		log.Error("failed to create server", "err", err)
		os.Exit(1)
	}
	err = server.ListenAndServe(cfg.Address)
	if err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
