package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/hivectl/internal/config"
	"github.com/danmuck/hivectl/internal/engine"
	"github.com/danmuck/hivectl/internal/logging"
	"github.com/danmuck/hivectl/internal/mailbox"
	"github.com/danmuck/hivectl/internal/registry"
	"github.com/danmuck/hivectl/internal/store"
	"github.com/danmuck/hivectl/internal/tmux"
	"github.com/danmuck/hivectl/internal/tools"
)

const version = "0.1.0"

func main() {
	cfgPath := flag.String("config", "", "hub config file (toml)")
	rootDir := flag.String("root", "", "override runtime root directory")
	sessionID := flag.String("session", "", "override hub session id")
	flag.Parse()

	logging.ConfigureRuntime()

	if err := run(*cfgPath, *rootDir, *sessionID); err != nil {
		fmt.Fprintf(os.Stderr, "hived: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath, rootDir, sessionID string) error {
	cfg, err := config.LoadHubConfig(cfgPath)
	if err != nil {
		return err
	}
	if strings.TrimSpace(rootDir) != "" {
		cfg.Root = rootDir
	}
	if strings.TrimSpace(sessionID) != "" {
		cfg.SessionID = sessionID
	}

	driver := tmux.NewDriver(cfg.TmuxBin, tmux.ExecRunner{})
	if cfg.SessionID == "" {
		pane, err := driver.CurrentPane()
		if err != nil {
			return fmt.Errorf("session id not configured and not derivable: %w", err)
		}
		cfg.SessionID = pane
	}

	st := store.New(cfg.Root)
	reg, err := tools.DefaultRegistry(tools.Deps{
		SessionID:    cfg.SessionID,
		Store:        st,
		Mailbox:      mailbox.New(st),
		Registry:     registry.New(st),
		Tmux:         driver,
		SettingsPath: cfg.SettingsPath,
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("session", cfg.SessionID).
		Str("root", cfg.Root).
		Msg("hub dispatch loop starting")

	eng := engine.New(reg, engine.ServerInfo{Name: "hived", Version: version})
	return eng.Serve(os.Stdin, os.Stdout)
}
