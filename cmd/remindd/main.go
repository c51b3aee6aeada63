package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/remindd/internal/notify"
	"github.com/sandeepkv93/remindd/internal/scheduler"
	"github.com/sandeepkv93/remindd/internal/storage"
	"github.com/sandeepkv93/remindd/internal/update"
)

func main() {
	configPath := update.DefaultConfigPath()
	if v := strings.TrimSpace(os.Getenv("REMINDD_CONFIG")); v != "" {
		configPath = v
	}
	cfg, err := update.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "remindd: config %s unreadable, using defaults: %v\n", configPath, err)
	}
	cfg = update.ConfigFromEnv(cfg)

	var store update.TaskStore
	if s, err := storage.Open(cfg.StorePath); err != nil {
		fmt.Fprintf(os.Stderr, "remindd: store unavailable, changes will not persist: %v\n", err)
	} else {
		store = s
		defer s.Close()
	}

	gateway := notify.NewDesktopGateway(
		notify.WithConsentMemo(notify.Permission(cfg.NotificationConsent)),
	)

	engine := scheduler.NewEngine(time.Duration(cfg.TickIntervalSeconds) * time.Second)
	engine.Start()
	defer engine.Stop()

	m := update.NewModelWithRuntime(store, gateway, engine, cfg)
	m.OnConsent = func(p notify.Permission) {
		cfg.NotificationConsent = string(p)
		if err := cfg.Save(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "remindd: consent not persisted: %v\n", err)
		}
	}

	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "remindd failed: %v\n", err)
		os.Exit(1)
	}
}
