package config

import (
	"context"
	"os"
	"time"
)

// WatchChecklists reloads the config file when its mtime changes and calls
// onUpdate with the latest checklist templates. It performs an initial load
// before entering the watch loop.
func WatchChecklists(ctx context.Context, path string, interval time.Duration, onUpdate func(Templates)) error {
	if path == "" {
		path = "configs/config.yaml"
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	cfg, err := Load(path)
	if err != nil {
		return err
	}
	if onUpdate != nil {
		onUpdate(cfg.Checklists)
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	lastMod := info.ModTime()

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				info, err := os.Stat(path)
				if err != nil {
					continue // transient errors
				}
				if !info.ModTime().After(lastMod) {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					continue
				}
				lastMod = info.ModTime()
				if onUpdate != nil {
					onUpdate(cfg.Checklists)
				}
			}
		}
	}()

	return nil
}
