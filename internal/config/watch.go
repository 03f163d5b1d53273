// v2
// internal/config/watch.go
package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the properties file whenever it changes on disk and
// hands the refreshed config to onReload. Runs until the context is
// cancelled. The parent directory is watched rather than the file
// itself so editors that replace-and-rename still trigger a reload.
func (c *AppConfig) Watch(ctx context.Context, lg *slog.Logger, onReload func(*AppConfig)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(c.PropertiesPath)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	target := filepath.Clean(c.PropertiesPath)
	lg.Info("watching properties", "path", target)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if err := c.ReloadProperties(); err != nil {
				lg.Error("properties reload failed", "error", err)
				continue
			}
			lg.Info("properties reloaded",
				"noise_level", c.NoiseLevel,
				"failure_probability", c.FailureProbability,
				"rush_hour_enabled", c.RushHourEnabled,
				"weather_enabled", c.WeatherSimulation)
			if onReload != nil {
				onReload(c)
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			lg.Warn("watcher error", "error", werr)
		}
	}
}
