package config

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"ignition/internal/logging"
)

// reloadGroup deduplicates concurrent reloads of the same config file:
// callers that ask for a reload while one is already running share its
// result. Watch handles events one at a time, so within a single Watch
// each Write/Create event still triggers its own reload and its own
// onChange call; a burst of events from one save is not collapsed.
var reloadGroup singleflight.Group

// Load reads configFilePath, merging it over Default(). A missing file
// is not an error: the defaults are returned as-is, matching the
// original loader's "use defaults when config.yaml is absent" behavior.
func Load(configFilePath string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info(context.Background(), "config", "no config file found at %s, using defaults", configFilePath)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config file %s: %w", configFilePath, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", configFilePath, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", configFilePath, err)
	}

	logging.Info(context.Background(), "config", "loaded configuration from %s", configFilePath)
	return cfg, nil
}

// Watch reloads the configuration whenever configFilePath changes on
// disk, invoking onChange with the newly loaded Config. Reload errors
// are logged and the previous configuration keeps running rather than
// crashing the service over a transient bad edit.
func Watch(ctx context.Context, configFilePath string, onChange func(Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}

	if err := watcher.Add(configFilePath); err != nil {
		watcher.Close()
		return fmt.Errorf("watch config file %s: %w", configFilePath, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				result, err, _ := reloadGroup.Do(configFilePath, func() (interface{}, error) {
					return Load(configFilePath)
				})
				if err != nil {
					logging.Error(ctx, "config", err, "failed to reload config from %s, keeping previous configuration", configFilePath)
					continue
				}
				onChange(result.(Config))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Error(ctx, "config", err, "config watcher error")
			}
		}
	}()

	return nil
}
