package config

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// WatchLogLevel re-reads log.level whenever the config file changes and passes it to apply.
// It is a no-op when no config file was loaded.
func (c *Config) WatchLogLevel(apply func(level string)) {
	if c.v == nil || c.v.ConfigFileUsed() == "" {
		return
	}
	c.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		level := c.v.GetString("log.level")
		slog.Info("config file changed", "file", e.Name, "log_level", level)
		c.Log.Level = level
		apply(level)
	})
	c.v.WatchConfig()
}
