package actor

import "log/slog"

// Config defines an actor System.
type Config struct {
	Name string `json:"name"`

	Logger *slog.Logger `json:"-"`
}

func DefaultConfig() Config {
	return Config{
		Name:   "wordcount",
		Logger: slog.Default(),
	}
}

func (c *Config) Merge(source *Config) {
	if source.Name != "" {
		c.Name = source.Name
	}

	if source.Logger != nil {
		c.Logger = source.Logger
	}
}
