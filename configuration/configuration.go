package configuration

import (
	"github.com/fulldump/entitycache/logging"
	"github.com/fulldump/entitycache/server"
)

type Configuration struct {
	HttpAddr   string `usage:"HTTP address"`
	Seed       string `usage:"YAML or JSON file with the initial items of each resource"`
	IdField    string `usage:"name of the id field"`
	IdMode     string `usage:"id assignment for new items: auto or uuid"`
	AutoCreate bool   `usage:"create resources on first access"`
	LogLevel   string `usage:"log level: debug, info, warn or error"`
	LogFormat  string `usage:"log format: text or json"`
	Version    bool   `usage:"show version and exit"`
	ShowBanner bool   `usage:"show big banner"`
	ShowConfig bool   `usage:"print config"`
}

func Default() Configuration {
	return Configuration{
		HttpAddr:   "127.0.0.1:8080",
		IdField:    server.DefaultConfig().IDField,
		IdMode:     string(server.IDModeAuto),
		AutoCreate: true,
		LogLevel:   "info",
		LogFormat:  string(logging.FormatText),
		ShowBanner: true,
	}
}

// Store returns the store settings.
func (c *Configuration) Store() server.Config {
	return server.Config{
		IDField:    c.IdField,
		IDMode:     server.IDMode(c.IdMode),
		AutoCreate: c.AutoCreate,
	}
}

// Logging returns the logger settings.
func (c *Configuration) Logging() logging.Config {
	config := logging.DefaultConfig()
	config.Level = logging.ParseLevel(c.LogLevel)
	config.Format = logging.ParseFormat(c.LogFormat)
	return config
}
