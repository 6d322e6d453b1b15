package configuration

import (
	"testing"

	"github.com/fulldump/biff"

	"github.com/fulldump/entitycache/logging"
	"github.com/fulldump/entitycache/server"
)

func TestDefault(t *testing.T) {
	c := Default()

	biff.AssertEqual(c.Store(), server.DefaultConfig())

	l := c.Logging()
	biff.AssertEqual(l.Level, logging.LevelInfo)
	biff.AssertEqual(l.Format, logging.FormatText)
}

func TestConfiguration_Logging(t *testing.T) {
	c := Default()
	c.LogLevel = "DEBUG"
	c.LogFormat = "json"

	l := c.Logging()
	biff.AssertEqual(l.Level, logging.LevelDebug)
	biff.AssertEqual(l.Format, logging.FormatJSON)
}
