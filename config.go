package nucleus

import (
	"github.com/TheBitDrifter/table"
	"github.com/sirupsen/logrus"
)

// log is the package-level leveled logger. Internal invariant violations are
// still panicked with bark.AddTrace, matching the storage/query/entity code;
// log is for the non-fatal warn/info/debug traffic spec'd for the update
// queue and scheduler.
var log = logrus.New()

// Config holds global configuration for the storage and runtime.
var Config config = config{
	threadCount: 1,
}

func init() {
	log.SetLevel(logrus.InfoLevel)
}

type config struct {
	tableEvents table.TableEvents
	threadCount int
}

// SetTableEvents configures the table event callbacks.
func (c *config) SetTableEvents(te table.TableEvents) {
	c.tableEvents = te
}

// SetLogLevel adjusts the threshold for the package-level logger.
func (c *config) SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// LogLevel returns the currently configured log level.
func (c *config) LogLevel() logrus.Level {
	return log.GetLevel()
}

// SetThreadCount bounds the scheduler's worker pool width. Values below 1
// are clamped to 1 so the scheduler always has somewhere to run systems.
func (c *config) SetThreadCount(n int) {
	if n < 1 {
		n = 1
	}
	c.threadCount = n
}

// ThreadCount returns the configured scheduler worker pool width.
func (c *config) ThreadCount() int {
	return c.threadCount
}
