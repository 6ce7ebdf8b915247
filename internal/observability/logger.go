// Package observability bundles the service logger and the prometheus
// collectors exported at /metrics.
package observability

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger returns the shared structured logger.  Output is JSON so the
// lines are ingestible as-is; the level comes from the LOG_LEVEL-shaped
// string passed by config (info when empty or unparseable).
func NewLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level))); err == nil {
		log.SetLevel(lvl)
	}
	return log
}
