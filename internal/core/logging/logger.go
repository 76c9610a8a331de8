package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component returns a child of the global logger whose events carry
// cmp=name. The child copies log.Logger at call time, so services must be
// built after main installs the configured logger.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}
