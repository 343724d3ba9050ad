package main

import (
	"github.com/rs/zerolog"
)

// logProgress reports pipeline milestones through the logger.
type logProgress struct {
	log  zerolog.Logger
	last float64
}

func newLogProgress(log zerolog.Logger) *logProgress {
	return &logProgress{log: log.With().Str("component", "progress").Logger()}
}

func (p *logProgress) Report(fraction float64, message string) {
	if fraction < p.last {
		fraction = p.last
	}
	p.last = fraction
	p.log.Info().
		Int("percent", int(fraction*100+0.5)).
		Msg(message)
}
