package main

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLogProgress_ReportsPercentAndNeverGoesBack(t *testing.T) {
	var buf bytes.Buffer
	p := newLogProgress(zerolog.New(&buf))

	p.Report(0.10, "Costos calculados")
	assert.Contains(t, buf.String(), `"percent":10`)
	assert.Contains(t, buf.String(), "Costos calculados")

	buf.Reset()
	p.Report(0.05, "late update")
	assert.Contains(t, buf.String(), `"percent":10`)

	buf.Reset()
	p.Report(1.0, "done")
	assert.Contains(t, buf.String(), `"percent":100`)
}
