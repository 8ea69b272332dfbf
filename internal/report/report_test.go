package report_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/born-ml/fastnet/internal/report"
)

func TestLogger_Report(t *testing.T) {
	var buf bytes.Buffer
	r := report.New(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	r.Report("epoch status", "epoch", 3, "mse_train", 0.25)
	r.Debug("hidden detail")

	out := buf.String()
	assert.Contains(t, out, "msg=\"epoch status\"")
	assert.Contains(t, out, "epoch=3")
	assert.Contains(t, out, "mse_train=0.25")
	assert.NotContains(t, out, "hidden detail")
}

func TestLogger_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	r := report.New(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	r.Debug("chunk split", "chunks", 4)
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "chunks=4")
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	r := report.New(slog.New(slog.NewTextHandler(&buf, nil))).With("algorithm", "trainrp")

	r.Report("starting")
	assert.Contains(t, buf.String(), "algorithm=trainrp")
}

func TestDiscard(t *testing.T) {
	var r report.Reporter = report.Discard()
	assert.NotPanics(t, func() {
		r.Report("ignored", "k", 1)
		r.Debug("ignored")
	})
}

func TestNew_NilUsesDefault(t *testing.T) {
	assert.NotNil(t, report.New(nil))
}
