package logger

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func resetLogger() {
	SetLevel(LevelWarn)
	SetOutput(os.Stderr)
	now = time.Now
}

func TestSetVerbose(t *testing.T) {
	defer resetLogger()

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())
	assert.Equal(t, LevelInfo, CurrentLevel())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_OnlyAtDebugLevel(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)

	SetLevel(LevelInfo)
	Debug("hidden %d", 1)
	assert.Empty(t, buf.String())

	SetLevel(LevelDebug)
	Debug("test message %s", "arg")
	assert.Equal(t, "[DEBUG] test message arg\n", buf.String())
}

func TestInfo_WhenNotVerbose(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Info("quiet")
	Section("quiet")
	assert.Empty(t, buf.String())
}

func TestWarn_AlwaysPrinted(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)

	Warn("seed %s unavailable", "TP53")
	assert.Equal(t, "[WARN] seed TP53 unavailable\n", buf.String())
}

func TestStage_ReportsElapsed(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls-1) * 1500 * time.Millisecond)
	}

	done := Stage("enrichment")
	done()

	assert.Contains(t, buf.String(), "=== enrichment ===")
	assert.Contains(t, buf.String(), "[INFO] enrichment finished in 1.5s")
}
