package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/knot/internal/adapters/logger"
	"go.trai.ch/knot/internal/core/domain"
	"go.trai.ch/zerr"
)

func newPlainLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	l := logger.New()
	l.SetOutput(&buf)
	return l, &buf
}

func TestLogger_InfoWarn(t *testing.T) {
	l, buf := newPlainLogger(t)

	l.Info("resolved 2 units")
	l.Warn("artifact directory disabled")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "resolved 2 units", lines[0])
	assert.Equal(t, "! artifact directory disabled", lines[1])
}

func TestLogger_ErrorChain(t *testing.T) {
	l, buf := newPlainLogger(t)

	err := zerr.With(zerr.Wrap(domain.ErrCircularReference, "lazy resolution"), "cycle", "pkg2.A -> pkg1.B -> pkg2.A")
	l.Error(zerr.Wrap(err, "resolve pkg2.A"))

	out := buf.String()
	assert.Contains(t, out, "Error: resolve pkg2.A")
	assert.Contains(t, out, "Caused by:")
	assert.Contains(t, out, "→ lazy resolution (cycle=pkg2.A -> pkg1.B -> pkg2.A)")
	assert.Contains(t, out, "→ circular reference")
}

func TestLogger_ErrorNil(t *testing.T) {
	l, buf := newPlainLogger(t)
	l.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_JSON(t *testing.T) {
	l, buf := newPlainLogger(t)
	l.SetJSON(true)

	l.Error(zerr.With(zerr.Wrap(domain.ErrUnknownReference, "pkg3.C"), "reference", "pkg3.C"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "operation failed", record["msg"])
	assert.Equal(t, "pkg3.C: unknown reference", record["error"])
	assert.Equal(t, map[string]any{"reference": "pkg3.C"}, record["metadata"])
}

func TestCollectErrorEntries(t *testing.T) {
	t.Parallel()

	base := errors.New("permission denied")
	err := zerr.With(zerr.Wrap(base, domain.ErrStoreWriteFailed.Error()), "path", "/x")
	err = zerr.With(err, "unit", "pkg1.B")

	entries := logger.CollectErrorEntries(err)
	require.Len(t, entries, 2)

	formatted := logger.FormatErrorEntries(entries)
	assert.Equal(t,
		"Error: failed to write artifact (path=/x unit=pkg1.B)\n\n  Caused by:\n    → permission denied",
		formatted)
}

func TestCollectErrorEntries_MetadataOnlyLink(t *testing.T) {
	t.Parallel()

	// zerr.With on a plain error inserts an empty-message link whose
	// metadata belongs to the entry above it.
	err := zerr.Wrap(zerr.With(errors.New("boom"), "k", "v"), "outer")

	formatted := logger.FormatErrorEntries(logger.CollectErrorEntries(err))
	assert.Equal(t, "Error: outer (k=v)\n\n  Caused by:\n    → boom", formatted)
}

func TestPrettyHandler_Attrs(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer

	h := logger.NewPrettyHandler(&buf, nil)
	slog.New(h).WithGroup("unit").With("name", "pkg1.B").Info("compiled", "ms", 3)

	assert.Equal(t, "compiled unit.name=pkg1.B unit.ms=3\n", buf.String())
	assert.False(t, h.Enabled(t.Context(), slog.LevelDebug))
}
