package logger

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/util"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(level zapcore.Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return &Logger{logger: zap.New(core)}, logs
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input string
		want  Level
	}{
		{input: "debug", want: DebugLevel},
		{input: " WARN ", want: WarnLevel},
		{input: "error", want: ErrorLevel},
		{input: "info", want: InfoLevel},
		{input: "verbose", want: InfoLevel},
		{input: "", want: InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseLevel(tc.input))
		})
	}
}

func TestNewLogger(t *testing.T) {
	for _, env := range []Environment{Development, Production} {
		t.Run(string(env), func(t *testing.T) {
			log, err := NewLogger(
				WithEnvironment(env),
				WithLoggingLevel(DebugLevel),
				WithOutputPaths([]string{"stderr"}),
			)
			require.NoError(t, err)
			assert.True(t, log.GetZap().Core().Enabled(zapcore.DebugLevel))
		})
	}
}

func TestLogger_InfoContext(t *testing.T) {
	log, logs := newObservedLogger(zapcore.InfoLevel)

	ctx := util.WithConsumerID(util.WithChannel(context.Background(), "orders:7"), "c-1")
	log.InfoContext(ctx, "received update", NewField("kind", "maker"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "received update", entries[0].Message)
	assert.Equal(t, map[string]interface{}{
		"kind":        "maker",
		"channel":     "orders:7",
		"consumer_id": "c-1",
	}, entries[0].ContextMap())
}

func TestLogger_Error(t *testing.T) {
	log, logs := newObservedLogger(zapcore.InfoLevel)

	log.Error(errors.TracerFromError(stderrors.New("query failed")), NewField("action", "load_markets"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "query failed", entries[0].Message)
	assert.NotEmpty(t, entries[0].Stack)
}

func TestLogger_WithFields(t *testing.T) {
	log, logs := newObservedLogger(zapcore.DebugLevel)

	child := log.WithFields(NewField("component", "bus"))
	child.Debug("published")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "bus", entries[0].ContextMap()["component"])
}

func readEntries(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, jsoniter.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	require.NoError(t, scanner.Err())
	return entries
}

func TestNewLogger_EncoderKeysAndCaller(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.log")
	log, err := NewLogger(
		WithEnvironment(Production),
		WithOutputPaths([]string{path}),
		WithTimeKey("ts"),
		WithLevelKey("severity"),
	)
	require.NoError(t, err)

	ctx := util.WithChannel(context.Background(), "fills:5")
	_, _, line, _ := runtime.Caller(0)
	log.Info("plain")
	log.InfoContext(ctx, "with context")
	log.WarnContext(ctx, "warned")
	log.ErrorContext(ctx, stderrors.New("failed"))
	require.NoError(t, log.Sync())

	entries := readEntries(t, path)
	require.Len(t, entries, 4)
	for i, entry := range entries {
		assert.Contains(t, entry, "ts")
		assert.Contains(t, entry, "severity")
		assert.NotContains(t, entry, "level")
		assert.Contains(t, entry, "message")
		assert.Equal(t, fmt.Sprintf("logger/log_test.go:%d", line+1+i), entry["caller"])
	}
	assert.Equal(t, "error", entries[3]["severity"])
	assert.Equal(t, "fills:5", entries[1]["channel"])
}

func logThroughHelper(log Interface, message string) {
	log.Info(message)
}

func TestNewLogger_CallerTraceSkip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.log")
	log, err := NewLogger(
		WithEnvironment(Production),
		WithOutputPaths([]string{path}),
		WithCallerTraceSkip(1),
	)
	require.NoError(t, err)

	_, _, line, _ := runtime.Caller(0)
	logThroughHelper(log, "wrapped")
	require.NoError(t, log.Sync())

	entries := readEntries(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, fmt.Sprintf("logger/log_test.go:%d", line+1), entries[0]["caller"])
}
