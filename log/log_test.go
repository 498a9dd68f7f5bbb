package log

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

var (
	sampleElection = uint64(3)
	sampleRoot     = []byte("123")
	sampleTally    = []int64{10, 0, 7}
	sampleDuration = time.Second
	sampleTime     = time.Unix(12345678, 0)

	errSample = errors.New("proof verification failed")
)

func doLogs() {
	Infof("registered election %d with census root %x", sampleElection, sampleRoot)
	Debugw("vote accepted", "election", sampleElection, "candidate", 1)
	Errorf("cannot commit transaction: %v", errSample)
	Warnw("various types",
		"tally", sampleTally,
		"duration", sampleDuration,
		"time", sampleTime,
	)
	Error(errSample)
}

func TestLevel(t *testing.T) {
	t.Cleanup(func() { Init(LogLevelError, "stderr", nil) })
	for _, lvl := range []string{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError} {
		Init(lvl, "stderr", nil)
		if got := Level(); got != lvl {
			t.Fatalf("Level() = %q, want %q", got, lvl)
		}
	}
}

func TestErrorOutput(t *testing.T) {
	t.Cleanup(func() { Init(LogLevelError, "stderr", nil) })
	var errBuf bytes.Buffer
	logTestWriter = io.Discard
	Init(LogLevelDebug, logTestWriterName, &errBuf)

	Infof("election %d opened", sampleElection)
	if errBuf.Len() != 0 {
		t.Fatalf("info message leaked to the error output: %q", errBuf.String())
	}
	Errorf("cannot commit transaction: %v", errSample)
	if !strings.Contains(errBuf.String(), errSample.Error()) {
		t.Fatalf("error output %q does not contain %q", errBuf.String(), errSample)
	}
}

func TestCheckInvalidChars(t *testing.T) {
	t.Cleanup(func() { panicOnInvalidChars = false })

	v := []byte{'h', 'e', 'l', 'l', 'o', 0xff, 'w', 'o', 'r', 'l', 'd'}
	panicOnInvalidChars = false
	Init("debug", "stderr", nil)
	Debugf("%s", v)
	// should not panic since env var is false. if it panics, test will fail

	// now enable panic and try again: should recover() and never reach t.Errorf()
	panicOnInvalidChars = true
	Init("debug", "stderr", nil)
	defer func() { recover() }()
	Debugf("%s", v)
	t.Errorf("Debugf(%s) should have panicked because of invalid char", v)
}

func BenchmarkLogger(b *testing.B) {
	logTestWriter = io.Discard // to not grow a buffer
	Init("debug", logTestWriterName, nil)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		doLogs()
	}
}
