package tasks

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	bgTasks := New(slog.Default(), 3, 10)
	bgTasks.Run()
	var runned atomic.Int32
	for i := 0; i < 5; i++ {
		bgTasks.Add(func() { runned.Add(1) })
	}
	require.NoError(t, bgTasks.Shutdown(context.Background()))
	assert.Equal(t, int32(5), runned.Load())
	assert.True(t, bgTasks.IsEmpty())
}

func TestPanicDoesNotKillWorker(t *testing.T) {
	bgTasks := New(slog.Default(), 1, 10)
	bgTasks.Run()
	var runned atomic.Bool
	bgTasks.Add(func() { panic("boom") })
	bgTasks.Add(func() { runned.Store(true) })
	require.NoError(t, bgTasks.Shutdown(context.Background()))
	assert.True(t, runned.Load())
}

func TestAddAfterShutdownIsDropped(t *testing.T) {
	bgTasks := New(slog.Default(), 1, 1)
	bgTasks.Run()
	require.NoError(t, bgTasks.Shutdown(context.Background()))
	assert.NotPanics(t, func() { bgTasks.Add(func() {}) })
}

func TestSchedule(t *testing.T) {
	bgTasks := New(slog.Default(), 1, 10)
	bgTasks.Run()
	var runs atomic.Int32
	bgTasks.Schedule(5*time.Millisecond, func() { runs.Add(1) })
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, bgTasks.Shutdown(context.Background()))
}
