package bot

import (
	"sync/atomic"
	"testing"

	"github.com/echoremedy/echoremedy-bot/internal/bot/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	started atomic.Int32
	waited  atomic.Int32
}

func (r *countingRunner) Go(fn func()) {
	r.started.Add(1)
	fn()
}

func (r *countingRunner) Wait() {
	r.waited.Add(1)
}

func TestWithDefaultsKeepsSuppliedRunner(t *testing.T) {
	runner := &countingRunner{}
	deps := withDefaults(handlers.Dependencies{Runner: runner})

	require.Same(t, runner, deps.Runner)
	assert.NotNil(t, deps.Files)

	waitRunner(deps.Runner)
	assert.EqualValues(t, 1, runner.waited.Load())
}

func TestWithDefaultsUsesAsyncRunner(t *testing.T) {
	deps := withDefaults(handlers.Dependencies{})

	async, ok := deps.Runner.(*handlers.AsyncRunner)
	require.True(t, ok)

	done := make(chan struct{})
	async.Go(func() { close(done) })
	waitRunner(deps.Runner)
	select {
	case <-done:
	default:
		t.Fatal("Wait returned before the started function finished")
	}
}
