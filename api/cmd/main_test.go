package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// fakeServer blocks in ListenAndServe until Shutdown or Close, like
// *http.Server, unless listenErr is set.
type fakeServer struct {
	listenErr   error
	shutdownErr error

	mu             sync.Mutex
	stopped        chan struct{}
	shutdownCalled bool
	closeCalled    bool
}

func newFakeServer() *fakeServer {
	return &fakeServer{stopped: make(chan struct{})}
}

func (f *fakeServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stopped
	return http.ErrServerClosed
}

func (f *fakeServer) stop() {
	select {
	case <-f.stopped:
	default:
		close(f.stopped)
	}
}

func (f *fakeServer) Shutdown(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shutdownCalled = true
	if f.shutdownErr == nil {
		f.stop()
	}
	return f.shutdownErr
}

func (f *fakeServer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCalled = true
	f.stop()
	return nil
}

func (f *fakeServer) Addr() string { return ":0" }

func TestRun_BootstrapFail(t *testing.T) {
	build := func() (httpServer, func(), error) {
		return nil, nil, errors.New("boom")
	}
	assert.Equal(t, exitStartup, Run(build, make(chan os.Signal), zerolog.Nop()))
}

func TestRun_SignalShutsDownThenCleansUp(t *testing.T) {
	sigCh := make(chan os.Signal, 1)
	sigCh <- os.Interrupt

	fs := newFakeServer()
	var cleaned bool
	build := func() (httpServer, func(), error) {
		return fs, func() {
			assert.True(t, fs.shutdownCalled, "cleanup must run after shutdown")
			cleaned = true
		}, nil
	}

	assert.Equal(t, exitOK, Run(build, sigCh, zerolog.Nop()))
	assert.True(t, fs.shutdownCalled)
	assert.False(t, fs.closeCalled)
	assert.True(t, cleaned)
}

func TestRun_ShutdownFailureForcesClose(t *testing.T) {
	sigCh := make(chan os.Signal, 1)
	sigCh <- os.Interrupt

	fs := newFakeServer()
	fs.shutdownErr = context.DeadlineExceeded

	build := func() (httpServer, func(), error) { return fs, func() {}, nil }

	assert.Equal(t, exitOK, Run(build, sigCh, zerolog.Nop()))
	assert.True(t, fs.closeCalled)
}

func TestRun_ServerCrash(t *testing.T) {
	fs := newFakeServer()
	fs.listenErr = errors.New("listen tcp: address already in use")

	var cleaned bool
	build := func() (httpServer, func(), error) { return fs, func() { cleaned = true }, nil }

	assert.Equal(t, exitCrash, Run(build, make(chan os.Signal), zerolog.Nop()))
	assert.False(t, fs.shutdownCalled)
	assert.True(t, cleaned)
}

func TestRunInitSchema(t *testing.T) {
	var gotDeadline bool
	ok := func(ctx context.Context) error {
		_, gotDeadline = ctx.Deadline()
		return nil
	}
	assert.Equal(t, exitOK, runInitSchema(ok, zerolog.Nop()))
	assert.True(t, gotDeadline)

	failing := func(context.Context) error { return errors.New("ping db: refused") }
	assert.Equal(t, exitStartup, runInitSchema(failing, zerolog.Nop()))
}
