package main

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

type appStub struct {
	startErr error
	stopErr  error
	done     chan os.Signal
	stopped  bool
}

func (a *appStub) Start(context.Context) error { return a.startErr }

func (a *appStub) Stop(context.Context) error {
	a.stopped = true
	return a.stopErr
}

func (a *appStub) Done() <-chan os.Signal { return a.done }

func TestServeStopsOnContextCancel(t *testing.T) {
	app := &appStub{done: make(chan os.Signal)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := serve(ctx, app); err != nil {
		t.Fatalf("serve returned error: %v", err)
	}
	if !app.stopped {
		t.Fatal("expected application to be stopped")
	}
}

func TestServeStopsOnShutdownSignal(t *testing.T) {
	app := &appStub{done: make(chan os.Signal, 1)}
	app.done <- os.Interrupt

	errCh := make(chan error, 1)
	go func() { errCh <- serve(context.Background(), app) }()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("serve did not return after shutdown signal")
	}
}

func TestServeErrors(t *testing.T) {
	app := &appStub{startErr: errors.New("db unreachable"), done: make(chan os.Signal)}
	err := serve(context.Background(), app)
	if err == nil || !strings.Contains(err.Error(), "failed to start library") || app.stopped {
		t.Fatalf("expected start error without stop, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	app = &appStub{stopErr: errors.New("timeout"), done: make(chan os.Signal)}
	if err := serve(ctx, app); err == nil || !strings.Contains(err.Error(), "failed to stop library") {
		t.Fatalf("expected stop error, got %v", err)
	}
}
