package app

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequestShutdown_DoesNotBlockWhenPending(t *testing.T) {
	quit := make(chan os.Signal, 1)
	quit <- os.Interrupt

	done := make(chan struct{})
	go func() {
		requestShutdown(quit)
		requestShutdown(quit)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("requestShutdown blocked on a full channel")
	}
	assert.Equal(t, os.Interrupt, <-quit)
}

func TestRequestShutdown_QueuesSigterm(t *testing.T) {
	quit := make(chan os.Signal, 1)
	requestShutdown(quit)
	assert.Equal(t, syscall.SIGTERM, <-quit)
}
