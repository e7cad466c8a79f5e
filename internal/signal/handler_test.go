package signal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerSignalCancelsContext(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	h.handleSignal()

	require.Error(t, h.Context().Err())
	assert.Equal(t, context.Canceled, h.Context().Err())

	select {
	case <-h.Interrupted():
	default:
		t.Fatal("interrupted channel should be closed after signal")
	}
}

func TestHandlerRepeatedSignalsProcessedOnce(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	h.handleSignal()
	h.handleSignal()
	h.handleSignal()

	require.Error(t, h.Context().Err())
	select {
	case <-h.Interrupted():
	default:
		t.Fatal("interrupted channel should be closed")
	}
}

func TestHandlerStopIsIdempotent(t *testing.T) {
	h := NewHandler(context.Background())

	h.Stop()
	h.Stop()

	assert.Error(t, h.Context().Err())
}

func TestHandlerRespectsParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	h := NewHandler(parent)
	defer h.Stop()

	cancel()

	assert.Error(t, h.Context().Err())
}

func TestHandlerInitialState(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	assert.NoError(t, h.Context().Err())
	select {
	case <-h.Interrupted():
		t.Fatal("interrupted channel should be open initially")
	default:
	}
}

func TestHandlerListenSurvivesRepeatedInterrupts(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	// Simulate repeated Ctrl+C. If listen() exited after the first signal
	// the second send would block forever.
	h.sigChan <- nil
	h.sigChan <- nil

	select {
	case <-h.Interrupted():
	case <-time.After(time.Second):
		t.Fatal("interrupted channel not closed after signal")
	}
	assert.Equal(t, context.Canceled, h.Context().Err())
}
