package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridgeCoalescesNotifications(t *testing.T) {
	b := NewBridge()
	defer b.Close()

	for i := 0; i < 10; i++ {
		b.Notify()
	}
	assert.Equal(t, stateChangedMsg{}, b.Wait()())

	// Nothing left after the single coalesced delivery.
	select {
	case <-b.ch:
		t.Fatal("expected the notifications to coalesce into one")
	default:
	}
}

func TestBridgeCloseReleasesWait(t *testing.T) {
	b := NewBridge()
	got := make(chan any, 1)
	go func() { got <- b.Wait()() }()

	b.Close()
	b.Close()

	select {
	case msg := <-got:
		assert.Nil(t, msg)
	case <-time.After(2 * time.Second):
		require.Fail(t, "Wait did not return after Close")
	}
}
