package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// stateChangedMsg tells the program that some lifecycle or session state
// changed and the view should be rebuilt from fresh snapshots.
type stateChangedMsg struct{}

// Bridge carries change notifications from lifecycle goroutines into the
// bubbletea event loop. Notifications coalesce: any number of Notify calls
// between two deliveries produce one message.
type Bridge struct {
	ch   chan struct{}
	done chan struct{}
	once sync.Once
}

func NewBridge() *Bridge {
	return &Bridge{
		ch:   make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Notify never blocks and is safe from any goroutine.
func (b *Bridge) Notify() {
	select {
	case b.ch <- struct{}{}:
	default:
	}
}

// Wait returns a command that delivers the next notification. The model
// re-arms it after every stateChangedMsg.
func (b *Bridge) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.ch:
			return stateChangedMsg{}
		case <-b.done:
			return nil
		}
	}
}

// Close releases any pending Wait.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}
