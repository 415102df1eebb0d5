package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/stage-builds/internal/stage"
)

// ProgressMsg wraps a published progress snapshot for use as a tea.Msg.
type ProgressMsg struct {
	Progress stage.Progress
}

// DoneMsg reports the session outcome. It is the last message the bridge
// delivers.
type DoneMsg struct {
	Final stage.Progress
	Err   error
}

const bridgeBuffer = 100

// Bridge adapts session progress into bubble tea messages. It implements
// stage.ProgressSink and provides commands for the model to consume from.
type Bridge struct {
	msgs chan tea.Msg
	quit chan struct{}
	once sync.Once
}

// NewBridge creates a bridge with enough buffer that the session never
// blocks on a busy display.
func NewBridge() *Bridge {
	return &Bridge{
		msgs: make(chan tea.Msg, bridgeBuffer),
		quit: make(chan struct{}),
	}
}

// Publish implements stage.ProgressSink. Snapshots are disposable, so when
// the buffer is full the snapshot is dropped and the next tick supersedes it.
func (b *Bridge) Publish(progress stage.Progress) error {
	select {
	case b.msgs <- ProgressMsg{Progress: progress}:
	default:
	}

	return nil
}

// Finish delivers the session outcome. Unlike snapshots it must not be
// dropped, so the send blocks until the model consumes it or the bridge is
// closed because the display already went away.
func (b *Bridge) Finish(final stage.Progress, err error) {
	select {
	case b.msgs <- DoneMsg{Final: final, Err: err}:
	case <-b.quit:
	}
}

// Close releases anything blocked in Finish. Call it once the display has
// exited.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.quit) })
}

// ListenCmd returns a command that blocks until the next message. Re-arm it
// after every message until DoneMsg arrives.
func (b *Bridge) ListenCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.msgs:
			return msg
		case <-b.quit:
			return nil
		}
	}
}
