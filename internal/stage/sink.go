package stage

// ProgressSink receives the session's periodic progress snapshots. Publish
// errors are swallowed by the session: the progress surface must never
// interrupt a transfer.
type ProgressSink interface {
	Publish(progress Progress) error
}

// SinkFunc adapts a function to the ProgressSink interface.
type SinkFunc func(progress Progress) error

// Publish calls the wrapped function.
func (f SinkFunc) Publish(progress Progress) error {
	return f(progress)
}

// NopSink discards all snapshots.
type NopSink struct{}

// Publish discards the snapshot.
func (NopSink) Publish(_ Progress) error {
	return nil
}
