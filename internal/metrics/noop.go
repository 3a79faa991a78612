package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) ObserveReport(string, time.Duration, error) {}
func (n *NoopRecorder) IncProjectCacheHit()                         {}
func (n *NoopRecorder) IncProjectCacheMiss()                        {}
func (n *NoopRecorder) IncProjectCreated()                          {}
func (n *NoopRecorder) IncProjectDeleted()                          {}
func (n *NoopRecorder) IncTimeEntryCreated()                        {}
func (n *NoopRecorder) IncTimeEntryDeleted()                        {}
