package metrics

var _ Metrics = (*NullMetrics)(nil)

// NullMetrics discards everything. Useful in tests and for callers that
// don't want a metrics dependency at all.
type NullMetrics struct{}

func (n *NullMetrics) Register(Metadata)        {}
func (n *NullMetrics) Increment(string)          {}
func (n *NullMetrics) Gauge(string, any)         {}
func (n *NullMetrics) Count(string, any)         {}
func (n *NullMetrics) Histogram(string, any)     {}
func (n *NullMetrics) Up(string)                 {}
func (n *NullMetrics) Down(string)               {}
