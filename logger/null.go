package logger

var _ Logger = (*NullLogger)(nil)

// NullLogger discards everything. Handy as a default so nothing in the
// module needs a nil check before logging.
type NullLogger struct{}

func (n *NullLogger) Debug() Entry          { return nullEntry }
func (n *NullLogger) Info() Entry           { return nullEntry }
func (n *NullLogger) Warn() Entry           { return nullEntry }
func (n *NullLogger) Error() Entry          { return nullEntry }
func (n *NullLogger) SetLevel(string) error { return nil }

var nullEntry = &nullLoggerEntry{}

type nullLoggerEntry struct{}

func (n *nullLoggerEntry) WithField(string, any) Entry     { return n }
func (n *nullLoggerEntry) WithFields(map[string]any) Entry { return n }
func (n *nullLoggerEntry) Logf(string, ...any)             {}
