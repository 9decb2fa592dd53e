package logger

import "github.com/sirupsen/logrus"

var _ Logger = (*LogrusLogger)(nil)

// LogrusLogger is the default backend: structured, leveled logging to
// stderr via sirupsen/logrus.
type LogrusLogger struct {
	logger *logrus.Logger
}

// NewLogrusLogger returns a LogrusLogger at info level.
func NewLogrusLogger() *LogrusLogger {
	return &LogrusLogger{logger: logrus.New()}
}

type logrusEntry struct {
	entry *logrus.Entry
	level logrus.Level
}

func (l *LogrusLogger) Debug() Entry {
	return &logrusEntry{entry: logrus.NewEntry(l.logger), level: logrus.DebugLevel}
}

func (l *LogrusLogger) Info() Entry {
	return &logrusEntry{entry: logrus.NewEntry(l.logger), level: logrus.InfoLevel}
}

func (l *LogrusLogger) Warn() Entry {
	return &logrusEntry{entry: logrus.NewEntry(l.logger), level: logrus.WarnLevel}
}

func (l *LogrusLogger) Error() Entry {
	return &logrusEntry{entry: logrus.NewEntry(l.logger), level: logrus.ErrorLevel}
}

func (l *LogrusLogger) SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	l.logger.SetLevel(lvl)
	return nil
}

func (e *logrusEntry) WithField(key string, value any) Entry {
	return &logrusEntry{entry: e.entry.WithField(key, value), level: e.level}
}

func (e *logrusEntry) WithFields(fields map[string]any) Entry {
	return &logrusEntry{entry: e.entry.WithFields(fields), level: e.level}
}

func (e *logrusEntry) Logf(format string, args ...any) {
	e.entry.Logf(e.level, format, args...)
}
