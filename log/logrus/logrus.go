// Package logrus adapts a *logrus.Entry to nscache.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/nscache"
)

var _ nscache.Logger = LogrusLogger{}

type LogrusLogger struct{ E *logrus.Entry }

func New(l *logrus.Logger, namespace string) LogrusLogger {
	return LogrusLogger{E: l.WithFields(logrus.Fields{"component": "nscache", "ns": namespace})}
}

func (l LogrusLogger) Debug(msg string, f nscache.Fields) { l.entry(f).Debug(msg) }
func (l LogrusLogger) Info(msg string, f nscache.Fields)  { l.entry(f).Info(msg) }
func (l LogrusLogger) Warn(msg string, f nscache.Fields)  { l.entry(f).Warn(msg) }
func (l LogrusLogger) Error(msg string, f nscache.Fields) { l.entry(f).Error(msg) }

// entry routes an "err" field through logrus' error key.
func (l LogrusLogger) entry(f nscache.Fields) *logrus.Entry {
	e := l.E
	fields := make(logrus.Fields, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok && k == "err" {
			e = e.WithError(err)
			continue
		}
		fields[k] = v
	}
	return e.WithFields(fields)
}
