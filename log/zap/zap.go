// Package zap adapts a *zap.Logger to nscache.Logger.
package zap

import (
	"go.uber.org/zap"

	"github.com/unkn0wn-root/nscache"
)

var _ nscache.Logger = ZapLogger{}

type ZapLogger struct{ L *zap.Logger }

// New names the logger after the cache namespace so its lines are easy to filter.
func New(l *zap.Logger, namespace string) ZapLogger {
	return ZapLogger{L: l.Named("nscache").With(zap.String("ns", namespace))}
}

func (z ZapLogger) Debug(msg string, f nscache.Fields) { z.L.Debug(msg, zf(f)...) }
func (z ZapLogger) Info(msg string, f nscache.Fields)  { z.L.Info(msg, zf(f)...) }
func (z ZapLogger) Warn(msg string, f nscache.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z ZapLogger) Error(msg string, f nscache.Fields) { z.L.Error(msg, zf(f)...) }

func zf(f nscache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}
