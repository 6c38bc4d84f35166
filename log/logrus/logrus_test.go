package logrus

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/nscache"
)

func TestFieldsAndErrors(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := New(base, "market")

	l.Warn("could not delete dead entry", nscache.Fields{"key": "market:items:1", "err": errors.New("timeout")})

	e := hook.LastEntry()
	require.NotNil(t, e)
	require.Equal(t, logrus.WarnLevel, e.Level)
	require.Equal(t, "market", e.Data["ns"])
	require.Equal(t, "market:items:1", e.Data["key"])
	require.EqualError(t, e.Data[logrus.ErrorKey].(error), "timeout")
}

func TestDebugFilteredByLevel(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.InfoLevel)

	New(base, "market").Debug("noise", nil)
	require.Empty(t, hook.AllEntries())
}
