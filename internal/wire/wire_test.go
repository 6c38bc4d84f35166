package wire

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/nscache/codec"
)

type item struct {
	ID    int    `json:"id" msgpack:"id" cbor:"id"`
	Name  string `json:"name" msgpack:"name" cbor:"name"`
	Price int64  `json:"price" msgpack:"price" cbor:"price"`
}

func TestJSONEnvelopeIsExact(t *testing.T) {
	require := require.New(t)
	c := codec.JSON{}

	b, err := EncodeEntry(c, map[string]int{"a": 1}, nil)
	require.NoError(err)
	require.Equal(`{"data":{"a":1},"ttl":null}`, string(b))

	ms := int64(1700000000123)
	b, err = EncodeEntry(c, "x", &ms)
	require.NoError(err)
	require.Equal(`{"data":"x","ttl":1700000000123}`, string(b))
}

func TestDecodeEntryAcrossCodecs(t *testing.T) {
	ms := int64(42)
	in := item{ID: 7, Name: "Dragonclaw Hook", Price: 120000}

	for name, c := range map[string]codec.Codec{
		"json":    codec.JSON{},
		"msgpack": codec.Msgpack{},
		"cbor":    codec.MustCBOR(true),
	} {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			b, err := EncodeEntry(c, in, &ms)
			require.NoError(err)

			e, err := DecodeEntry[item](c, b)
			require.NoError(err)
			require.Equal(in, e.Data)
			require.NotNil(e.TTL)
			require.Equal(ms, *e.TTL)

			h, err := DecodeHeader(c, b)
			require.NoError(err)
			require.Equal(ms, *h.TTL)
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	require := require.New(t)
	c := codec.JSON{}

	for _, raw := range []string{"", "not-json", "null", "[1,2]", `{"data":`} {
		_, err := DecodeEntry[item](c, []byte(raw))
		require.ErrorIs(err, ErrCorrupt, "raw=%q", raw)
		_, err = DecodeHeader(c, []byte(raw))
		require.ErrorIs(err, ErrCorrupt, "raw=%q", raw)
	}
}

func TestDeadlineAndExpired(t *testing.T) {
	require := require.New(t)
	now := time.UnixMilli(10_000)

	require.Nil(Deadline(now, 0))
	require.Nil(Deadline(now, -time.Second))

	d := Deadline(now, 1500*time.Millisecond)
	require.NotNil(d)
	require.Equal(int64(11_500), *d)

	require.Equal(int64(10_001), *Deadline(now, 500*time.Microsecond))
	require.Equal(int64(10_001), *Deadline(now, time.Nanosecond))
	require.Equal(int64(10_002), *Deadline(now, 1001*time.Microsecond))
	require.Equal(int64(10_001), *Deadline(now, time.Millisecond))

	require.False(Expired(nil, now.Add(100*365*24*time.Hour)))
	require.False(Expired(d, now.Add(1499*time.Millisecond)))
	require.True(Expired(d, now.Add(1500*time.Millisecond)))
	require.True(Expired(d, now.Add(time.Hour)))
}

func TestDecodeEntryTellsPayloadMismatchFromCorruption(t *testing.T) {
	require := require.New(t)
	c := codec.JSON{}

	b, err := EncodeEntry(c, "pudge", nil)
	require.NoError(err)

	_, err = DecodeEntry[int](c, b)
	require.ErrorIs(err, ErrPayload)
	require.NotErrorIs(err, ErrCorrupt)

	s, err := DecodeEntry[string](c, b)
	require.NoError(err)
	require.Equal("pudge", s.Data)

	_, err = DecodeEntry[int](c, []byte(`{"data":1,"ttl":"soon"}`))
	require.ErrorIs(err, ErrCorrupt)
}
