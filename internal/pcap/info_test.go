package pcap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	enc := newTestEncoder()
	sink, path := openTestSink(t, FlushEveryRecord())

	base := time.Unix(1700000000, 0)
	for i, p := range [][]byte{[]byte("AT\r\n"), []byte("OK\r\n")} {
		rec, err := enc.Record(base.Add(time.Duration(i)*time.Second), p)
		require.NoError(t, err)
		require.NoError(t, sink.WriteRecord(rec))
	}
	require.NoError(t, sink.Close())

	info, err := Describe(path)
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.Records)
	assert.Equal(t, int64(8), info.Bytes)
	assert.Equal(t, uint32(1024), info.SnapLen)
	assert.Equal(t, LinkTypeUser0, info.LinkType)
	assert.True(t, info.Last.After(info.First))
}

func TestDescribeMissingFile(t *testing.T) {
	_, err := Describe("does-not-exist.pcap")
	assert.Error(t, err)
}

func TestDescribeEmptyCapture(t *testing.T) {
	sink, path := openTestSink(t, FlushEveryRecord())
	require.NoError(t, sink.Close())

	info, err := Describe(path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Records, "header-only file is a valid empty capture")
}
