package pcap

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// Info summarizes a capture file.
type Info struct {
	SnapLen  uint32
	LinkType layers.LinkType
	Records  int64
	Bytes    int64
	First    time.Time
	Last     time.Time
}

func (i Info) String() string {
	return fmt.Sprintf("link type: %d\nsnaplen: %d\nrecords: %d\npayload bytes: %d\nfirst record: %s\nlast record: %s",
		i.LinkType, i.SnapLen, i.Records, i.Bytes,
		i.First.Format(time.RFC3339Nano), i.Last.Format(time.RFC3339Nano))
}

// Describe reads a capture file back and reports its header fields and
// record count. Used by the info command to sanity-check captures without
// reaching for external tooling.
func Describe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("opening capture file: %w", err)
	}
	defer f.Close()

	r, err := pcapgo.NewReader(f)
	if err != nil {
		return Info{}, fmt.Errorf("reading file header: %w", err)
	}
	info := Info{SnapLen: r.Snaplen(), LinkType: r.LinkType()}
	for {
		data, ci, err := r.ReadPacketData()
		if err == io.EOF {
			break
		}
		if err != nil {
			return info, fmt.Errorf("reading record %d: %w", info.Records+1, err)
		}
		if info.Records == 0 {
			info.First = ci.Timestamp
		}
		info.Last = ci.Timestamp
		info.Records++
		info.Bytes += int64(len(data))
	}
	return info, nil
}
