package pcap

import (
	"testing"

	"github.com/google/gopacket/layers"
)

func TestParseLinkType(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      layers.LinkType
		wantError bool
	}{
		{"default user type", "USER0", layers.LinkType(147), false},
		{"lowercase accepted", "user0", layers.LinkType(147), false},
		{"last user type", "USER15", layers.LinkType(162), false},
		{"ethernet", "ETHERNET", layers.LinkTypeEthernet, false},
		{"raw", "raw", layers.LinkType(101), false},
		{"linux sll", "linux_sll", layers.LinkTypeLinuxSLL, false},
		{"unknown name", "WIFI6", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLinkType(tt.input)
			if tt.wantError {
				if err == nil {
					t.Fatalf("ParseLinkType(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLinkType(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLinkType(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestLinkTypeNamesIncludesUserRange(t *testing.T) {
	names := LinkTypeNames()
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	for _, want := range []string{"USER0", "USER15", "ETHERNET", "RAW"} {
		if !seen[want] {
			t.Errorf("LinkTypeNames() missing %s", want)
		}
	}
}
