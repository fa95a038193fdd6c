package pcap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/gopacket/layers"
)

// LinkTypeUser0 is the first of the sixteen USER link types reserved for
// private use. There is no registered link type for arbitrary serial
// traffic, so USER0 is the default tag for capture files produced here;
// downstream tooling can be told how to dissect it.
const LinkTypeUser0 = layers.LinkType(147)

var linkTypeNames = map[string]layers.LinkType{
	"NULL":      layers.LinkTypeNull,
	"ETHERNET":  layers.LinkTypeEthernet,
	"SLIP":      layers.LinkType(8),
	"PPP":       layers.LinkTypePPP,
	"RAW":       layers.LinkType(101),
	"LINUX_SLL": layers.LinkTypeLinuxSLL,
}

func init() {
	for i := 0; i < 16; i++ {
		linkTypeNames[fmt.Sprintf("USER%d", i)] = LinkTypeUser0 + layers.LinkType(i)
	}
}

// ParseLinkType resolves a case-insensitive link type name ("USER0", "RAW",
// ...) to its numeric value for the global header.
func ParseLinkType(name string) (layers.LinkType, error) {
	if lt, ok := linkTypeNames[strings.ToUpper(name)]; ok {
		return lt, nil
	}
	return 0, fmt.Errorf("unknown link type %q (valid: %s)", name, strings.Join(LinkTypeNames(), ", "))
}

// LinkTypeNames returns the accepted link type names, sorted.
func LinkTypeNames() []string {
	names := make([]string, 0, len(linkTypeNames))
	for name := range linkTypeNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
