package firmware

import (
	"fmt"
	"strings"
)

// MemFlag describes allocation attributes. The firmware interprets it; the
// library passes it through unchanged.
type MemFlag uint32

const (
	MemFlagNormal          MemFlag = 0 << 2
	MemFlagDiscardable     MemFlag = 1 << 0
	MemFlagDirect          MemFlag = 1 << 2
	MemFlagCoherent        MemFlag = 1 << 3
	MemFlagL1NonAllocating         = MemFlagDirect | MemFlagCoherent
	MemFlagZero            MemFlag = 1 << 4
	MemFlagNoInit          MemFlag = 1 << 5
	MemFlagHintPermalock   MemFlag = 1 << 6
)

var memFlagNames = []struct {
	flag MemFlag
	name string
}{
	{MemFlagDiscardable, "DISCARDABLE"},
	{MemFlagDirect, "DIRECT"},
	{MemFlagCoherent, "COHERENT"},
	{MemFlagZero, "ZERO"},
	{MemFlagNoInit, "NO_INIT"},
	{MemFlagHintPermalock, "HINT_PERMALOCK"},
}

func (f MemFlag) String() string {
	if f == MemFlagNormal {
		return "NORMAL"
	}
	if f&MemFlagL1NonAllocating == MemFlagL1NonAllocating && f&^MemFlagL1NonAllocating == 0 {
		return "L1_NONALLOCATING"
	}
	var parts []string
	rest := f
	for _, n := range memFlagNames {
		if f&n.flag != 0 {
			parts = append(parts, n.name)
			rest &^= n.flag
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// ParseMemFlag parses names joined by '|' or ',' (e.g. "DIRECT|ZERO").
// Names are case-insensitive and may carry a MEM_FLAG_ prefix.
func ParseMemFlag(raw string) (MemFlag, error) {
	var out MemFlag
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == '|' || r == ',' })
	for _, field := range fields {
		name := strings.ToUpper(strings.TrimSpace(field))
		name = strings.TrimPrefix(name, "MEM_FLAG_")
		switch name {
		case "", "NORMAL":
			continue
		case "L1_NONALLOCATING":
			out |= MemFlagL1NonAllocating
			continue
		}
		found := false
		for _, n := range memFlagNames {
			if n.name == name {
				out |= n.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("firmware: unknown memory flag %q", field)
		}
	}
	return out, nil
}
