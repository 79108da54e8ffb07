package protocol

import (
	"fmt"
	"strings"
)

// Tag is a firmware property tag code.
type Tag uint32

const (
	TagGetFirmwareRevision Tag = 0x00000001
	TagGetBoardModel       Tag = 0x00010001
	TagGetBoardRevision    Tag = 0x00010002
	TagGetBoardMACAddress  Tag = 0x00010003
	TagGetBoardSerial      Tag = 0x00010004
	TagGetARMMemory        Tag = 0x00010005
	TagGetVCMemory         Tag = 0x00010006
	TagGetClockRate        Tag = 0x00030002
	TagGetMaxClockRate     Tag = 0x00030004
	TagGetTemperature      Tag = 0x00030006
	TagGetMinClockRate     Tag = 0x00030007
	TagGetMaxTemperature   Tag = 0x0003000a
	TagAllocateMemory      Tag = 0x0003000c
	TagLockMemory          Tag = 0x0003000d
	TagUnlockMemory        Tag = 0x0003000e
	TagReleaseMemory       Tag = 0x0003000f
	TagGetThrottled        Tag = 0x00030046
)

// Property is the fixed payload shape of one tag: the byte sizes of the
// request and response structures.
type Property struct {
	Tag     Tag
	Name    string
	InSize  int
	OutSize int
}

// BufSize is the payload area every request for this tag carries.
func (p Property) BufSize() int {
	return max(p.InSize, p.OutSize)
}

// ReqRespSize is the response size the caller declares, and expects back.
func (p Property) ReqRespSize() int {
	return p.BufSize()
}

var catalog = []Property{
	{Tag: TagGetFirmwareRevision, Name: "get_firmware_revision", InSize: 0, OutSize: 4},
	{Tag: TagGetBoardModel, Name: "get_board_model", InSize: 0, OutSize: 4},
	{Tag: TagGetBoardRevision, Name: "get_board_revision", InSize: 0, OutSize: 4},
	{Tag: TagGetBoardMACAddress, Name: "get_board_mac_address", InSize: 8, OutSize: 6},
	{Tag: TagGetBoardSerial, Name: "get_board_serial", InSize: 0, OutSize: 8},
	{Tag: TagGetARMMemory, Name: "get_arm_memory", InSize: 0, OutSize: 8},
	{Tag: TagGetVCMemory, Name: "get_vc_memory", InSize: 0, OutSize: 8},
	{Tag: TagGetClockRate, Name: "get_clock_rate", InSize: 4, OutSize: 8},
	{Tag: TagGetMaxClockRate, Name: "get_max_clock_rate", InSize: 4, OutSize: 8},
	{Tag: TagGetTemperature, Name: "get_temperature", InSize: 4, OutSize: 8},
	{Tag: TagGetMinClockRate, Name: "get_min_clock_rate", InSize: 4, OutSize: 8},
	{Tag: TagGetMaxTemperature, Name: "get_max_temperature", InSize: 4, OutSize: 8},
	{Tag: TagAllocateMemory, Name: "allocate_memory", InSize: 12, OutSize: 4},
	{Tag: TagLockMemory, Name: "lock_memory", InSize: 4, OutSize: 4},
	{Tag: TagUnlockMemory, Name: "unlock_memory", InSize: 4, OutSize: 4},
	{Tag: TagReleaseMemory, Name: "release_memory", InSize: 4, OutSize: 4},
	{Tag: TagGetThrottled, Name: "get_throttled", InSize: 2, OutSize: 4},
}

var (
	byTag  = make(map[Tag]Property, len(catalog))
	byName = make(map[string]Property, len(catalog))
)

func init() {
	for _, p := range catalog {
		byTag[p.Tag] = p
		byName[p.Name] = p
	}
}

// Lookup returns the catalog entry for tag.
func Lookup(tag Tag) (Property, bool) {
	p, ok := byTag[tag]
	return p, ok
}

// LookupName resolves a catalog entry by name, case-insensitively. A leading
// "get_" may be omitted for query tags.
func LookupName(name string) (Property, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if p, ok := byName[key]; ok {
		return p, nil
	}
	if p, ok := byName["get_"+key]; ok {
		return p, nil
	}
	return Property{}, fmt.Errorf("%w: %q", ErrUnknownTag, name)
}

// Properties returns the catalog in tag order.
func Properties() []Property {
	out := make([]Property, len(catalog))
	copy(out, catalog)
	return out
}

func (t Tag) String() string {
	if p, ok := byTag[t]; ok {
		return p.Name
	}
	return fmt.Sprintf("tag(0x%08x)", uint32(t))
}
