package firmware

import (
	"fmt"
	"strings"
)

// ClockID selects a firmware-managed clock.
type ClockID uint32

const (
	ClockEMMC     ClockID = 1
	ClockUART     ClockID = 2
	ClockARM      ClockID = 3
	ClockCore     ClockID = 4
	ClockV3D      ClockID = 5
	ClockH264     ClockID = 6
	ClockISP      ClockID = 7
	ClockSDRAM    ClockID = 8
	ClockPixel    ClockID = 9
	ClockPWM      ClockID = 10
	ClockHEVC     ClockID = 11
	ClockEMMC2    ClockID = 12
	ClockM2MC     ClockID = 13
	ClockPixelBVB ClockID = 14
)

var clockNames = map[ClockID]string{
	ClockEMMC:     "emmc",
	ClockUART:     "uart",
	ClockARM:      "arm",
	ClockCore:     "core",
	ClockV3D:      "v3d",
	ClockH264:     "h264",
	ClockISP:      "isp",
	ClockSDRAM:    "sdram",
	ClockPixel:    "pixel",
	ClockPWM:      "pwm",
	ClockHEVC:     "hevc",
	ClockEMMC2:    "emmc2",
	ClockM2MC:     "m2mc",
	ClockPixelBVB: "pixel_bvb",
}

// Clocks lists every known clock id in order.
func Clocks() []ClockID {
	out := make([]ClockID, 0, len(clockNames))
	for id := ClockEMMC; id <= ClockPixelBVB; id++ {
		out = append(out, id)
	}
	return out
}

func (c ClockID) String() string {
	if name, ok := clockNames[c]; ok {
		return name
	}
	return fmt.Sprintf("clock(%d)", uint32(c))
}

func ParseClockID(raw string) (ClockID, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	for id, name := range clockNames {
		if name == key {
			return id, nil
		}
	}
	return 0, fmt.Errorf("firmware: unknown clock %q", raw)
}
