package firmware

import "strings"

// ThrottleState is the GET_THROTTLED bit set. The low half reports current
// conditions; the high half reports conditions seen since the sticky bits
// were last cleared.
type ThrottleState uint32

const (
	ThrottleUnderVoltage     ThrottleState = 1 << 0
	ThrottleARMFreqCapped    ThrottleState = 1 << 1
	ThrottleThrottled        ThrottleState = 1 << 2
	ThrottleSoftTempLimit    ThrottleState = 1 << 3
	ThrottleUnderVoltageSeen ThrottleState = 1 << 16
	ThrottleARMFreqCapSeen   ThrottleState = 1 << 17
	ThrottleThrottledSeen    ThrottleState = 1 << 18
	ThrottleSoftTempSeen     ThrottleState = 1 << 19
)

// DefaultThrottleMask asks the firmware to clear every sticky bit it reports.
const DefaultThrottleMask uint16 = 0xffff

var throttleNames = []struct {
	bit  ThrottleState
	name string
}{
	{ThrottleUnderVoltage, "under_voltage"},
	{ThrottleARMFreqCapped, "arm_freq_capped"},
	{ThrottleThrottled, "throttled"},
	{ThrottleSoftTempLimit, "soft_temp_limit"},
	{ThrottleUnderVoltageSeen, "under_voltage_seen"},
	{ThrottleARMFreqCapSeen, "arm_freq_capped_seen"},
	{ThrottleThrottledSeen, "throttled_seen"},
	{ThrottleSoftTempSeen, "soft_temp_limit_seen"},
}

// Conditions names the set bits.
func (s ThrottleState) Conditions() []string {
	out := []string{}
	for _, n := range throttleNames {
		if s&n.bit != 0 {
			out = append(out, n.name)
		}
	}
	return out
}

func (s ThrottleState) String() string {
	if s == 0 {
		return "ok"
	}
	return strings.Join(s.Conditions(), ",")
}
