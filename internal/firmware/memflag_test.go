package firmware

import "testing"

func TestMemFlagComposition(t *testing.T) {
	if MemFlagL1NonAllocating != 0b1100 {
		t.Fatalf("unexpected L1_NONALLOCATING: %#b", MemFlagL1NonAllocating)
	}
	if MemFlagDirect != 0b100 || MemFlagCoherent != 0b1000 || MemFlagNormal != 0 {
		t.Fatalf("unexpected base flags")
	}
	if MemFlagDiscardable != 1 || MemFlagZero != 1<<4 || MemFlagNoInit != 1<<5 || MemFlagHintPermalock != 1<<6 {
		t.Fatalf("unexpected attribute flags")
	}
}

func TestMemFlagString(t *testing.T) {
	cases := map[MemFlag]string{
		MemFlagNormal:                       "NORMAL",
		MemFlagDirect:                       "DIRECT",
		MemFlagL1NonAllocating:              "L1_NONALLOCATING",
		MemFlagCoherent | MemFlagZero:       "COHERENT|ZERO",
		MemFlagDiscardable | MemFlag(1<<10): "DISCARDABLE|0x400",
	}
	for f, want := range cases {
		if got := f.String(); got != want {
			t.Fatalf("String(%#x) = %q, want %q", uint32(f), got, want)
		}
	}
}

func TestParseMemFlag(t *testing.T) {
	f, err := ParseMemFlag("mem_flag_direct|COHERENT, zero")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f != MemFlagL1NonAllocating|MemFlagZero {
		t.Fatalf("unexpected flags: %s", f)
	}
	if f, err := ParseMemFlag("NORMAL"); err != nil || f != MemFlagNormal {
		t.Fatalf("unexpected normal parse: %v %v", f, err)
	}
	if f, err := ParseMemFlag("L1_NONALLOCATING"); err != nil || f != 0b1100 {
		t.Fatalf("unexpected l1 parse: %v %v", f, err)
	}
	if _, err := ParseMemFlag("CACHED"); err == nil {
		t.Fatalf("expected unknown flag error")
	}
}
