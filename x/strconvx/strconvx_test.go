package strconvx

import "testing"

func TestItoaAtoi(t *testing.T) {
	cases := []int{0, 1, -1, 42, -99999}
	for _, v := range cases {
		s := Itoa(v)
		got, err := Atoi(s)
		if err != nil {
			t.Fatalf("Atoi(%q) error: %v", s, err)
		}
		if got != v {
			t.Fatalf("Itoa/Atoi round trip: want %d, got %d", v, got)
		}
	}
}

func TestFormatIntUintBases(t *testing.T) {
	type C struct {
		u    uint64
		base int
		want string
	}
	for _, c := range []C{
		{0, 2, "0"},
		{5, 2, "101"},
		{255, 16, "ff"},
		{255, 10, "255"},
		{35, 36, "z"},
	} {
		if got := FormatUint(c.u, c.base); got != c.want {
			t.Fatalf("FormatUint(%d,%d) = %q, want %q", c.u, c.base, got, c.want)
		}
	}
	if got := FormatInt(-15, 10); got != "-15" {
		t.Fatalf("FormatInt(-15,10) = %q, want -15", got)
	}
}

// Console arguments are bare hex, 32-bit.
func TestParseUintHex32(t *testing.T) {
	type C struct {
		s    string
		want uint64
	}
	for _, c := range []C{
		{"0", 0},
		{"10", 16},
		{"300", 0x300},
		{"800000", 0x800000},
		{"ff", 255},
		{"FF", 255},
		{"ffffffff", 0xFFFFFFFF},
		{"00000000ff", 255},
	} {
		got, err := ParseUint(c.s, 16, 32)
		if err != nil {
			t.Fatalf("ParseUint(%q,16,32) error: %v", c.s, err)
		}
		if got != c.want {
			t.Fatalf("ParseUint(%q,16,32) = %#x, want %#x", c.s, got, c.want)
		}
	}
}

func TestParseUintErrors(t *testing.T) {
	type C struct {
		s       string
		base    int
		bitSize int
	}
	for _, c := range []C{
		{"", 16, 32},
		{"zz", 16, 32},
		{"0x10", 16, 32},
		{"-1", 16, 32},
		{"100000000", 16, 32},
		{"2", 2, 64},
		{"0b102", 0, 64},
	} {
		if _, err := ParseUint(c.s, c.base, c.bitSize); err == nil {
			t.Fatalf("ParseUint(%q,%d,%d) expected error", c.s, c.base, c.bitSize)
		}
	}
}

func TestParseIntSigns(t *testing.T) {
	type C struct {
		s    string
		base int
		want int64
	}
	for _, c := range []C{
		{"+10", 10, 10},
		{"-10", 10, -10},
		{"0b11", 0, 3},
		{"-0x0f", 0, -15},
	} {
		got, err := ParseInt(c.s, c.base, 64)
		if err != nil {
			t.Fatalf("ParseInt(%q,%d) error: %v", c.s, c.base, err)
		}
		if got != c.want {
			t.Fatalf("ParseInt(%q,%d) = %d, want %d", c.s, c.base, got, c.want)
		}
	}
	if _, err := ParseInt("18446744073709551615", 10, 64); err == nil {
		t.Fatalf("ParseInt(too big) expected error")
	}
}
