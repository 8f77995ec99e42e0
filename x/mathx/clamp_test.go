package mathx

import "testing"

func TestMin(t *testing.T) {
	if got := Min[uint32](768, 256); got != 256 {
		t.Fatalf("Min(768,256) = %d", got)
	}
	if got := Min[uint32](16, 256); got != 16 {
		t.Fatalf("Min(16,256) = %d", got)
	}
	if got := Min(-3, -3); got != -3 {
		t.Fatalf("Min(-3,-3) = %d", got)
	}
}
