// Package spiflashtest provides an in-memory SPI NOR flash that satisfies
// drivers.SPI, for host tests of code built on spiflash.
package spiflashtest

import (
	"errors"
	"sync"

	"tinygo.org/x/drivers"
)

var _ drivers.SPI = (*Flash)(nil)

// ErrInjected is returned by Tx once FailAt is reached and Err is nil.
var ErrInjected = errors.New("spiflashtest: injected bus fault")

// Flash answers READ JEDEC ID and READ DATA from JEDEC and Image.
// Bytes beyond Image read as 0xFF (erased).
type Flash struct {
	mu sync.Mutex

	JEDEC [3]byte
	Image []byte

	// FailAt makes the FailAt-th exchange (1-based) and every later one
	// fail with Err. Zero disables.
	FailAt int
	Err    error

	frames [][]byte
}

// New returns a Flash with the given identity and image.
func New(jedec [3]byte, image []byte) *Flash {
	return &Flash{JEDEC: jedec, Image: image}
}

// Pattern returns n bytes where byte i is byte(i).
func Pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func (f *Flash) Tx(w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.frames = append(f.frames, append([]byte(nil), w...))
	if f.FailAt > 0 && len(f.frames) >= f.FailAt {
		if f.Err != nil {
			return f.Err
		}
		return ErrInjected
	}
	if len(r) != len(w) {
		return errors.New("spiflashtest: half-duplex transfer")
	}
	if len(w) == 0 {
		return nil
	}

	for i := range r {
		r[i] = 0xFF
	}
	switch w[0] {
	case 0x9F:
		// Byte 0 is clocked during the opcode; a real chip leaves it floating.
		r[0] = 0x00
		copy(r[1:], f.JEDEC[:])
	case 0x03:
		if len(w) < 4 {
			return nil
		}
		addr := int(w[1])<<16 | int(w[2])<<8 | int(w[3])
		for i := 4; i < len(r); i++ {
			if j := addr + i - 4; j < len(f.Image) {
				r[i] = f.Image[j]
			}
		}
	}
	return nil
}

func (f *Flash) Transfer(b byte) (byte, error) {
	var r [1]byte
	err := f.Tx([]byte{b}, r[:])
	return r[0], err
}

// Frames returns a copy of every frame written so far.
func (f *Flash) Frames() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.frames))
	copy(out, f.frames)
	return out
}

// Reset forgets recorded frames.
func (f *Flash) Reset() {
	f.mu.Lock()
	f.frames = nil
	f.mu.Unlock()
}
