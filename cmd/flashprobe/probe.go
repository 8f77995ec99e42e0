package main

import (
	"bytes"

	"flashdump-go/drivers/spiflash"
	"flashdump-go/x/fmtx"
)

type report struct {
	ID       spiflash.ID
	Desc     spiflash.Descriptor
	Stable   bool // every ID read agreed
	Floating bool // ID reads as all 0x00 or all 0xFF: nothing is answering
	Repeat   bool // two reads of the first chunk agreed
}

func (r report) ok() bool { return r.Stable && !r.Floating && r.Repeat }

func (r report) lines() []string {
	out := []string{
		"id " + r.ID.String() + " " + r.Desc.Vendor,
	}
	if r.Desc.Known() {
		out = append(out, fmtx.Sprintf("size %d bytes", r.Desc.Capacity))
	}
	switch {
	case r.Floating:
		out = append(out, "FAIL no chip answering (check CS/SDI wiring)")
	case !r.Stable:
		out = append(out, "FAIL unstable ID (check clock rate and ground)")
	case !r.Repeat:
		out = append(out, "FAIL data reads differ")
	default:
		out = append(out, "PASS")
	}
	return out
}

func probe(dev *spiflash.Device, reads int) (report, error) {
	var r report
	var err error
	if r.ID, err = dev.ReadID(); err != nil {
		return r, err
	}
	r.Stable = true
	for i := 1; i < reads; i++ {
		id, err := dev.ReadID()
		if err != nil {
			return r, err
		}
		if id != r.ID {
			r.Stable = false
		}
	}
	r.Desc = spiflash.Classify(r.ID)
	r.Floating = r.ID == (spiflash.ID{}) || r.ID == (spiflash.ID{Manufacturer: 0xFF, MemoryType: 0xFF, Capacity: 0xFF})

	first, err := dev.ReadChunk(0, spiflash.MaxChunk)
	if err != nil {
		return r, err
	}
	// The chunk aliases the device buffer.
	first = bytes.Clone(first)
	second, err := dev.ReadChunk(0, spiflash.MaxChunk)
	if err != nil {
		return r, err
	}
	r.Repeat = bytes.Equal(first, second)
	return r, nil
}
