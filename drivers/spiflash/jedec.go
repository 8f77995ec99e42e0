package spiflash

import (
	"flashdump-go/x/conv"
	"flashdump-go/x/strx"
)

// ID is the 3-byte JEDEC identity of a chip.
type ID struct {
	Manufacturer byte
	MemoryType   byte
	Capacity     byte
}

// String renders the identity as "MF MT CC" in uppercase hex.
func (id ID) String() string {
	return string(conv.AppendHexBytes(nil, []byte{id.Manufacturer, id.MemoryType, id.Capacity}))
}

// CapacityUnknown is the Descriptor.Capacity sentinel for unlisted codes.
const CapacityUnknown = 0

// Descriptor is the decoded, human-facing view of an ID.
type Descriptor struct {
	Vendor   string
	Capacity uint32 // bytes; CapacityUnknown if the code is not listed
}

// Known reports whether the capacity code was recognised.
func (d Descriptor) Known() bool { return d.Capacity != CapacityUnknown }

// MiB returns the capacity in whole MiB (truncating).
func (d Descriptor) MiB() uint32 { return d.Capacity / (1024 * 1024) }

// UnknownVendor is returned for manufacturer bytes not in the table.
const UnknownVendor = "Unknown"

var vendors = map[byte]string{
	0xEF: "Winbond W25Q series",
	0xC2: "Macronix MX25L series",
	0x1F: "Atmel/Adesto AT25 series",
	0xC8: "GigaDevice GD25Q series",
	0x20: "Micron MT25Q series",
	0x01: "Spansion/Cypress S25FL series",
}

// Capacity codes: 0x13..0x19 are 2^code bytes; 0x20/0x21 continue the
// sequence at 64/128 MiB as most vendors encode them.
var capacities = map[byte]uint32{
	0x13: 512 << 10,
	0x14: 1 << 20,
	0x15: 2 << 20,
	0x16: 4 << 20,
	0x17: 8 << 20,
	0x18: 16 << 20,
	0x19: 32 << 20,
	0x20: 64 << 20,
	0x21: 128 << 20,
}

// Classify decodes an ID against the static vendor and capacity tables.
// It never fails.
func Classify(id ID) Descriptor {
	return Descriptor{
		Vendor:   strx.Coalesce(vendors[id.Manufacturer], UnknownVendor),
		Capacity: capacities[id.Capacity],
	}
}

// ReadID issues READ JEDEC ID. Response byte 0 is clocked out while the
// opcode is still being sent and carries no information.
func (d *Device) ReadID() (ID, error) {
	d.tx[0] = CmdReadJEDECID
	d.tx[1] = Filler
	d.tx[2] = Filler
	d.tx[3] = Filler
	if err := d.exchange(jedecFrameLen); err != nil {
		return ID{}, err
	}
	return ID{Manufacturer: d.rx[1], MemoryType: d.rx[2], Capacity: d.rx[3]}, nil
}
