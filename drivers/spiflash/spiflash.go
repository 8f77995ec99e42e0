// Package spiflash provides a read-only TinyGo driver for standard SPI NOR
// flash chips (W25Q, MX25L, AT25, GD25Q, MT25Q, S25FL families).
//
// Only the two universally supported opcodes are used:
//
//	0x9F  READ JEDEC ID   9F FF FF FF            -> xx MF MT CC
//	0x03  READ DATA       03 A2 A1 A0 FF..FF     -> xx xx xx xx D0..Dn
//
// Every exchange is full-duplex: the host clocks filler bytes (0xFF) while
// the chip shifts its answer out, and the response bytes that line up with
// the command/address phase are discarded.
//
// NOTE: drivers.SPI.Tx MUST clock len(w) bytes and fill r with the bytes
// received during the same clocks. Chip select is either handled by the bus
// (Linux spidev) or by the optional ChipSelect hook.
package spiflash

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// Opcodes and framing.
const (
	CmdReadJEDECID = 0x9F
	CmdReadData    = 0x03

	Filler = 0xFF

	// MaxChunk is the largest payload carried by one READ DATA exchange.
	MaxChunk = 256

	jedecFrameLen = 4
	readHeaderLen = 4
	frameMax      = readHeaderLen + MaxChunk
)

// Errors returned by the driver.
var (
	ErrNoBus = errors.New("spiflash: no bus")
)

// ChipSelect drives the CS line; active=true selects the chip (CS low).
type ChipSelect func(active bool)

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// ChipSelect is asserted around every exchange when non-nil.
	ChipSelect ChipSelect
	// ChunkPause is the pause between dump chunks. Default 1 ms.
	ChunkPause time.Duration
	// Sleep replaces time.Sleep for the chunk pause.
	Sleep func(time.Duration)
}

// Device wraps a SPI bus connected to one flash chip.
type Device struct {
	bus   drivers.SPI
	cs    ChipSelect
	pause time.Duration
	sleep func(time.Duration)

	// Fixed frame buffers; no exchange is ever larger than frameMax.
	tx [frameMax]byte
	rx [frameMax]byte
}

// New creates a Device on an already configured bus. It does not touch the chip.
func New(bus drivers.SPI, cfg Config) *Device {
	pause := cfg.ChunkPause
	if pause <= 0 {
		pause = time.Millisecond
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Device{
		bus:   bus,
		cs:    cfg.ChipSelect,
		pause: pause,
		sleep: sleep,
	}
}

// exchange clocks tx[:n] out and captures rx[:n] in one transaction.
func (d *Device) exchange(n int) error {
	if d.bus == nil {
		return ErrNoBus
	}
	if d.cs != nil {
		d.cs(true)
		defer d.cs(false)
	}
	return d.bus.Tx(d.tx[:n], d.rx[:n])
}
