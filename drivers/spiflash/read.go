package spiflash

import (
	"time"

	"flashdump-go/x/mathx"
)

// ClampReadLen is the single-read truncation policy: a request larger than
// MaxChunk is served as a MaxChunk read, never rejected.
func ClampReadLen(n uint32) uint32 { return mathx.Min(n, MaxChunk) }

// ReadChunk issues one READ DATA exchange of 4+n bytes at addr and returns
// the n data bytes. n is clamped with ClampReadLen and addr is truncated to
// its low 24 bits. The returned slice aliases the device buffer and is only
// valid until the next call on d.
func (d *Device) ReadChunk(addr, n uint32) ([]byte, error) {
	n = ClampReadLen(n)
	d.tx[0] = CmdReadData
	d.tx[1] = byte(addr >> 16)
	d.tx[2] = byte(addr >> 8)
	d.tx[3] = byte(addr)
	data := d.tx[readHeaderLen : readHeaderLen+n]
	for i := range data {
		data[i] = Filler
	}
	if err := d.exchange(readHeaderLen + int(n)); err != nil {
		return nil, err
	}
	return d.rx[readHeaderLen : readHeaderLen+n], nil
}

// ChunkReader is anything that serves bounded reads; *Device is one.
type ChunkReader interface {
	ReadChunk(addr, n uint32) ([]byte, error)
}

// Chunk is one bounded read of a dump.
type Chunk struct {
	Addr uint32
	Data []byte
}

// Dumper walks [start, start+total) in MaxChunk steps. It is lazy, finite
// and single-use:
//
//	it := dev.Dump(start, total)
//	for it.Next() {
//		c := it.Chunk()
//		...
//	}
//	if err := it.Err(); err != nil { ... }
//
// The first read error ends the walk; no further chunks are produced.
type Dumper struct {
	r         ChunkReader
	addr      uint32
	remaining uint32
	pause     time.Duration
	sleep     func(time.Duration)

	started bool
	cur     Chunk
	err     error
}

// NewDumper returns a Dumper over r that pauses for pause between chunks.
func NewDumper(r ChunkReader, start, total uint32, pause time.Duration) *Dumper {
	return &Dumper{
		r:         r,
		addr:      start,
		remaining: total,
		pause:     pause,
		sleep:     time.Sleep,
	}
}

// Dump returns a Dumper over d using the configured chunk pause.
func (d *Device) Dump(start, total uint32) *Dumper {
	it := NewDumper(d, start, total, d.pause)
	it.sleep = d.sleep
	return it
}

// Next reads the next chunk. It returns false once the range is exhausted
// or a read failed.
func (it *Dumper) Next() bool {
	if it.err != nil || it.remaining == 0 {
		return false
	}
	// Yield between chunks so the rest of the system keeps running.
	if it.started && it.pause > 0 {
		it.sleep(it.pause)
	}
	it.started = true

	n := mathx.Min(it.remaining, MaxChunk)
	data, err := it.r.ReadChunk(it.addr, n)
	if err != nil {
		it.err = err
		it.cur = Chunk{}
		return false
	}
	it.cur = Chunk{Addr: it.addr, Data: data}
	it.addr += n
	it.remaining -= n
	return true
}

// Chunk returns the chunk read by the last successful Next.
func (it *Dumper) Chunk() Chunk { return it.cur }

// Err returns the read error that ended the walk, if any.
func (it *Dumper) Err() error { return it.err }

// Pos returns the address of the next chunk to read; after a failure it is
// the address of the failed chunk.
func (it *Dumper) Pos() uint32 { return it.addr }

// Remaining returns the number of bytes not yet produced.
func (it *Dumper) Remaining() uint32 { return it.remaining }
