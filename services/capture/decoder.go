package capture

import (
	"io"
	"strconv"
	"strings"

	"flashdump-go/errcode"
	"flashdump-go/services/console"
	"flashdump-go/x/fmtx"
)

// Result summarises one decoded dump.
type Result struct {
	Start        uint32
	Announced    uint32
	Received     uint64
	DeviceErrors []string
	Started      bool
	Ended        bool
}

// Truncated reports whether fewer bytes arrived than DUMP_START announced.
func (r Result) Truncated() bool { return r.Received < uint64(r.Announced) }

// DumpDecoder turns dump output lines into raw bytes on w.
type DumpDecoder struct {
	w    io.Writer
	res  Result
	next uint32
	buf  []byte
}

func NewDumpDecoder(w io.Writer) *DumpDecoder {
	return &DumpDecoder{w: w, buf: make([]byte, 0, 256)}
}

// Result returns the state so far.
func (d *DumpDecoder) Result() Result { return d.res }

// Feed consumes one console line and reports done once DUMP_END arrives.
// Lines before DUMP_START other than ERROR are ignored (echo, prompts).
func (d *DumpDecoder) Feed(raw string) (done bool, err error) {
	line := StripPrompt(raw)
	if line == "" || d.res.Ended {
		return d.res.Ended, nil
	}

	if !d.res.Started {
		switch {
		case strings.HasPrefix(line, console.PrefixError):
			return false, &errcode.E{C: errcode.Usage, Op: "dump", Msg: strings.TrimPrefix(line, console.PrefixError)}
		case strings.HasPrefix(line, console.PrefixDumpStart):
			return false, d.start(strings.TrimPrefix(line, console.PrefixDumpStart))
		}
		return false, nil
	}

	switch {
	case strings.HasPrefix(line, console.PrefixData):
		return false, d.data(strings.TrimPrefix(line, console.PrefixData))
	case strings.HasPrefix(line, console.PrefixError):
		d.res.DeviceErrors = append(d.res.DeviceErrors, strings.TrimPrefix(line, console.PrefixError))
	case line == console.LineDumpEnd:
		d.res.Ended = true
		return true, nil
	}
	return false, nil
}

func (d *DumpDecoder) start(v string) error {
	f := strings.Fields(v)
	if len(f) != 2 {
		return malformed("DUMP_START", v)
	}
	start, err1 := strconv.ParseUint(f[0], 16, 32)
	total, err2 := strconv.ParseUint(f[1], 16, 32)
	if err1 != nil || err2 != nil {
		return malformed("DUMP_START", v)
	}
	d.res.Start, d.res.Announced = uint32(start), uint32(total)
	d.res.Started = true
	d.next = uint32(start)
	return nil
}

func (d *DumpDecoder) data(v string) error {
	f := strings.Fields(v)
	if len(f) == 0 {
		return malformed("DATA", v)
	}
	addr, err := strconv.ParseUint(f[0], 16, 32)
	if err != nil {
		return malformed("DATA", v)
	}
	if uint32(addr) != d.next {
		return &errcode.E{C: errcode.Error, Op: "dump",
			Msg: fmtx.Sprintf("DATA at %08X, expected %08X", addr, d.next)}
	}
	d.buf = d.buf[:0]
	for _, tok := range f[1:] {
		b, err := strconv.ParseUint(tok, 16, 8)
		if err != nil || len(tok) != 2 {
			return malformed("DATA", v)
		}
		d.buf = append(d.buf, byte(b))
	}
	if d.res.Received+uint64(len(d.buf)) > uint64(d.res.Announced) {
		return &errcode.E{C: errcode.Error, Op: "dump", Msg: "more data than announced"}
	}
	if _, err := d.w.Write(d.buf); err != nil {
		return errcode.Wrap(errcode.Error, "dump", err)
	}
	d.res.Received += uint64(len(d.buf))
	d.next += uint32(len(d.buf))
	return nil
}

// Finish validates the completed stream. A short dump or a missing
// DUMP_END yields an errcode.Truncated error.
func (d *DumpDecoder) Finish() error {
	r := d.res
	switch {
	case !r.Started:
		return &errcode.E{C: errcode.Truncated, Op: "dump", Msg: "no DUMP_START"}
	case !r.Ended:
		return &errcode.E{C: errcode.Truncated, Op: "dump", Msg: "stream ended before DUMP_END"}
	case r.Truncated():
		msg := fmtx.Sprintf("received %d of %d bytes", r.Received, r.Announced)
		if len(r.DeviceErrors) > 0 {
			msg += ": " + r.DeviceErrors[0]
		}
		return &errcode.E{C: errcode.Truncated, Op: "dump", Msg: msg}
	}
	return nil
}

func malformed(kind, v string) error {
	return &errcode.E{C: errcode.Error, Op: "dump", Msg: "malformed " + kind + " line: " + v}
}
