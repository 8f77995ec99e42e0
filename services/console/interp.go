package console

import (
	"io"

	"flashdump-go/drivers/spiflash"
	"flashdump-go/errcode"
	"flashdump-go/x/fmtx"
	"flashdump-go/x/strconvx"
	"flashdump-go/x/strx"
)

// DefaultFullSize is the region dumped by `full`.
const DefaultFullSize = 0x800000

// Flash is the chip-side capability the interpreter drives.
// *spiflash.Device implements it.
type Flash interface {
	ReadID() (spiflash.ID, error)
	ReadChunk(addr, n uint32) ([]byte, error)
	Dump(start, total uint32) *spiflash.Dumper
}

// Interpreter executes one command line at a time against a Flash.
type Interpreter struct {
	flash    Flash
	out      io.Writer
	fullSize uint32
	stats    Stats

	// DATA line scratch, sized for a full chunk.
	line []byte
}

func NewInterpreter(flash Flash, out io.Writer, fullSize uint32) *Interpreter {
	if fullSize == 0 {
		fullSize = DefaultFullSize
	}
	return &Interpreter{
		flash:    flash,
		out:      out,
		fullSize: fullSize,
		line:     make([]byte, 0, len(PrefixData)+8+3*spiflash.MaxChunk+1),
	}
}

// Stats returns the interpreter's activity counters.
func (in *Interpreter) Stats() *Stats { return &in.stats }

// Exec runs a single command line. The returned code is informational;
// every outcome, including failures, has already been written to the
// console and the interpreter stays usable.
func (in *Interpreter) Exec(raw string) errcode.Code {
	code := in.exec(strx.TrimEOL(raw))
	if code != errcode.OK {
		in.stats.failures.Add(1)
	}
	return code
}

func (in *Interpreter) exec(line string) errcode.Code {
	args := strx.Fields(line)
	if len(args) == 0 {
		return errcode.OK
	}
	in.stats.commands.Add(1)

	switch args[0] {
	case "id":
		if len(args) != 1 {
			return in.unknown(line)
		}
		return in.identify()
	case "help":
		if len(args) != 1 {
			return in.unknown(line)
		}
		_, _ = io.WriteString(in.out, helpText(in.fullSize))
		return errcode.OK
	case "read":
		addr, size, ok := parseRange(args[1:])
		if !ok {
			writeError(in.out, "Usage: read ADDR SIZE (hex)")
			return errcode.Usage
		}
		return in.read(addr, size)
	case "dump":
		addr, size, ok := parseRange(args[1:])
		if !ok {
			writeError(in.out, "Usage: dump ADDR SIZE (hex)")
			return errcode.Usage
		}
		return in.dump(addr, size)
	case "full":
		if len(args) != 1 {
			return in.unknown(line)
		}
		return in.dump(0, in.fullSize)
	}
	return in.unknown(line)
}

// parseRange accepts exactly two bare hex u32 tokens.
func parseRange(args []string) (addr, size uint32, ok bool) {
	if len(args) != 2 {
		return 0, 0, false
	}
	a, err := strconvx.ParseUint(args[0], 16, 32)
	if err != nil {
		return 0, 0, false
	}
	s, err := strconvx.ParseUint(args[1], 16, 32)
	if err != nil {
		return 0, 0, false
	}
	return uint32(a), uint32(s), true
}

func (in *Interpreter) unknown(line string) errcode.Code {
	writeError(in.out, "Unknown command '"+line+"'. Type 'help' for commands.")
	return errcode.UnknownCommand
}

func (in *Interpreter) identify() errcode.Code {
	id, err := in.flash.ReadID()
	if err != nil {
		println("[console] jedec id:", err.Error())
		writeError(in.out, "Failed to read JEDEC ID")
		return errcode.MapDriverErr(err)
	}
	writeIdentity(in.out, id, spiflash.Classify(id))
	return errcode.OK
}

func (in *Interpreter) read(addr, size uint32) errcode.Code {
	data, err := in.flash.ReadChunk(addr, spiflash.ClampReadLen(size))
	if err != nil {
		in.readFailed(addr, err)
		return errcode.MapDriverErr(err)
	}
	in.writeData(addr, data)
	return errcode.OK
}

func (in *Interpreter) dump(start, total uint32) errcode.Code {
	writeDumpStart(in.out, start, total)
	it := in.flash.Dump(start, total)
	for it.Next() {
		c := it.Chunk()
		in.writeData(c.Addr, c.Data)
	}
	code := errcode.OK
	if err := it.Err(); err != nil {
		in.readFailed(it.Pos(), err)
		println("[console] dump aborted,", it.Remaining(), "bytes unread")
		code = errcode.MapDriverErr(err)
	}
	writeDumpEnd(in.out)
	return code
}

func (in *Interpreter) readFailed(addr uint32, err error) {
	println("[console] read", fmtx.Sprintf("0x%08X", addr), "failed:", err.Error())
	writeError(in.out, fmtx.Sprintf("Failed to read data from 0x%08X", addr))
}

func (in *Interpreter) writeData(addr uint32, data []byte) {
	in.line = appendData(in.line[:0], addr, data)
	_, _ = in.out.Write(in.line)
	in.stats.bytes.Add(uint32(len(data)))
}
