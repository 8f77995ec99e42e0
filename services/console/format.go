package console

import (
	"io"

	"flashdump-go/drivers/spiflash"
	"flashdump-go/x/conv"
	"flashdump-go/x/fmtx"
)

// Console protocol line prefixes.
const (
	PrefixChipID    = "CHIP_ID: "
	PrefixChipType  = "CHIP_TYPE: "
	PrefixChipSize  = "CHIP_SIZE: "
	PrefixData      = "DATA: "
	PrefixDumpStart = "DUMP_START: "
	PrefixError     = "ERROR: "

	LineDumpEnd = "DUMP_END"
	LineReady   = "SPI_READY"
	SizeUnknown = "Unknown"

	Prompt = "Ready> "
)

const banner = "\n=== TinyGo SPI Flash Dumper ===\n" +
	"Interactive mode - type 'help' for commands\n\n"

// Banner writes the fixed startup banner.
func Banner(w io.Writer) { _, _ = io.WriteString(w, banner) }

// Ready writes the bus-ready sentinel line.
func Ready(w io.Writer) { _, _ = io.WriteString(w, LineReady+"\n") }

func helpText(fullSize uint32) string {
	return "Commands:\n" +
		"  help           - Show this help\n" +
		"  id             - Read chip JEDEC ID\n" +
		"  read ADDR SIZE - Read block (hex, max 256 bytes)\n" +
		"  dump ADDR SIZE - Dump large region\n" +
		fmtx.Sprintf("  full           - Dump entire %s flash\n", sizeLabel(fullSize)) +
		"Examples:\n" +
		"  read 0 16      - Read first 16 bytes\n" +
		"  dump 0 100000  - Dump first 1MB\n"
}

func sizeLabel(n uint32) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmtx.Sprintf("%dMB", n>>20)
	}
	return fmtx.Sprintf("0x%X byte", n)
}

// writeIdentity prints the three CHIP_* lines.
func writeIdentity(w io.Writer, id spiflash.ID, d spiflash.Descriptor) {
	_, _ = io.WriteString(w, PrefixChipID+id.String()+"\n")
	_, _ = io.WriteString(w, PrefixChipType+d.Vendor+"\n")
	if d.Known() {
		_, _ = fmtx.Fprintf(w, PrefixChipSize+"%d bytes (%dMB)\n", d.Capacity, d.MiB())
		return
	}
	_, _ = io.WriteString(w, PrefixChipSize+SizeUnknown+"\n")
}

// appendData renders "DATA: AAAAAAAA XX XX ..\n" into dst.
func appendData(dst []byte, addr uint32, data []byte) []byte {
	dst = append(dst, PrefixData...)
	dst = conv.AppendU32Hex(dst, addr)
	if len(data) > 0 {
		dst = append(dst, ' ')
		dst = conv.AppendHexBytes(dst, data)
	}
	return append(dst, '\n')
}

func writeDumpStart(w io.Writer, start, total uint32) {
	_, _ = fmtx.Fprintf(w, PrefixDumpStart+"%08X %08X\n", start, total)
}

func writeDumpEnd(w io.Writer) { _, _ = io.WriteString(w, LineDumpEnd+"\n") }

func writeError(w io.Writer, msg string) { _, _ = io.WriteString(w, PrefixError+msg+"\n") }
