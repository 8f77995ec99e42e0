package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"flashdump-go/drivers/spiflash"
	"flashdump-go/drivers/spiflash/spiflashtest"
	"flashdump-go/errcode"
)

func noSleep(time.Duration) {}

func newTestInterp(f *spiflashtest.Flash, fullSize uint32) (*Interpreter, *bytes.Buffer) {
	var out bytes.Buffer
	dev := spiflash.New(f, spiflash.Config{Sleep: noSleep})
	return NewInterpreter(dev, &out, fullSize), &out
}

func lines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func TestIdentify(t *testing.T) {
	f := spiflashtest.New([3]byte{0xEF, 0x40, 0x18}, nil)
	in, out := newTestInterp(f, 0)

	if c := in.Exec("id"); c != errcode.OK {
		t.Fatalf("code = %q", c)
	}
	want := "CHIP_ID: EF 40 18\n" +
		"CHIP_TYPE: Winbond W25Q series\n" +
		"CHIP_SIZE: 16777216 bytes (16MB)\n"
	if out.String() != want {
		t.Fatalf("output:\n%s\nwant:\n%s", out.String(), want)
	}

	first := out.String()
	out.Reset()
	in.Exec("id")
	if out.String() != first {
		t.Fatalf("second id differs:\n%s", out.String())
	}
}

func TestIdentifyUnknownChip(t *testing.T) {
	f := spiflashtest.New([3]byte{0x9D, 0x60, 0x42}, nil)
	in, out := newTestInterp(f, 0)
	in.Exec("id")
	want := "CHIP_ID: 9D 60 42\nCHIP_TYPE: Unknown\nCHIP_SIZE: Unknown\n"
	if out.String() != want {
		t.Fatalf("output = %q", out.String())
	}
}

func TestIdentifyTransportError(t *testing.T) {
	f := spiflashtest.New([3]byte{0xEF, 0x40, 0x18}, nil)
	f.FailAt = 1
	in, out := newTestInterp(f, 0)
	if c := in.Exec("id"); c != errcode.Transport {
		t.Fatalf("code = %q", c)
	}
	if out.String() != "ERROR: Failed to read JEDEC ID\n" {
		t.Fatalf("output = %q", out.String())
	}
	// Next command still works.
	f.FailAt = 0
	out.Reset()
	if c := in.Exec("id"); c != errcode.OK {
		t.Fatalf("recovery code = %q", c)
	}
}

func TestRead(t *testing.T) {
	f := spiflashtest.New([3]byte{}, spiflashtest.Pattern(1024))
	in, out := newTestInterp(f, 0)

	if c := in.Exec("read 0 10"); c != errcode.OK {
		t.Fatalf("code = %q", c)
	}
	want := "DATA: 00000000 00 01 02 03 04 05 06 07 08 09 0A 0B 0C 0D 0E 0F\n"
	if out.String() != want {
		t.Fatalf("output = %q", out.String())
	}
	if n := len(f.Frames()); n != 1 {
		t.Fatalf("exchanges = %d", n)
	}
}

func TestReadClampsTo256(t *testing.T) {
	f := spiflashtest.New([3]byte{}, spiflashtest.Pattern(1024))
	in, out := newTestInterp(f, 0)

	in.Exec("read 10 1000")
	fields := strings.Fields(out.String())
	if len(fields) != 2+256 || fields[1] != "00000010" || fields[2] != "10" {
		t.Fatalf("got %d fields, head %v", len(fields), fields[:3])
	}
}

func TestReadError(t *testing.T) {
	f := spiflashtest.New([3]byte{}, nil)
	f.FailAt = 1
	in, out := newTestInterp(f, 0)
	if c := in.Exec("read abc 4"); c != errcode.Transport {
		t.Fatalf("code = %q", c)
	}
	if out.String() != "ERROR: Failed to read data from 0x00000ABC\n" {
		t.Fatalf("output = %q", out.String())
	}
}

func TestDump(t *testing.T) {
	f := spiflashtest.New([3]byte{}, spiflashtest.Pattern(1024))
	in, out := newTestInterp(f, 0)

	if c := in.Exec("dump 0 300"); c != errcode.OK {
		t.Fatalf("code = %q", c)
	}
	ls := lines(out.String())
	if len(ls) != 5 {
		t.Fatalf("lines = %d:\n%s", len(ls), out.String())
	}
	if ls[0] != "DUMP_START: 00000000 00000300" || ls[4] != "DUMP_END" {
		t.Fatalf("brackets: %q / %q", ls[0], ls[4])
	}
	for i, addr := range []string{"00000000", "00000100", "00000200"} {
		fields := strings.Fields(ls[i+1])
		if fields[0] != "DATA:" || fields[1] != addr || len(fields) != 2+256 {
			t.Fatalf("line %d: %q...", i+1, ls[i+1][:20])
		}
	}
}

func TestDumpAbortsOnError(t *testing.T) {
	f := spiflashtest.New([3]byte{}, spiflashtest.Pattern(1024))
	f.FailAt = 2
	in, out := newTestInterp(f, 0)

	if c := in.Exec("dump 0 300"); c != errcode.Transport {
		t.Fatalf("code = %q", c)
	}
	ls := lines(out.String())
	if len(ls) != 4 {
		t.Fatalf("lines:\n%s", out.String())
	}
	if !strings.HasPrefix(ls[1], "DATA: 00000000 ") {
		t.Fatalf("first chunk missing: %q", ls[1][:20])
	}
	if ls[2] != "ERROR: Failed to read data from 0x00000100" || ls[3] != "DUMP_END" {
		t.Fatalf("tail = %q %q", ls[2], ls[3])
	}
	if n := len(f.Frames()); n != 2 {
		t.Fatalf("exchanges = %d, want 2", n)
	}
}

func TestFull(t *testing.T) {
	f := spiflashtest.New([3]byte{}, nil)
	in, out := newTestInterp(f, 0x200)
	in.Exec("full")
	ls := lines(out.String())
	if ls[0] != "DUMP_START: 00000000 00000200" || len(ls) != 4 {
		t.Fatalf("output:\n%s", out.String())
	}
}

func TestFullDefaultSize(t *testing.T) {
	in, _ := newTestInterp(spiflashtest.New([3]byte{}, nil), 0)
	if in.fullSize != 0x800000 {
		t.Fatalf("fullSize = %#x", in.fullSize)
	}
}

func TestUsageErrors(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"read zz 10", "ERROR: Usage: read ADDR SIZE (hex)\n"},
		{"read 0x10 10", "ERROR: Usage: read ADDR SIZE (hex)\n"},
		{"read 10", "ERROR: Usage: read ADDR SIZE (hex)\n"},
		{"read", "ERROR: Usage: read ADDR SIZE (hex)\n"},
		{"read 1 2 3", "ERROR: Usage: read ADDR SIZE (hex)\n"},
		{"read 100000000 1", "ERROR: Usage: read ADDR SIZE (hex)\n"},
		{"dump 0 -1", "ERROR: Usage: dump ADDR SIZE (hex)\n"},
		{"dump g 1", "ERROR: Usage: dump ADDR SIZE (hex)\n"},
		{"read 0 '10", "ERROR: Usage: read ADDR SIZE (hex)\n"},
		{`dump 0 "300"`, "ERROR: Usage: dump ADDR SIZE (hex)\n"},
		{`read 0 1\0`, "ERROR: Usage: read ADDR SIZE (hex)\n"},
	}
	for _, c := range cases {
		f := spiflashtest.New([3]byte{}, nil)
		in, out := newTestInterp(f, 0)
		if code := in.Exec(c.in); code != errcode.Usage {
			t.Fatalf("%q: code = %q", c.in, code)
		}
		if out.String() != c.want {
			t.Fatalf("%q: output = %q", c.in, out.String())
		}
		if n := len(f.Frames()); n != 0 {
			t.Fatalf("%q: %d bus exchanges", c.in, n)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	cases := map[string]string{
		"bogus":   "ERROR: Unknown command 'bogus'. Type 'help' for commands.\n",
		"ID":      "ERROR: Unknown command 'ID'. Type 'help' for commands.\n",
		"id now":  "ERROR: Unknown command 'id now'. Type 'help' for commands.\n",
		"full 10": "ERROR: Unknown command 'full 10'. Type 'help' for commands.\n",
		"# hi":    "ERROR: Unknown command '# hi'. Type 'help' for commands.\n",
		"id # x":  "ERROR: Unknown command 'id # x'. Type 'help' for commands.\n",
		"'id'":    "ERROR: Unknown command ''id''. Type 'help' for commands.\n",

		`r"ead" 0 10`: "ERROR: Unknown command 'r\"ead\" 0 10'. Type 'help' for commands.\n",
		`i\d`:         "ERROR: Unknown command 'i\\d'. Type 'help' for commands.\n",
	}
	for input, want := range cases {
		f := spiflashtest.New([3]byte{0xEF, 0x40, 0x18}, nil)
		in, out := newTestInterp(f, 0)
		if code := in.Exec(input); code != errcode.UnknownCommand {
			t.Fatalf("%q: code = %q", input, code)
		}
		if out.String() != want {
			t.Fatalf("%q: output = %q", input, out.String())
		}
		if n := len(f.Frames()); n != 0 {
			t.Fatalf("%q: %d bus exchanges", input, n)
		}
	}
}

func TestEmptyAndTerminatedLines(t *testing.T) {
	f := spiflashtest.New([3]byte{0xEF, 0x40, 0x18}, nil)
	in, out := newTestInterp(f, 0)
	if c := in.Exec("   "); c != errcode.OK || out.Len() != 0 {
		t.Fatalf("blank line: code=%q out=%q", c, out.String())
	}
	if c := in.Exec("id\r\n"); c != errcode.OK {
		t.Fatalf("terminated id: %q", c)
	}
}

func TestHelp(t *testing.T) {
	in, out := newTestInterp(spiflashtest.New([3]byte{}, nil), 0)
	in.Exec("help")
	for _, want := range []string{"help", "id", "read ADDR SIZE", "dump ADDR SIZE", "full", "8MB", "read 0 16"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("help missing %q:\n%s", want, out.String())
		}
	}
}

func TestEditor(t *testing.T) {
	var echo bytes.Buffer
	e := NewEditor(&echo)

	feed := func(s string) (got []string) {
		for i := 0; i < len(s); i++ {
			if line, done := e.Feed(s[i]); done {
				got = append(got, line)
			}
		}
		return got
	}

	if got := feed("idx\x08\r"); len(got) != 1 || got[0] != "id" {
		t.Fatalf("backspace: %q", got)
	}
	if echo.String() != "idx\b \b\n" {
		t.Fatalf("echo = %q", echo.String())
	}

	echo.Reset()
	if got := feed("\x7f\x01\x1bhelp\r\n"); len(got) != 1 || got[0] != "help" {
		t.Fatalf("crlf: %q", got)
	}
	if echo.String() != "help\n" {
		t.Fatalf("echo = %q", echo.String())
	}

	if got := feed("\n\n"); len(got) != 2 || got[0] != "" {
		t.Fatalf("bare LF should terminate: %q", got)
	}
	if got := feed("\r\r"); len(got) != 2 {
		t.Fatalf("CR CR should be two lines: %q", got)
	}
}

func TestEditorOverflow(t *testing.T) {
	var echo bytes.Buffer
	e := NewEditor(&echo)
	long := strings.Repeat("a", MaxLine+5)
	for i := 0; i < len(long); i++ {
		e.Feed(long[i])
	}
	if e.Len() != MaxLine {
		t.Fatalf("Len = %d", e.Len())
	}
	if echo.Len() != MaxLine {
		t.Fatalf("echoed %d bytes", echo.Len())
	}
	line, done := e.Feed('\r')
	if !done || len(line) != MaxLine {
		t.Fatalf("line len %d done %v", len(line), done)
	}
	if e.Len() != 0 {
		t.Fatalf("buffer not reset")
	}
}

func TestBannerAndReady(t *testing.T) {
	var out bytes.Buffer
	Banner(&out)
	Ready(&out)
	s := out.String()
	if !strings.Contains(s, "SPI Flash Dumper") || !strings.HasSuffix(s, "SPI_READY\n") {
		t.Fatalf("startup = %q", s)
	}
}

func TestSessionRun(t *testing.T) {
	f := spiflashtest.New([3]byte{0xEF, 0x40, 0x18}, spiflashtest.Pattern(16))
	var out bytes.Buffer
	dev := spiflash.New(f, spiflash.Config{Sleep: noSleep})
	s := NewSession(strings.NewReader("id\r\n\rread 0 2\r"), &out, dev, Config{})

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := "Ready> id\n" +
		"CHIP_ID: EF 40 18\n" +
		"CHIP_TYPE: Winbond W25Q series\n" +
		"CHIP_SIZE: 16777216 bytes (16MB)\n" +
		"Ready> \n" +
		"Ready> read 0 2\n" +
		"DATA: 00000000 00 01\n" +
		"Ready> "
	if out.String() != want {
		t.Fatalf("transcript:\n%q\nwant:\n%q", out.String(), want)
	}
}

// idleReader returns (0, nil) a few times before delegating.
type idleReader struct {
	idle int
	r    io.Reader
}

func (r *idleReader) Read(p []byte) (int, error) {
	if r.idle > 0 {
		r.idle--
		return 0, nil
	}
	return r.r.Read(p)
}

func TestSessionIdlePoll(t *testing.T) {
	var out bytes.Buffer
	dev := spiflash.New(spiflashtest.New([3]byte{}, nil), spiflash.Config{Sleep: noSleep})
	s := NewSession(&idleReader{idle: 3, r: strings.NewReader("help\r")}, &out, dev, Config{})
	var naps []time.Duration
	s.sleep = func(d time.Duration) { naps = append(naps, d) }

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(naps) != 3 || naps[0] != DefaultIdlePoll {
		t.Fatalf("naps = %v", naps)
	}
	if !strings.Contains(out.String(), "Commands:") {
		t.Fatalf("help not run")
	}
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func TestSessionStops(t *testing.T) {
	dev := spiflash.New(spiflashtest.New([3]byte{}, nil), spiflash.Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewSession(strings.NewReader("id\r"), io.Discard, dev, Config{})
	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled Run = %v", err)
	}

	boom := errors.New("uart overrun")
	s = NewSession(errReader{boom}, io.Discard, dev, Config{})
	if err := s.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Run = %v", err)
	}
}

func TestStats(t *testing.T) {
	f := spiflashtest.New([3]byte{0xEF, 0x40, 0x18}, nil)
	in, _ := newTestInterp(f, 0)
	in.Exec("id")
	in.Exec("dump 0 300")
	in.Exec("read 0 10")
	in.Exec("bogus")
	in.Exec("")

	got := in.Stats().Snapshot()
	want := Snapshot{Commands: 4, Failures: 1, Bytes: 0x300 + 0x10}
	if got != want {
		t.Fatalf("stats = %+v, want %+v", got, want)
	}
}
