// Command flashcapture drives a flash dumper console over a serial port,
// writes the image to disk with a JSON sidecar, and fails loudly when the
// device delivered less than it announced.
package main

import (
	"crypto/sha256"
	"encoding/hex"
	goflag "flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cesanta/go-serial/serial"
	"github.com/fatih/color"
	"github.com/golang/glog"
	"github.com/juju/errors"
	flag "github.com/spf13/pflag"

	"flashdump-go/errcode"
	"flashdump-go/services/capture"
)

const envPrefix = "FLASHCAPTURE_"

var (
	portName = flag.StringP("port", "p", "/dev/ttyACM0", "Serial port of the dumper console")
	baudRate = flag.UintP("baud", "b", 115200, "Serial baud rate")
	startHex = flag.String("start", "0", "Start address (hex)")
	sizeHex  = flag.StringP("size", "s", "800000", "Dump size (hex); 0 uses the detected chip size")
	outDir   = flag.StringP("out-dir", "o", ".", "Directory for the image and its metadata")
	device   = flag.String("device", capture.DefaultDevice, "Device label used in file names and metadata")
	timeout  = flag.Duration("timeout", 2*time.Second, "Give up when the console is silent this long")
)

func main() {
	flag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	flag.Parse()
	parseEnv(flag.CommandLine, envPrefix)

	if err := run(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %s\n", err)
		glog.Errorf("%s", errors.ErrorStack(err))
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}

func parseHex(name, v string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(v), "0x"), 16, 32)
	if err != nil {
		return 0, errors.Annotatef(err, "--%s", name)
	}
	return uint32(n), nil
}

func run() error {
	start, err := parseHex("start", *startHex)
	if err != nil {
		return errors.Trace(err)
	}
	size, err := parseHex("size", *sizeHex)
	if err != nil {
		return errors.Trace(err)
	}

	glog.Infof("Opening %s at %d baud...", *portName, *baudRate)
	sp, err := serial.Open(serial.OpenOptions{
		PortName:              *portName,
		BaudRate:              *baudRate,
		DataBits:              8,
		ParityMode:            serial.PARITY_NONE,
		StopBits:              1,
		InterCharacterTimeout: uint(*timeout / time.Millisecond),
		MinimumReadSize:       0,
	})
	if err != nil {
		return errors.Annotatef(err, "failed to open %s", *portName)
	}
	defer sp.Close()

	c := capture.NewClient(sp)
	id, err := c.Identify()
	if err != nil {
		return errors.Annotatef(err, "identify")
	}
	fmt.Printf("Chip: %s (%s)", id.ID, id.Type)
	if id.SizeKnown {
		fmt.Printf(", %d bytes", id.Size)
	}
	fmt.Println()

	if size == 0 {
		if !id.SizeKnown {
			return errors.New("--size 0 needs a chip with a known capacity")
		}
		size = id.Size
	}
	return dump(c, id, start, size)
}

func dump(c *capture.Client, id capture.Identity, start, size uint32) error {
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return errors.Trace(err)
	}
	now := time.Now()
	path := filepath.Join(*outDir, capture.DumpFileName(*device, id.ID, now))
	f, err := os.Create(path)
	if err != nil {
		return errors.Trace(err)
	}

	fmt.Printf("Dumping 0x%08X bytes from 0x%08X to %s\n", size, start, path)
	var lastPct uint64
	c.Progress = func(r capture.Result) {
		if r.Announced == 0 {
			return
		}
		if pct := r.Received * 100 / uint64(r.Announced); pct >= lastPct+5 {
			lastPct = pct
			fmt.Fprintf(os.Stderr, "\r%3d%%", pct)
		}
	}

	h := sha256.New()
	res, dumpErr := c.Dump(start, size, io.MultiWriter(f, h))
	fmt.Fprintln(os.Stderr)
	if err := f.Close(); err != nil && dumpErr == nil {
		dumpErr = errors.Trace(err)
	}

	sum := hex.EncodeToString(h.Sum(nil))
	meta := capture.NewMetadata(*device, id, path, res, sum, now)
	if err := writeMetadata(strings.TrimSuffix(path, ".bin")+".json", meta); err != nil {
		return errors.Trace(err)
	}

	if dumpErr != nil {
		if errcode.Of(dumpErr) == errcode.Truncated {
			color.New(color.FgRed).Fprintf(os.Stderr, "TRUNCATED: received %d of %d bytes\n", res.Received, res.Announced)
			for _, e := range res.DeviceErrors {
				color.New(color.FgYellow).Fprintf(os.Stderr, "  device: %s\n", e)
			}
		}
		return errors.Annotatef(dumpErr, "dump to %s", path)
	}
	color.New(color.FgGreen).Printf("OK: %d bytes, sha256 %s\n", res.Received, sum)
	return nil
}

func writeMetadata(path string, m capture.Metadata) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Trace(err)
	}
	if err := m.WriteJSON(f); err != nil {
		f.Close()
		return errors.Trace(err)
	}
	glog.Infof("Metadata saved: %s", path)
	return errors.Trace(f.Close())
}
