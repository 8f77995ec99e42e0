//go:build !rp2040 && !rp2350

package platform

import (
	"context"
	"os"

	"golang.org/x/term"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"flashdump-go/errcode"
	"flashdump-go/types"
)

// Board selects the embedded configuration.
const Board = "host"

const BootDelay = 0

func Halt() { os.Exit(1) }

// Open opens a spidev port through periph.io and puts the controlling
// terminal in raw mode so the line editor sees every keystroke.
func Open(ctx context.Context, fc types.FlashConfig, cc types.ConsoleConfig) (*Platform, error) {
	if _, err := host.Init(); err != nil {
		return nil, errcode.Wrap(errcode.UnknownBus, "platform/host", err)
	}
	port, err := spireg.Open(fc.Device)
	if err != nil {
		return nil, errcode.Wrap(errcode.UnknownBus, "platform/spi", err)
	}
	conn, err := port.Connect(physic.Frequency(fc.Hz)*physic.Hertz, spi.Mode(fc.Mode), 8)
	if err != nil {
		port.Close()
		return nil, errcode.Wrap(errcode.InvalidConfig, "platform/spi", err)
	}

	p := &Platform{Bus: &periphSPI{conn: conn}, In: os.Stdin, Out: os.Stdout}
	restore := func() error { return nil }
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		st, err := term.MakeRaw(fd)
		if err != nil {
			port.Close()
			return nil, errcode.Wrap(errcode.Error, "platform/tty", err)
		}
		restore = func() error { return term.Restore(fd, st) }
		p.Out = newCRLFWriter(os.Stdout)
	}
	p.close = func() error {
		rerr := restore()
		if err := port.Close(); err != nil {
			return err
		}
		return rerr
	}

	println("[platform] spi", port.String(), "at", fc.Hz, "Hz")
	return p, nil
}

// periphSPI adapts a periph.io connection to drivers.SPI.
type periphSPI struct {
	conn spi.Conn
}

func (s *periphSPI) Tx(w, r []byte) error { return s.conn.Tx(w, r) }

func (s *periphSPI) Transfer(b byte) (byte, error) {
	var r [1]byte
	err := s.conn.Tx([]byte{b}, r[:])
	return r[0], err
}
