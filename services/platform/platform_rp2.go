//go:build rp2040 || rp2350

package platform

import (
	"context"
	"machine"
	"time"

	"github.com/jangala-dev/tinygo-uartx/uartx"

	"flashdump-go/errcode"
	"flashdump-go/types"
)

// Board selects the embedded configuration.
const Board = "pico"

// BootDelay lets USB CDC enumerate before the first log line.
const BootDelay = 2 * time.Second

// Halt parks the firmware after a fatal error; there is nothing to return to.
func Halt() {
	for {
		time.Sleep(time.Hour)
	}
}

// Open configures the SPI controller, the CS pin and the console UART.
func Open(ctx context.Context, fc types.FlashConfig, cc types.ConsoleConfig) (*Platform, error) {
	var spi *machine.SPI
	switch fc.Bus {
	case "spi0":
		spi = machine.SPI0
	case "spi1":
		spi = machine.SPI1
	default:
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "platform", Msg: fc.Bus}
	}
	err := spi.Configure(machine.SPIConfig{
		Frequency: fc.Hz,
		SCK:       machine.Pin(fc.SCK),
		SDO:       machine.Pin(fc.SDO),
		SDI:       machine.Pin(fc.SDI),
		Mode:      fc.Mode,
	})
	if err != nil {
		return nil, errcode.Wrap(errcode.InvalidConfig, "platform/spi", err)
	}

	p := &Platform{Bus: spi}
	if fc.CS >= 0 {
		cs := machine.Pin(fc.CS)
		cs.Configure(machine.PinConfig{Mode: machine.PinOutput})
		cs.High()
		p.CS = func(active bool) { cs.Set(!active) }
	}

	var u *uartx.UART
	switch cc.UART {
	case "uart0":
		u = uartx.UART0
	case "uart1":
		u = uartx.UART1
	default:
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "platform", Msg: cc.UART}
	}
	// Defaults inside uartx apply if zero.
	_ = u.Configure(uartx.UARTConfig{
		BaudRate: cc.Baud,
		TX:       machine.Pin(cc.TX),
		RX:       machine.Pin(cc.RX),
	})
	p.In = &uartReader{ctx: ctx, u: u}
	p.Out = newCRLFWriter(u)

	println("[platform] spi", fc.Bus, "at", fc.Hz, "Hz, console on", cc.UART)
	return p, nil
}

// uartReader blocks until at least one byte arrives or ctx ends.
type uartReader struct {
	ctx context.Context
	u   *uartx.UART
}

func (r *uartReader) Read(p []byte) (int, error) { return r.u.RecvSomeContext(r.ctx, p) }
