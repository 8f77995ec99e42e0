// cmd/flashprobe/main.go
//
// Bring-up check for a freshly wired board: reads the JEDEC ID several
// times, classifies it, and reads the first chunk twice. Results go to the
// log channel only; the console UART is left alone.
package main

import (
	"context"
	"time"

	"flashdump-go/bus"
	"flashdump-go/drivers/spiflash"
	"flashdump-go/services/config"
	"flashdump-go/services/platform"
)

// ---------- Configuration ----------

const (
	idReads     = 5
	cycleDelay  = 5 * time.Second
	cyclesToRun = 0 // 0 = loop forever
)

func main() {
	time.Sleep(platform.BootDelay)
	println("[probe] boot", platform.Board)

	ctx := context.Background()
	boot, cancel := context.WithTimeout(ctx, time.Second)
	fc, cc, err := config.LoadDevice(boot, bus.NewBus(4).NewConnection("probe"), platform.Board)
	cancel()
	if err != nil {
		println("[probe] config failed:", err.Error())
		platform.Halt()
	}
	p, err := platform.Open(ctx, fc, cc)
	if err != nil {
		println("[probe] platform failed:", err.Error())
		platform.Halt()
	}
	defer p.Close()

	dev := spiflash.New(p.Bus, spiflash.Config{ChipSelect: p.CS})
	for cycle := 1; cyclesToRun == 0 || cycle <= cyclesToRun; cycle++ {
		r, err := probe(dev, idReads)
		if err != nil {
			println("[probe] cycle", cycle, "bus error:", err.Error())
		} else {
			for _, l := range r.lines() {
				println("[probe]", l)
			}
		}
		time.Sleep(cycleDelay)
	}
}
