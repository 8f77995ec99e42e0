package main

import (
	"context"
	"time"

	"flashdump-go/bus"
	"flashdump-go/drivers/spiflash"
	"flashdump-go/services/config"
	"flashdump-go/services/console"
	"flashdump-go/services/heartbeat"
	"flashdump-go/services/platform"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(platform.BootDelay)
	println("[flashdump] boot", platform.Board)

	ctx := context.Background()
	b := bus.NewBus(4)

	boot, cancel := context.WithTimeout(ctx, time.Second)
	fc, cc, err := config.LoadDevice(boot, b.NewConnection("main"), platform.Board)
	cancel()
	if err != nil {
		fatal("config", err)
	}

	p, err := platform.Open(ctx, fc, cc)
	if err != nil {
		fatal("platform", err)
	}
	defer p.Close()

	console.Banner(p.Out)
	dev := spiflash.New(p.Bus, spiflash.Config{
		ChipSelect: p.CS,
		ChunkPause: time.Duration(fc.ChunkPauseMS) * time.Millisecond,
	})
	console.Ready(p.Out)

	s := console.NewSession(p.In, p.Out, dev, console.Config{FullSize: cc.FullSize})
	hb := &heartbeat.Service{Stats: s.Interpreter().Stats()}
	hb.Start(ctx, b.NewConnection("heartbeat"))

	if err := s.Run(ctx); err != nil {
		println("[flashdump] console stopped:", err.Error())
	}
}

func fatal(stage string, err error) {
	println("[flashdump]", stage, "failed:", err.Error())
	platform.Halt()
}
