package heartbeat

import (
	"context"
	"time"

	"flashdump-go/bus"
	"flashdump-go/services/config"
	"flashdump-go/services/console"
	"flashdump-go/types"
	"flashdump-go/x/strconvx"
)

// Service periodically logs console activity counters. It listens on
// config/heartbeat for its interval; an interval of 0 silences it.
type Service struct {
	Stats *console.Stats

	// Unit scales the configured interval. Default one second.
	Unit time.Duration
	// Log receives each heartbeat line. Default println.
	Log func(line string)
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(config.Topic("heartbeat"))
	defer conn.Unsubscribe(cfgSub)

	var tick *time.Ticker
	var tickC <-chan time.Time
	defer func() {
		if tick != nil {
			tick.Stop()
		}
	}()

	// loop until context is cancelled, respond to tick and config changes
	for {
		select {
		case <-ctx.Done():
			s.Log("[heartbeat] stopping")
			return
		case t := <-tickC:
			st := s.Stats.Snapshot()
			s.Log("[heartbeat] " + t.Format("15:04:05") +
				" cmds=" + strconvx.FormatUint(uint64(st.Commands), 10) +
				" fail=" + strconvx.FormatUint(uint64(st.Failures), 10) +
				" bytes=" + strconvx.FormatUint(uint64(st.Bytes), 10))
		case msg, ok := <-cfgSub.Channel():
			if !ok {
				return
			}
			var hc types.HeartbeatConfig
			if err := config.Decode(msg.Payload, &hc); err != nil {
				s.Log("[heartbeat] bad config: " + err.Error())
				continue
			}
			if tick != nil {
				tick.Stop()
				tick, tickC = nil, nil
			}
			if hc.Interval > 0 {
				tick = time.NewTicker(time.Duration(hc.Interval) * s.Unit)
				tickC = tick.C
			}
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	if s.Stats == nil {
		s.Stats = new(console.Stats)
	}
	if s.Unit <= 0 {
		s.Unit = time.Second
	}
	if s.Log == nil {
		s.Log = func(line string) { println(line) }
	}
	go s.serviceLoop(ctx, conn)
}
