package types

import "flashdump-go/errcode"

// Flash bus configuration supplied on topic "config/flash".
type FlashConfig struct {
	Bus          string `json:"bus"`            // "spi0" | "spi1" on MCU builds
	SCK          int    `json:"sck"`            // GPIO numbers; MCU only
	SDO          int    `json:"sdo"`            // controller out (MOSI)
	SDI          int    `json:"sdi"`            // controller in (MISO)
	CS           int    `json:"cs"`             // -1: chip select handled by the bus
	Hz           uint32 `json:"hz"`             // SCK frequency
	Mode         uint8  `json:"mode"`           // SPI mode 0..3
	ChunkPauseMS int    `json:"chunk_pause_ms"` // pause between dump chunks
	Device       string `json:"device"`         // host: spireg name, "" = first port
}

// Console configuration supplied on topic "config/console".
type ConsoleConfig struct {
	UART     string `json:"uart"` // "uart0" | "uart1" on MCU builds
	TX       int    `json:"tx"`
	RX       int    `json:"rx"`
	Baud     uint32 `json:"baud"`
	FullSize uint32 `json:"full_size"` // bytes covered by `full`
}

const (
	DefaultFlashHz     = 10_000_000
	DefaultConsoleBaud = 115200
	DefaultFullSize    = 0x800000
)

// WithDefaults fills unset fields.
func (c FlashConfig) WithDefaults() FlashConfig {
	if c.Hz == 0 {
		c.Hz = DefaultFlashHz
	}
	if c.ChunkPauseMS == 0 {
		c.ChunkPauseMS = 1
	}
	return c
}

func (c FlashConfig) Validate() error {
	switch {
	case c.Mode > 3:
		return &errcode.E{C: errcode.InvalidConfig, Op: "config/flash", Msg: "mode must be 0..3"}
	case c.ChunkPauseMS < 0:
		return &errcode.E{C: errcode.InvalidConfig, Op: "config/flash", Msg: "negative chunk_pause_ms"}
	}
	return nil
}

// WithDefaults fills unset fields.
func (c ConsoleConfig) WithDefaults() ConsoleConfig {
	if c.Baud == 0 {
		c.Baud = DefaultConsoleBaud
	}
	if c.FullSize == 0 {
		c.FullSize = DefaultFullSize
	}
	return c
}

// Heartbeat configuration supplied on topic "config/heartbeat".
type HeartbeatConfig struct {
	Interval int `json:"interval"` // seconds; 0 disables
}
