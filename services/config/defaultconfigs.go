package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

// Raspberry Pi Pico: flash on SPI0 (GP16..GP19), console on UART0 (GP0/GP1).
const cfgPico = `{
  "flash": {
      "bus": "spi0",
      "sck": 18,
      "sdo": 19,
      "sdi": 16,
      "cs": 17,
      "hz": 10000000,
      "mode": 0,
      "chunk_pause_ms": 1
  },
  "console": {
      "uart": "uart0",
      "tx": 0,
      "rx": 1,
      "baud": 115200,
      "full_size": 8388608
  },
  "heartbeat": {
      "interval": 10
  }
}`

// Linux host with spidev; console on the controlling terminal.
const cfgHost = `{
  "flash": {
      "device": "",
      "cs": -1,
      "hz": 10000000,
      "mode": 0,
      "chunk_pause_ms": 1
  },
  "console": {
      "full_size": 8388608
  },
  "heartbeat": {
      "interval": 0
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico": []byte(cfgPico),
	"host": []byte(cfgHost),
}
