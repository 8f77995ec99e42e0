package config

import (
	"context"
	"encoding/json"
	"errors"

	"flashdump-go/bus"
	"flashdump-go/errcode"
	"flashdump-go/types"
)

// -----------------------------------------------------------------------------
// String constants (live in flash, not RAM)
// -----------------------------------------------------------------------------

const (
	serviceName  = "config"
	configPrefix = "config"
)

type ctxKey string

// CtxDeviceKey is the context key carrying the device ID.
const CtxDeviceKey ctxKey = "device"

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// Topic returns the retained topic carrying key.
func Topic(key string) bus.Topic { return bus.T(configPrefix, key) }

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// publishConfig reads the device config from embedded data and publishes
// every top-level key as a retained message on config/<key>.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		return errors.New("missing device ID in context")
	}

	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return errors.New("no embedded config for device: " + device)
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return &errcode.E{C: errcode.InvalidConfig, Op: "config", Msg: "embedded config is not a JSON object", Err: err}
	}

	for k, v := range m {
		conn.Publish(conn.NewMessage(Topic(k), v, true))
	}
	return nil
}

// Publish runs the publisher synchronously.
func (s *ConfigService) Publish(ctx context.Context, conn *bus.Connection) error {
	return s.publishConfig(ctx, conn)
}

// -----------------------------------------------------------------------------
// Consumers
// -----------------------------------------------------------------------------

// Decode converts a bus payload (raw JSON or decoded JSON values) into dst.
func Decode[T any](src any, dst *T) error {
	var err error
	switch v := src.(type) {
	case []byte:
		err = json.Unmarshal(v, dst)
	case string:
		err = json.Unmarshal([]byte(v), dst)
	default:
		var b []byte
		if b, err = json.Marshal(v); err == nil {
			err = json.Unmarshal(b, dst)
		}
	}
	return errcode.Wrap(errcode.InvalidConfig, "config", err)
}

// Await waits for the retained config/<key> message and decodes it into dst.
func Await[T any](ctx context.Context, conn *bus.Connection, key string, dst *T) error {
	sub := conn.Subscribe(Topic(key))
	defer sub.Unsubscribe()

	select {
	case m := <-sub.Channel():
		return Decode(m.Payload, dst)
	case <-ctx.Done():
		return &errcode.E{C: errcode.Timeout, Op: "config/" + key, Err: ctx.Err()}
	}
}

// LoadDevice publishes the embedded config for device on conn's bus and
// returns its flash and console sections with defaults applied.
func LoadDevice(ctx context.Context, conn *bus.Connection, device string) (types.FlashConfig, types.ConsoleConfig, error) {
	var fc types.FlashConfig
	var cc types.ConsoleConfig

	ctx = context.WithValue(ctx, CtxDeviceKey, device)
	if err := NewConfigService().Publish(ctx, conn); err != nil {
		return fc, cc, err
	}
	if err := Await(ctx, conn, "flash", &fc); err != nil {
		return fc, cc, err
	}
	if err := Await(ctx, conn, "console", &cc); err != nil {
		return fc, cc, err
	}
	fc, cc = fc.WithDefaults(), cc.WithDefaults()
	return fc, cc, fc.Validate()
}
