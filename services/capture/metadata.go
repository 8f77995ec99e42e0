package capture

import (
	"encoding/json"
	"io"
	"math"
	"strings"
	"time"

	"flashdump-go/x/strx"
)

// Metadata is the JSON sidecar written next to every dump image.
type Metadata struct {
	DeviceInfo   string   `json:"device_info"`
	ChipID       string   `json:"chip_id"`
	ChipType     string   `json:"chip_type"`
	ChipSize     uint32   `json:"chip_size,omitempty"`
	Timestamp    string   `json:"timestamp"`
	DumpFile     string   `json:"dump_file"`
	FileSize     int64    `json:"file_size"`
	DumpSizeMB   float64  `json:"dump_size_mb"`
	Start        uint32   `json:"start"`
	Announced    uint32   `json:"announced"`
	Received     uint64   `json:"received"`
	Truncated    bool     `json:"truncated"`
	DeviceErrors []string `json:"device_errors,omitempty"`
	SHA256       string   `json:"sha256"`
}

// NewMetadata assembles the sidecar for a finished dump. sha is the
// lowercase hex digest of the bytes written to dumpFile.
func NewMetadata(device string, id Identity, dumpFile string, r Result, sha string, t time.Time) Metadata {
	m := Metadata{
		DeviceInfo:   strx.Coalesce(device, DefaultDevice),
		ChipID:       id.ID,
		ChipType:     id.Type,
		Timestamp:    t.Format(time.RFC3339),
		DumpFile:     dumpFile,
		FileSize:     int64(r.Received),
		DumpSizeMB:   math.Round(float64(r.Received)/(1024*1024)*100) / 100,
		Start:        r.Start,
		Announced:    r.Announced,
		Received:     r.Received,
		Truncated:    r.Truncated(),
		DeviceErrors: r.DeviceErrors,
		SHA256:       sha,
	}
	if id.SizeKnown {
		m.ChipSize = id.Size
	}
	return m
}

// WriteJSON writes m indented by two spaces.
func (m Metadata) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// DefaultDevice names dumps when no device label is given.
const DefaultDevice = "flash"

// DumpFileName returns "<device>_<chipid>_<YYYYmmdd_HHMMSS>.bin"; the chip
// part is omitted when chipID is empty.
func DumpFileName(device, chipID string, t time.Time) string {
	parts := []string{strx.Coalesce(device, DefaultDevice)}
	if id := strings.ReplaceAll(chipID, " ", ""); id != "" {
		parts = append(parts, id)
	}
	parts = append(parts, t.Format("20060102_150405"))
	return strings.Join(parts, "_") + ".bin"
}
