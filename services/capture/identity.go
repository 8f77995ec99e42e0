package capture

import (
	"strconv"
	"strings"

	"flashdump-go/errcode"
	"flashdump-go/services/console"
)

// Identity is the decoded answer to `id`.
type Identity struct {
	ID        string // "EF 40 18"
	Type      string
	Size      uint32
	SizeKnown bool
}

// Compact returns the ID without separators, e.g. "EF4018".
func (id Identity) Compact() string { return strings.ReplaceAll(id.ID, " ", "") }

// identityDone reports whether line closes an `id` response.
func identityDone(line string) bool {
	return strings.HasPrefix(line, console.PrefixChipSize) ||
		strings.HasPrefix(line, console.PrefixError)
}

// ParseIdentity decodes the CHIP_* lines of an `id` response. Unrelated
// lines (echo, prompts) are skipped. A device ERROR line is returned as a
// transport error.
func ParseIdentity(lines []string) (Identity, error) {
	var id Identity
	var haveID, haveSz bool
	for _, raw := range lines {
		line := StripPrompt(raw)
		switch {
		case strings.HasPrefix(line, console.PrefixError):
			return Identity{}, &errcode.E{C: errcode.Transport, Op: "id", Msg: strings.TrimPrefix(line, console.PrefixError)}

		case strings.HasPrefix(line, console.PrefixChipID):
			v := strings.TrimPrefix(line, console.PrefixChipID)
			if !validID(v) {
				return Identity{}, &errcode.E{C: errcode.Error, Op: "id", Msg: "malformed " + line}
			}
			id.ID = v
			haveID = true

		case strings.HasPrefix(line, console.PrefixChipType):
			id.Type = strings.TrimPrefix(line, console.PrefixChipType)

		case strings.HasPrefix(line, console.PrefixChipSize):
			v := strings.TrimPrefix(line, console.PrefixChipSize)
			haveSz = true
			if v == console.SizeUnknown {
				continue
			}
			n, _, _ := strings.Cut(v, " ")
			size, err := strconv.ParseUint(n, 10, 32)
			if err != nil {
				return Identity{}, &errcode.E{C: errcode.Error, Op: "id", Msg: "malformed " + line, Err: err}
			}
			id.Size, id.SizeKnown = uint32(size), true
		}
	}
	if !haveID || !haveSz {
		return Identity{}, &errcode.E{C: errcode.Error, Op: "id", Msg: "incomplete identity"}
	}
	return id, nil
}

func validID(s string) bool {
	f := strings.Fields(s)
	if len(f) != 3 {
		return false
	}
	for _, b := range f {
		if len(b) != 2 {
			return false
		}
		if _, err := strconv.ParseUint(b, 16, 8); err != nil {
			return false
		}
	}
	return true
}
