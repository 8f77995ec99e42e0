// Package capture is the host side of the flash console: it drives a
// running dumper over a byte stream, decodes identity and dump output,
// and checks the dump against its announced length.
package capture

import (
	"strings"

	"flashdump-go/services/console"
	"flashdump-go/x/strx"
)

// StripPrompt removes line terminators and any leading console prompts.
// A prompt is printed without a newline, so it ends up in front of the
// next line the device sends (usually the echo of our own command).
func StripPrompt(line string) string {
	line = strings.TrimRight(line, "\r\n")
	for {
		rest, ok := strx.CutPrefix(line, console.Prompt)
		if !ok {
			return line
		}
		line = rest
	}
}
