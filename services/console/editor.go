package console

import "io"

// MaxLine is the longest command the editor accepts; further printable
// characters are dropped without echo.
const MaxLine = 127

const (
	keyBS  = 0x08
	keyDEL = 0x7F
)

var (
	eraseSeq = []byte("\b \b")
	newline  = []byte("\n")
)

// Editor turns raw console bytes into complete lines, echoing as it goes.
// The zero value is not usable; call NewEditor.
type Editor struct {
	echo   io.Writer
	buf    [MaxLine]byte
	n      int
	lastCR bool
	one    [1]byte
}

func NewEditor(echo io.Writer) *Editor { return &Editor{echo: echo} }

// Len returns the number of buffered characters.
func (e *Editor) Len() int { return e.n }

// Feed consumes one input byte. On CR or LF it returns the buffered line and
// done=true (line may be empty) and resets the buffer. An LF that directly
// follows a CR is absorbed so CRLF closes exactly one line.
func (e *Editor) Feed(b byte) (line string, done bool) {
	afterCR := e.lastCR
	e.lastCR = b == '\r'

	switch {
	case b == '\r' || b == '\n':
		if b == '\n' && afterCR {
			return "", false
		}
		_, _ = e.echo.Write(newline)
		line = string(e.buf[:e.n])
		e.n = 0
		return line, true

	case b >= 0x20 && b <= 0x7E:
		if e.n == len(e.buf) {
			return "", false
		}
		e.buf[e.n] = b
		e.n++
		e.one[0] = b
		_, _ = e.echo.Write(e.one[:])

	case b == keyBS || b == keyDEL:
		if e.n > 0 {
			e.n--
			_, _ = e.echo.Write(eraseSeq)
		}
	}
	return "", false
}
