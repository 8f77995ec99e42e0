//go:build rp2040 || rp2350

package fmtx

import (
	"io"
	"unicode/utf8"

	"flashdump-go/x/strconvx"
)

// --- Public API (signatures match fmt) ---

func Sprintf(format string, a ...any) string {
	var b builder
	b.format(format, a...)
	return string(b.buf)
}

func Fprintf(w io.Writer, format string, a ...any) (int, error) {
	var b builder
	b.format(format, a...)
	return w.Write(b.buf)
}

func Errorf(format string, a ...any) error {
	return &stringError{Sprintf(format, a...)}
}

func Sprint(a ...any) string {
	var b builder
	b.join(a)
	return string(b.buf)
}

func Fprint(w io.Writer, a ...any) (int, error) {
	var b builder
	b.join(a)
	return w.Write(b.buf)
}

func Fprintln(w io.Writer, a ...any) (int, error) {
	var b builder
	b.join(a)
	b.byte('\n')
	return w.Write(b.buf)
}

// --- Internals: tiny formatter subset ---
// Supports: %s %q %d %x %X %v %t %% with width, '0' padding for integers
// and precision for %s. No other flags; keep MCU cost low.

type stringError struct{ s string }

func (e *stringError) Error() string { return e.s }

type builder struct{ buf []byte }

func (b *builder) byte(c byte)  { b.buf = append(b.buf, c) }
func (b *builder) str(s string) { b.buf = append(b.buf, s...) }

func (b *builder) pad(c byte, n int) {
	for ; n > 0; n-- {
		b.byte(c)
	}
}

func (b *builder) join(a []any) {
	for i, v := range a {
		if i > 0 {
			b.byte(' ')
		}
		b.any(v, 'v')
	}
}

func (b *builder) any(v any, verb rune) {
	switch x := v.(type) {
	case string:
		if verb == 'q' {
			b.str(quote(x))
		} else {
			b.str(x)
		}
	case []byte:
		if verb == 'q' {
			b.str(quote(string(x)))
		} else {
			b.buf = append(b.buf, x...)
		}
	case error:
		b.str(x.Error())
	case bool:
		if x {
			b.str("true")
		} else {
			b.str("false")
		}
	default:
		if u, neg, ok := toU64(v); ok {
			if neg {
				b.byte('-')
			}
			b.str(strconvx.FormatUint(u, 10))
			return
		}
		b.str("<unk>")
	}
}

// toU64 returns the magnitude and sign of any integer type.
func toU64(v any) (u uint64, neg bool, ok bool) {
	var i int64
	switch t := v.(type) {
	case uint:
		return uint64(t), false, true
	case uint8:
		return uint64(t), false, true
	case uint16:
		return uint64(t), false, true
	case uint32:
		return uint64(t), false, true
	case uint64:
		return t, false, true
	case int:
		i = int64(t)
	case int8:
		i = int64(t)
	case int16:
		i = int64(t)
	case int32:
		i = int64(t)
	case int64:
		i = t
	default:
		return 0, false, false
	}
	if i < 0 {
		return uint64(-i), true, true
	}
	return uint64(i), false, true
}

func (b *builder) format(format string, args ...any) {
	ai := 0
	for i := 0; i < len(format); {
		if format[i] != '%' {
			b.byte(format[i])
			i++
			continue
		}
		if i+1 < len(format) && format[i+1] == '%' {
			b.byte('%')
			i += 2
			continue
		}
		i++
		// %[0]<w>[.<p>]<verb>
		zero := false
		if i < len(format) && format[i] == '0' {
			zero = true
			i++
		}
		width, prec, hasPrec := 0, 0, false
		i = parseNum(format, i, &width)
		if i < len(format) && format[i] == '.' {
			i++
			hasPrec = true
			i = parseNum(format, i, &prec)
		}
		if i >= len(format) || ai >= len(args) {
			return
		}
		verb := rune(format[i])
		arg := args[ai]
		ai++
		i++

		switch verb {
		case 's', 'q':
			var s string
			switch v := arg.(type) {
			case string:
				s = v
			case []byte:
				s = string(v)
			case error:
				s = v.Error()
			default:
				b.any(arg, 'v')
				continue
			}
			if verb == 'q' {
				s = quote(s)
			}
			if hasPrec && prec < len(s) {
				s = s[:prec]
			}
			b.pad(' ', width-utf8.RuneCountInString(s))
			b.str(s)
		case 'd', 'x', 'X':
			u, neg, ok := toU64(arg)
			if !ok {
				b.any(arg, 'v')
				continue
			}
			base := 10
			if verb != 'd' {
				base = 16
			}
			digits := strconvx.FormatUint(u, base)
			if verb == 'X' {
				digits = upper(digits)
			}
			n := len(digits)
			if neg {
				n++
			}
			if zero {
				if neg {
					b.byte('-')
				}
				b.pad('0', width-n)
			} else {
				b.pad(' ', width-n)
				if neg {
					b.byte('-')
				}
			}
			b.str(digits)
		case 't':
			if v, ok := arg.(bool); ok && v {
				b.str("true")
			} else {
				b.str("false")
			}
		case 'v':
			b.any(arg, 'v')
		default:
			// Unknown verb: write it literally to aid debugging.
			b.byte('%')
			b.byte(byte(verb))
		}
	}
}

func upper(s string) string {
	for i := 0; i < len(s); i++ {
		if 'a' <= s[i] && s[i] <= 'f' {
			p := []byte(s)
			for j := i; j < len(p); j++ {
				if 'a' <= p[j] && p[j] <= 'f' {
					p[j] -= 'a' - 'A'
				}
			}
			return string(p)
		}
	}
	return s
}

func parseNum(s string, i int, out *int) int {
	n := 0
	start := i
	for i < len(s) && '0' <= s[i] && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		i++
	}
	if i > start {
		*out = n
	}
	return i
}

func quote(s string) string {
	// Minimal %q: escape backslash, quotes and common control bytes.
	out := []byte{'"'}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', '"':
			out = append(out, '\\', s[i])
		case '\n':
			out = append(out, '\\', 'n')
		case '\r':
			out = append(out, '\\', 'r')
		case '\t':
			out = append(out, '\\', 't')
		default:
			out = append(out, s[i])
		}
	}
	out = append(out, '"')
	return string(out)
}
