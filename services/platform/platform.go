// Package platform brings up the flash bus and the console byte stream for
// the board the binary was built for.
package platform

import (
	"io"

	"tinygo.org/x/drivers"

	"flashdump-go/drivers/spiflash"
)

// Platform is what the dumper needs from the board.
type Platform struct {
	Bus drivers.SPI
	CS  spiflash.ChipSelect // nil when the bus drives CS itself

	In  io.Reader
	Out io.Writer

	close func() error
}

// Close releases anything Open acquired.
func (p *Platform) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}

// crlfWriter expands "\n" to "\r\n" for terminals that do no output
// translation (raw tty, bare UART).
type crlfWriter struct {
	w   io.Writer
	buf []byte
}

func newCRLFWriter(w io.Writer) *crlfWriter {
	return &crlfWriter{w: w, buf: make([]byte, 0, 1024)}
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	c.buf = c.buf[:0]
	for _, b := range p {
		if b == '\n' {
			c.buf = append(c.buf, '\r')
		}
		c.buf = append(c.buf, b)
	}
	if _, err := c.w.Write(c.buf); err != nil {
		return 0, err
	}
	return len(p), nil
}
