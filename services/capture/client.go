package capture

import (
	"bufio"
	"errors"
	"io"

	"flashdump-go/errcode"
	"flashdump-go/x/fmtx"
)

// Client drives a flash console over a byte stream.
type Client struct {
	w io.Writer
	r *bufio.Reader

	// Progress, when set, is called after every DATA line of a dump.
	Progress func(Result)
}

func NewClient(rw io.ReadWriter) *Client {
	return &Client{w: rw, r: bufio.NewReaderSize(rw, 4096)}
}

// Send writes one command terminated by CR.
func (c *Client) Send(cmd string) error {
	_, err := io.WriteString(c.w, cmd+"\r")
	return errcode.Wrap(errcode.Transport, "send", err)
}

func (c *Client) readLine() (string, error) {
	line, err := c.r.ReadString('\n')
	if err == nil {
		return line, nil
	}
	if line != "" && errors.Is(err, io.EOF) {
		return line, nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrNoProgress) {
		return "", &errcode.E{C: errcode.Timeout, Op: "read", Err: err}
	}
	return "", errcode.Wrap(errcode.Transport, "read", err)
}

// Identify runs `id` and parses the answer.
func (c *Client) Identify() (Identity, error) {
	if err := c.Send("id"); err != nil {
		return Identity{}, err
	}
	var lines []string
	for {
		raw, err := c.readLine()
		if err != nil {
			return Identity{}, err
		}
		line := StripPrompt(raw)
		lines = append(lines, line)
		if identityDone(line) {
			return ParseIdentity(lines)
		}
	}
}

// Dump runs `dump start n`, writes the image to w and returns the decoded
// result. The error is errcode.Truncated when the device delivered less than
// it announced.
func (c *Client) Dump(start, n uint32, w io.Writer) (Result, error) {
	if err := c.Send(fmtx.Sprintf("dump %x %x", start, n)); err != nil {
		return Result{}, err
	}
	dec := NewDumpDecoder(w)
	for {
		raw, err := c.readLine()
		if err != nil {
			return dec.Result(), err
		}
		done, err := dec.Feed(raw)
		if err != nil {
			return dec.Result(), err
		}
		if c.Progress != nil {
			c.Progress(dec.Result())
		}
		if done {
			return dec.Result(), dec.Finish()
		}
	}
}
