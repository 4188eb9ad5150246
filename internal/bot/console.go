// ABOUTME: Console transport reading chat messages line by line.
// ABOUTME: Useful for local testing of commands without a chat service.
package bot

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// ConsoleTransport reads one message per line from In and writes replies to Out.
type ConsoleTransport struct {
	in  io.Reader
	out io.Writer
}

// NewConsoleTransport creates a console transport.
func NewConsoleTransport(in io.Reader, out io.Writer) *ConsoleTransport {
	return &ConsoleTransport{in: in, out: out}
}

// Name implements Transport.
func (t *ConsoleTransport) Name() string {
	return "console"
}

// Run implements Transport. It returns when input ends or ctx is cancelled.
func (t *ConsoleTransport) Run(ctx context.Context, h Handler) error {
	lines := make(chan string)
	errCh := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(t.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errCh <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errCh:
					return err
				default:
					return nil
				}
			}
			reply := h.Handle(ctx, line)
			if reply == nil {
				continue
			}
			if _, err := fmt.Fprintf(t.out, "%s\n\n", reply.Text()); err != nil {
				return err
			}
		}
	}
}
