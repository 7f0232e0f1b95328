package lock

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ANSI escape codes.
const (
	altOn   = "\033[?1049h"
	altOff  = "\033[?1049l"
	hideCur = "\033[?25l"
	showCur = "\033[?25h"
	clear   = "\033[2J\033[H"
	bred    = "\033[91m"
	bold    = "\033[1m"
	dim     = "\033[2m"
	rst     = "\033[0m"
)

// TerminalLocker takes over a terminal with a blocking screen until the
// unlock phrase is typed. Any other input is ignored.
type TerminalLocker struct {
	In     io.Reader
	Out    io.Writer
	Phrase string

	once  sync.Once
	lines chan string
}

// Name implements Locker.
func (t *TerminalLocker) Name() string { return "terminal" }

// Available reports whether the locker has a terminal to draw on.
func (t *TerminalLocker) Available() bool {
	return t.In != nil && t.Out != nil
}

func (t *TerminalLocker) phrase() string {
	if t.Phrase == "" {
		return "unlock"
	}
	return t.Phrase
}

// Lock blocks until the phrase is entered, ctx is done, or input ends.
// Calls must not overlap; Dispatcher guarantees this.
func (t *TerminalLocker) Lock(ctx context.Context) error {
	fmt.Fprint(t.Out, altOn+hideCur+clear)
	fmt.Fprintf(t.Out, "\n\n   %s%sLOCKED%s\n\n   %stype %q and press enter%s\n",
		bred, bold, rst, dim, t.phrase(), rst)
	defer fmt.Fprint(t.Out, showCur+altOff)

	resumed := t.lines != nil
	lines := t.readLines()
	if resumed {
		// Discard a line typed while the screen was unlocked.
		select {
		case <-lines:
		default:
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return fmt.Errorf("terminal lock: %w", io.ErrUnexpectedEOF)
			}
			if line == t.phrase() {
				return nil
			}
		}
	}
}

// readLines starts the single reader of In. Lines are handed over one at a
// time so successive locks never race for input.
func (t *TerminalLocker) readLines() <-chan string {
	t.once.Do(func() {
		t.lines = make(chan string)
		go func() {
			defer close(t.lines)
			sc := bufio.NewScanner(t.In)
			for sc.Scan() {
				t.lines <- strings.TrimSpace(sc.Text())
			}
		}()
	})
	return t.lines
}
