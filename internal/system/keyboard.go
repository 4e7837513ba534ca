package system

import (
	"bytes"
	"io"
	"log"
	"os"
	"sync/atomic"

	"golang.org/x/term"
)

// KeyWatcher reads single key presses from a terminal in raw mode and
// raises a quit flag on q, Q, Esc or Ctrl-C. The tick loop polls Quit.
type KeyWatcher struct {
	quit    atomic.Bool
	raw     bool
	restore func() error
}

const (
	keyCtrlC = 3
	keyEsc   = 27
)

// WatchTerminal puts stdin in raw mode when it is a terminal. On a
// non-terminal stdin it returns a watcher that never fires.
func WatchTerminal() (*KeyWatcher, error) {
	w := &KeyWatcher{}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return w, nil
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	// Raw mode drops the carriage return the terminal adds after \n
	log.SetOutput(Output(os.Stderr))
	w.restore = func() error {
		log.SetOutput(os.Stderr)
		return term.Restore(fd, state)
	}
	w.raw = true

	go w.watch(os.Stdin)
	return w, nil
}

// NewKeyWatcher watches an arbitrary reader, mainly for tests
func NewKeyWatcher(r io.Reader) *KeyWatcher {
	w := &KeyWatcher{}
	go w.watch(r)
	return w
}

func (w *KeyWatcher) watch(r io.Reader) {
	buf := make([]byte, 16)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			switch b {
			case 'q', 'Q', keyEsc, keyCtrlC:
				w.quit.Store(true)
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func (w *KeyWatcher) Quit() bool {
	return w.quit.Load()
}

// Close restores the terminal mode
func (w *KeyWatcher) Close() error {
	if w.restore != nil {
		return w.restore()
	}
	return nil
}

// Writer returns out, translated to \r\n line endings while the terminal
// is in raw mode.
func (w *KeyWatcher) Writer(out io.Writer) io.Writer {
	if !w.raw {
		return out
	}
	return Output(out)
}

// Output wraps out so every \n is written as \r\n
func Output(out io.Writer) io.Writer {
	return crlfWriter{out}
}

type crlfWriter struct {
	out io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.out.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
