package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/listenupapp/storybook/internal/domain"
	"github.com/listenupapp/storybook/internal/reader"
	"github.com/listenupapp/storybook/internal/speech"
)

const (
	keyCtrlC = 0x03
	keyCtrlD = 0x04
	keyEsc   = 0x1b
)

func newReadCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <book-id>",
		Short: "Read a book in the terminal",
		Long: "Shows one page at a time. Left and right arrows turn pages, space starts " +
			"or pauses reading aloud, q quits.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			return ctx.withLibrary(cmd, func(lib *library) error {
				book, found, err := lib.books.Lookup(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !found {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Book not found: %s\n", args[0])
					return nil
				}

				in := cmd.InOrStdin()
				out := &lockedWriter{w: cmd.OutOrStdout()}

				if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
					restore, err := rawMode(f)
					if err != nil {
						return err
					}
					defer restore()
					out.crlf = true
				}

				speaker := speech.New(cfg.Speech, out, lib.logger)
				return runReader(in, out, book, speaker, cfg.Reader.EmptyPageDelay, lib.logger)
			})
		},
	}

	return cmd
}

func rawMode(f *os.File) (func(), error) {
	fd := int(f.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("enter raw mode: %w", err)
	}
	return func() { _ = term.Restore(fd, state) }, nil
}

// runReader drives a reader from keystrokes on in until q, Ctrl-C or end of input.
func runReader(in io.Reader, out io.Writer, book *domain.Book, speaker reader.Speaker, emptyPageDelay time.Duration, log *slog.Logger) error {
	view := &pageView{out: out, book: book, lastPage: -1}

	m := reader.New(book, speaker,
		reader.WithEmptyPageDelay(emptyPageDelay),
		reader.WithLogger(log),
		reader.WithObserver(view.render),
	)
	defer m.Close()

	fmt.Fprintf(out, "%s\n%s\n", book.Title, strings.Repeat("=", len([]rune(book.Title))))
	fmt.Fprintln(out, "←/→ turn pages · space read aloud · q quit")
	view.render(m.State())

	buf := make([]byte, 32)
	for {
		n, err := in.Read(buf)
		for _, key := range splitKeys(buf[:n]) {
			switch {
			case isQuit(key):
				return nil
			case len(key) == 1 && key[0] == ' ':
				m.TogglePlay()
			default:
				m.HandleKey(reader.ParseKey(key))
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read keyboard: %w", err)
		}
	}
}

// splitKeys breaks a read into keystrokes. Arrow keys arrive as three-byte
// escape sequences; everything else is one byte per key.
func splitKeys(b []byte) [][]byte {
	var keys [][]byte
	for len(b) > 0 {
		n := 1
		if b[0] == keyEsc && len(b) >= 3 && (b[1] == '[' || b[1] == 'O') {
			n = 3
		}
		keys = append(keys, b[:n])
		b = b[n:]
	}
	return keys
}

func isQuit(key []byte) bool {
	if len(key) != 1 {
		return false
	}
	switch key[0] {
	case 'q', 'Q', keyCtrlC, keyCtrlD:
		return true
	}
	return false
}

// pageView prints a page when it changes and a status line when only playback does.
// It runs on the reader's executor, so calls never overlap.
type pageView struct {
	out      io.Writer
	book     *domain.Book
	lastPage int
}

func (v *pageView) render(s reader.State) {
	if s.Closed {
		return
	}
	if !s.HasPages() {
		fmt.Fprintln(v.out, "(this book has no pages)")
		return
	}

	status := "paused"
	if s.Playing {
		status = "reading"
	}

	if s.PageIndex == v.lastPage {
		fmt.Fprintf(v.out, "[%s]\n", status)
		return
	}
	v.lastPage = s.PageIndex

	page := v.book.Pages[s.PageIndex]
	fmt.Fprintf(v.out, "\n-- page %d of %d [%s] --\n", s.PageIndex+1, s.PageCount, status)
	if content := strings.TrimSpace(page.Content); content != "" {
		fmt.Fprintln(v.out, content)
	}
	if page.HasImage() {
		fmt.Fprintf(v.out, "[picture: %s]\n", describeImage(page.Image))
		if caption := strings.TrimSpace(page.Caption); caption != "" {
			fmt.Fprintf(v.out, "  %s\n", caption)
		}
	}
}

func describeImage(ref string) string {
	if strings.HasPrefix(ref, "data:") {
		if mime, _, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ";"); ok {
			return "embedded " + mime
		}
		return "embedded image"
	}
	return ref
}

// lockedWriter serializes writes from the reader and the narrator, translating
// newlines for a terminal in raw mode.
type lockedWriter struct {
	mu   sync.Mutex
	w    io.Writer
	crlf bool
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.crlf {
		return l.w.Write(p)
	}
	if _, err := l.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
