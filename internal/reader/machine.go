// Package reader implements page navigation and read-aloud playback for a single book.
//
// A Machine owns the current page index and the play/pause flag, and drives a
// Speaker page by page. All transitions run one at a time on a serial executor,
// so callers on any goroutine (keyboard loop, speech callbacks, timers) observe
// the same ordering a single event loop would give them.
package reader

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/listenupapp/storybook/internal/domain"
)

// DefaultEmptyPageDelay is how long a page with nothing to narrate stays up
// before playback moves on.
const DefaultEmptyPageDelay = 2 * time.Second

// State is a snapshot of the reader.
type State struct {
	PageIndex int  `json:"page_index"`
	PageCount int  `json:"page_count"`
	Playing   bool `json:"playing"`
	Closed    bool `json:"closed"`
}

// HasPages reports whether there is any valid page index.
func (s State) HasPages() bool {
	return s.PageCount > 0
}

// AtFirst reports whether the reader is on the first page.
func (s State) AtFirst() bool {
	return s.PageIndex == 0
}

// AtLast reports whether the reader is on the last page.
func (s State) AtLast() bool {
	return s.PageCount == 0 || s.PageIndex == s.PageCount-1
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock replaces the clock used for the empty-page delay.
func WithClock(c Clock) Option {
	return func(m *Machine) {
		m.clock = c
	}
}

// WithEmptyPageDelay overrides DefaultEmptyPageDelay.
func WithEmptyPageDelay(d time.Duration) Option {
	return func(m *Machine) {
		m.emptyPageDelay = d
	}
}

// WithLogger sets the logger used for speech failures.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithObserver registers a callback invoked with the new state after every transition.
// It runs on the executor; calls it makes back into the Machine are queued, not nested.
func WithObserver(fn func(State)) Option {
	return func(m *Machine) {
		m.observer = fn
	}
}

// Machine is the reader state machine for one book.
type Machine struct {
	book           *domain.Book
	speaker        Speaker
	clock          Clock
	emptyPageDelay time.Duration
	logger         *slog.Logger
	observer       func(State)

	// Serial executor.
	execMu   sync.Mutex
	queue    []func()
	draining bool

	// Snapshot readable from any goroutine; written only by the executor.
	stateMu sync.RWMutex
	state   State

	closing atomic.Bool

	// Executor-only fields.
	generation uint64
	pending    Timer
}

// New creates a reader positioned on the first page, paused.
// Any narration left over from a previous reader is cancelled.
func New(book *domain.Book, speaker Speaker, opts ...Option) *Machine {
	m := &Machine{
		book:           book,
		speaker:        speaker,
		clock:          SystemClock(),
		emptyPageDelay: DefaultEmptyPageDelay,
		logger:         slog.New(slog.DiscardHandler),
		state:          State{PageCount: book.PageCount()},
	}
	for _, opt := range opts {
		opt(m)
	}

	m.speaker.CancelAll()
	return m
}

// Book returns the book being read.
func (m *Machine) Book() *domain.Book {
	return m.book
}

// State returns the current state.
func (m *Machine) State() State {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state
}

// PageCount returns the number of pages in the book.
func (m *Machine) PageCount() int {
	return m.State().PageCount
}

// CurrentPage returns the page on display, or nil for a book without pages.
func (m *Machine) CurrentPage() *domain.Page {
	s := m.State()
	if !s.HasPages() {
		return nil
	}
	return &m.book.Pages[s.PageIndex]
}

// Next moves to the following page. No-op on the last page.
func (m *Machine) Next() {
	m.do(func() { m.step(+1) })
}

// Prev moves to the preceding page. No-op on the first page.
func (m *Machine) Prev() {
	m.do(func() { m.step(-1) })
}

// TogglePlay starts narration when paused and stops it when playing.
func (m *Machine) TogglePlay() {
	m.do(func() {
		if m.state.Playing {
			m.pause()
		} else {
			m.play()
		}
	})
}

// Play starts narration of the current page. No-op when already playing.
func (m *Machine) Play() {
	m.do(m.play)
}

// Pause stops narration immediately. No-op when already paused.
func (m *Machine) Pause() {
	m.do(m.pause)
}

// HandleKey applies a keyboard command. It reports whether the key is bound.
func (m *Machine) HandleKey(k Key) bool {
	if m.closing.Load() {
		return false
	}
	switch k {
	case KeyRight:
		m.Next()
	case KeyLeft:
		m.Prev()
	default:
		return false
	}
	return true
}

// Close tears the reader down. Speech stops at once and nothing scheduled
// earlier can act afterwards. Safe to call more than once.
func (m *Machine) Close() {
	if m.closing.Swap(true) {
		return
	}
	m.speaker.CancelAll()
	m.do(func() {
		m.cancel()
		m.update(func(s *State) {
			s.Playing = false
			s.Closed = true
		})
		m.notify()
	})
}

// do runs fn on the serial executor. If another call is already draining the
// queue, fn is appended and runs once the current transition returns.
func (m *Machine) do(fn func()) {
	m.execMu.Lock()
	m.queue = append(m.queue, fn)
	if m.draining {
		m.execMu.Unlock()
		return
	}
	m.draining = true

	for len(m.queue) > 0 {
		next := m.queue[0]
		m.queue[0] = nil
		m.queue = m.queue[1:]

		m.execMu.Unlock()
		next()
		m.execMu.Lock()
	}

	m.draining = false
	m.execMu.Unlock()
}

// The methods below run only on the executor.

func (m *Machine) active() bool {
	return !m.state.Closed && !m.closing.Load()
}

func (m *Machine) update(fn func(*State)) {
	m.stateMu.Lock()
	fn(&m.state)
	m.stateMu.Unlock()
}

func (m *Machine) notify() {
	if m.observer != nil {
		m.observer(m.State())
	}
}

func (m *Machine) step(delta int) {
	if !m.active() {
		return
	}
	target := m.state.PageIndex + delta
	if target < 0 || target >= m.state.PageCount {
		return
	}
	m.goTo(target)
}

// goTo changes the page and, while playing, restarts narration for it.
func (m *Machine) goTo(index int) {
	m.update(func(s *State) { s.PageIndex = index })
	if m.state.Playing {
		m.narrate()
	}
	m.notify()
}

func (m *Machine) play() {
	if !m.active() || m.state.Playing || !m.state.HasPages() {
		return
	}
	m.update(func(s *State) { s.Playing = true })
	m.narrate()
	m.notify()
}

func (m *Machine) pause() {
	if !m.active() || !m.state.Playing {
		return
	}
	m.update(func(s *State) { s.Playing = false })
	m.cancel()
	m.notify()
}

// cancel invalidates every outstanding callback and silences the speaker.
func (m *Machine) cancel() {
	m.generation++
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
	m.speaker.CancelAll()
}

// narrate is the single entry point for speaking the current page.
// Cancellation always comes first, so at most one narration is ever in flight.
func (m *Machine) narrate() {
	m.cancel()
	if !m.state.Playing || !m.active() {
		return
	}

	gen := m.generation
	page := m.book.Pages[m.state.PageIndex]
	text := page.NarrationText()

	if text == "" {
		m.pending = m.clock.AfterFunc(m.emptyPageDelay, func() {
			m.do(func() { m.finished(gen) })
		})
		return
	}

	m.speaker.Speak(text,
		func() { m.do(func() { m.finished(gen) }) },
		func(err error) { m.do(func() { m.failed(gen, err) }) },
	)
}

// current reports whether a callback issued for gen still applies.
// Playing is re-read here, at fire time, not captured when the callback was issued.
func (m *Machine) current(gen uint64) bool {
	return gen == m.generation && m.state.Playing && m.active()
}

// finished handles normal completion of the page: advance, or stop on the last page.
func (m *Machine) finished(gen uint64) {
	if !m.current(gen) {
		return
	}
	m.pending = nil

	if m.state.PageIndex < m.state.PageCount-1 {
		m.goTo(m.state.PageIndex + 1)
		return
	}

	m.update(func(s *State) { s.Playing = false })
	m.generation++
	m.notify()
}

// failed stops playback after a speech error. There is no retry.
func (m *Machine) failed(gen uint64, err error) {
	if !m.current(gen) {
		return
	}
	m.logger.Warn("narration failed, stopping playback",
		"book_id", m.book.ID,
		"page", m.state.PageIndex,
		"error", err,
	)
	m.update(func(s *State) { s.Playing = false })
	m.cancel()
	m.notify()
}
