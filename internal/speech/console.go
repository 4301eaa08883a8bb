package speech

import (
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/listenupapp/storybook/internal/config"
	"github.com/listenupapp/storybook/internal/logger"
	"github.com/listenupapp/storybook/internal/reader"
)

const minUtterance = 500 * time.Millisecond

// ConsoleSpeaker prints the text instead of voicing it and completes after the
// time a reader at the configured pace would need.
type ConsoleSpeaker struct {
	w     io.Writer
	wpm   int
	clock reader.Clock

	mu      sync.Mutex
	pending reader.Timer
	seq     uint64
}

// NewConsoleSpeaker writes utterances to w. A wpm of zero or less means 160.
func NewConsoleSpeaker(w io.Writer, wpm int) *ConsoleSpeaker {
	if wpm <= 0 {
		wpm = 160
	}
	return &ConsoleSpeaker{w: w, wpm: wpm, clock: reader.SystemClock()}
}

// Duration is how long text takes to read aloud.
func (s *ConsoleSpeaker) Duration(text string) time.Duration {
	words := len(strings.Fields(text))
	d := time.Duration(words) * time.Minute / time.Duration(s.wpm)
	return max(d, minUtterance)
}

// Speak prints text and schedules onEnd. onError is called if the write fails.
func (s *ConsoleSpeaker) Speak(text string, onEnd func(), onError func(error)) {
	s.mu.Lock()
	s.stopLocked()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	if _, err := fmt.Fprintf(s.w, "  ♪ %s\n", text); err != nil {
		onError(fmt.Errorf("write narration: %w", err))
		return
	}

	timer := s.clock.AfterFunc(s.Duration(text), func() {
		s.mu.Lock()
		live := s.seq == seq
		if live {
			s.pending = nil
		}
		s.mu.Unlock()
		if live {
			onEnd()
		}
	})

	s.mu.Lock()
	if s.seq == seq {
		s.pending = timer
	} else {
		timer.Stop()
	}
	s.mu.Unlock()
}

// CancelAll drops the pending utterance.
func (s *ConsoleSpeaker) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *ConsoleSpeaker) stopLocked() {
	s.seq++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

// New picks a backend: the configured TTS command when it is installed,
// otherwise console output on w.
func New(cfg config.SpeechConfig, w io.Writer, log *slog.Logger) reader.Speaker {
	log = logger.OrDiscard(log)

	if cfg.Command != "" {
		if path, err := exec.LookPath(cfg.Command); err == nil {
			log.Info("using speech command", "command", path)
			cfg.Command = path
			return NewCommandSpeaker(cfg, log)
		}
		log.Warn("speech command not found, narrating to console", "command", cfg.Command)
	}

	return NewConsoleSpeaker(w, cfg.WPM)
}
