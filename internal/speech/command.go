// Package speech provides text-to-speech backends for the reader.
package speech

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/listenupapp/storybook/internal/config"
	"github.com/listenupapp/storybook/internal/logger"
)

// CommandSpeaker speaks through an external TTS program such as espeak-ng or say.
// At most one utterance plays at a time. CancelAll kills the running process
// and its callbacks are never invoked.
type CommandSpeaker struct {
	command string
	voice   string
	wpm     int
	logger  *slog.Logger

	mu      sync.Mutex
	current *utterance
}

type utterance struct {
	cancel    context.CancelFunc
	cancelled bool
}

// NewCommandSpeaker creates a speaker that runs cfg.Command once per utterance.
func NewCommandSpeaker(cfg config.SpeechConfig, log *slog.Logger) *CommandSpeaker {
	return &CommandSpeaker{
		command: cfg.Command,
		voice:   cfg.Voice,
		wpm:     cfg.WPM,
		logger:  logger.OrDiscard(log),
	}
}

// args builds the argument list. say(1) takes -r for rate, espeak and friends take -s.
// The text follows "--" so dialogue opening with a dash is not parsed as an option.
func (s *CommandSpeaker) args(text string) []string {
	var args []string
	rateFlag := "-s"
	if filepath.Base(s.command) == "say" {
		rateFlag = "-r"
	}
	if s.wpm > 0 {
		args = append(args, rateFlag, strconv.Itoa(s.wpm))
	}
	if s.voice != "" {
		args = append(args, "-v", s.voice)
	}
	return append(args, "--", text)
}

// Speak stops any current utterance and starts a new one.
func (s *CommandSpeaker) Speak(text string, onEnd func(), onError func(error)) {
	ctx, cancel := context.WithCancel(context.Background())
	u := &utterance{cancel: cancel}

	s.mu.Lock()
	s.stopLocked()
	s.current = u
	s.mu.Unlock()

	cmd := exec.CommandContext(ctx, s.command, s.args(text)...) //#nosec G204 -- TTS command is operator configuration
	if err := cmd.Start(); err != nil {
		cancel()
		if s.finish(u) {
			onError(fmt.Errorf("start %s: %w", s.command, err))
		}
		return
	}

	s.logger.Debug("speaking", "command", s.command, "chars", len(text))

	go func() {
		err := cmd.Wait()
		cancel()
		if !s.finish(u) {
			return
		}
		if err != nil {
			onError(fmt.Errorf("%s: %w", s.command, err))
			return
		}
		onEnd()
	}()
}

// CancelAll silences the speaker.
func (s *CommandSpeaker) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *CommandSpeaker) stopLocked() {
	if s.current == nil {
		return
	}
	s.current.cancelled = true
	s.current.cancel()
	s.current = nil
}

// finish clears u as the current utterance and reports whether its callbacks should run.
func (s *CommandSpeaker) finish(u *utterance) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.cancelled {
		return false
	}
	if s.current == u {
		s.current = nil
	}
	return true
}
