package effects

import (
	"context"
	"fmt"
	"os/exec"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/welcomewall/internal/domain/arrival"
)

// SpeechSettings represents speech dispatcher settings.
// Template must contain exactly one %s verb for the display name.
type SpeechSettings struct {
	Command  string   `yaml:"command" mapstructure:"command" default:"espeak" validate:"required"`
	Args     []string `yaml:"args" mapstructure:"args"`
	Template string   `yaml:"template" mapstructure:"template" default:"Welcome, %s!" validate:"required,contains=%s"`
}

// SpeechDispatcher speaks a templated phrase through an external TTS command.
// Exactly one utterance may be pending or speaking at a time, process-wide:
// a new dispatch cancels the previous utterance first.
type SpeechDispatcher struct {
	settings *SpeechSettings

	mu     sync.Mutex
	cancel context.CancelFunc // cancels the in-flight utterance
}

// NewSpeechDispatcher creates a new speech dispatcher.
func NewSpeechDispatcher(settings map[string]any) (*SpeechDispatcher, error) {
	var s SpeechSettings
	if err := mapstructure.Decode(settings, &s); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&s); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(s); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}

	return &SpeechDispatcher{settings: &s}, nil
}

// Name returns the dispatcher name.
func (d *SpeechDispatcher) Name() string {
	return "speech"
}

// Phrase renders the spoken phrase for an arrival.
func (d *SpeechDispatcher) Phrase(a arrival.Arrival) string {
	return fmt.Sprintf(d.settings.Template, a.DisplayName)
}

// Dispatch cancels any in-flight utterance and speaks the arrival's phrase.
func (d *SpeechDispatcher) Dispatch(ctx context.Context, a arrival.Arrival) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}

	runCtx, cancel := context.WithCancel(context.Background())
	args := append(append([]string{}, d.settings.Args...), d.Phrase(a))
	cmd := exec.CommandContext(runCtx, d.settings.Command, args...)

	if err := cmd.Start(); err != nil {
		cancel()
		return errors.Mark(errors.Wrap(err, "failed to start speech command"), ErrSpeechUnavailable)
	}
	d.cancel = cancel

	go func() {
		if err := cmd.Wait(); err != nil && runCtx.Err() == nil {
			zlog.Debug().Msgf("effects: speech command exited with error: %v", err)
		}
	}()

	return nil
}

// Close cancels any in-flight utterance.
func (d *SpeechDispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	return nil
}
