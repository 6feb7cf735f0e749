package effects

import (
	"context"
	"os/exec"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/welcomewall/internal/domain/arrival"
)

// ToneSettings represents tone dispatcher settings.
type ToneSettings struct {
	Command string   `yaml:"command" mapstructure:"command" default:"ffplay" validate:"required"`
	Args    []string `yaml:"args" mapstructure:"args" default:"[\"-nodisp\",\"-autoexit\",\"-loglevel\",\"quiet\"]"`
	Clip    string   `yaml:"clip" mapstructure:"clip" validate:"required"`
}

// ToneDispatcher plays a fixed short audio clip through an external player.
// Playback always restarts from the beginning: a previous playback still
// running is cut off first.
type ToneDispatcher struct {
	settings *ToneSettings

	mu     sync.Mutex
	cancel context.CancelFunc // cancels the in-flight player process
}

// NewToneDispatcher creates a new tone dispatcher.
func NewToneDispatcher(settings map[string]any) (*ToneDispatcher, error) {
	var s ToneSettings
	if err := mapstructure.Decode(settings, &s); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&s); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(s); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}

	return &ToneDispatcher{settings: &s}, nil
}

// Name returns the dispatcher name.
func (d *ToneDispatcher) Name() string {
	return "tone"
}

// Dispatch restarts the clip. The player runs detached from the caller's
// context; only a newer dispatch or Close cuts it off.
func (d *ToneDispatcher) Dispatch(ctx context.Context, a arrival.Arrival) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}

	runCtx, cancel := context.WithCancel(context.Background())
	args := append(append([]string{}, d.settings.Args...), d.settings.Clip)
	cmd := exec.CommandContext(runCtx, d.settings.Command, args...)

	if err := cmd.Start(); err != nil {
		cancel()
		return errors.Mark(errors.Wrap(err, "failed to start player"), ErrPlaybackBlocked)
	}
	d.cancel = cancel

	go func() {
		if err := cmd.Wait(); err != nil && runCtx.Err() == nil {
			zlog.Debug().Msgf("effects: tone player exited with error: %v", err)
		}
	}()

	return nil
}

// Close cuts off any in-flight playback.
func (d *ToneDispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	return nil
}
