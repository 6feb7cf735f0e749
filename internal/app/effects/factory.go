package effects

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/welcomewall/internal/infra/config"
)

// NewSetFromConfig builds the dispatcher set from configuration.
// Disabled effects get a no-op dispatcher so the controller never has to
// nil-check.
func NewSetFromConfig(cfg *config.Config, sink BurstSink) (*Set, error) {
	set := &Set{
		Burst:  &noopDispatcher{name: "burst"},
		Tone:   &noopDispatcher{name: "tone"},
		Speech: &noopDispatcher{name: "speech"},
	}

	if cfg.IsEffectEnabled("burst") {
		d, err := NewBurstDispatcher(sink, cfg.EffectSettings("burst"))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create burst dispatcher")
		}
		set.Burst = d
		zlog.Info().Msg("registered effect dispatcher: burst")
	}

	if cfg.IsEffectEnabled("tone") {
		d, err := NewToneDispatcher(cfg.EffectSettings("tone"))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create tone dispatcher")
		}
		set.Tone = d
		zlog.Info().Msg("registered effect dispatcher: tone")
	}

	if cfg.IsEffectEnabled("speech") {
		d, err := NewSpeechDispatcher(cfg.EffectSettings("speech"))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create speech dispatcher")
		}
		set.Speech = d
		zlog.Info().Msg("registered effect dispatcher: speech")
	}

	return set, nil
}
