package effects

import (
	"context"
	"math/rand"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"github.com/osa030/welcomewall/internal/domain/arrival"
)

// BurstPlan describes one particle burst for the presentation layer.
// Origins are normalized to the unit square; the dashboard scales them.
type BurstPlan struct {
	ID            string       `json:"id"`
	Origins       [][2]float64 `json:"origins"`
	Colors        []string     `json:"colors"`
	ParticleCount int          `json:"particle_count"`
}

// BurstSink receives burst plans. Bursts overlap freely: a sink must accept
// a new plan while a previous burst is still finishing.
type BurstSink interface {
	EmitBurst(BurstPlan)
}

// BurstSettings represents burst dispatcher settings.
type BurstSettings struct {
	ParticleCount int      `yaml:"particle_count" mapstructure:"particle_count" default:"24" validate:"gte=1,lte=500"`
	OriginCount   int      `yaml:"origin_count" mapstructure:"origin_count" default:"3" validate:"gte=1,lte=20"`
	Colors        []string `yaml:"colors" mapstructure:"colors" default:"[\"#f94144\",\"#f3722c\",\"#f9c74f\",\"#90be6d\",\"#577590\"]" validate:"min=1"`
}

// BurstDispatcher fires a short, self-terminating particle animation by
// handing a randomized plan to the sink. Not affected by mute.
type BurstDispatcher struct {
	sink     BurstSink
	settings *BurstSettings
	rng      *rand.Rand
}

// NewBurstDispatcher creates a new burst dispatcher.
func NewBurstDispatcher(sink BurstSink, settings map[string]any) (*BurstDispatcher, error) {
	if sink == nil {
		return nil, errors.New("burst sink is required")
	}

	var s BurstSettings
	if err := mapstructure.Decode(settings, &s); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&s); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(s); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}

	return &BurstDispatcher{
		sink:     sink,
		settings: &s,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Name returns the dispatcher name.
func (d *BurstDispatcher) Name() string {
	return "burst"
}

// Dispatch emits a randomized burst plan for the arrival.
func (d *BurstDispatcher) Dispatch(ctx context.Context, a arrival.Arrival) error {
	plan := BurstPlan{
		ID:            uuid.New().String(),
		Origins:       make([][2]float64, d.settings.OriginCount),
		Colors:        d.settings.Colors,
		ParticleCount: d.settings.ParticleCount,
	}
	for i := range plan.Origins {
		plan.Origins[i] = [2]float64{d.rng.Float64(), d.rng.Float64()}
	}

	d.sink.EmitBurst(plan)
	return nil
}

// Close implements Dispatcher. Bursts are fire-and-forget.
func (d *BurstDispatcher) Close() error {
	return nil
}
