package effects

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/welcomewall/internal/domain/arrival"
	"github.com/osa030/welcomewall/internal/infra/config"
)

type recordingSink struct {
	plans []BurstPlan
}

func (s *recordingSink) EmitBurst(p BurstPlan) {
	s.plans = append(s.plans, p)
}

func TestBurstDispatcher_PlanShape(t *testing.T) {
	sink := &recordingSink{}
	d, err := NewBurstDispatcher(sink, map[string]any{
		"particle_count": 10,
		"origin_count":   2,
		"colors":         []string{"#ffffff"},
	})
	require.NoError(t, err)

	a := arrival.Arrival{ID: "u1", DisplayName: "Sam"}
	require.NoError(t, d.Dispatch(context.Background(), a))
	require.NoError(t, d.Dispatch(context.Background(), a))

	require.Len(t, sink.plans, 2, "bursts overlap freely, every dispatch emits")
	for _, plan := range sink.plans {
		assert.NotEmpty(t, plan.ID)
		assert.Equal(t, 10, plan.ParticleCount)
		assert.Equal(t, []string{"#ffffff"}, plan.Colors)
		require.Len(t, plan.Origins, 2)
		for _, o := range plan.Origins {
			assert.GreaterOrEqual(t, o[0], 0.0)
			assert.Less(t, o[0], 1.0)
			assert.GreaterOrEqual(t, o[1], 0.0)
			assert.Less(t, o[1], 1.0)
		}
	}
	assert.NotEqual(t, sink.plans[0].ID, sink.plans[1].ID)
}

func TestBurstDispatcher_Defaults(t *testing.T) {
	d, err := NewBurstDispatcher(&recordingSink{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 24, d.settings.ParticleCount)
	assert.Equal(t, 3, d.settings.OriginCount)
	assert.NotEmpty(t, d.settings.Colors)
}

func TestBurstDispatcher_InvalidSettings(t *testing.T) {
	_, err := NewBurstDispatcher(&recordingSink{}, map[string]any{"particle_count": 0})
	assert.Error(t, err)

	_, err = NewBurstDispatcher(nil, nil)
	assert.Error(t, err)
}

func TestToneDispatcher_RequiresClip(t *testing.T) {
	_, err := NewToneDispatcher(map[string]any{"command": "ffplay"})
	assert.Error(t, err)

	d, err := NewToneDispatcher(map[string]any{"clip": "/srv/av/chime.ogg"})
	require.NoError(t, err)
	assert.Equal(t, "tone", d.Name())
	assert.Equal(t, "ffplay", d.settings.Command)
}

func TestSpeechDispatcher_Phrase(t *testing.T) {
	d, err := NewSpeechDispatcher(nil)
	require.NoError(t, err)
	assert.Equal(t, "Welcome, Sam!", d.Phrase(arrival.Arrival{DisplayName: "Sam"}))

	d, err = NewSpeechDispatcher(map[string]any{"template": "%s just joined"})
	require.NoError(t, err)
	assert.Equal(t, "Lee just joined", d.Phrase(arrival.Arrival{DisplayName: "Lee"}))
}

func TestSpeechDispatcher_TemplateMustHaveVerb(t *testing.T) {
	_, err := NewSpeechDispatcher(map[string]any{"template": "no verb here"})
	assert.Error(t, err)
}

func TestNewSetFromConfig(t *testing.T) {
	cfg := &config.Config{
		Effects: map[string]config.EffectConfig{
			"burst": {Enabled: true},
			"tone":  {Enabled: false},
		},
	}

	set, err := NewSetFromConfig(cfg, &recordingSink{})
	require.NoError(t, err)

	// Enabled effect gets a real dispatcher, the rest no-ops.
	_, isBurst := set.Burst.(*BurstDispatcher)
	assert.True(t, isBurst)
	_, isNoop := set.Tone.(*noopDispatcher)
	assert.True(t, isNoop)

	// No-ops dispatch without error and without side effects.
	assert.NoError(t, set.Tone.Dispatch(context.Background(), arrival.Arrival{}))
	assert.NoError(t, set.Speech.Dispatch(context.Background(), arrival.Arrival{}))
	set.Close()
}
