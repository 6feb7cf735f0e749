package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid config",
			config: Config{
				Server: ServerConfig{Addr: ":8080"},
				Feed: FeedConfig{
					URL:            "http://localhost:9000/api/arrivals",
					PollIntervalMs: 5000,
				},
				Announce: AnnounceConfig{
					DisplayDurationMs: 7000,
					GapMs:             1500,
					SpeechDelayMs:     600,
				},
			},
			wantErr: false,
		},
		{
			name: "missing feed url",
			config: Config{
				Feed: FeedConfig{PollIntervalMs: 5000},
			},
			wantErr: true,
			errMsg:  "URL",
		},
		{
			name: "poll interval too small",
			config: Config{
				Feed: FeedConfig{
					URL:            "http://localhost:9000/api/arrivals",
					PollIntervalMs: 10,
				},
			},
			wantErr: true,
			errMsg:  "PollIntervalMs",
		},
		{
			name: "negative gap",
			config: Config{
				Feed: FeedConfig{
					URL:            "http://localhost:9000/api/arrivals",
					PollIntervalMs: 5000,
				},
				Announce: AnnounceConfig{GapMs: -1},
			},
			wantErr: true,
			errMsg:  "GapMs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_DefaultsAndDurations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	content := `
feed:
  url: "http://localhost:9000/api/arrivals"
effects:
  burst:
    enabled: true
    settings:
      particle_count: 12
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// Defaults fill in everything the file omits.
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5000, cfg.Feed.PollIntervalMs)
	assert.Equal(t, 7000, cfg.Announce.DisplayDurationMs)
	assert.Equal(t, 1500, cfg.Announce.GapMs)
	assert.Equal(t, 600, cfg.Announce.SpeechDelayMs)
	assert.False(t, cfg.Announce.StartMuted)

	assert.Equal(t, 5*time.Second, cfg.PollInterval())
	assert.Equal(t, 7*time.Second, cfg.DisplayDuration())
	assert.Equal(t, 1500*time.Millisecond, cfg.Gap())
	assert.Equal(t, 600*time.Millisecond, cfg.SpeechDelay())

	assert.True(t, cfg.IsEffectEnabled("burst"))
	assert.False(t, cfg.IsEffectEnabled("tone"))
	assert.Equal(t, 12, cfg.EffectSettings("burst")["particle_count"])
	assert.Nil(t, cfg.EffectSettings("speech"))
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	content := `
feed:
  url: "http://localhost:9000/api/arrivals"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("WELCOMEWALL_FEED_URL", "http://feed.example.com/api/arrivals")
	t.Setenv("WELCOMEWALL_ADDR", ":9090")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://feed.example.com/api/arrivals", cfg.Feed.URL)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
