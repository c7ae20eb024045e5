package flyer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/prjemian/flyscan/logger"
)

func TestNewConfigDefaults(t *testing.T) {
	require := require.New(t)

	cfg, err := NewConfig()
	require.NoError(err)

	require.Equal(-0.5, cfg.PreStart())
	require.Equal(-20.0, cfg.StartPosition())
	require.Equal(20.0, cfg.FinishPosition())
	require.Equal(50*time.Millisecond, cfg.PollInterval())
	require.Equal(1, cfg.NumSpins())
	require.Equal(10000, cfg.MaxFrames())
	require.Equal(DefaultStreamName, cfg.StreamName())
	require.Equal(30*time.Second, cfg.CompleteTimeout())
	require.NotNil(cfg.Logger())
}

func TestNewConfigOptions(t *testing.T) {
	require := require.New(t)

	l := logger.NewSlog(logger.ErrorLevel, false)
	cfg, err := NewConfig(
		WithPreStart(-0.2),
		WithScanRange(-2, 2),
		WithPollInterval(10*time.Millisecond),
		WithNumSpins(5),
		WithMaxFrames(500),
		WithStreamName("tomo_stream"),
		WithCompleteTimeout(time.Minute),
		WithLogger(l),
	)
	require.NoError(err)

	require.Equal(-0.2, cfg.PreStart())
	require.Equal(-2.0, cfg.StartPosition())
	require.Equal(2.0, cfg.FinishPosition())
	require.Equal(10*time.Millisecond, cfg.PollInterval())
	require.Equal(5, cfg.NumSpins())
	require.Equal(500, cfg.MaxFrames())
	require.Equal("tomo_stream", cfg.StreamName())
	require.Equal(time.Minute, cfg.CompleteTimeout())
	require.Same(l, cfg.Logger())
}

func TestNewConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		option Option
	}{
		{"empty scan range", WithScanRange(1, 1)},
		{"poll interval too short", WithPollInterval(time.Microsecond)},
		{"poll interval too long", WithPollInterval(2 * time.Second)},
		{"zero spins", WithNumSpins(0)},
		{"negative spins", WithNumSpins(-1)},
		{"zero max frames", WithMaxFrames(0)},
		{"empty stream name", WithStreamName("")},
		{"zero complete timeout", WithCompleteTimeout(0)},
		{"nil logger", WithLogger(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(tt.option)
			require.Error(t, err)
		})
	}
}
