package flyer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input    string
		expected Command
		wantErr  bool
	}{
		{"taxi", CommandTaxi, false},
		{"fly", CommandFly, false},
		{"return", CommandReturn, false},
		{"Taxi", CommandTaxi, false},
		{"FLY", CommandFly, false},
		{"Return", CommandReturn, false},
		{"spin", 0, true},
		{"Spin", 0, true},
		{"", 0, true},
		{"taxi ", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd, err := ParseCommand(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidCommand)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, cmd)
		})
	}
}

func TestCommandString(t *testing.T) {
	require := require.New(t)

	require.Equal("taxi", CommandTaxi.String())
	require.Equal("fly", CommandFly.String())
	require.Equal("return", CommandReturn.String())
	require.Equal("unknown", Command(99).String())
}
