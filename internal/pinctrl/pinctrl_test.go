package pinctrl

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubRun(t *testing.T, fn func(args ...string) ([]byte, error)) {
	orig := run
	run = fn
	t.Cleanup(func() { run = orig })
}

func TestParseGetAllOutput(t *testing.T) {
	sample := `
 0: ip    pu | hi // ID_SDA/GPIO0 = input
 2: no    pu | -- // GPIO2 = none
 9: ip    pu | hi // GPIO9 = input
20: op dl pn | lo // GPIO20 = output
21: op dh pd | hi // GPIO21 = output
`
	states, err := parseGetOutput(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, states, 5)

	assert.Equal(t, PinState{Pin: 9, Mode: "ip", Pull: "pu", Level: "hi", Comment: "GPIO9 = input"}, states[9])
	assert.Equal(t, "--", states[2].Level)

	ps := states[20]
	assert.Equal(t, "op", ps.Mode)
	assert.Equal(t, "pn", ps.Pull)
	assert.Equal(t, "dl", ps.Drive)
	assert.Equal(t, "lo", ps.Level)

	assert.Equal(t, "dh", states[21].Drive)
}

func TestParseLevelOutput(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"0", false},
		{"1", true},
		{"\n1\n", true},
		{"\n0\n", false},
	}
	for _, tc := range tests {
		result, err := parseLevelOutput(tc.input)
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.expected, result, tc.input)
	}

	_, err := parseLevelOutput("x")
	assert.Error(t, err)
}

func TestReadLevel(t *testing.T) {
	var got []string
	stubRun(t, func(args ...string) ([]byte, error) {
		got = args
		return []byte("1\n"), nil
	})

	level, err := ReadLevel(9)
	require.NoError(t, err)
	assert.True(t, level)
	assert.Equal(t, []string{"lev", "9"}, got)
}

func TestDrive(t *testing.T) {
	var got []string
	stubRun(t, func(args ...string) ([]byte, error) {
		got = args
		return nil, nil
	})

	require.NoError(t, Drive(20, false))
	assert.Equal(t, []string{"set", "20", "op", "pn", "dl"}, got)

	require.NoError(t, Drive(20, true))
	assert.Equal(t, []string{"set", "20", "op", "pn", "dh"}, got)
}

func TestSetPinError(t *testing.T) {
	stubRun(t, func(args ...string) ([]byte, error) {
		return []byte("permission denied\n"), errors.New("exit status 1")
	})

	err := SetPin(20, "op")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestReadPinMissing(t *testing.T) {
	stubRun(t, func(args ...string) ([]byte, error) {
		return []byte(" 9: ip    pu | hi // GPIO9 = input\n"), nil
	})

	ps, err := ReadPin(9)
	require.NoError(t, err)
	assert.Equal(t, "ip", ps.Mode)

	_, err = ReadPin(20)
	assert.Error(t, err)
}
