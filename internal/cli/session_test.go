package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/waypoint/internal/config"
	"github.com/aretw0/waypoint/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() *config.Config {
	cfg := config.Default()
	cfg.Playback.BaseInterval = time.Millisecond
	return cfg
}

func TestParseKeys(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Command
	}{
		{"letters", "np b", []Command{CmdForward, CmdBackward, CmdToggle, CmdRebuild}},
		{"arrows", "\x1b[C\x1b[D\x1b[A\x1b[B", []Command{CmdForward, CmdBackward, CmdFaster, CmdSlower}},
		{"speed", "+-=_", []Command{CmdFaster, CmdSlower, CmdFaster, CmdSlower}},
		{"quit", "x\x03q", []Command{CmdQuit, CmdQuit}},
		{"unknown escape", "\x1b[Zn", []Command{CmdForward}},
		{"truncated escape", "\x1b[", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseKeys([]byte(tt.in)))
		})
	}
}

func TestRunSession_Autoplay(t *testing.T) {
	var out bytes.Buffer
	err := RunSession(context.Background(), RunOptions{
		Config:   fastConfig(),
		Autoplay: true,
		Plain:    true,
		Out:      &out,
		Logger:   logging.NewNop(),
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "1/70")
	assert.Contains(t, text, "70/70")
	assert.Contains(t, text, "complete")
	assert.Contains(t, text, ">>> Finished after 70 steps.")
}

func TestRunSession_AutoplayCancelled(t *testing.T) {
	cfg := config.Default()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := RunSession(ctx, RunOptions{
		Config:   cfg,
		Autoplay: true,
		Plain:    true,
		Quiet:    true,
		Out:      &out,
		Logger:   logging.NewNop(),
	})
	require.NoError(t, err)
	assert.NotContains(t, out.String(), "Finished")
}

func TestRunSession_Keys(t *testing.T) {
	var out bytes.Buffer
	err := RunSession(context.Background(), RunOptions{
		Config: config.Default(),
		Plain:  true,
		Quiet:  true,
		In:     strings.NewReader("nnnp+q"),
		Out:    &out,
		Logger: logging.NewNop(),
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "4/70  paused  1s")
	assert.NotContains(t, text, "5/70")
	assert.NotContains(t, text, ">>>")
}

func TestRunSession_EndOfInput(t *testing.T) {
	var out bytes.Buffer
	err := RunSession(context.Background(), RunOptions{
		Config: config.Default(),
		Plain:  true,
		In:     strings.NewReader("n"),
		Out:    &out,
		Logger: logging.NewNop(),
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "2/70")
	assert.Contains(t, out.String(), keyHelp)
}

func TestRunSession_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Start = 9

	err := RunSession(context.Background(), RunOptions{
		Config: cfg,
		Quiet:  true,
		In:     strings.NewReader(""),
		Out:    &bytes.Buffer{},
		Logger: logging.NewNop(),
	})
	assert.Error(t, err)
}

func TestCRLFWriter(t *testing.T) {
	var buf bytes.Buffer
	n, err := crlfWriter{w: &buf}.Write([]byte("a\nb\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "a\r\nb\r\n", buf.String())
}
