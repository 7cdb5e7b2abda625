package ui

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_AppliesOptions(t *testing.T) {
	buf := &bytes.Buffer{}

	cfg := NewConfig(buf, WithForcePlain(true), WithNoColor(true), WithQuiet(true))

	assert.Equal(t, buf, cfg.Output)
	assert.True(t, cfg.ForcePlain)
	assert.True(t, cfg.NoColor)
	assert.True(t, cfg.Quiet)
}

func TestNewRenderer_NonTTYIsPlain(t *testing.T) {
	// Given: output that is not a terminal
	r := NewRenderer(NewConfig(&bytes.Buffer{}))

	// Then: the plain renderer is chosen
	_, ok := r.(*PlainRenderer)
	assert.True(t, ok)
}

func TestNewTUIRenderer_RejectsNonTTY(t *testing.T) {
	r, err := NewTUIRenderer(NewConfig(&bytes.Buffer{}))

	assert.Error(t, err)
	assert.Nil(t, r)
}

func TestIsTTY_NonFileWriter(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
	assert.False(t, IsTTY(nil))
	assert.False(t, ColorEnabled(&bytes.Buffer{}, false))
}

func TestTerminalWidth_Fallback(t *testing.T) {
	assert.Equal(t, 80, TerminalWidth(&bytes.Buffer{}, 80))
}

func TestDetectNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.True(t, DetectNoColor())
}

func TestDetectCI(t *testing.T) {
	t.Setenv("CI", "true")
	assert.True(t, DetectCI())
}

func TestPlainRenderer_WritesOneLinePerProbe(t *testing.T) {
	// Given: a plain renderer on a buffer
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf))
	require.NoError(t, r.Start(context.Background(), 2))

	// When: two probes finish
	r.ProbeStarted(ProbeEvent{ID: "node.installed"})
	r.ProbeFinished(ProbeEvent{ID: "node.installed", Severity: "pass", Elapsed: 120 * time.Millisecond})
	r.ProbeFinished(ProbeEvent{ID: "docker.daemon", Severity: "critical", Elapsed: 2 * time.Second})
	r.Complete(RunSummary{Total: 2, Duration: 2100 * time.Millisecond})
	require.NoError(t, r.Stop())

	// Then: each finish is one line, with a header and footer
	assert.Equal(t,
		"Running 2 probe(s)...\n"+
			"[1/2] PASS node.installed (120ms)\n"+
			"[2/2] FAIL docker.daemon (2s)\n"+
			"Completed 2 probe(s) in 2.1s\n",
		buf.String())
}

func TestPlainRenderer_Cancelled(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf))
	require.NoError(t, r.Start(context.Background(), 5))

	r.Complete(RunSummary{Total: 5, Skipped: 3, Duration: time.Second, Cancelled: true})

	assert.Contains(t, buf.String(), "Cancelled after 1s: 3 of 5 probe(s) not run")
}

func TestPlainRenderer_Quiet(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf, WithQuiet(true)))
	require.NoError(t, r.Start(context.Background(), 1))

	r.ProbeFinished(ProbeEvent{ID: "a", Severity: "pass"})
	r.Complete(RunSummary{Total: 1})

	assert.Empty(t, buf.String())
}

func TestStyles_ForSeverity(t *testing.T) {
	s := NoColorStyles()

	tests := map[string]string{"pass": "PASS", "warning": "WARN", "critical": "FAIL", "": "????"}
	for sev, want := range tests {
		badge, style := s.ForSeverity(sev)
		assert.Equal(t, want, badge)
		assert.Equal(t, want, style.Render(badge))
	}
}

func TestGetStyles(t *testing.T) {
	plain := GetStyles(true)
	assert.Equal(t, "text", plain.Critical.Render("text"))

	colored := GetStyles(false)
	assert.True(t, colored.Critical.GetBold())
}
