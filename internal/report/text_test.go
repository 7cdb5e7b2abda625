package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleText = `envcheck preflight report
Generated: 2026-10-15T08:30:00Z

Host Operating System
  [PASS] os.supported      Windows 10 2004 or later - 10.0.22631
  [PASS] os.recommended    Windows 11 - 10.0.22631

Container Runtime
  [PASS] docker.installed  Docker CLI installed - 24.0.7
  [FAIL] docker.daemon     Docker daemon running - docker exited with status 1
         Fix: Start Docker Desktop

Cloud CLI
  [WARN] az.authenticated  Azure CLI signed in - az exited with status 1
         Fix: Run az login

Summary: 5 check(s), 3 passed, 1 warning(s), 1 critical
Status: FAILED

1 critical failure(s):
  - docker.daemon: docker exited with status 1

1 warning(s):
  - az.authenticated: az exited with status 1
`

func TestRenderText_Layout(t *testing.T) {
	var buf bytes.Buffer

	err := RenderText(&buf, Aggregate(sampleResults(), generatedAt), PlainText())

	require.NoError(t, err)
	assert.Equal(t, sampleText, buf.String())
}

func TestRenderText_IsDeterministic(t *testing.T) {
	// Given: the same results aggregated twice at different times
	a := Aggregate(sampleResults(), generatedAt)
	b := Aggregate(sampleResults(), generatedAt.Add(time.Hour))

	var first, again, later bytes.Buffer
	require.NoError(t, RenderText(&first, a, PlainText()))
	require.NoError(t, RenderText(&again, a, PlainText()))
	require.NoError(t, RenderText(&later, b, PlainText()))

	// Then: identical reports are byte-identical
	assert.Equal(t, first.Bytes(), again.Bytes())

	// And: the timestamp only changes the header line
	firstLines := strings.Split(first.String(), "\n")
	laterLines := strings.Split(later.String(), "\n")
	require.Equal(t, len(firstLines), len(laterLines))
	for i := range firstLines {
		if i == 1 {
			assert.NotEqual(t, firstLines[i], laterLines[i])
			continue
		}
		assert.Equal(t, firstLines[i], laterLines[i])
	}
}

func TestRenderText_VerboseShowsRawOutput(t *testing.T) {
	var buf bytes.Buffer
	opts := PlainText()
	opts.Verbose = true

	require.NoError(t, RenderText(&buf, Aggregate(sampleResults(), generatedAt), opts))

	assert.Contains(t, buf.String(), "         Fix: Start Docker Desktop\n         | Cannot connect to the Docker daemon\n")
}

func TestRenderText_Incomplete(t *testing.T) {
	var buf bytes.Buffer
	r := Aggregate(sampleResults()[:1], generatedAt, WithIncomplete([]string{"docker.daemon"}))

	require.NoError(t, RenderText(&buf, r, PlainText()))

	out := buf.String()
	assert.Contains(t, out, "Status: INCOMPLETE\n")
	assert.Contains(t, out, "Run interrupted: 1 probe(s) not executed\n  - docker.daemon\n")
}

func TestRenderText_OptionalMarker(t *testing.T) {
	var buf bytes.Buffer
	res := sampleResults()[:1]
	res[0].Probe.Optional = true

	require.NoError(t, RenderText(&buf, Aggregate(res, generatedAt), PlainText()))

	assert.Contains(t, buf.String(), "Windows 10 2004 or later (optional) - 10.0.22631")
}

func TestRawLines_Truncates(t *testing.T) {
	raw := strings.Repeat("line\n", 14) + "last"

	lines := rawLines(raw)

	require.Len(t, lines, maxRawLines+1)
	assert.Equal(t, "... (5 more line(s))", lines[maxRawLines])
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRenderText_ReturnsWriteError(t *testing.T) {
	err := RenderText(failingWriter{}, Aggregate(sampleResults(), generatedAt), PlainText())

	assert.EqualError(t, err, "disk full")
}
