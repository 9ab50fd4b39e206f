package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/actionsum/focustime/internal/config"
	"github.com/actionsum/focustime/internal/models"
	"github.com/actionsum/focustime/internal/tracker"
)

type fakeSource struct {
	mu      sync.Mutex
	windows []models.WindowRecord
	err     error
	inits   int
}

func (f *fakeSource) AllWindows() ([]models.WindowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.WindowRecord(nil), f.windows...), nil
}

func (f *fakeSource) ProbeName() string { return "fake" }

func (f *fakeSource) Init() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inits++
	f.err = nil
	f.windows = nil
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func sampleSource() *fakeSource {
	return &fakeSource{windows: []models.WindowRecord{
		{Title: "Editor", Seconds: 0.1},
		{Title: "Browser", Seconds: 12.34},
	}}
}

func newReporter(format string, src Source, out *syncBuffer) *Reporter {
	cfg := config.Default()
	cfg.Report.Format = format
	cfg.Report.Interval = 10 * time.Millisecond
	cfg.Tracker.PollInterval = 10 * time.Millisecond
	r := New(cfg, src, out, nil)
	r.now = func() time.Time { return time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC) }
	return r
}

func TestGenerateReport(t *testing.T) {
	r := newReporter(config.FormatText, sampleSource(), &syncBuffer{})

	report, err := r.GenerateReport()
	require.NoError(t, err)

	assert.Equal(t, 2, report.WindowCount)
	assert.Equal(t, "fake", report.Probe)
	assert.InDelta(t, 12.44, report.TotalSeconds, 1e-9)
	assert.Equal(t, "Editor", report.Windows[0].Title)
}

// pollingSource gains a window right after every snapshot, as if the poll
// loop ran between two reads.
type pollingSource struct {
	fakeSource
	polls int
}

func (p *pollingSource) AllWindows() ([]models.WindowRecord, error) {
	windows, err := p.fakeSource.AllWindows()
	p.mu.Lock()
	p.polls++
	p.windows = append(p.windows, models.WindowRecord{Title: fmt.Sprintf("New %d", p.polls), Seconds: 0.1})
	p.mu.Unlock()
	return windows, err
}

func TestReportCountMatchesWindows(t *testing.T) {
	src := &pollingSource{}
	src.windows = sampleSource().windows
	out := &syncBuffer{}
	r := newReporter(config.FormatText, src, out)

	for i := 0; i < 3; i++ {
		report, err := r.GenerateReport()
		require.NoError(t, err)
		assert.Equal(t, len(report.Windows), report.WindowCount)
	}

	require.NoError(t, r.ReportOnce())
	text := out.String()
	assert.Contains(t, text, "Number of tracked windows: 5\n")
	assert.Equal(t, 5, strings.Count(text, "Window: "))
}

func TestReportOnceText(t *testing.T) {
	out := &syncBuffer{}
	r := newReporter(config.FormatText, sampleSource(), out)

	require.NoError(t, r.ReportOnce())

	want := "\nCurrent window tracking status:\n" +
		"Number of tracked windows: 2\n" +
		"Window: Editor\n" +
		"  Focus time: 0.1 seconds\n" +
		"Window: Browser\n" +
		"  Focus time: 12.3 seconds\n"
	assert.Equal(t, want, out.String())
}

func TestReportOnceTextEmpty(t *testing.T) {
	out := &syncBuffer{}
	r := newReporter(config.FormatText, &fakeSource{}, out)

	require.NoError(t, r.ReportOnce())
	assert.Equal(t, "\nCurrent window tracking status:\nNumber of tracked windows: 0\n", out.String())
}

func TestReportOnceJSON(t *testing.T) {
	out := &syncBuffer{}
	r := newReporter(config.FormatJSON, sampleSource(), out)

	require.NoError(t, r.ReportOnce())

	var got models.StatusReport
	require.NoError(t, json.Unmarshal([]byte(out.String()), &got))
	assert.Equal(t, 2, got.WindowCount)
	assert.Equal(t, "Browser", got.Windows[1].Title)
	assert.True(t, strings.HasSuffix(out.String(), "\n"))
}

func TestReportOnceYAML(t *testing.T) {
	out := &syncBuffer{}
	r := newReporter(config.FormatYAML, sampleSource(), out)

	require.NoError(t, r.ReportOnce())

	var got models.StatusReport
	require.NoError(t, yaml.Unmarshal([]byte(out.String()), &got))
	assert.Equal(t, 2, got.WindowCount)
	assert.InDelta(t, 12.34, got.Windows[1].Seconds, 1e-9)
	assert.True(t, strings.HasPrefix(out.String(), "---\n"))
}

func TestReportOnceUnavailable(t *testing.T) {
	src := sampleSource()
	src.err = pkgerrors.Wrap(tracker.ErrUnavailable, "update panicked")
	out := &syncBuffer{}
	r := newReporter(config.FormatText, src, out)

	require.NoError(t, r.ReportOnce())

	assert.Contains(t, out.String(), "Tracker unavailable: update panicked: tracker unavailable")
	assert.NotContains(t, out.String(), "Number of tracked windows")
	assert.Equal(t, 1, src.inits, "an unavailable tracker must be re-initialized")

	out2 := &syncBuffer{}
	r.out = out2
	require.NoError(t, r.ReportOnce())
	assert.Contains(t, out2.String(), "Number of tracked windows: 0")
}

func TestReportOnceOtherError(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	r := newReporter(config.FormatText, src, &syncBuffer{})

	assert.EqualError(t, r.ReportOnce(), "boom")
	assert.Equal(t, 0, src.inits)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("stdout closed") }

func TestReportOnceWriteError(t *testing.T) {
	cfg := config.Default()
	r := New(cfg, sampleSource(), failingWriter{}, nil)

	err := r.ReportOnce()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write status")
}

func TestRun(t *testing.T) {
	out := &syncBuffer{}
	r := newReporter(config.FormatText, sampleSource(), out)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Count(out.String(), "Current window tracking status:") >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
}

type stepProbe struct {
	mu    sync.Mutex
	title string
}

func (p *stepProbe) ActiveTitle() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.title, p.title != ""
}
func (p *stepProbe) IsAvailable() bool { return true }
func (p *stepProbe) Name() string      { return "step" }
func (p *stepProbe) Close() error      { return nil }

func TestReportFromTracker(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	probe := &stepProbe{}
	tr := tracker.New(probe, tracker.WithClock(clock))

	for _, step := range []struct {
		title string
		after time.Duration
	}{{"Editor", 0}, {"Editor", 100 * time.Millisecond}, {"Browser", 100 * time.Millisecond}} {
		now = now.Add(step.after)
		probe.title = step.title
		require.NoError(t, tr.Update())
	}

	out := &syncBuffer{}
	r := newReporter(config.FormatText, tr, out)
	require.NoError(t, r.ReportOnce())

	want := "\nCurrent window tracking status:\n" +
		"Number of tracked windows: 2\n" +
		"Window: Editor\n" +
		"  Focus time: 0.1 seconds\n" +
		"Window: Browser\n" +
		"  Focus time: 0.1 seconds\n"
	assert.Equal(t, want, out.String())
}
