package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/actionsum/focustime/internal/config"
	"github.com/actionsum/focustime/internal/models"
	"github.com/actionsum/focustime/internal/tracker"
	"github.com/actionsum/focustime/pkg/utils"
)

// Source is the read side of tracker.Tracker
type Source interface {
	AllWindows() ([]models.WindowRecord, error)
	ProbeName() string
	Init()
}

// Reporter renders tracker snapshots
type Reporter struct {
	config  *config.Config
	tracker Source
	out     io.Writer
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a new reporter writing status blocks to out
func New(cfg *config.Config, tr Source, out io.Writer, logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{
		config:  cfg,
		tracker: tr,
		out:     out,
		logger:  logger,
		now:     time.Now,
	}
}

// GenerateReport snapshots the tracker. The count and the windows come from
// the same snapshot. The only error is tracker.ErrUnavailable.
func (r *Reporter) GenerateReport() (*models.StatusReport, error) {
	windows, err := r.tracker.AllWindows()
	if err != nil {
		return nil, err
	}

	var total float64
	for _, w := range windows {
		total += w.Seconds
	}

	return &models.StatusReport{
		GeneratedAt:  r.now(),
		Probe:        r.tracker.ProbeName(),
		WindowCount:  len(windows),
		Windows:      windows,
		TotalSeconds: total,
	}, nil
}

// FormatReportText formats the report as the console status block
func (r *Reporter) FormatReportText(report *models.StatusReport) string {
	var b strings.Builder

	b.WriteString("\nCurrent window tracking status:\n")

	if report.Unavailable != "" {
		fmt.Fprintf(&b, "Tracker unavailable: %s\n", report.Unavailable)
		return b.String()
	}

	fmt.Fprintf(&b, "Number of tracked windows: %d\n", report.WindowCount)
	for _, w := range report.Windows {
		fmt.Fprintf(&b, "Window: %s\n", w.Title)
		fmt.Fprintf(&b, "  Focus time: %s seconds\n", utils.FormatSeconds(w.Seconds))
	}

	return b.String()
}

// FormatReportJSON formats the report as a single JSON line
func (r *Reporter) FormatReportJSON(report *models.StatusReport) (string, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal JSON")
	}
	return string(data) + "\n", nil
}

// FormatReportYAML formats the report as one YAML document
func (r *Reporter) FormatReportYAML(report *models.StatusReport) (string, error) {
	data, err := yaml.Marshal(report)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal YAML")
	}
	return "---\n" + string(data), nil
}

// Render formats report in the configured format
func (r *Reporter) Render(report *models.StatusReport) (string, error) {
	switch r.config.Report.Format {
	case config.FormatJSON:
		return r.FormatReportJSON(report)
	case config.FormatYAML:
		return r.FormatReportYAML(report)
	default:
		return r.FormatReportText(report), nil
	}
}

// ReportOnce writes one status block. An unavailable tracker is reported
// and then re-initialized so tracking can resume.
func (r *Reporter) ReportOnce() error {
	report, err := r.GenerateReport()
	if err != nil {
		if !errors.Is(err, tracker.ErrUnavailable) {
			return err
		}
		report = &models.StatusReport{
			GeneratedAt: r.now(),
			Probe:       r.tracker.ProbeName(),
			Unavailable: err.Error(),
		}
		r.logger.Error("tracker unavailable, reinitializing", zap.Error(err))
		defer r.tracker.Init()
	}

	out, err := r.Render(report)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(r.out, out); err != nil {
		return errors.Wrap(err, "failed to write status")
	}
	return nil
}

// Run writes a status block every report interval until ctx is done
func (r *Reporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.config.Report.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.ReportOnce(); err != nil {
				r.logger.Warn("failed to write status", zap.Error(err))
			}
		}
	}
}
