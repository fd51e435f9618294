package loader

import (
	"context"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// stageReport collects the diagnostics of one stage and logs each one as it is raised:
// skips at Error, warnings at Warn.
type stageReport struct {
	stage       model.Stage
	logger      *slog.Logger
	diagnostics []model.Diagnostic
}

func newStageReport(stage model.Stage, logger *slog.Logger) *stageReport {
	return &stageReport{stage: stage, logger: logger}
}

func (r *stageReport) warn(index int, err error) {
	r.add(model.SeverityWarn, index, err)
}

func (r *stageReport) skip(index int, err error) {
	r.add(model.SeveritySkip, index, err)
}

func (r *stageReport) add(severity model.Severity, index int, err error) {
	d := model.Diagnostic{Stage: r.stage, Severity: severity, Index: index, Err: err}
	r.diagnostics = append(r.diagnostics, d)

	level := slog.LevelWarn
	if severity != model.SeverityWarn {
		level = slog.LevelError
	}
	r.logger.Log(context.Background(), level, "glTF "+string(r.stage), "index", index, "severity", severity.String(), "error", err)
}
