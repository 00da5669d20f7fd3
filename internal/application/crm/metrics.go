package crm

import (
	"context"

	"github.com/autodealer/backend/internal/domain/crm"
)

// WorkflowMetrics receives lead workflow counters. Implemented by the telemetry package.
type WorkflowMetrics interface {
	RecordLeadCreated(ctx context.Context, source string)
	RecordLeadClaimed(ctx context.Context, fast bool)
	RecordLeadClosed(ctx context.Context, status crm.LeadStatus)
	RecordScoreAwarded(ctx context.Context, action crm.ScoreAction, points int)
}

type noopMetrics struct{}

func (noopMetrics) RecordLeadCreated(context.Context, string)                {}
func (noopMetrics) RecordLeadClaimed(context.Context, bool)                  {}
func (noopMetrics) RecordLeadClosed(context.Context, crm.LeadStatus)         {}
func (noopMetrics) RecordScoreAwarded(context.Context, crm.ScoreAction, int) {}
