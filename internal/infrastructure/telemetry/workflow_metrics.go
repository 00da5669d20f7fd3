package telemetry

import (
	"context"

	appcrm "github.com/autodealer/backend/internal/application/crm"
	"github.com/autodealer/backend/internal/domain/crm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrSource = attribute.Key("source")
	AttrFast   = attribute.Key("fast_response")
	AttrStatus = attribute.Key("status")
	AttrAction = attribute.Key("action")
)

// WorkflowMetrics counts lead workflow events
type WorkflowMetrics struct {
	leadsCreated metric.Int64Counter
	leadsClaimed metric.Int64Counter
	leadsClosed  metric.Int64Counter
	scoreAwards  metric.Int64Counter
	scorePoints  metric.Int64Counter
}

// NewWorkflowMetrics registers the lead workflow instruments on meter
func NewWorkflowMetrics(meter metric.Meter) (*WorkflowMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	m := &WorkflowMetrics{}
	var err error

	if m.leadsCreated, err = meter.Int64Counter("dealer_leads_created_total",
		metric.WithDescription("Leads submitted"),
		metric.WithUnit("{leads}")); err != nil {
		return nil, err
	}
	if m.leadsClaimed, err = meter.Int64Counter("dealer_leads_claimed_total",
		metric.WithDescription("Leads claimed by a manager"),
		metric.WithUnit("{leads}")); err != nil {
		return nil, err
	}
	if m.leadsClosed, err = meter.Int64Counter("dealer_leads_closed_total",
		metric.WithDescription("Leads moved to a closed status"),
		metric.WithUnit("{leads}")); err != nil {
		return nil, err
	}
	if m.scoreAwards, err = meter.Int64Counter("dealer_score_awards_total",
		metric.WithDescription("Score ledger entries written"),
		metric.WithUnit("{awards}")); err != nil {
		return nil, err
	}
	if m.scorePoints, err = meter.Int64Counter("dealer_score_points_total",
		metric.WithDescription("Points awarded to managers"),
		metric.WithUnit("{points}")); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *WorkflowMetrics) RecordLeadCreated(ctx context.Context, source string) {
	if source == "" {
		source = "unknown"
	}
	m.leadsCreated.Add(ctx, 1, metric.WithAttributes(AttrSource.String(source)))
}

func (m *WorkflowMetrics) RecordLeadClaimed(ctx context.Context, fastResponse bool) {
	m.leadsClaimed.Add(ctx, 1, metric.WithAttributes(AttrFast.Bool(fastResponse)))
}

func (m *WorkflowMetrics) RecordLeadClosed(ctx context.Context, status crm.LeadStatus) {
	m.leadsClosed.Add(ctx, 1, metric.WithAttributes(AttrStatus.String(string(status))))
}

func (m *WorkflowMetrics) RecordScoreAwarded(ctx context.Context, action crm.ScoreAction, points int) {
	attrs := metric.WithAttributes(AttrAction.String(string(action)))
	m.scoreAwards.Add(ctx, 1, attrs)
	m.scorePoints.Add(ctx, int64(points), attrs)
}

var _ appcrm.WorkflowMetrics = (*WorkflowMetrics)(nil)
