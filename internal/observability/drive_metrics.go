package observability

import (
	"context"

	"driveplane/internal/drive"
	"driveplane/internal/store"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

// DriveMetrics records engine activity on OpenTelemetry instruments.
type DriveMetrics struct {
	combos       otelmetric.Int64Counter
	shifted      otelmetric.Int64Histogram
	completed    otelmetric.Int64Counter
	compensation otelmetric.Float64Counter
	conflicts    otelmetric.Int64Counter
}

var _ drive.Metrics = (*DriveMetrics)(nil)

// NewDriveMetrics creates the drive instruments on meter.
func NewDriveMetrics(meter otelmetric.Meter) (*DriveMetrics, error) {
	m := &DriveMetrics{}
	var err error

	if m.combos, err = meter.Int64Counter("drive.combo.inserted",
		otelmetric.WithDescription("Combo tasks inserted into drive sessions")); err != nil {
		return nil, err
	}
	if m.shifted, err = meter.Int64Histogram("drive.combo.shifted",
		otelmetric.WithDescription("Tasks renumbered by a single combo insertion"),
		otelmetric.WithExplicitBucketBoundaries(0, 1, 5, 10, 25, 50, 100)); err != nil {
		return nil, err
	}
	if m.completed, err = meter.Int64Counter("drive.task.completed",
		otelmetric.WithDescription("Tasks completed, by kind")); err != nil {
		return nil, err
	}
	if m.compensation, err = meter.Float64Counter("drive.compensation.amount",
		otelmetric.WithDescription("Compensation credited to the ledger, by type")); err != nil {
		return nil, err
	}
	if m.conflicts, err = meter.Int64Counter("drive.conflicts",
		otelmetric.WithDescription("Mutations rejected by the session version check")); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *DriveMetrics) ComboInserted(ctx context.Context, shifted int) {
	m.combos.Add(ctx, 1)
	m.shifted.Record(ctx, int64(shifted))
}

func (m *DriveMetrics) TaskCompleted(ctx context.Context, kind store.TaskKind) {
	m.completed.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("kind", string(kind))))
}

func (m *DriveMetrics) Compensated(ctx context.Context, kind store.CompensationType, amount float64) {
	m.compensation.Add(ctx, amount, otelmetric.WithAttributes(attribute.String("type", string(kind))))
}

func (m *DriveMetrics) Conflict(ctx context.Context, op string) {
	m.conflicts.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("op", op)))
}
