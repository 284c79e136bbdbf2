package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestNewInstruments(t *testing.T) {
	m, err := New(Config{ServiceName: "watchline-test"}, noop.NewMeterProvider())
	assert.NoError(t, err)
	assert.NotNil(t, m)

	ctx := context.Background()
	m.RecordPaymentToggle(ctx, true)
	m.RecordPaymentToggle(ctx, false)
	m.RecordDelinquentClient(ctx)
	m.RecordReconciliation(ctx, 25*time.Millisecond, 3)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordPaymentToggle(ctx, true)
	m.RecordDelinquentClient(ctx)
	m.RecordReconciliation(ctx, time.Second, 0)
}
