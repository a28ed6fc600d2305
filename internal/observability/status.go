package observability

import (
	"context"
	"strconv"

	"healthdemo/internal/status"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "healthdemo/status"

// InstrumentedStore wraps a status.Store and exports the liveness flag as a
// gauge plus a counter of writes. Reads are not instrumented: probes poll
// them continuously.
type InstrumentedStore struct {
	inner   status.Store
	updates metric.Int64Counter
}

// NewInstrumentedStore registers the liveness instruments on mp. The gauge
// is observed on every collection, so it always reflects the current flag.
func NewInstrumentedStore(inner status.Store, mp metric.MeterProvider) (*InstrumentedStore, error) {
	meter := mp.Meter(instrumentationName)

	updates, err := meter.Int64Counter(
		"app.liveness.updates",
		metric.WithDescription("Number of writes to the liveness flag"),
		metric.WithUnit("{update}"),
	)
	if err != nil {
		return nil, err
	}

	_, err = meter.Int64ObservableGauge(
		"app.liveness",
		metric.WithDescription("1 while the application reports UP, 0 once it has been set DOWN"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(boolToInt(inner.Live()))
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	return &InstrumentedStore{
		inner:   inner,
		updates: updates,
	}, nil
}

// Live delegates to the wrapped store.
func (s *InstrumentedStore) Live() bool {
	return s.inner.Live()
}

// SetLive delegates to the wrapped store and counts the write.
func (s *InstrumentedStore) SetLive(live bool) {
	s.inner.SetLive(live)
	s.updates.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("live", strconv.FormatBool(live))))
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
