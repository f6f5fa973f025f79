package observability

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// instruments creates instruments on one meter and remembers the first
// failure, so constructors can check a single error at the end.
type instruments struct {
	meter metric.Meter
	err   error
}

func (in *instruments) counter(name, desc, unit string) metric.Int64Counter {
	if in.err != nil {
		return nil
	}

	c, err := in.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	in.check(name, err)

	return c
}

func (in *instruments) upDown(name, desc, unit string) metric.Int64UpDownCounter {
	if in.err != nil {
		return nil
	}

	c, err := in.meter.Int64UpDownCounter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	in.check(name, err)

	return c
}

func (in *instruments) intHistogram(name, desc, unit string, bounds []float64) metric.Int64Histogram {
	if in.err != nil {
		return nil
	}

	h, err := in.meter.Int64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit(unit),
		metric.WithExplicitBucketBoundaries(bounds...),
	)
	in.check(name, err)

	return h
}

func (in *instruments) floatHistogram(name, desc, unit string, bounds []float64) metric.Float64Histogram {
	if in.err != nil {
		return nil
	}

	h, err := in.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit(unit),
		metric.WithExplicitBucketBoundaries(bounds...),
	)
	in.check(name, err)

	return h
}

func (in *instruments) check(name string, err error) {
	if err != nil {
		in.err = fmt.Errorf("create %s: %w", name, err)
	}
}
