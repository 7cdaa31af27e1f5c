package metrics

import (
	"context"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

type newRelicContextKey struct{}

// NewRelicContextKey is the context key under which the New Relic application
// is stored. Recording is a no-op when it is absent.
var NewRelicContextKey = newRelicContextKey{}

// WithApplication returns a context that records metrics to app.
func WithApplication(ctx context.Context, app *newrelic.Application) context.Context {
	if app == nil {
		return ctx
	}
	return context.WithValue(ctx, NewRelicContextKey, app)
}

func applicationFromContext(ctx context.Context) (*newrelic.Application, bool) {
	nr, ok := ctx.Value(NewRelicContextKey).(*newrelic.Application)
	return nr, ok && nr != nil
}

// RecordCount records a count metric
func RecordCount(ctx context.Context, metricName string, count uint64) {
	if nr, ok := applicationFromContext(ctx); ok {
		nr.RecordCustomMetric(metricName, float64(count))
	}
}

// RecordDuration records a duration metric in milliseconds
func RecordDuration(ctx context.Context, metricName string, duration time.Duration) {
	if nr, ok := applicationFromContext(ctx); ok {
		nr.RecordCustomMetric(metricName, float64(duration)/float64(time.Millisecond))
	}
}

// RecordEvent records a custom event carrying attrs, such as a failed
// transaction and its error key.
func RecordEvent(ctx context.Context, eventName string, attrs map[string]interface{}) {
	if nr, ok := applicationFromContext(ctx); ok {
		nr.RecordCustomEvent(eventName, attrs)
	}
}
