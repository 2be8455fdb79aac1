package core

import "context"

// metricNamespace prefixes every counter and histogram the service emits.
const metricNamespace = "vault"

func operationCounterName(operation string) string {
	return metricNamespace + "." + operation + ".total"
}

func operationDurationName(operation string) string {
	return metricNamespace + "." + operation + ".duration_ms"
}

// NopMetricsRecorder drops every measurement. Default recorder when none is
// injected.
type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

func cloneTags(tags map[string]string) map[string]string {
	if len(tags) == 0 {
		return map[string]string{}
	}
	copied := make(map[string]string, len(tags))
	for key, value := range tags {
		copied[key] = value
	}
	return copied
}

var _ MetricsRecorder = NopMetricsRecorder{}
