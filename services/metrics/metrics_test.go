package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counter returns the value of the counter name with labels, 0 if absent.
func counter(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := NewObserver(reg)
	require.NoError(t, err)

	obs.FetchDone("students", 1, nil, time.Millisecond)
	obs.FetchDone("students", 2, nil, time.Second)
	obs.FetchDone("attendance:2024-05-02", 2, errors.New("boom"), time.Second)
	obs.CommandDone("roles", "create", nil, time.Millisecond)
	obs.CommandDone("roles", "delete", errors.New("conflict"), time.Millisecond)
	obs.StaleDiscarded("classes")

	assert.Equal(t, 2.0, counter(t, reg, "school_portal_resource_fetches_total",
		map[string]string{"resource": "students", "outcome": "ok"}))
	assert.Equal(t, 1.0, counter(t, reg, "school_portal_resource_fetches_total",
		map[string]string{"resource": "attendance", "outcome": "error"}))
	assert.Equal(t, 1.0, counter(t, reg, "school_portal_resource_fetch_retries_total",
		map[string]string{"resource": "students"}))
	assert.Equal(t, 1.0, counter(t, reg, "school_portal_resource_commands_total",
		map[string]string{"resource": "roles", "op": "delete", "outcome": "error"}))
	assert.Equal(t, 1.0, counter(t, reg, "school_portal_resource_stale_responses_total",
		map[string]string{"resource": "classes"}))

	_, err = NewObserver(reg)
	assert.Error(t, err, "collectors register once per registry")
}
