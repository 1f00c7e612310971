package snowflakeexport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/seo-noc/internal/service/linker"
)

type fakeMetricsSource struct {
	metrics *linker.Metrics
	err     error
	calls   int
}

func (f *fakeMetricsSource) ConflictMetrics(ctx context.Context, networkID *string, days int) (*linker.Metrics, error) {
	f.calls++
	return f.metrics, f.err
}

func TestNewExporter_Defaults(t *testing.T) {
	e := NewExporter(nil, &fakeMetricsSource{}, 0, 0)
	assert.Equal(t, defaultExportInterval, e.interval)
	assert.Equal(t, defaultMetricsDays, e.days)
}

func TestRunOnce_FetchFailureNeverPanics(t *testing.T) {
	source := &fakeMetricsSource{err: assertErr{}}
	e := NewExporter(nil, source, 1, time.Hour)

	require.NotPanics(t, func() {
		e.RunOnce(context.Background())
	})
	assert.Equal(t, 1, source.calls)
}
