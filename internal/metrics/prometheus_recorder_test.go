package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("index", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("index", ResultSuccess)
	pr.IncBuildOutcome("success")
	pr.AddFiles("pages", 4, 1)
	pr.AddIssues("pages", 2)

	assert.InDelta(t, 4, testutil.ToFloat64(pr.filesWritten.WithLabelValues("pages")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.filesPruned.WithLabelValues("pages")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(pr.issues.WithLabelValues("pages")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.buildOutcome.WithLabelValues("success")), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestWriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncBuildOutcome("warning")

	path := filepath.Join(t.TempDir(), "sitegen.prom")
	require.NoError(t, pr.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `sitegen_build_outcomes_total{outcome="warning"} 1`)

	err = pr.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	require.Error(t, err)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveBuildDuration(time.Second)
	r.AddFiles("pages", 1, 1)
	r.AddIssues("pages", 1)
}
