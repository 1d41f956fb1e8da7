package jobs

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	jobmetrics "github.com/meridian-books/meridian-books/internal/jobs"
)

func TestWarmupJobAlwaysHasCollectors(t *testing.T) {
	job := NewReportsWarmupJob(nil, nil, nil)
	if job.metrics() != defaultJobMetrics {
		t.Fatal("job without explicit metrics must record into the default collectors")
	}

	own := jobmetrics.NewMetrics(prometheus.NewRegistry())
	job = NewReportsWarmupJob(nil, nil, own)
	if job.metrics() != own {
		t.Fatal("explicit metrics must take precedence over the default collectors")
	}
}
