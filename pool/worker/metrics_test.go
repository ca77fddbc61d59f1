package worker_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/maxpenner/dectnrp-core/pool/irregular"
	"github.com/maxpenner/dectnrp-core/pool/job"
	"github.com/maxpenner/dectnrp-core/pool/worker"
)

func TestWorker_Metrics_CountsDispatchByKind(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := worker.NewMetrics(reg)

	q := job.NewQueue(4)
	fw := &stubFirmware{}
	w := worker.New(0, q, irregular.New(), fw)
	w.SetMetrics(m)

	go w.Run()
	t.Cleanup(w.Stop)

	q.Push(job.Job{Kind: job.KindRegular, FIFOCnt: 0, Payload: uint64(1)})
	q.Push(job.Job{Kind: job.KindRegular, FIFOCnt: 1, Payload: uint64(2)})
	q.Push(job.Job{Kind: job.KindSync, FIFOCnt: 2, Payload: uint64(3)})

	require.Eventually(t, func() bool {
		s := w.Stats()
		return s.WorkRegular == 2 && s.WorkSync == 1
	}, 2*time.Second, time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	var total uint64
	for _, fam := range families {
		if fam.GetName() != "dectnrp_worker_jobs_dispatched_total" {
			continue
		}
		for _, metric := range fam.GetMetric() {
			total += uint64(metric.GetCounter().GetValue())
		}
	}
	require.Equal(t, uint64(3), total)
}
