package cachesync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cachesync_mutations_total",
			Help: "Membership mutations by action and outcome.",
		},
		[]string{"action", "outcome"},
	)

	quickSaveRedirects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cachesync_quick_save_redirects_total",
			Help: "Quick saves redirected to a different wishlist before settling.",
		},
	)

	compensatingDeletes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cachesync_compensating_deletes_total",
			Help: "Deletes issued to undo a quick save that had already committed.",
		},
	)

	staleTargetsCleared = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cachesync_stale_targets_cleared_total",
			Help: "Quick-save targets cleared after the server reported them gone.",
		},
	)
)

const (
	outcomeSucceeded  = "succeeded"
	outcomeFailed     = "failed"
	outcomeNoop       = "noop"
	outcomeRedirected = "redirected"
)
