package vote

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var votesApplied = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "votes_applied_total",
		Help: "Vote ledger applications by entity family and outcome",
	},
	[]string{"family", "outcome"},
)
