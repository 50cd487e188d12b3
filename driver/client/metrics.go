package client

import (
	"github.com/VictoriaMetrics/metrics"
)

// Driver operation counters, exposable via metrics.WritePrometheus.
var (
	queriesTotal     = metrics.NewCounter(`ddoc_queries_total`)
	getMoresTotal    = metrics.NewCounter(`ddoc_getmores_total`)
	reconnectsTotal  = metrics.NewCounter(`ddoc_reconnects_total`)
	failoversTotal   = metrics.NewCounter(`ddoc_failovers_total`)
	killCursorsTotal = metrics.NewCounter(`ddoc_killcursors_total`)
)
