package adapter

import (
	"github.com/uber-go/tally"
)

// Metrics is the set of counters and timers of a Session.
type Metrics struct {
	Query     tally.Counter
	QueryFail tally.Counter

	Exec     tally.Counter
	ExecFail tally.Counter

	Latency tally.Timer

	DualCreated tally.Counter
}

// NewMetrics returns Metrics rooted at scope.
func NewMetrics(scope tally.Scope) *Metrics {
	successScope := scope.Tagged(map[string]string{"result": "success"})
	failScope := scope.Tagged(map[string]string{"result": "fail"})
	return &Metrics{
		Query:     successScope.Counter("query"),
		QueryFail: failScope.Counter("query"),

		Exec:     successScope.Counter("exec"),
		ExecFail: failScope.Counter("exec"),

		Latency: scope.Timer("latency"),

		DualCreated: scope.Counter("dual_created"),
	}
}
