package app

// EngineMetrics receives engine-level events. The HTTP layer plugs in its
// Prometheus collector; tests use the no-op.
type EngineMetrics interface {
	JobPosted()
	JobFilled(hadNegotiation bool)
	JobCompleted()
	JobCancelled()
	SettlementRecorded()
	PaymentRecorded()
}

type NoopMetrics struct{}

func (NoopMetrics) JobPosted()          {}
func (NoopMetrics) JobFilled(bool)      {}
func (NoopMetrics) JobCompleted()       {}
func (NoopMetrics) JobCancelled()       {}
func (NoopMetrics) SettlementRecorded() {}
func (NoopMetrics) PaymentRecorded()    {}
