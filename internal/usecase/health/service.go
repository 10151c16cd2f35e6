package health

import (
	"context"
	"sync"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates a dependency failed but questions can still be ranked.
	Degraded Status = "degraded"
	// Unhealthy indicates no index is published: nothing can be answered.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// DefaultProbeTimeout bounds each dependency probe.
const DefaultProbeTimeout = 2 * time.Second

// IndexInfo describes the published index.
type IndexInfo struct {
	Articles    int
	Vocabulary  int
	Fingerprint string
}

// Report aggregates health check results. Index is nil when nothing is published.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	Index  *IndexInfo
}

type probe struct {
	name string
	run  func(context.Context) error
}

// Service runs the index check plus one probe per configured dependency.
type Service struct {
	index   IndexSource
	probes  []probe
	timeout time.Duration
}

// New creates a Service. db and policy can be nil.
func New(index IndexSource, db DBPinger, policy PolicyChecker) *Service {
	s := &Service{index: index, timeout: DefaultProbeTimeout}
	if db != nil {
		s.probes = append(s.probes, probe{name: "database", run: db.Ping})
	}
	if policy != nil {
		s.probes = append(s.probes, probe{name: "policy", run: policy.HealthCheck})
	}
	return s
}

// WithTimeout overrides the per-probe timeout. Non-positive values are ignored.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check probes dependencies concurrently. A missing index makes the
// service Unhealthy; any failing dependency makes it Degraded.
func (s *Service) Check(ctx context.Context) Report {
	report := Report{Status: Healthy, Checks: make(map[string]CheckResult, len(s.probes)+1)}

	if ix, err := s.index.Current(); err != nil {
		report.Checks["index"] = CheckError
		report.Status = Unhealthy
	} else {
		report.Checks["index"] = CheckOK
		report.Index = &IndexInfo{
			Articles:    ix.Len(),
			Vocabulary:  ix.VocabularySize(),
			Fingerprint: ix.Fingerprint().String(),
		}
	}

	results := make([]CheckResult, len(s.probes))
	var wg sync.WaitGroup
	for i, p := range s.probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			results[i] = result(p.run(pctx))
		}()
	}
	wg.Wait()

	for i, p := range s.probes {
		report.Checks[p.name] = results[i]
		if results[i] == CheckError && report.Status == Healthy {
			report.Status = Degraded
		}
	}
	return report
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
