package ports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrDuplicateChecker is returned by Register for a name already taken.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// HealthChecker reports whether one dependency can serve requests.
type HealthChecker interface {
	// Name is unique within a registry and keys the readiness report.
	Name() string

	// Check returns nil when healthy. It must honour ctx.
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function into a named HealthChecker.
type CheckerFunc struct {
	CheckName string
	Fn        func(ctx context.Context) error
}

// Name implements HealthChecker.
func (c CheckerFunc) Name() string { return c.CheckName }

// Check implements HealthChecker.
func (c CheckerFunc) Check(ctx context.Context) error { return c.Fn(ctx) }

// HealthRegistry runs the checks behind the readiness probe.
type HealthRegistry interface {
	Register(checker HealthChecker, opts ...CheckOption) error
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus is the state of one check or of the whole service.
type HealthStatus string

// Health states. A failing optional check degrades the service without
// taking it out of rotation.
const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// Serving reports whether the service should keep receiving traffic.
func (s HealthStatus) Serving() bool {
	return s != HealthStatusUnhealthy
}

// HealthResult is one readiness report.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// CheckResult is the outcome of one check. Message carries the error.
type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Optional bool          `json:"optional,omitempty"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// CheckOption adjusts how a registered check counts toward the overall status.
type CheckOption func(*registration)

// Optional marks a dependency the catalog can serve without, such as the
// share webhook. Its failure reports degraded instead of unhealthy.
func Optional() CheckOption {
	return func(r *registration) { r.optional = true }
}

type registration struct {
	checker  HealthChecker
	optional bool
}

const (
	// DefaultCheckTimeout bounds one check unless the caller's deadline is earlier.
	DefaultCheckTimeout = 2 * time.Second

	maxConcurrentChecks = 8
)

// DefaultHealthRegistry is safe for concurrent use.
type DefaultHealthRegistry struct {
	mu           sync.RWMutex
	entries      []registration
	checkTimeout time.Duration
}

// NewHealthRegistry returns an empty registry using DefaultCheckTimeout.
func NewHealthRegistry() *DefaultHealthRegistry {
	return &DefaultHealthRegistry{checkTimeout: DefaultCheckTimeout}
}

// SetCheckTimeout changes the per-check timeout. Non-positive values disable it.
func (r *DefaultHealthRegistry) SetCheckTimeout(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.checkTimeout = d
}

// Register implements HealthRegistry.
func (r *DefaultHealthRegistry) Register(checker HealthChecker, opts ...CheckOption) error {
	entry := registration{checker: checker}
	for _, opt := range opts {
		opt(&entry)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.checker.Name() == checker.Name() {
			return fmt.Errorf("%w: %s", ErrDuplicateChecker, checker.Name())
		}
	}

	r.entries = append(r.entries, entry)

	return nil
}

// CheckAll implements HealthRegistry. Checks run concurrently and each gets
// its own timeout.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	entries := append([]registration(nil), r.entries...)
	timeout := r.checkTimeout
	r.mu.RUnlock()

	results := make([]*CheckResult, len(entries))

	var g errgroup.Group
	g.SetLimit(maxConcurrentChecks)

	for i, e := range entries {
		g.Go(func() error {
			results[i] = e.run(ctx, timeout)
			return nil
		})
	}

	_ = g.Wait()

	report := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(entries)),
		Timestamp: time.Now(),
	}

	for i, e := range entries {
		res := results[i]
		report.Checks[e.checker.Name()] = res
		report.Status = worse(report.Status, res)
	}

	return report
}

func (e registration) run(ctx context.Context, timeout time.Duration) *CheckResult {
	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	err := e.checker.Check(ctx)
	res := &CheckResult{Status: HealthStatusHealthy, Optional: e.optional, Duration: time.Since(start)}

	if err != nil {
		res.Status = HealthStatusUnhealthy
		res.Message = err.Error()
	}

	return res
}

// worse folds one check into the overall status.
func worse(overall HealthStatus, res *CheckResult) HealthStatus {
	switch {
	case res.Status == HealthStatusHealthy || overall == HealthStatusUnhealthy:
		return overall
	case res.Optional:
		return HealthStatusDegraded
	default:
		return HealthStatusUnhealthy
	}
}
