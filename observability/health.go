package observability

import "context"

// HealthStatus represents the health state of a component or service.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health describes the health of an individual component.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// ServiceHealth describes the overall health of the service and its components.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// HealthChecker is implemented by components that can report their health.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// HealthCheckFunc adapts a function to HealthChecker.
type HealthCheckFunc func(ctx context.Context) Health

func (f HealthCheckFunc) CheckHealth(ctx context.Context) Health { return f(ctx) }

// CheckHealth runs every checker and folds the results: any down component
// marks the service down, otherwise any degraded one marks it degraded.
func CheckHealth(ctx context.Context, service, version string, checkers ...HealthChecker) *ServiceHealth {
	sh := &ServiceHealth{Service: service, Status: HealthStatusUp, Version: version}
	for _, c := range checkers {
		h := c.CheckHealth(ctx)
		sh.Components = append(sh.Components, h)
		switch h.Status {
		case HealthStatusDown:
			sh.Status = HealthStatusDown
		case HealthStatusDegraded:
			if sh.Status != HealthStatusDown {
				sh.Status = HealthStatusDegraded
			}
		}
	}
	return sh
}
