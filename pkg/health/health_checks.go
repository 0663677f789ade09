package health

import (
	"context"
	"runtime"
)

// DatabaseCheck reports the program database as unhealthy when ping fails.
func DatabaseCheck(ping func(ctx context.Context) error) CheckFunc {
	return func(ctx context.Context) Check {
		check := Check{Name: "database"}
		if err := ping(ctx); err != nil {
			check.Status = StatusUnhealthy
			check.Message = err.Error()
			return check
		}
		check.Status = StatusHealthy
		check.Message = "Connected"
		return check
	}
}

// TreeCheck reports the hardware tree as unhealthy when it holds no items.
func TreeCheck(count func() int) CheckFunc {
	return func(ctx context.Context) Check {
		n := count()
		check := Check{
			Name:    "hardware_tree",
			Details: map[string]any{"hardware_items": n},
		}
		if n == 0 {
			check.Status = StatusUnhealthy
			check.Message = "No hardware loaded"
			return check
		}
		check.Status = StatusHealthy
		return check
	}
}

// SubscriberCheck is degraded when fewer than want subscribers are
// listening, as when the event bridge has stopped.
func SubscriberCheck(count func() int, want int) CheckFunc {
	return func(ctx context.Context) Check {
		n := count()
		check := Check{
			Name:    "event_bridge",
			Details: map[string]any{"subscribers": n},
			Status:  StatusHealthy,
		}
		if n < want {
			check.Status = StatusDegraded
			check.Message = "Event bridge not subscribed"
		}
		return check
	}
}

// MemoryCheck is degraded when the heap exceeds 90% of memory obtained
// from the OS.
func MemoryCheck() CheckFunc {
	return func(ctx context.Context) Check {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		check := Check{
			Name: "memory",
			Details: map[string]any{
				"alloc_bytes": m.Alloc,
				"sys_bytes":   m.Sys,
			},
			Status: StatusHealthy,
		}
		if m.Sys > 0 && float64(m.Alloc)/float64(m.Sys) > 0.9 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		}
		return check
	}
}
