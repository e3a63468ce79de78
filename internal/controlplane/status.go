package controlplane

import (
	"encoding/json"
	"fmt"

	"github.com/dekarrin/stlc/internal/scheduler"
)

func registerStatusHandlers(r *Router) {
	r.register("status", handleStatus)
	r.register("health", handleHealth)
	r.register("tasks.stats", handleTasksStats)
	r.register("events.tail", handleEventsTail)
	r.register("events", handleEventsTail)
	r.register("faults", handleFaults)
	r.register("config.get", handleConfigGet)
	r.register("config.set", handleConfigSet)
}

type statusResult struct {
	State      string `json:"state"`
	CycleCount int    `json:"cycle_count"`
}

func handleStatus(s *Session, params json.RawMessage) (any, error) {
	return statusResult{State: s.Runner.State().String(), CycleCount: s.Runner.CycleCount()}, nil
}

func handleHealth(s *Session, params json.RawMessage) (any, error) {
	return map[string]any{"ok": s.Runner.State() != scheduler.Faulted}, nil
}

type taskStat struct {
	Name     string  `json:"name"`
	LastMs   float64 `json:"last_ms"`
	AvgMs    float64 `json:"avg_ms"`
	MaxMs    float64 `json:"max_ms"`
	Overruns int     `json:"overruns"`
}

func handleTasksStats(s *Session, params json.RawMessage) (any, error) {
	var stats []taskStat
	for _, t := range s.Runner.Tasks {
		stats = append(stats, taskStat{
			Name: t.Name, LastMs: t.Metrics.LastMs, AvgMs: t.Metrics.AvgMs,
			MaxMs: t.Metrics.MaxMs, Overruns: t.Metrics.Overruns,
		})
	}
	return stats, nil
}

type tailParams struct {
	Count int `json:"count"`
}

func handleEventsTail(s *Session, params json.RawMessage) (any, error) {
	var p tailParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	if p.Count > 0 && p.Count < len(events) {
		events = events[len(events)-p.Count:]
	}
	return events, nil
}

func handleFaults(s *Session, params json.RawMessage) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.faults, nil
}

func handleConfigGet(s *Session, params json.RawMessage) (any, error) {
	var p struct {
		Key string `json:"key"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.config[p.Key]
	if !ok {
		return nil, fmt.Errorf("unknown config key %q", p.Key)
	}
	return v, nil
}

func handleConfigSet(s *Session, params json.RawMessage) (any, error) {
	var p struct {
		Key   string `json:"key"`
		Value any    `json:"value"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.config[p.Key] = p.Value
	s.mu.Unlock()
	return map[string]any{"key": p.Key}, nil
}
