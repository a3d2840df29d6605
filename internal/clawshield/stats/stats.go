package stats

import (
	"context"
	"fmt"

	"github.com/openclaw/clawshield/internal/clawshield/store"
	"github.com/openclaw/clawshield/internal/clawshield/types"
)

// Baseline is the fixed synthetic history blended into live counts. The
// system launched with seeded dashboards; reported totals are baseline plus
// whatever the audit store holds. Zero both fields to retire the baseline
// and report pure live counts.
type Baseline struct {
	Total  int64
	Blocks int64
}

// Monitor supplies the operational values the pipeline has no authority
// over. The real source is an external monitoring system; Static stands in
// for it.
type Monitor interface {
	SystemHealth(ctx context.Context) (health string, activeAgents int, err error)
}

// Static is a Monitor returning fixed values.
type Static struct {
	Health string
	Agents int
}

func (m Static) SystemHealth(context.Context) (string, int, error) {
	return m.Health, m.Agents, nil
}

// Aggregator derives dashboard metrics from the audit store. Snapshots are
// recomputed on every call; the store is the single source of truth and the
// counts are cheap, so nothing is cached.
type Aggregator struct {
	store    store.AuditStore
	baseline Baseline
	monitor  Monitor
}

func NewAggregator(st store.AuditStore, baseline Baseline, monitor Monitor) *Aggregator {
	return &Aggregator{store: st, baseline: baseline, monitor: monitor}
}

func (a *Aggregator) Snapshot(ctx context.Context) (types.StatsSnapshot, error) {
	total, err := a.store.Count(ctx, "")
	if err != nil {
		return types.StatsSnapshot{}, fmt.Errorf("stats: count executions: %w", err)
	}
	blocks, err := a.store.Count(ctx, store.StatusBlocked)
	if err != nil {
		return types.StatsSnapshot{}, fmt.Errorf("stats: count blocks: %w", err)
	}
	health, agents, err := a.monitor.SystemHealth(ctx)
	if err != nil {
		return types.StatsSnapshot{}, fmt.Errorf("stats: monitor: %w", err)
	}

	return types.StatsSnapshot{
		TotalExecutions: a.baseline.Total + total,
		PolicyBlocks:    a.baseline.Blocks + blocks,
		SystemHealth:    health,
		ActiveAgents:    agents,
	}, nil
}
