// Package healthprobe serves the process liveness and readiness
// endpoints. Liveness is unconditional once the process is up; readiness
// flips on after startup wiring completes. The payload also carries
// scan-cycle freshness so an operator can tell a live process from one
// whose poll loop has stalled.
package healthprobe

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Probe tracks process readiness and scan-cycle freshness.
type Probe struct {
	startedAt time.Time
	ready     atomic.Bool
	cycles    atomic.Int64
	lastCycle atomic.Int64 // unix nanos of the last completed cycle, 0 until one completes
}

// New returns a Probe that is alive but not yet ready.
func New() *Probe {
	return &Probe{startedAt: time.Now()}
}

// SetReady marks the process ready (or not) to serve traffic.
func (p *Probe) SetReady(ready bool) {
	p.ready.Store(ready)
}

// CycleCompleted records that a scan cycle finished.
func (p *Probe) CycleCompleted() {
	p.cycles.Add(1)
	p.lastCycle.Store(time.Now().UnixNano())
}

type statusPayload struct {
	Status          string     `json:"status"`
	UptimeSeconds   float64    `json:"uptime_seconds"`
	CyclesCompleted int64      `json:"cycles_completed"`
	LastCycleAt     *time.Time `json:"last_cycle_at,omitempty"`
}

func (p *Probe) payload(status string) statusPayload {
	out := statusPayload{
		Status:          status,
		UptimeSeconds:   time.Since(p.startedAt).Seconds(),
		CyclesCompleted: p.cycles.Load(),
	}
	if nanos := p.lastCycle.Load(); nanos > 0 {
		at := time.Unix(0, nanos)
		out.LastCycleAt = &at
	}
	return out
}

// Health is the liveness handler: 200 whenever the process is running.
func (p *Probe) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, p.payload("healthy"))
	}
}

// Ready is the readiness handler: 200 once SetReady(true) has been
// called, 503 before that.
func (p *Probe) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !p.ready.Load() {
			writeJSON(w, http.StatusServiceUnavailable, p.payload("not_ready"))
			return
		}
		writeJSON(w, http.StatusOK, p.payload("ready"))
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
