// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"sync"
	"time"
)

type Tick struct {
	LastBonusTime  int64      `json:"lastBonusTime"`
	FinishedAt     *time.Time `json:"finishedAt"`
	CurrentLayer   int        `json:"currentLayer"`
	LayerStartedAt *time.Time `json:"layerStartedAt"`
}

type Status struct {
	Healthy           bool       `json:"healthy"`
	Tick              *Tick      `json:"tick"`
	LastLifecyclePass *time.Time `json:"lastLifecyclePass"`
}

// Health tracks the progress of the engine loop. The engine is healthy when
// it showed any activity within the allowed gap.
type Health struct {
	lock          sync.RWMutex
	maxGap        time.Duration
	tickFinished  time.Time
	lastBonusTime int64
	layer         int
	layerStarted  time.Time
	lifecycle     time.Time
}

func New(maxGap time.Duration) *Health {
	return &Health{maxGap: maxGap}
}

func (h *Health) TickFinished(bonusTime int64) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.tickFinished = time.Now()
	h.lastBonusTime = bonusTime
}

func (h *Health) LayerStarted(layer int) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.layer = layer
	h.layerStarted = time.Now()
}

func (h *Health) LifecycleFinished() {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.lifecycle = time.Now()
}

func (h *Health) Status() (*Status, error) {
	h.lock.RLock()
	defer h.lock.RUnlock()

	last := h.lifecycle
	for _, t := range []time.Time{h.tickFinished, h.layerStarted} {
		if t.After(last) {
			last = t
		}
	}
	healthy := !last.IsZero() && time.Since(last) <= h.maxGap

	tick := &Tick{
		LastBonusTime: h.lastBonusTime,
		CurrentLayer:  h.layer,
	}
	if !h.tickFinished.IsZero() {
		finished := h.tickFinished
		tick.FinishedAt = &finished
	}
	if !h.layerStarted.IsZero() {
		started := h.layerStarted
		tick.LayerStartedAt = &started
	}
	status := &Status{
		Healthy: healthy,
		Tick:    tick,
	}
	if !h.lifecycle.IsZero() {
		pass := h.lifecycle
		status.LastLifecyclePass = &pass
	}
	return status, nil
}
