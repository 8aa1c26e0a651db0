// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package scheduler

import (
	"github.com/vechain/sea-bonus/node"
)

// LayerContext carries the nodes of the last finished layer, grouped by
// referrer, to the next shallower layer. A nil context makes Step rebuild it
// from storage.
type LayerContext struct {
	Layer  int
	Groups map[string][]*node.Node
}

// newLayerContext groups the nodes of a finished layer by referrer. Their own
// children are detached so only one generation stays in memory.
func newLayerContext(layer int, nodes []*node.Node) *LayerContext {
	groups := make(map[string][]*node.Node)
	for _, n := range nodes {
		n.ClearChildren()
		groups[n.Referrer] = append(groups[n.Referrer], n)
	}
	return &LayerContext{Layer: layer, Groups: groups}
}

// attach hands every parent its children and returns the referrers that have
// no parent in the layer.
func (lc *LayerContext) attach(parents []*node.Node) (orphans []string) {
	if lc == nil {
		return nil
	}
	seen := make(map[string]bool, len(parents))
	for _, p := range parents {
		p.SetChildren(lc.Groups[p.Address])
		seen[p.Address] = true
	}
	for referrer := range lc.Groups {
		if !seen[referrer] {
			orphans = append(orphans, referrer)
		}
	}
	return orphans
}

// Len returns the number of grouped nodes.
func (lc *LayerContext) Len() int {
	if lc == nil {
		return 0
	}
	n := 0
	for _, g := range lc.Groups {
		n += len(g)
	}
	return n
}
