package passes

import (
	"sort"

	"catalog-sync/core/reconcile"
	"catalog-sync/feature/catalog/remote"
)

// Pair is the PvE and PvP view of one item. Either side may be nil.
type Pair struct {
	ID  string
	PvE *remote.MarketItem
	PvP *remote.MarketItem
}

// Primary returns the side mode-agnostic fields are read from: PvE, else PvP.
func (p Pair) Primary() *remote.MarketItem {
	if p.PvE != nil {
		return p.PvE
	}
	return p.PvP
}

// Updated returns the newer of the two remote timestamps.
func (p Pair) Updated() string {
	var a, b string
	if p.PvE != nil {
		a = p.PvE.Updated
	}
	if p.PvP != nil {
		b = p.PvP.Updated
	}
	ta, tb := reconcile.ParseTimestamp(a), reconcile.ParseTimestamp(b)
	switch {
	case ta == nil:
		return b
	case tb == nil:
		return a
	case tb.After(*ta):
		return b
	default:
		return a
	}
}

// Merge joins the two datasets by BSG id, PvE first then PvP, and returns the
// pairs sorted by id. Entries without an id are never joined: each becomes its
// own pair with an empty ID so the pass reports it as a failed record.
func Merge(pve, pvp []remote.MarketItem) []Pair {
	byID := make(map[string]*Pair, len(pve))
	var keyless []Pair

	for i := range pve {
		item := &pve[i]
		if item.BsgID == "" {
			keyless = append(keyless, Pair{PvE: item})
			continue
		}
		p, ok := byID[item.BsgID]
		if !ok {
			p = &Pair{ID: item.BsgID}
			byID[item.BsgID] = p
		}
		p.PvE = item
	}

	for i := range pvp {
		item := &pvp[i]
		if item.BsgID == "" {
			keyless = append(keyless, Pair{PvP: item})
			continue
		}
		p, ok := byID[item.BsgID]
		if !ok {
			p = &Pair{ID: item.BsgID}
			byID[item.BsgID] = p
		}
		p.PvP = item
	}

	pairs := make([]Pair, 0, len(byID)+len(keyless))
	for _, p := range byID {
		pairs = append(pairs, *p)
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].ID < pairs[j].ID })
	return append(pairs, keyless...)
}
