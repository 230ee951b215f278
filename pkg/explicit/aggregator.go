package explicit

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/perspective-viz/pkg/models"
)

// Aggregator collects the explicit-community attributes of a perspective:
// the global catalog of distinct values per key, and per-community value counts.
type Aggregator struct {
	catalog  []models.AttributeValues
	keyIndex map[string]int
	seen     []map[string]bool

	communities map[int]*communityCounts
}

// communityCounts keeps the keys and values of one community in encounter order
type communityCounts struct {
	keys   []string
	values map[string]*valueCounts
}

type valueCounts struct {
	order  []string
	counts map[string]int
}

// ValueCount is the number of members of a community holding a value
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// KeyCounts are the value counts of one attribute key inside a community
type KeyCounts struct {
	Key    string       `json:"key"`
	Values []ValueCount `json:"values"`
}

// Percentage is the share of a value among the non-anonymous members of a community
type Percentage struct {
	Value   string `json:"value"`
	Percent int    `json:"percent"`
}

// KeyBreakdown is the ordered percentage list of one attribute key
type KeyBreakdown struct {
	Key         string       `json:"key"`
	Percentages []Percentage `json:"percentages"`
}

// NewAggregator creates an empty aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{
		keyIndex:    make(map[string]int),
		communities: make(map[int]*communityCounts),
	}
}

// Scan records every node's attributes, in the node's own key order
func (a *Aggregator) Scan(nodes []*models.Node) {
	for _, node := range nodes {
		a.ScanNode(node, true)
	}
}

// ScanNode records one node. When updateCatalog is false only the community counts change,
// which is how a perspective reusing another perspective's channels is scanned.
func (a *Aggregator) ScanNode(node *models.Node, updateCatalog bool) {
	for _, attr := range node.Attributes {
		if updateCatalog {
			a.recordValue(attr.Key, attr.Value)
		}
		a.countValue(node.Community, attr.Key, attr.Value)
	}
}

func (a *Aggregator) recordValue(key, value string) {
	idx, ok := a.keyIndex[key]
	if !ok {
		idx = len(a.catalog)
		a.keyIndex[key] = idx
		a.catalog = append(a.catalog, models.AttributeValues{Key: key})
		a.seen = append(a.seen, make(map[string]bool))
	}

	if a.seen[idx][value] {
		return
	}
	a.seen[idx][value] = true
	a.catalog[idx].Values = append(a.catalog[idx].Values, value)
}

func (a *Aggregator) countValue(community int, key, value string) {
	cc, ok := a.communities[community]
	if !ok {
		cc = &communityCounts{values: make(map[string]*valueCounts)}
		a.communities[community] = cc
	}

	vc, ok := cc.values[key]
	if !ok {
		vc = &valueCounts{counts: make(map[string]int)}
		cc.values[key] = vc
		cc.keys = append(cc.keys, key)
	}

	if _, ok := vc.counts[value]; !ok {
		vc.order = append(vc.order, value)
	}
	vc.counts[value]++
}

// Catalog returns a copy of the distinct values per key, keys and values in discovery order
func (a *Aggregator) Catalog() []models.AttributeValues {
	out := make([]models.AttributeValues, len(a.catalog))
	for i, entry := range a.catalog {
		out[i] = models.AttributeValues{
			Key:    entry.Key,
			Values: append([]string(nil), entry.Values...),
		}
	}
	return out
}

// Counts returns the raw value counts of a community
func (a *Aggregator) Counts(community int) []KeyCounts {
	cc, ok := a.communities[community]
	if !ok {
		return nil
	}

	out := make([]KeyCounts, 0, len(cc.keys))
	for _, key := range cc.keys {
		vc := cc.values[key]
		kc := KeyCounts{Key: key, Values: make([]ValueCount, 0, len(vc.order))}
		for _, value := range vc.order {
			kc.Values = append(kc.Values, ValueCount{Value: value, Count: vc.counts[value]})
		}
		out = append(out, kc)
	}
	return out
}

// PercentileBreakdown converts a community's counts to integer percentages over its
// non-anonymous members, sorted descending with ties kept in encounter order.
// Percentages are rounded independently and may not sum to exactly 100.
// A community without non-anonymous members has no breakdown and returns false.
func (a *Aggregator) PercentileBreakdown(community *models.Community) ([]KeyBreakdown, bool) {
	denominator := len(community.Members) - len(community.AnonMembers)
	if denominator <= 0 {
		log.Debug().
			Int("community", community.Index).
			Int("members", len(community.Members)).
			Int("anonymous", len(community.AnonMembers)).
			Msg("Skipping percentile breakdown for community without identified members")
		return nil, false
	}

	counts := a.Counts(community.Index)
	out := make([]KeyBreakdown, 0, len(counts))

	for _, kc := range counts {
		kb := KeyBreakdown{Key: kc.Key, Percentages: make([]Percentage, 0, len(kc.Values))}
		for _, vc := range kc.Values {
			kb.Percentages = append(kb.Percentages, Percentage{
				Value:   vc.Value,
				Percent: int(math.Round(float64(vc.Count) / float64(denominator) * 100)),
			})
		}

		sort.SliceStable(kb.Percentages, func(i, j int) bool {
			return kb.Percentages[i].Percent > kb.Percentages[j].Percent
		})

		out = append(out, kb)
	}

	return out, true
}
