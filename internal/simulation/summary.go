package simulation

import (
	"sort"
	"time"

	"rras-datagen/internal/classification"
	"rras-datagen/internal/entities"
	"rras-datagen/internal/sink"
)

// Counts tallies delivery outcomes for one record kind.
type Counts struct {
	Pushed    int `json:"pushed"`
	Failed    int `json:"failed"`
	Duplicate int `json:"duplicate"`
	Skipped   int `json:"skipped"`
}

// Summary describes a run so far.
type Summary struct {
	RunID        string                            `json:"run_id"`
	StartedAt    time.Time                         `json:"started_at"`
	Batches      int                               `json:"batches"`
	Kinds        map[entities.Kind]Counts          `json:"kinds"`
	AssetClasses map[classification.AssetClass]int `json:"asset_classes"`
	NPL          int                               `json:"npl_loans"`
	LastError    string                            `json:"last_error,omitempty"`
}

func newSummary(runID string, started time.Time) Summary {
	return Summary{
		RunID:        runID,
		StartedAt:    started,
		Kinds:        make(map[entities.Kind]Counts),
		AssetClasses: make(map[classification.AssetClass]int),
	}
}

func (s *Summary) record(res sink.Result) {
	c := s.Kinds[res.Kind]
	switch {
	case !res.OK():
		c.Failed++
		s.LastError = res.Err.Error()
	case res.Duplicate:
		c.Duplicate++
	default:
		c.Pushed++
	}
	s.Kinds[res.Kind] = c
}

func (s *Summary) skip(kind entities.Kind, n int) {
	c := s.Kinds[kind]
	c.Skipped += n
	s.Kinds[kind] = c
}

func (s *Summary) loan(l *entities.Loan) {
	s.AssetClasses[l.AssetClass]++
	if l.IsNPL {
		s.NPL++
	}
}

// Total sums counts across kinds.
func (s Summary) Total() Counts {
	var t Counts
	for _, c := range s.Kinds {
		t.Pushed += c.Pushed
		t.Failed += c.Failed
		t.Duplicate += c.Duplicate
		t.Skipped += c.Skipped
	}
	return t
}

// KindsSorted returns the kinds seen, in name order.
func (s Summary) KindsSorted() []entities.Kind {
	out := make([]entities.Kind, 0, len(s.Kinds))
	for k := range s.Kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s Summary) clone() Summary {
	out := s
	out.Kinds = make(map[entities.Kind]Counts, len(s.Kinds))
	for k, v := range s.Kinds {
		out.Kinds[k] = v
	}
	out.AssetClasses = make(map[classification.AssetClass]int, len(s.AssetClasses))
	for k, v := range s.AssetClasses {
		out.AssetClasses[k] = v
	}
	return out
}
