package reconcile

import (
	"sort"

	"github.com/keithbphillips/PinballUX/internal/catalog"
	"github.com/keithbphillips/PinballUX/internal/match"
	"github.com/keithbphillips/PinballUX/internal/scanner"
)

// Assignment binds one scanned file to the record that keeps its identity.
type Assignment struct {
	Candidate scanner.Candidate
	Record    *catalog.Record

	// Breakdown is the accepted score. Exact path matches are settled
	// before scoring and carry a zero breakdown.
	Breakdown match.Breakdown

	// PathChanged means the file moved or was renamed since the record
	// last saw it.
	PathChanged bool
	// SizeChanged means the file changed in place.
	SizeChanged bool
	// Resurrected means a soft-disabled record's file is back.
	Resurrected bool
}

// Batch returns the mutations this assignment needs. A clean exact match
// needs none.
func (a Assignment) Batch() *catalog.Batch {
	batch := catalog.NewBatch(a.Record.Name)
	if a.PathChanged || a.SizeChanged {
		batch.UpdatePath(a.Record.ID, a.Candidate.Path, a.Candidate.Size)
	}
	if a.Resurrected {
		batch.Enable(a.Record.ID)
	}
	return batch
}

// Creation is a scanned file no record claimed; it becomes a new record.
type Creation struct {
	Candidate scanner.Candidate
	Record    *catalog.Record
}

// Batch returns the insertion for the new record.
func (c Creation) Batch() *catalog.Batch {
	return catalog.NewBatch(c.Record.Name).Create(c.Record)
}

// Plan is the outcome of one reconciliation pass, computed without touching
// the store.
type Plan struct {
	Assignments []Assignment
	Creations   []Creation
	// Orphans are records whose files the scan no longer sees.
	Orphans []*catalog.Record
}

// BuildPlan pairs scanned candidates with catalog records. Exact path
// matches are settled first and never rescored. The rest compete on score:
// every candidate/record pair at or above the accept threshold is ranked by
// score descending, then candidate path, then record ID, and assigned
// greedily with each side used at most once. Leftover candidates become
// creations, leftover records orphans. Soft-disabled records stay in the
// pool so a returning file re-enables its old record instead of spawning a
// duplicate.
func BuildPlan(candidates []scanner.Candidate, records []*catalog.Record, params match.Params) *Plan {
	plan := &Plan{}

	byPath := make(map[string]*catalog.Record, len(records))
	for _, record := range records {
		byPath[record.FilePath] = record
	}

	assigned := make(map[int64]bool, len(records))
	var open []scanner.Candidate
	for _, candidate := range candidates {
		record, ok := byPath[candidate.Path]
		if !ok {
			open = append(open, candidate)
			continue
		}
		assigned[record.ID] = true
		plan.Assignments = append(plan.Assignments, Assignment{
			Candidate:   candidate,
			Record:      record,
			SizeChanged: candidate.Size != record.FileSize,
			Resurrected: !record.Enabled,
		})
	}

	type pair struct {
		candidate int
		record    *catalog.Record
		breakdown match.Breakdown
	}
	var pairs []pair
	for i, candidate := range open {
		stem := candidate.Stem()
		for _, record := range records {
			if assigned[record.ID] {
				continue
			}
			breakdown, eligible := match.Score(stem, candidate.Size, candidate.Info, record, params)
			if !eligible || !params.Accepts(breakdown) {
				continue
			}
			pairs = append(pairs, pair{candidate: i, record: record, breakdown: breakdown})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if at, bt := a.breakdown.Total(), b.breakdown.Total(); at != bt {
			return at > bt
		}
		if pa, pb := open[a.candidate].Path, open[b.candidate].Path; pa != pb {
			return pa < pb
		}
		return a.record.ID < b.record.ID
	})

	taken := make([]bool, len(open))
	for _, p := range pairs {
		if taken[p.candidate] || assigned[p.record.ID] {
			continue
		}
		taken[p.candidate] = true
		assigned[p.record.ID] = true
		candidate := open[p.candidate]
		plan.Assignments = append(plan.Assignments, Assignment{
			Candidate:   candidate,
			Record:      p.record,
			Breakdown:   p.breakdown,
			PathChanged: true,
			SizeChanged: candidate.Size != p.record.FileSize,
			Resurrected: !p.record.Enabled,
		})
	}

	for i, candidate := range open {
		if taken[i] {
			continue
		}
		plan.Creations = append(plan.Creations, Creation{
			Candidate: candidate,
			Record: &catalog.Record{
				Name:         candidate.Info.Name,
				Manufacturer: candidate.Info.Manufacturer,
				Year:         candidate.Info.Year,
				Author:       candidate.Info.Author,
				ROMName:      candidate.Info.ROMName,
				TableType:    candidate.Info.TableType,
				Players:      candidate.Info.Players,
				Description:  candidate.Info.Description,
				FilePath:     candidate.Path,
				FileSize:     candidate.Size,
				Enabled:      true,
			},
		})
	}

	for _, record := range records {
		if !assigned[record.ID] {
			plan.Orphans = append(plan.Orphans, record)
		}
	}

	sort.Slice(plan.Assignments, func(i, j int) bool {
		return plan.Assignments[i].Candidate.Path < plan.Assignments[j].Candidate.Path
	})

	return plan
}
