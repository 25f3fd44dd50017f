package scheduler

import (
	"sort"

	"github.com/campusgrid/timetable-api/internal/models"
)

// SlotBlock is an ordered, same-day run of contiguous slots treated as one
// placement candidate. Blocks are derived data, rebuilt per run, and never
// persisted.
type SlotBlock struct {
	Slots []models.TimeSlot
	Hours int
}

// Day returns the weekday the block sits on.
func (b SlotBlock) Day() models.Weekday {
	return b.Slots[0].Day
}

// StartMin returns the block's first minute of day.
func (b SlotBlock) StartMin() int {
	return b.Slots[0].StartMin
}

// EndMin returns the block's last minute of day.
func (b SlotBlock) EndMin() int {
	return b.Slots[len(b.Slots)-1].EndMin
}

// IsLab reports whether the block is made of lab slots.
func (b SlotBlock) IsLab() bool {
	return b.Slots[0].IsLab
}

// DurationMin returns the summed slot minutes, ignoring boundary gaps
// (contiguous blocks have none).
func (b SlotBlock) DurationMin() int {
	total := 0
	for _, s := range b.Slots {
		total += s.DurationMin()
	}
	return total
}

// Overlaps reports whether any slot of the block collides with the given slot.
func (b SlotBlock) Overlaps(slot models.TimeSlot) bool {
	for _, s := range b.Slots {
		if s.Overlaps(slot) {
			return true
		}
	}
	return false
}

// BuildBlocks derives every usable placement candidate from the slot grid:
// one single-slot block per atomic slot, one two-slot block per contiguous
// same-day non-lab pair (merged double lectures), and one block per run of
// 2 or 3 contiguous same-cluster lab slots.
func BuildBlocks(slots []models.TimeSlot) []SlotBlock {
	sorted := make([]models.TimeSlot, len(slots))
	copy(sorted, slots)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Day != sorted[j].Day {
			return sorted[i].Day < sorted[j].Day
		}
		if sorted[i].StartMin != sorted[j].StartMin {
			return sorted[i].StartMin < sorted[j].StartMin
		}
		return sorted[i].ID < sorted[j].ID
	})

	var blocks []SlotBlock
	for _, slot := range sorted {
		blocks = append(blocks, SlotBlock{Slots: []models.TimeSlot{slot}, Hours: hoursOf(slot.DurationMin())})
	}

	blocks = append(blocks, lecturePairs(sorted)...)
	blocks = append(blocks, labRuns(sorted)...)
	return blocks
}

// lecturePairs builds duration-2 blocks from same-day non-lab slots whose
// boundaries touch exactly.
func lecturePairs(sorted []models.TimeSlot) []SlotBlock {
	var blocks []SlotBlock
	for i, first := range sorted {
		if first.IsLab {
			continue
		}
		for _, second := range sorted[i+1:] {
			if second.Day != first.Day || second.IsLab {
				continue
			}
			if second.StartMin > first.EndMin {
				break
			}
			if second.StartMin == first.EndMin {
				blocks = append(blocks, SlotBlock{
					Slots: []models.TimeSlot{first, second},
					Hours: hoursOf(first.DurationMin() + second.DurationMin()),
				})
			}
		}
	}
	return blocks
}

// labRuns walks each cluster's slots in start order and takes sliding windows
// of 2 and 3 while contiguity holds.
func labRuns(sorted []models.TimeSlot) []SlotBlock {
	byCluster := make(map[string][]models.TimeSlot)
	var clusters []string
	for _, slot := range sorted {
		if !slot.IsLab || slot.Cluster == "" {
			continue
		}
		if _, seen := byCluster[slot.Cluster]; !seen {
			clusters = append(clusters, slot.Cluster)
		}
		byCluster[slot.Cluster] = append(byCluster[slot.Cluster], slot)
	}
	sort.Strings(clusters)

	var blocks []SlotBlock
	for _, cluster := range clusters {
		run := byCluster[cluster]
		for size := 2; size <= 3; size++ {
			for start := 0; start+size <= len(run); start++ {
				window := run[start : start+size]
				if !contiguous(window) {
					continue
				}
				slots := make([]models.TimeSlot, size)
				copy(slots, window)
				blocks = append(blocks, SlotBlock{Slots: slots, Hours: hoursOf(SlotBlock{Slots: slots}.DurationMin())})
			}
		}
	}
	return blocks
}

func contiguous(window []models.TimeSlot) bool {
	for i := 1; i < len(window); i++ {
		if window[i].Day != window[i-1].Day || window[i].StartMin != window[i-1].EndMin {
			return false
		}
	}
	return true
}

func hoursOf(minutes int) int {
	return (minutes + 30) / 60
}

// matchesDuration reports whether the block covers the required hours within
// the configured epsilon (exact by default).
func (e *Engine) matchesDuration(block SlotBlock, hours int) bool {
	diff := block.DurationMin() - hours*60
	if diff < 0 {
		diff = -diff
	}
	return diff <= e.cfg.DurationEpsilonMin
}
