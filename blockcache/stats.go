package blockcache

// Stats is a point-in-time copy of the cache counters.
type Stats struct {
	Name          string `json:"name"`
	Capacity      int    `json:"capacity"`
	Size          int    `json:"size"`
	TotalAccesses uint64 `json:"total_accesses"`
	Hits          uint64 `json:"hits"`
	Misses        uint64 `json:"misses"`
	Evictions     uint64 `json:"evictions"`
}

// HitRate returns the fraction of accesses that hit, or 0 before the first
// access.
func (s Stats) HitRate() float64 {
	if s.TotalAccesses == 0 {
		return 0
	}

	return float64(s.Hits) / float64(s.TotalAccesses)
}

// MissRate returns the fraction of accesses that missed, or 0 before the first
// access.
func (s Stats) MissRate() float64 {
	if s.TotalAccesses == 0 {
		return 0
	}

	return float64(s.Misses) / float64(s.TotalAccesses)
}

// A StatsSource can report cache statistics.
type StatsSource interface {
	Stats() Stats
}
