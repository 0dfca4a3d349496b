package planning

import (
	"sort"
	"time"

	"github.com/BenAmorMed/ExamSupervisor/internal/models"
)

// defaultSortCapacity is the capacity ceiling assumed by the availability
// sort when a session has no bounded capacity. It is local to sorting; the
// fullness rule in Classify keeps treating 0 as unbounded. The mismatch
// reproduces the observed client behaviour, see DESIGN.md.
const defaultSortCapacity = 2

// MergeForDisplay builds the single "available sessions" view from the three
// source lists. Records are de-duplicated by ID keeping the order of first
// appearance; a record seen again in a later list refreshes the stored copy.
// Status derivation stays with Classify, whose ID sets guarantee the
// highest-precedence match wins regardless of which list a record came from.
func MergeForDisplay(all, subject, my []models.Session) []models.Session {
	merged := make([]models.Session, 0, len(all)+len(subject))
	index := make(map[int64]int, len(all)+len(subject))

	add := func(list []models.Session) {
		for _, s := range list {
			if at, seen := index[s.ID]; seen {
				merged[at] = s
				continue
			}
			index[s.ID] = len(merged)
			merged = append(merged, s)
		}
	}

	add(all)
	add(subject)
	add(my)

	return merged
}

// SortByAvailability orders sessions with vacant ones first, then ascending
// by date and start time. The sort is stable: equal keys keep their input
// order, and sessions whose dates do not parse sort after all parseable
// ones. The input slice is left untouched.
func SortByAvailability(sessions []models.Session, mine IDSet) []models.Session {
	out := make([]models.Session, len(sessions))
	copy(out, sessions)

	sort.SliceStable(out, func(i, j int) bool {
		vi := vacant(out[i], mine)
		vj := vacant(out[j], mine)
		if vi != vj {
			return vi
		}
		ti, oki := startInstant(out[i])
		tj, okj := startInstant(out[j])
		if oki != okj {
			return oki
		}
		if !oki {
			return false
		}
		return ti.Before(tj)
	})

	return out
}

// RemainingSeats reports how many supervisor seats are left for display.
// It returns nil when the capacity is unbounded and never goes negative,
// even on backend data that over-fills a session.
func RemainingSeats(s models.Session) *int {
	if s.Capacity <= 0 {
		return nil
	}
	remaining := s.Capacity - len(s.Supervisors)
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

func vacant(s models.Session, mine IDSet) bool {
	capacity := s.Capacity
	if capacity <= 0 {
		capacity = defaultSortCapacity
	}
	return len(s.Supervisors) < capacity && !mine.Has(s.ID)
}

func startInstant(s models.Session) (time.Time, bool) {
	day, err := time.Parse("2006-01-02", s.Date)
	if err != nil {
		return time.Time{}, false
	}
	return day.Add(time.Duration(clockMinutes(s.StartTime)) * time.Minute), true
}
