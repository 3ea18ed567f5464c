package ratetable

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// SortKey identifies a sortable column.
type SortKey string

const (
	SortName        SortKey = "name"
	SortLink        SortKey = "link"
	SortBestProgram SortKey = "bestprogram"
	SortBestRate    SortKey = "bestrate"
)

// SortKeys lists the sortable columns.
var SortKeys = []SortKey{SortName, SortLink, SortBestProgram, SortBestRate}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseSort parses "key" or "key:asc|desc". A bare key means ascending.
func ParseSort(s string) (SortKey, Direction, error) {
	name, dir, hasDir := strings.Cut(strings.ToLower(strings.TrimSpace(s)), ":")
	key := SortKey(name)
	known := false
	for _, k := range SortKeys {
		if k == key {
			known = true
			break
		}
	}
	if !known {
		return "", "", fmt.Errorf("unknown sort column %q", name)
	}
	if !hasDir {
		return key, Asc, nil
	}
	switch Direction(dir) {
	case Asc, Desc:
		return key, Direction(dir), nil
	}
	return "", "", fmt.Errorf("unknown sort direction %q", dir)
}

func (d Direction) toggle() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

// SortState remembers the last direction of every sortable column and
// which column, if any, is currently active.
type SortState struct {
	directions map[SortKey]Direction
	active     SortKey
}

// NewSortState returns a state with every column at ascending and none active.
func NewSortState() SortState {
	dirs := make(map[SortKey]Direction, len(SortKeys))
	for _, k := range SortKeys {
		dirs[k] = Asc
	}
	return SortState{directions: dirs}
}

// Direction returns the remembered direction of a column.
func (s SortState) Direction(key SortKey) Direction {
	return s.directions[key]
}

// Active returns the active column and its direction.
func (s SortState) Active() (SortKey, Direction, bool) {
	if s.active == "" {
		return "", "", false
	}
	return s.active, s.directions[s.active], true
}

// Activate toggles the column's remembered direction and makes it the only
// active column. Unknown keys leave the state untouched.
func (s *SortState) Activate(key SortKey) (Direction, bool) {
	dir, ok := s.directions[key]
	if !ok {
		return "", false
	}
	dir = dir.toggle()
	s.directions[key] = dir
	s.active = key
	return dir, true
}

func (s SortState) clone() SortState {
	dirs := make(map[SortKey]Direction, len(s.directions))
	for k, v := range s.directions {
		dirs[k] = v
	}
	return SortState{directions: dirs, active: s.active}
}

// reorder rebuilds the display order from the visible rows. Ascending is a
// stable sort over original order; descending is its exact reverse.
func (t *Table) reorder() {
	order := make([]int, 0, len(t.rows))
	for i := range t.rows {
		if t.rows[i].Visible {
			order = append(order, i)
		}
	}

	if key, dir, ok := t.sort.Active(); ok {
		sort.SliceStable(order, func(a, b int) bool {
			return t.less(key, order[a], order[b])
		})
		if dir == Desc {
			for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
				order[i], order[j] = order[j], order[i]
			}
		}
	}

	t.order = order
}

func (t *Table) less(key SortKey, a, b int) bool {
	ra, rb := &t.rows[a], &t.rows[b]
	if key == SortBestRate {
		return rateKey(ra) < rateKey(rb)
	}
	return t.collator.CompareString(textKey(key, ra), textKey(key, rb)) < 0
}

// rateKey sorts rows without a selected record after every numeric rate.
func rateKey(r *Row) float64 {
	if r.best == nil || r.best.NumericRate == nil {
		return math.Inf(1)
	}
	return *r.best.NumericRate
}

func textKey(key SortKey, r *Row) string {
	switch key {
	case SortName:
		return r.Name
	case SortLink:
		return r.Link
	case SortBestProgram:
		return r.BestProgramDisplay()
	default:
		return ""
	}
}
