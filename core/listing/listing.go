// Package listing is the reusable list-presentation state machine behind the
// admin tables: search, filter, sort, pagination and bulk selection over an
// externally supplied collection. A dozen screens render through it instead
// of re-implementing the same handlers per entity type.
//
// All state is transient UI state: a View is created per screen, holds no
// persistence and performs no I/O. The visible slice is always derived in the
// fixed order filter → search → sort → paginate.
package listing

import (
	"fmt"
	"sort"
	"strings"
)

type Direction int

const (
	Ascending Direction = iota
	Descending
)

const (
	// AllFilterValue clears a filter dimension's restriction.
	AllFilterValue = "all"

	DefaultPageSize = 10
)

// Descriptor parameterizes a View over a record type: how to identify a
// record, which text fields the search matches (OR semantics), the available
// filter dimensions (AND semantics across dimensions) and the available sort
// keys with their natural-order comparators.
type Descriptor[T any] struct {
	ID           func(T) string
	SearchFields []func(T) string
	Filters      map[string]func(rec T, value string) bool
	SortKeys     map[string]func(a, b T) int
}

type View[T any] struct {
	desc     Descriptor[T]
	items    []T
	search   string
	filters  map[string]string
	sortKey  string
	sortDir  Direction
	page     int // 1-based
	pageSize int
	selected map[string]struct{}
}

func NewView[T any](desc Descriptor[T], items []T) *View[T] {
	if desc.ID == nil {
		panic("listing: Descriptor.ID accessor is required")
	}
	return &View[T]{
		desc:     desc,
		items:    items,
		filters:  make(map[string]string),
		page:     1,
		pageSize: DefaultPageSize,
		selected: make(map[string]struct{}),
	}
}

// Reset replaces the backing collection, e.g. after a refetch. Selected ids
// that no longer exist are dropped and the current page is re-clamped.
func (v *View[T]) Reset(items []T) {
	v.items = items
	known := make(map[string]struct{}, len(items))
	for _, rec := range items {
		known[v.desc.ID(rec)] = struct{}{}
	}
	for id := range v.selected {
		if _, ok := known[id]; !ok {
			delete(v.selected, id)
		}
	}
	v.page = clamp(v.page, 1, v.LastPage())
}

// SetSearch sets the case-insensitive substring query and returns to page 1
// so a narrower result set never leaves the user stranded past the last page.
func (v *View[T]) SetSearch(query string) {
	v.search = query
	v.page = 1
}

// SetFilter sets one filter dimension and returns to page 1. The sentinel
// value "all" (case-insensitive) or an empty value clears the dimension.
// An unknown dimension is a programmer error.
func (v *View[T]) SetFilter(dimension, value string) {
	if _, ok := v.desc.Filters[dimension]; !ok {
		panic(fmt.Sprintf("listing: unknown filter dimension %q", dimension))
	}
	v.filters[dimension] = value
	v.page = 1
}

// SetSort selects the sort key; selecting the current key again flips the
// direction. An unknown key is a programmer error.
func (v *View[T]) SetSort(key string) {
	if _, ok := v.desc.SortKeys[key]; !ok {
		panic(fmt.Sprintf("listing: unknown sort key %q", key))
	}
	if v.sortKey == key {
		if v.sortDir == Ascending {
			v.sortDir = Descending
		} else {
			v.sortDir = Ascending
		}
		return
	}
	v.sortKey = key
	v.sortDir = Ascending
}

// Sortable reports whether key is a known sort key; transport layers use it
// to ignore junk from query params instead of panicking.
func (v *View[T]) Sortable(key string) bool {
	_, ok := v.desc.SortKeys[key]
	return ok
}

// Filterable reports whether dimension is a known filter dimension.
func (v *View[T]) Filterable(dimension string) bool {
	_, ok := v.desc.Filters[dimension]
	return ok
}

// SetPageSize rejects non-positive sizes, keeping the prior valid value.
func (v *View[T]) SetPageSize(n int) {
	if n <= 0 {
		return
	}
	v.pageSize = n
	v.page = clamp(v.page, 1, v.LastPage())
}

// SetPage clamps to [1, LastPage]; LastPage is computed from the filtered,
// searched count, not the raw item count.
func (v *View[T]) SetPage(n int) {
	v.page = clamp(n, 1, v.LastPage())
}

func (v *View[T]) Search() string   { return v.search }
func (v *View[T]) Page() int        { return v.page }
func (v *View[T]) PageSize() int    { return v.pageSize }
func (v *View[T]) SortKey() string  { return v.sortKey }
func (v *View[T]) SortDirection() Direction { return v.sortDir }

// Total is the filtered, searched record count.
func (v *View[T]) Total() int {
	return len(v.narrowed())
}

// LastPage is never 0: an empty collection still has one (empty) page so
// pagination controls remain well-defined.
func (v *View[T]) LastPage() int {
	return lastPage(v.Total(), v.pageSize)
}

// VisiblePage derives the exact slice of records to render, applying the
// filter predicates, then the search predicate, then the stable sort, then
// the page slice, in that fixed order.
func (v *View[T]) VisiblePage() []T {
	recs := v.sorted(v.narrowed())

	start := (v.page - 1) * v.pageSize
	if start >= len(recs) {
		return []T{}
	}
	end := start + v.pageSize
	if end > len(recs) {
		end = len(recs)
	}
	return recs[start:end]
}

// PageNumbers returns the collapsed page-number list for the current state.
func (v *View[T]) PageNumbers() []int {
	return PageNumbers(v.page, v.LastPage())
}

// ToggleSelectAll adds (or removes) every identifier of the currently visible
// page to the selection. Selections made on other pages are preserved, so a
// bulk action can span pages.
func (v *View[T]) ToggleSelectAll(checked bool) {
	for _, rec := range v.VisiblePage() {
		if checked {
			v.selected[v.desc.ID(rec)] = struct{}{}
		} else {
			delete(v.selected, v.desc.ID(rec))
		}
	}
}

func (v *View[T]) ToggleSelect(id string, checked bool) {
	if checked {
		v.selected[id] = struct{}{}
	} else {
		delete(v.selected, id)
	}
}

// AllSelected is true iff the visible page is non-empty and every one of its
// ids is selected.
func (v *View[T]) AllSelected() bool {
	page := v.VisiblePage()
	if len(page) == 0 {
		return false
	}
	for _, rec := range page {
		if _, ok := v.selected[v.desc.ID(rec)]; !ok {
			return false
		}
	}
	return true
}

// SomeSelected is the indeterminate checkbox state: at least one but not all
// visible-page ids are selected.
func (v *View[T]) SomeSelected() bool {
	page := v.VisiblePage()
	var n int
	for _, rec := range page {
		if _, ok := v.selected[v.desc.ID(rec)]; ok {
			n++
		}
	}
	return n > 0 && n < len(page)
}

func (v *View[T]) Selected(id string) bool {
	_, ok := v.selected[id]
	return ok
}

// SelectedIDs returns the selection in deterministic order.
func (v *View[T]) SelectedIDs() []string {
	ids := make([]string, 0, len(v.selected))
	for id := range v.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// narrowed applies the filter predicates then the search predicate,
// preserving input order.
func (v *View[T]) narrowed() []T {
	recs := make([]T, 0, len(v.items))
	for _, rec := range v.items {
		if v.matchesFilters(rec) {
			recs = append(recs, rec)
		}
	}

	query := strings.ToLower(strings.TrimSpace(v.search))
	if query == "" {
		return recs
	}
	searched := recs[:0]
	for _, rec := range recs {
		if v.matchesSearch(rec, query) {
			searched = append(searched, rec)
		}
	}
	return searched
}

func (v *View[T]) matchesFilters(rec T) bool {
	for dimension, value := range v.filters {
		if value == "" || strings.EqualFold(value, AllFilterValue) {
			continue
		}
		if !v.desc.Filters[dimension](rec, value) {
			return false
		}
	}
	return true
}

func (v *View[T]) matchesSearch(rec T, query string) bool {
	for _, field := range v.desc.SearchFields {
		if strings.Contains(strings.ToLower(field(rec)), query) {
			return true
		}
	}
	return false
}

// sorted returns a stably sorted copy; equal keys preserve prior relative
// order. An unset sort key preserves input order.
func (v *View[T]) sorted(recs []T) []T {
	if v.sortKey == "" {
		return recs
	}
	cmp := v.desc.SortKeys[v.sortKey]
	out := make([]T, len(recs))
	copy(out, recs)
	sort.SliceStable(out, func(i, j int) bool {
		if v.sortDir == Descending {
			return cmp(out[j], out[i]) < 0
		}
		return cmp(out[i], out[j]) < 0
	})
	return out
}

func lastPage(total, pageSize int) int {
	if total == 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
