package listing

import (
	"reflect"
	"strings"
	"testing"
)

type item struct {
	id   string
	name string
	kind string
	age  int
}

func testDescriptor() Descriptor[item] {
	return Descriptor[item]{
		ID:           func(it item) string { return it.id },
		SearchFields: []func(item) string{func(it item) string { return it.name }},
		Filters: map[string]func(item, string) bool{
			"kind": func(it item, value string) bool { return it.kind == value },
		},
		SortKeys: map[string]func(a, b item) int{
			"name": func(a, b item) int { return strings.Compare(a.name, b.name) },
			"age":  func(a, b item) int { return a.age - b.age },
		},
	}
}

func names(recs []item) []string {
	out := make([]string, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.name)
	}
	return out
}

func manyItems(n int) []item {
	items := make([]item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, item{
			id:   "id" + string(rune('a'+i%26)) + string(rune('a'+i/26)),
			name: "Item " + string(rune('a'+i%26)) + string(rune('a'+i/26)),
			kind: "even",
			age:  i,
		})
	}
	return items
}

func TestView_SearchRoundTrip(t *testing.T) {
	v := NewView(testDescriptor(), manyItems(23))
	v.SetPage(3)

	v.SetSearch("item a")
	if v.Page() != 1 {
		t.Errorf("Page() after SetSearch = %d, want 1", v.Page())
	}
	if v.Total() >= 23 {
		t.Errorf("Total() after search = %d, want narrowed", v.Total())
	}

	v.SetSearch("")
	if v.Page() != 1 {
		t.Errorf("Page() after clearing search = %d, want 1", v.Page())
	}
	if v.Total() != 23 {
		t.Errorf("Total() after clearing search = %d, want 23", v.Total())
	}
}

func TestView_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	v := NewView(testDescriptor(), []item{
		{id: "a", name: "Ana Martin"},
		{id: "b", name: "Bruno"},
		{id: "c", name: "Joanna"},
	})
	v.SetSearch("AN")
	got := names(v.VisiblePage())
	want := []string{"Ana Martin", "Joanna"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("VisiblePage() = %v, want %v", got, want)
	}
}

func TestView_SortToggle(t *testing.T) {
	items := []item{
		{id: "a", name: "Bravo"},
		{id: "b", name: "Alpha"},
		{id: "c", name: "Charlie"},
	}
	v := NewView(testDescriptor(), items)

	// initial state preserves input order
	if got := names(v.VisiblePage()); !reflect.DeepEqual(got, []string{"Bravo", "Alpha", "Charlie"}) {
		t.Errorf("unsorted VisiblePage() = %v", got)
	}

	v.SetSort("name")
	if got := names(v.VisiblePage()); !reflect.DeepEqual(got, []string{"Alpha", "Bravo", "Charlie"}) {
		t.Errorf("ascending VisiblePage() = %v", got)
	}

	v.SetSort("name")
	if got := names(v.VisiblePage()); !reflect.DeepEqual(got, []string{"Charlie", "Bravo", "Alpha"}) {
		t.Errorf("descending VisiblePage() = %v", got)
	}

	v.SetSort("name")
	if got := names(v.VisiblePage()); !reflect.DeepEqual(got, []string{"Alpha", "Bravo", "Charlie"}) {
		t.Errorf("re-ascending VisiblePage() = %v", got)
	}

	// switching keys resets to ascending
	v.SetSort("name") // descending again
	v.SetSort("age")
	if v.SortDirection() != Ascending {
		t.Errorf("SortDirection() after key switch = %v, want Ascending", v.SortDirection())
	}
}

func TestView_StableSortPreservesTies(t *testing.T) {
	items := []item{
		{id: "a", name: "Dup", age: 1},
		{id: "b", name: "Dup", age: 2},
		{id: "c", name: "Dup", age: 3},
	}
	v := NewView(testDescriptor(), items)
	v.SetSort("name")

	page := v.VisiblePage()
	got := []string{page[0].id, page[1].id, page[2].id}
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("tied records reordered: %v", got)
	}
}

func TestView_PaginationInvariant(t *testing.T) {
	items := manyItems(23)
	v := NewView(testDescriptor(), items)

	if v.LastPage() != 3 {
		t.Fatalf("LastPage() = %d, want 3", v.LastPage())
	}

	var all []item
	for p := 1; p <= v.LastPage(); p++ {
		v.SetPage(p)
		page := v.VisiblePage()
		if len(page) > v.PageSize() {
			t.Errorf("page %d has %d records, want <= %d", p, len(page), v.PageSize())
		}
		all = append(all, page...)
	}
	if !reflect.DeepEqual(all, items) {
		t.Errorf("concatenated pages do not reproduce the collection")
	}

	v.SetPage(99)
	if v.Page() != 3 {
		t.Errorf("Page() after SetPage(99) = %d, want 3", v.Page())
	}
	v.SetPage(-4)
	if v.Page() != 1 {
		t.Errorf("Page() after SetPage(-4) = %d, want 1", v.Page())
	}
}

func TestView_EmptyCollection(t *testing.T) {
	v := NewView(testDescriptor(), nil)

	if v.LastPage() != 1 {
		t.Errorf("LastPage() = %d, want 1", v.LastPage())
	}
	if got := v.VisiblePage(); len(got) != 0 {
		t.Errorf("VisiblePage() = %v, want empty", got)
	}
	if got := v.PageNumbers(); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("PageNumbers() = %v, want [1]", got)
	}
	if v.AllSelected() {
		t.Error("AllSelected() on empty page = true, want false")
	}
}

func TestView_SelectionPersistsAcrossPages(t *testing.T) {
	items := manyItems(23)
	v := NewView(testDescriptor(), items)

	v.ToggleSelectAll(true)
	page1 := v.VisiblePage()
	v.SetPage(2)
	v.ToggleSelectAll(true)
	page2 := v.VisiblePage()

	want := make(map[string]struct{})
	for _, rec := range append(page1, page2...) {
		want[rec.id] = struct{}{}
	}
	got := v.SelectedIDs()
	if len(got) != len(want) {
		t.Fatalf("SelectedIDs() has %d ids, want %d", len(got), len(want))
	}
	for _, id := range got {
		if _, ok := want[id]; !ok {
			t.Errorf("unexpected selected id %q", id)
		}
	}

	// unchecking removes exactly this page's ids, page 1 selection survives
	v.ToggleSelectAll(false)
	if len(v.SelectedIDs()) != len(page1) {
		t.Errorf("SelectedIDs() after untick = %d ids, want %d", len(v.SelectedIDs()), len(page1))
	}
}

func TestView_SelectAllStates(t *testing.T) {
	v := NewView(testDescriptor(), manyItems(12))

	if v.AllSelected() || v.SomeSelected() {
		t.Error("fresh view reports selection")
	}

	v.ToggleSelect(v.VisiblePage()[0].id, true)
	if v.AllSelected() {
		t.Error("AllSelected() with one id = true")
	}
	if !v.SomeSelected() {
		t.Error("SomeSelected() with one id = false")
	}

	v.ToggleSelectAll(true)
	if !v.AllSelected() {
		t.Error("AllSelected() after select-all = false")
	}
	if v.SomeSelected() {
		t.Error("SomeSelected() after select-all = true")
	}
}

func TestView_FiltersCombineWithAND(t *testing.T) {
	desc := testDescriptor()
	desc.Filters["minor"] = func(it item, value string) bool {
		return (it.age < 18) == (value == "yes")
	}
	v := NewView(desc, []item{
		{id: "a", name: "Ana", kind: "pretest", age: 7},
		{id: "b", name: "Bruno", kind: "pretest", age: 30},
		{id: "c", name: "Carla", kind: "posttest", age: 7},
	})

	v.SetFilter("kind", "pretest")
	v.SetFilter("minor", "yes")
	if got := names(v.VisiblePage()); !reflect.DeepEqual(got, []string{"Ana"}) {
		t.Errorf("VisiblePage() = %v, want [Ana]", got)
	}

	// the "All" sentinel clears one dimension, the other stays active
	v.SetFilter("kind", "All")
	if got := names(v.VisiblePage()); !reflect.DeepEqual(got, []string{"Ana", "Carla"}) {
		t.Errorf("VisiblePage() = %v, want [Ana Carla]", got)
	}
}

func TestView_FilterResetsPage(t *testing.T) {
	v := NewView(testDescriptor(), manyItems(23))
	v.SetPage(3)
	v.SetFilter("kind", "even")
	if v.Page() != 1 {
		t.Errorf("Page() after SetFilter = %d, want 1", v.Page())
	}
}

func TestView_SetPageSize(t *testing.T) {
	v := NewView(testDescriptor(), manyItems(23))
	v.SetPage(3)

	// invalid sizes are rejected, prior value retained
	v.SetPageSize(0)
	v.SetPageSize(-5)
	if v.PageSize() != DefaultPageSize {
		t.Errorf("PageSize() = %d, want %d", v.PageSize(), DefaultPageSize)
	}
	if v.Page() != 3 {
		t.Errorf("Page() = %d, want 3", v.Page())
	}

	// growing the page size re-clamps the current page
	v.SetPageSize(50)
	if v.Page() != 1 {
		t.Errorf("Page() after SetPageSize(50) = %d, want 1", v.Page())
	}
	if got := len(v.VisiblePage()); got != 23 {
		t.Errorf("VisiblePage() has %d records, want 23", got)
	}
}

func TestView_ResetPrunesSelection(t *testing.T) {
	items := []item{
		{id: "a", name: "Ana"},
		{id: "b", name: "Bruno"},
	}
	v := NewView(testDescriptor(), items)
	v.ToggleSelectAll(true)

	v.Reset([]item{{id: "b", name: "Bruno"}})
	if got := v.SelectedIDs(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("SelectedIDs() after Reset = %v, want [b]", got)
	}
}

func TestView_UnknownKeysPanic(t *testing.T) {
	v := NewView(testDescriptor(), manyItems(3))

	assertPanics(t, "unknown sort key", func() { v.SetSort("nope") })
	assertPanics(t, "unknown filter dimension", func() { v.SetFilter("nope", "x") })

	if v.Sortable("nope") || !v.Sortable("name") {
		t.Error("Sortable() misreports known keys")
	}
	if v.Filterable("nope") || !v.Filterable("kind") {
		t.Error("Filterable() misreports known dimensions")
	}
}

func assertPanics(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}

func TestPageNumbers(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		want    []int
	}{
		{name: "single page", current: 1, total: 1, want: []int{1}},
		{name: "five pages shows all", current: 4, total: 5, want: []int{1, 2, 3, 4, 5}},
		{name: "near start", current: 2, total: 9, want: []int{1, 2, 3, Ellipsis, 9}},
		{name: "boundary start", current: 3, total: 9, want: []int{1, 2, 3, Ellipsis, 9}},
		{name: "middle", current: 5, total: 9, want: []int{1, Ellipsis, 5, Ellipsis, 9}},
		{name: "near end", current: 8, total: 9, want: []int{1, Ellipsis, 7, 8, 9}},
		{name: "boundary end", current: 7, total: 9, want: []int{1, Ellipsis, 7, 8, 9}},
		{name: "current clamped", current: 42, total: 6, want: []int{1, Ellipsis, 4, 5, 6}},
		{name: "zero total treated as one page", current: 1, total: 0, want: []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PageNumbers(tt.current, tt.total); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PageNumbers(%d, %d) = %v, want %v", tt.current, tt.total, got, tt.want)
			}
		})
	}
}
