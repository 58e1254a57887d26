package listing

// Ellipsis is the collapsed-range sentinel in a page-number list.
const Ellipsis = -1

// PageNumbers collapses a long page range with ellipsis sentinels while
// always keeping the first page, the last page and the current page's
// neighborhood reachable:
//
//	total <= 5          → every page
//	current <= 3        → 1 2 3 … total
//	current >= total-2  → 1 … total-2 total-1 total
//	otherwise           → 1 … current … total
func PageNumbers(current, total int) []int {
	if total < 1 {
		total = 1
	}
	current = clamp(current, 1, total)

	if total <= 5 {
		pages := make([]int, 0, total)
		for p := 1; p <= total; p++ {
			pages = append(pages, p)
		}
		return pages
	}

	switch {
	case current <= 3:
		return []int{1, 2, 3, Ellipsis, total}
	case current >= total-2:
		return []int{1, Ellipsis, total - 2, total - 1, total}
	default:
		return []int{1, Ellipsis, current, Ellipsis, total}
	}
}
