package paging

// ShowAll is the per-page sentinel meaning the whole result set on one page.
const ShowAll = -1

// Meta describes the slice window returned by Slice. From and To are
// 1-indexed inclusive bounds; both are zero for an empty result.
type Meta struct {
	Page     int `json:"page"`
	PerPage  int `json:"per_page"`
	Total    int `json:"total"`
	LastPage int `json:"last_page"`
	From     int `json:"from"`
	To       int `json:"to"`
}

// Slice returns the window of items for the requested page. Page numbers are
// 1-based; out-of-range pages yield an empty window. A per-page of ShowAll
// (or any non-positive value) returns everything on a single page.
func Slice[T any](items []T, page, perPage int) ([]T, Meta) {
	total := len(items)
	if page < 1 {
		page = 1
	}

	if perPage <= 0 {
		meta := Meta{Page: 1, PerPage: ShowAll, Total: total, LastPage: 1}
		if total > 0 {
			meta.From = 1
			meta.To = total
		}
		return items, meta
	}

	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}

	start := (page - 1) * perPage
	if start >= total {
		return []T{}, Meta{Page: page, PerPage: perPage, Total: total, LastPage: lastPage}
	}
	end := start + perPage
	if end > total {
		end = total
	}

	return items[start:end], Meta{
		Page:     page,
		PerPage:  perPage,
		Total:    total,
		LastPage: lastPage,
		From:     start + 1,
		To:       end,
	}
}

// Clamp bounds a per-page preference into [min, max], substituting fallback
// for non-positive input. The ShowAll sentinel passes through untouched.
func Clamp(perPage, min, max, fallback int) int {
	if perPage == ShowAll {
		return ShowAll
	}
	if perPage <= 0 {
		perPage = fallback
	}
	if perPage < min {
		return min
	}
	if perPage > max {
		return max
	}
	return perPage
}

var optionSteps = []int{5, 10, 25, 50, 100, 250, 500}

// Options derives the selectable per-page values for a result set of the
// given size: every step smaller than the total plus the ShowAll sentinel.
// An empty result set has no options.
func Options(total int) []int {
	if total <= 0 {
		return nil
	}
	options := make([]int, 0, len(optionSteps)+1)
	for _, step := range optionSteps {
		if step < total {
			options = append(options, step)
		}
	}
	return append(options, ShowAll)
}
