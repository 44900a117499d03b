package feed

import "strconv"

const (
	LabelPrevious = "previous"
	LabelNext     = "next"
)

// BuildPager lays out the pager for page out of total pages. A single page
// needs no controls. Otherwise it is previous, 1..total, next, with previous
// disabled on the first page and next disabled on the last.
func BuildPager(page, total int) PagerView {
	if total > 0 && page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}

	pager := PagerView{Current: page, Total: total}
	if total <= 1 {
		return pager
	}

	pager.Controls = make([]PageControl, 0, total+2)

	prev := PageControl{Label: LabelPrevious}
	if page > 1 {
		prev.Page = page - 1
		prev.Intent = &Intent{Kind: IntentPage, Page: page - 1}
	} else {
		prev.Disabled = true
	}
	pager.Controls = append(pager.Controls, prev)

	for p := 1; p <= total; p++ {
		pager.Controls = append(pager.Controls, PageControl{
			Label:  strconv.Itoa(p),
			Page:   p,
			Active: p == page,
			Intent: &Intent{Kind: IntentPage, Page: p},
		})
	}

	next := PageControl{Label: LabelNext}
	if page < total {
		next.Page = page + 1
		next.Intent = &Intent{Kind: IntentPage, Page: page + 1}
	} else {
		next.Disabled = true
	}
	pager.Controls = append(pager.Controls, next)

	return pager
}
