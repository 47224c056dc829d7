package pager

import "github.com/samvad-hq/samvad-news-pager/internal/domain"

// Direction selects which edge of the loaded list a Load call extends.
type Direction int

const (
	Refresh Direction = iota
	Prepend
	Append
)

func (d Direction) String() string {
	switch d {
	case Refresh:
		return "refresh"
	case Prepend:
		return "prepend"
	case Append:
		return "append"
	default:
		return "unknown"
	}
}

// LoadRequest is one mediator invocation: a direction plus a snapshot of
// what the caller currently has loaded.
type LoadRequest struct {
	Direction Direction
	State     PagingState
}

// LoadResult is the terminal outcome of a successful Load.
type LoadResult struct {
	EndOfPagination bool
}

// LoadedPage is one remote page as seen by the caller: its number and the
// ids of the articles loaded from it, in feed order.
type LoadedPage struct {
	Number int
	IDs    []string
}

// PagingState is a read-only snapshot of the caller's loaded list. Anchor
// is the index of the user's last known position within the flattened
// list, or nil when unknown.
type PagingState struct {
	Pages    []LoadedPage
	Anchor   *int
	PageSize int
}

// StateFromPages builds a snapshot from cached pages.
func StateFromPages(pages []domain.CachedPage, anchor *int, pageSize int) PagingState {
	loaded := make([]LoadedPage, 0, len(pages))
	for _, p := range pages {
		ids := make([]string, 0, len(p.Articles))
		for _, art := range p.Articles {
			ids = append(ids, art.ID)
		}
		loaded = append(loaded, LoadedPage{Number: p.Number, IDs: ids})
	}
	return PagingState{Pages: loaded, Anchor: anchor, PageSize: pageSize}
}

// ClosestToAnchor returns the id of the loaded item nearest the anchor
// position. The anchor is clamped to the nearest valid index; out-of-range
// anchors resolve to the first or last loaded item.
func (s PagingState) ClosestToAnchor() (string, bool) {
	if s.Anchor == nil {
		return "", false
	}
	ids := s.flatIDs()
	if len(ids) == 0 {
		return "", false
	}
	idx := *s.Anchor
	if idx < 0 {
		idx = 0
	}
	if idx >= len(ids) {
		idx = len(ids) - 1
	}
	return ids[idx], true
}

// FirstItemID returns the id of the first loaded item, skipping empty pages.
func (s PagingState) FirstItemID() (string, bool) {
	for _, p := range s.Pages {
		if len(p.IDs) > 0 {
			return p.IDs[0], true
		}
	}
	return "", false
}

// LastItemID returns the id of the last loaded item, skipping empty pages.
func (s PagingState) LastItemID() (string, bool) {
	for i := len(s.Pages) - 1; i >= 0; i-- {
		if ids := s.Pages[i].IDs; len(ids) > 0 {
			return ids[len(ids)-1], true
		}
	}
	return "", false
}

func (s PagingState) flatIDs() []string {
	var out []string
	for _, p := range s.Pages {
		out = append(out, p.IDs...)
	}
	return out
}
