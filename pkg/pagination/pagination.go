package pagination

import (
	"math"
	"strings"

	"github.com/mehtakaran9/librarium-backend/pkg/types"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 20
	// MaxLimit caps how many rows any page query can request.
	MaxLimit = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
	Sort  string
}

// Normalize clamps page/limit into their allowed ranges and applies the
// fallback sort expression when none was requested.
func (p Params) Normalize(defaultSort string) Params {
	out := p
	if out.Page < 1 {
		out.Page = 1
	}
	if out.Limit < 1 {
		out.Limit = DefaultLimit
	}
	if out.Limit > MaxLimit {
		out.Limit = MaxLimit
	}
	if strings.TrimSpace(out.Sort) == "" {
		out.Sort = defaultSort
	}
	return out
}

// Offset returns the number of rows to skip for the normalized page.
func (p Params) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// OrderClause translates a "-field" / "field" sort expression into SQL,
// restricted to the allowed column set. Unknown fields fall back to the
// default expression so callers can never inject arbitrary order columns.
func (p Params) OrderClause(allowed map[string]string, defaultClause string) string {
	field := strings.TrimSpace(p.Sort)
	desc := strings.HasPrefix(field, "-")
	field = strings.TrimPrefix(field, "-")
	column, ok := allowed[field]
	if !ok {
		return defaultClause
	}
	if desc {
		return column + " DESC"
	}
	return column + " ASC"
}

// MetaFor builds the page metadata for a total row count.
func (p Params) MetaFor(total int64) types.PageMeta {
	pages := 0
	if p.Limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	return types.PageMeta{
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
		Pages: pages,
	}
}
