package gitlab3

// MaxPerPage is the largest page size GitLab accepts when listing.
const MaxPerPage = 100

// ListOptions controls a list operation.
//
// Limit takes precedence over Page and PerPage. A limit up to MaxPerPage is
// served by one request with per_page set to the limit; larger limits fetch
// pages 1..ceil(Limit/MaxPerPage) and truncate the final page. When Limit,
// Page and PerPage are all zero the whole collection is walked.
type ListOptions struct {
	Limit   int
	Page    int
	PerPage int
	// Filters are sent as query parameters with every page request.
	Filters Params
}

// Unbounded reports whether the options request the whole collection.
func (o *ListOptions) Unbounded() bool {
	return o == nil || (o.Limit <= 0 && o.Page <= 0 && o.PerPage <= 0)
}

// FindOptions controls a find operation.
type FindOptions struct {
	// Cached restricts matching to an already obtained collection. An empty
	// collection counts as none and the collection is fetched instead.
	Cached []Object
	// Filters are sent as query parameters when the collection is fetched.
	Filters Params
}

// PaginationConfig tunes the end-of-list heuristics of unbounded listing.
// GitLab v3 does not always answer past the last page with an empty page and
// aliases page 0 to page 1; both quirks are handled here.
type PaginationConfig struct {
	// StartPage is the first page requested.
	StartPage int
	// DetectRepeats stops the walk when a page equals the previous one.
	DetectRepeats bool
	// PageZeroAlias skips page 1 once when it repeats page 0 and continues
	// with page 2. Only meaningful when StartPage is 0.
	PageZeroAlias bool
}

// DefaultPaginationConfig returns the heuristics tuned for GitLab v3.
func DefaultPaginationConfig() *PaginationConfig {
	return &PaginationConfig{
		StartPage:     0,
		DetectRepeats: true,
		PageZeroAlias: true,
	}
}
