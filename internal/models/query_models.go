package models

// QueryRequest carries the raw, caller-supplied read parameters. Values are
// normalized by the query engine, not rejected: out-of-range pagination is
// clamped and unknown sort fields fall back to their defaults.
type QueryRequest struct {
	Keyword    string
	Categories []Category
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// QueryResult is one page of curated articles plus a lookahead flag.
type QueryResult struct {
	Articles    []Article `json:"articles"`
	HasNextPage bool      `json:"hasNextPage"`
}
