package models

// CategoryError records a non-fatal failure scoped to a single category
// during an ingestion run.
type CategoryError struct {
	Category Category `json:"category"`
	Message  string   `json:"message"`
}

// RunResult summarizes one complete ingestion run. It is returned to the
// caller and never persisted.
type RunResult struct {
	CategoriesProcessed int             `json:"categoriesProcessed"`
	ArticlesFetched     int             `json:"articlesFetched"`
	ArticlesPositive    int             `json:"articlesPositive"`
	ArticlesSaved       int             `json:"articlesSaved"`
	Errors              []CategoryError `json:"errors,omitempty"`
}
