package models

// Category is one of the fixed topical tags an article is curated under.
type Category string

const (
	CategoryEntertainment Category = "entertainment"
	CategoryHealth        Category = "health"
	CategoryScience       Category = "science"
	CategorySports        Category = "sports"
	CategoryTechnology    Category = "technology"
)

// AllCategories returns the curated categories in their fixed processing order.
func AllCategories() []Category {
	return []Category{
		CategoryEntertainment,
		CategoryHealth,
		CategoryScience,
		CategorySports,
		CategoryTechnology,
	}
}

// ParseCategory validates a raw category string against the fixed set.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryEntertainment, CategoryHealth, CategoryScience, CategorySports, CategoryTechnology:
		return Category(s), true
	default:
		return "", false
	}
}

// Article is the curated unit of content. ID is assigned by the store on
// insert; URL is the dedup key; PositivityScore is set once at ingestion and
// never recomputed.
type Article struct {
	ID              string   `json:"id" dynamodbav:"id"`
	Title           string   `json:"title" dynamodbav:"title"`
	Author          string   `json:"author,omitempty" dynamodbav:"author"`
	Description     string   `json:"description,omitempty" dynamodbav:"description"`
	Date            string   `json:"date" dynamodbav:"date"`
	URL             string   `json:"url" dynamodbav:"url"`
	ImageURL        string   `json:"image_url,omitempty" dynamodbav:"image_url"`
	Publication     string   `json:"publication,omitempty" dynamodbav:"publication"`
	Category        Category `json:"category,omitempty" dynamodbav:"category"`
	PositivityScore float64  `json:"positivity_score" dynamodbav:"positivity_score"`
}
