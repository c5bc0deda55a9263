package domain

import "time"

// TabType distinguishes guitar pro files from plain text tablature.
type TabType string

// Tab types.
const (
	TabTypeGuitarPro TabType = "gp"
	TabTypeText      TabType = "text"
)

// Tab is an uploaded tablature.
type Tab struct {
	ID           int64     `json:"id"`
	Type         TabType   `json:"type"`
	Band         string    `json:"band"`
	Song         string    `json:"song"`
	TabType      string    `json:"tab_type"`
	Content      string    `json:"content,omitempty"`
	Path         string    `json:"path,omitempty"`
	Rating       float64   `json:"rating"`
	Votes        int       `json:"votes"`
	Downloads    int       `json:"downloads"`
	Views        int       `json:"views"`
	UploadDate   time.Time `json:"upload_date"`
	ModifiedDate time.Time `json:"modified_date"`
	UploaderID   int64     `json:"uploader_id"`
	Uploader     string    `json:"username,omitempty"`
	Tunning      string    `json:"tunning"`
	Difficulty   string    `json:"difficulty"`
}

// TabsCount splits the catalogue size by tab type.
type TabsCount struct {
	GuitarPro int `json:"gp"`
	Text      int `json:"text"`
}

// Ranking selects the ordering of a top tabs list.
type Ranking string

// Rankings accepted by the top tabs list.
const (
	RankingPopular   Ranking = "popular"
	RankingLiked     Ranking = "liked"
	RankingLatest    Ranking = "latest"
	RankingCommented Ranking = "commented"
)

// RankedTab is one entry of a top tabs list. Score holds the ranking metric:
// downloads, rating or comment count. Latest lists carry UploadDate instead.
type RankedTab struct {
	ID         int64      `json:"id"`
	Band       string     `json:"band"`
	Song       string     `json:"song"`
	Score      float64    `json:"score"`
	UploadDate *time.Time `json:"upload_date,omitempty"`
}

// TabSearch filters the catalogue. Empty Band or Song match everything;
// Type "all" or "" matches both tab types.
type TabSearch struct {
	Type   string
	Band   string
	Song   string
	Limit  int
	Offset int
}

// Suggestion is one autocomplete entry.
type Suggestion struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// ValidRating reports whether rating is on the 1..5 scale.
func ValidRating(rating int) bool {
	return rating >= 1 && rating <= 5
}
