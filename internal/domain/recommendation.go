package domain

// RecommendRequest is the body POSTed to the recommendation backend.
type RecommendRequest struct {
	Mood  string `json:"mood"`
	Limit int    `json:"limit"`
}

// RecommendResponse is the backend's success body.
type RecommendResponse struct {
	Recommendations []Book `json:"recommendations"`
}

type RecommendationMeta struct {
	CacheHit    bool   `json:"cache_hit"`
	Endpoint    string `json:"endpoint,omitempty"`
	GeneratedAt string `json:"generated_at"`
	TotalCount  int    `json:"total_count"`
}

type RecommendationResult struct {
	Books    []Book
	CacheHit bool
	Endpoint string
}
