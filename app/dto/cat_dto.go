package dto

// CatDTO represents a single catalog entry in API responses
type CatDTO struct {
	ID         uint     `json:"id"`
	ExternalID string   `json:"external_id"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Image      []byte   `json:"image,omitempty"`
	Tags       []string `json:"tags"`
	CreatedAt  string   `json:"created_at"`
}

// ListCatsRequest carries the validated paging and filter parameters
type ListCatsRequest struct {
	Page     int    `json:"page" validate:"gte=1"`
	PageSize int    `json:"page_size" validate:"gte=1,lte=100"`
	Tag      string `json:"tag" validate:"omitempty,max=255"`
}

// ListCatsResponse is the paginated listing payload
type ListCatsResponse struct {
	Message string   `json:"message"`
	Page    int      `json:"page"`
	Cats    []CatDTO `json:"cats"`
}

// GetCatResponse is the single-lookup payload
type GetCatResponse struct {
	Message string `json:"message"`
	Cat     CatDTO `json:"cat"`
}

// IngestionSummary reports the outcome of one ingestion run
type IngestionSummary struct {
	Message     string `json:"message"`
	RunID       string `json:"run_id"`
	Inserted    int    `json:"inserted"`
	Skipped     int    `json:"skipped"`
	Failed      int    `json:"failed"`
	TagsCreated int    `json:"tags_created"`
}
