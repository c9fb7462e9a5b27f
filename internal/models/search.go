package models

// SearchCriteria narrows a listing query. A nil field is unset and applies no filter.
type SearchCriteria struct {
	City     *string        `json:"city,omitempty"`
	District *string        `json:"district,omitempty"`
	Type     *PropertyType  `json:"type,omitempty"`
	Status   *ListingStatus `json:"status,omitempty"`
	MinPrice *float64       `json:"min_price,omitempty"`
	MaxPrice *float64       `json:"max_price,omitempty"`
}
