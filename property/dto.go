package property

import "time"

// Item is one property as rendered by the list endpoint
type Item struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Location    string `json:"location"`
	CreatedAt   string `json:"created_at"`
}

// ListResponse is the body of GET /properties/
type ListResponse struct {
	Properties []Item `json:"properties"`
	Count      int    `json:"count"`
}

func NewItem(p Property) Item {
	return Item{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price.String(),
		Location:    p.Location,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339Nano),
	}
}

// NewListResponse keeps the order of items; an empty listing renders as []
func NewListResponse(items []Property) *ListResponse {
	out := make([]Item, 0, len(items))
	for _, p := range items {
		out = append(out, NewItem(p))
	}
	return &ListResponse{Properties: out, Count: len(out)}
}
