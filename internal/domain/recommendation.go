package domain

import (
	"slices"
	"time"
)

// Recommendation is a place or activity imported from a social platform.
// WishlistIDs is the authoritative record of every wishlist the
// recommendation belongs to; every other cached surface holds a denormalized
// copy of it.
type Recommendation struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Location    string    `json:"location,omitempty"`
	Category    string    `json:"category,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	SourceURL   string    `json:"source_url,omitempty"`
	ImportID    string    `json:"import_id,omitempty"`
	WishlistIDs []string  `json:"wishlist_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// InWishlist reports whether the recommendation belongs to the given wishlist.
func (r *Recommendation) InWishlist(wishlistID string) bool {
	return slices.Contains(r.WishlistIDs, wishlistID)
}

// Clone returns a structurally independent copy.
func (r *Recommendation) Clone() *Recommendation {
	if r == nil {
		return nil
	}
	cp := *r
	cp.WishlistIDs = slices.Clone(r.WishlistIDs)
	return &cp
}

// RecommendationPage is one page of an infinite-scroll recommendation list.
type RecommendationPage struct {
	Items      []Recommendation `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// RecommendationFeed is a paginated recommendation collection as cached by
// the client: an ordered sequence of pages.
type RecommendationFeed struct {
	Pages []RecommendationPage `json:"pages"`
}

// Clone deep-copies the feed, including every item's WishlistIDs.
func (f *RecommendationFeed) Clone() *RecommendationFeed {
	if f == nil {
		return nil
	}
	cp := &RecommendationFeed{Pages: make([]RecommendationPage, len(f.Pages))}
	for i, page := range f.Pages {
		items := make([]Recommendation, len(page.Items))
		for j, item := range page.Items {
			items[j] = *item.Clone()
		}
		cp.Pages[i] = RecommendationPage{Items: items, NextCursor: page.NextCursor}
	}
	return cp
}
