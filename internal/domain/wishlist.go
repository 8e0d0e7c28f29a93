package domain

import (
	"slices"
	"time"
)

// Wishlist groups saved recommendations. SavedCount is a denormalized
// aggregate maintained alongside membership and never drops below zero.
type Wishlist struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id,omitempty"`
	Name          string `json:"name"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
	SavedCount    int    `json:"saved_count"`

	// ContainsRecommendation is populated only on wishlist lists filtered by
	// a specific recommendation. The unfiltered list never carries it, so the
	// generic list screen cannot show a stale "contains" badge.
	ContainsRecommendation *bool `json:"contains_recommendation,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a structurally independent copy.
func (w *Wishlist) Clone() *Wishlist {
	if w == nil {
		return nil
	}
	cp := *w
	if w.ContainsRecommendation != nil {
		v := *w.ContainsRecommendation
		cp.ContainsRecommendation = &v
	}
	return &cp
}

// CloneWishlists deep-copies a cached wishlist-list surface value.
func CloneWishlists(ws []Wishlist) []Wishlist {
	if ws == nil {
		return nil
	}
	cp := make([]Wishlist, len(ws))
	for i := range ws {
		cp[i] = *ws[i].Clone()
	}
	return cp
}

// BoolPtr is a convenience for building ContainsRecommendation values.
func BoolPtr(v bool) *bool {
	return &v
}

// Cookbook is a curated collection of recommendations.
type Cookbook struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id,omitempty"`
	Name                string    `json:"name"`
	Slug                string    `json:"slug"`
	RecommendationCount int       `json:"recommendation_count"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ImportStatus is the processing state of a social import.
type ImportStatus string

const (
	ImportStatusPending   ImportStatus = "pending"
	ImportStatusProcessed ImportStatus = "processed"
	ImportStatusFailed    ImportStatus = "failed"
)

// Import is a batch of recommendations pulled from a social platform post.
type Import struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id,omitempty"`
	Source    string       `json:"source"`
	SourceURL string       `json:"source_url"`
	Title     string       `json:"title,omitempty"`
	Status    ImportStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ImportDetail is the import-detail surface shape: the import itself plus its
// extracted recommendations as a flat embedded list.
type ImportDetail struct {
	Import          Import           `json:"import"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Clone deep-copies the import detail, including every embedded
// recommendation's WishlistIDs.
func (d *ImportDetail) Clone() *ImportDetail {
	if d == nil {
		return nil
	}
	cp := &ImportDetail{Import: d.Import}
	cp.Recommendations = make([]Recommendation, len(d.Recommendations))
	for i := range d.Recommendations {
		cp.Recommendations[i] = *d.Recommendations[i].Clone()
	}
	return cp
}

// Membership is the authoritative response shape of the save/unsave API.
type Membership struct {
	WishlistIDs []string `json:"wishlist_ids"`
}

// Clone returns a copy with an independent WishlistIDs slice.
func (m Membership) Clone() Membership {
	return Membership{WishlistIDs: slices.Clone(m.WishlistIDs)}
}
