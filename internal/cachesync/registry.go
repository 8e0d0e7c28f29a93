package cachesync

import (
	"log/slog"
	"slices"

	"github.com/romarioraffington/prepped-client-sub000/internal/domain"
	"github.com/romarioraffington/prepped-client-sub000/internal/querycache"
)

// RecommendationRef identifies a recommendation across surface families.
// Collection items are matched by ID; the detail surface is keyed by slug.
type RecommendationRef struct {
	ID   string
	Slug string
}

// surfaceFamily describes one collection family that embeds a denormalized
// copy of a recommendation's wishlist membership. Each family has a statically
// known payload shape; dispatch is by family, never by inspecting the value.
type surfaceFamily struct {
	name string
	base func() querycache.Key

	// patch rewrites the matching item's membership and returns the new
	// surface value. Non-matching items are carried over unchanged. The
	// second result reports whether anything matched.
	patch func(value any, recommendationID string, wishlistIDs []string) (any, bool)

	// clone deep-copies a surface value for snapshotting.
	clone func(value any) (any, bool)
}

// collectionFamilies returns the four collection families that carry
// denormalized membership: import details, import recommendation pages,
// cookbook recommendation pages, and wishlist recommendation pages.
func collectionFamilies() []surfaceFamily {
	return []surfaceFamily{
		{
			name:  "import_details",
			base:  ImportDetailsBase,
			patch: patchImportDetail,
			clone: cloneImportDetail,
		},
		{
			name:  "import_recommendations",
			base:  ImportRecommendationsBase,
			patch: patchFeed,
			clone: cloneFeed,
		},
		{
			name:  "cookbook_recommendations",
			base:  CookbookRecommendationsBase,
			patch: patchFeed,
			clone: cloneFeed,
		},
		{
			name:  "wishlist_recommendations",
			base:  WishlistRecommendationsBase,
			patch: patchFeed,
			clone: cloneFeed,
		},
	}
}

func patchImportDetail(value any, recommendationID string, wishlistIDs []string) (any, bool) {
	detail, ok := value.(domain.ImportDetail)
	if !ok {
		return value, false
	}

	matched := false
	items := make([]domain.Recommendation, len(detail.Recommendations))
	for i, item := range detail.Recommendations {
		if item.ID == recommendationID {
			item.WishlistIDs = slices.Clone(wishlistIDs)
			matched = true
		}
		items[i] = item
	}
	if !matched {
		return value, false
	}
	detail.Recommendations = items
	return detail, true
}

func patchFeed(value any, recommendationID string, wishlistIDs []string) (any, bool) {
	feed, ok := value.(domain.RecommendationFeed)
	if !ok {
		return value, false
	}

	matched := false
	pages := make([]domain.RecommendationPage, len(feed.Pages))
	for i, page := range feed.Pages {
		items := page.Items
		cloned := false
		for j, item := range page.Items {
			if item.ID != recommendationID {
				continue
			}
			if !cloned {
				items = slices.Clone(page.Items)
				cloned = true
			}
			item.WishlistIDs = slices.Clone(wishlistIDs)
			items[j] = item
			matched = true
		}
		pages[i] = domain.RecommendationPage{Items: items, NextCursor: page.NextCursor}
	}
	if !matched {
		return value, false
	}
	return domain.RecommendationFeed{Pages: pages}, true
}

func cloneImportDetail(value any) (any, bool) {
	detail, ok := value.(domain.ImportDetail)
	if !ok {
		return nil, false
	}
	return *detail.Clone(), true
}

func cloneFeed(value any) (any, bool) {
	feed, ok := value.(domain.RecommendationFeed)
	if !ok {
		return nil, false
	}
	return *feed.Clone(), true
}

// Registry knows every cached surface that embeds a recommendation's wishlist
// membership and how to patch it. It only rewrites surfaces that are already
// cached; it never creates one.
type Registry struct {
	cache    *querycache.Store
	families []surfaceFamily
	logger   *slog.Logger
}

func NewRegistry(cache *querycache.Store, logger *slog.Logger) *Registry {
	return &Registry{
		cache:    cache,
		families: collectionFamilies(),
		logger:   logger,
	}
}

// ApplyMembership writes the given wishlist membership for the recommendation
// into every cached surface that embeds it: the singleton detail surface and
// every cached key of the four collection families. Surfaces not present in
// cache are skipped. Applying the same membership twice leaves the cache in
// the same state as applying it once.
func (r *Registry) ApplyMembership(ref RecommendationRef, wishlistIDs []string) {
	detailKey := DetailKey(ref.Slug)
	if value, ok := r.cache.Get(detailKey); ok {
		if rec, ok := value.(domain.Recommendation); ok {
			rec.WishlistIDs = slices.Clone(wishlistIDs)
			r.cache.Set(detailKey, rec)
		}
	}

	for _, family := range r.families {
		for _, entry := range r.cache.GetAll(family.base()) {
			patched, matched := family.patch(entry.Value, ref.ID, wishlistIDs)
			if !matched {
				continue
			}
			r.cache.Set(entry.Key, patched)
			r.logger.Debug("patched membership surface",
				slog.String("family", family.name),
				slog.String("key", entry.Key.String()),
				slog.String("recommendation_id", ref.ID),
			)
		}
	}
}

// PatchWishlistSurfaces adjusts the denormalized SavedCount for one wishlist
// on every cached wishlist-list surface and, only on filtered surfaces, sets
// the ContainsRecommendation flag. SavedCount is floored at zero. The
// unfiltered base surface never gains the flag.
func (r *Registry) PatchWishlistSurfaces(wishlistID string, delta int, contains bool) {
	for _, entry := range r.cache.GetAll(WishlistsBase()) {
		lists, ok := entry.Value.([]domain.Wishlist)
		if !ok {
			continue
		}

		changed := false
		out := make([]domain.Wishlist, len(lists))
		for i, w := range lists {
			if w.ID == wishlistID {
				w.SavedCount += delta
				if w.SavedCount < 0 {
					w.SavedCount = 0
				}
				if isFilteredWishlistKey(entry.Key) {
					w.ContainsRecommendation = domain.BoolPtr(contains)
				}
				changed = true
			}
			out[i] = w
		}
		if changed {
			r.cache.Set(entry.Key, out)
		}
	}
}

// ClearContainsFlag unsets the ContainsRecommendation flag for one wishlist
// on every filtered wishlist-list surface, leaving SavedCount untouched.
func (r *Registry) ClearContainsFlag(wishlistID string) {
	r.PatchWishlistSurfaces(wishlistID, 0, false)
}
