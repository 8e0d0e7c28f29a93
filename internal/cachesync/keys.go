package cachesync

import (
	"github.com/romarioraffington/prepped-client-sub000/internal/querycache"
)

// Cache key families. Each family shares a base prefix; concrete cached keys
// append filter and pagination components (import id, cursor, user id).
func DetailKey(slug string) querycache.Key {
	return querycache.NewKey("recommendations", "detail", slug)
}

func RecommendationDetailsBase() querycache.Key {
	return querycache.NewKey("recommendations", "detail")
}

func ImportDetailsBase() querycache.Key {
	return querycache.NewKey("imports", "detail")
}

func ImportRecommendationsBase() querycache.Key {
	return querycache.NewKey("imports", "recommendations")
}

func CookbookRecommendationsBase() querycache.Key {
	return querycache.NewKey("cookbooks", "recommendations")
}

func WishlistRecommendationsBase() querycache.Key {
	return querycache.NewKey("wishlists", "recommendations")
}

func WishlistsBase() querycache.Key {
	return querycache.NewKey("wishlists", "list")
}

// isFilteredWishlistKey reports whether a wishlist-list key carries filter
// components beyond the base. Only filtered surfaces may hold the derived
// ContainsRecommendation flag.
func isFilteredWishlistKey(key querycache.Key) bool {
	return len(key) > len(WishlistsBase())
}
