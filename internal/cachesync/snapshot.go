package cachesync

import (
	"log/slog"

	"github.com/romarioraffington/prepped-client-sub000/internal/domain"
	"github.com/romarioraffington/prepped-client-sub000/internal/querycache"
)

// surfaceCopy is one snapshotted surface: its key, a structurally independent
// copy of its value, and the clone function used to re-copy on restore.
type surfaceCopy struct {
	key   querycache.Key
	value any
	clone func(any) (any, bool)
}

// Snapshot is an immutable capture of every surface a membership mutation can
// touch, taken before the optimistic write. Restoring it puts each captured
// surface back verbatim.
type Snapshot struct {
	ref RecommendationRef

	// detail is the singleton surface's prior value; nil means the surface
	// was absent when the snapshot was taken.
	detail *domain.Recommendation

	surfaces []surfaceCopy
}

// SnapshotManager captures and restores deep copies of membership surfaces.
type SnapshotManager struct {
	cache    *querycache.Store
	families []surfaceFamily
	logger   *slog.Logger
}

func NewSnapshotManager(cache *querycache.Store, logger *slog.Logger) *SnapshotManager {
	return &SnapshotManager{
		cache:    cache,
		families: collectionFamilies(),
		logger:   logger,
	}
}

// Capture deep-copies the recommendation's detail surface and every currently
// cached key of the four collection families. It runs synchronously; a
// mutation must hold its snapshot before writing anything optimistically.
func (m *SnapshotManager) Capture(ref RecommendationRef) *Snapshot {
	snap := &Snapshot{ref: ref}

	if value, ok := m.cache.Get(DetailKey(ref.Slug)); ok {
		if rec, ok := value.(domain.Recommendation); ok {
			snap.detail = rec.Clone()
		}
	}

	for _, family := range m.families {
		for _, entry := range m.cache.GetAll(family.base()) {
			cloned, ok := family.clone(entry.Value)
			if !ok {
				m.logger.Warn("skipping surface with unexpected payload shape",
					slog.String("family", family.name),
					slog.String("key", entry.Key.String()),
				)
				continue
			}
			snap.surfaces = append(snap.surfaces, surfaceCopy{
				key:   entry.Key,
				value: cloned,
				clone: family.clone,
			})
		}
	}

	return snap
}

// Restore writes every captured surface back.
//
// Collection surfaces are restored verbatim, overwriting whatever is cached
// now and recreating keys that were evicted in the meantime. The singleton is
// restored only when the snapshot recorded a value; when it recorded absence,
// the current cache is left alone rather than force-cleared, since the surface
// may have been legitimately populated by an unrelated fetch during the
// mutation window. A restore after that sequence can therefore leave the
// detail surface populated. Restore never fails.
func (m *SnapshotManager) Restore(snap *Snapshot) {
	if snap == nil {
		return
	}

	if snap.detail != nil {
		m.cache.Set(DetailKey(snap.ref.Slug), *snap.detail.Clone())
	}

	for _, sc := range snap.surfaces {
		value, ok := sc.clone(sc.value)
		if !ok {
			continue
		}
		m.cache.Set(sc.key, value)
	}
}

// CaptureWishlistSurfaces deep-copies every cached wishlist-list surface.
// The orchestrator holds this alongside the registry snapshot because the
// wishlist aggregates are patched outside the registry's families.
func (m *SnapshotManager) CaptureWishlistSurfaces() []surfaceCopy {
	var out []surfaceCopy
	for _, entry := range m.cache.GetAll(WishlistsBase()) {
		lists, ok := entry.Value.([]domain.Wishlist)
		if !ok {
			continue
		}
		out = append(out, surfaceCopy{
			key:   entry.Key,
			value: domain.CloneWishlists(lists),
			clone: cloneWishlists,
		})
	}
	return out
}

// RestoreSurfaces writes a set of captured surfaces back verbatim.
func (m *SnapshotManager) RestoreSurfaces(surfaces []surfaceCopy) {
	for _, sc := range surfaces {
		value, ok := sc.clone(sc.value)
		if !ok {
			continue
		}
		m.cache.Set(sc.key, value)
	}
}

func cloneWishlists(value any) (any, bool) {
	lists, ok := value.([]domain.Wishlist)
	if !ok {
		return nil, false
	}
	return domain.CloneWishlists(lists), true
}
