package cachesync

import (
	"context"
	"log/slog"
	"slices"

	"github.com/romarioraffington/prepped-client-sub000/internal/domain"
	"github.com/romarioraffington/prepped-client-sub000/internal/mutation"
	"github.com/romarioraffington/prepped-client-sub000/internal/querycache"
)

// WishlistAPI is the server surface the orchestrator mutates against. Both
// calls return the authoritative membership after the change.
type WishlistAPI interface {
	AddToWishlist(ctx context.Context, wishlistID, recommendationID string) (domain.Membership, error)
	RemoveFromWishlist(ctx context.Context, wishlistID, recommendationID string) (domain.Membership, error)
}

// Notifier surfaces mutation failures to the user. Failures are reported,
// never auto-retried.
type Notifier interface {
	MutationFailed(ctx context.Context, action string, ref RecommendationRef, wishlistID string, err error)
}

const (
	actionSave   = "save"
	actionRemove = "remove"
)

// Service orchestrates optimistic save and remove of a recommendation's
// wishlist membership: snapshot, optimistic write across every cached
// surface, server call, then reconciliation on success or verbatim rollback
// on failure. Constructed once per session and passed to callers explicitly.
type Service struct {
	cache     *querycache.Store
	registry  *Registry
	snapshots *SnapshotManager
	intents   *IntentStore
	api       WishlistAPI
	notifier  Notifier
	logger    *slog.Logger
}

func NewService(
	cache *querycache.Store,
	registry *Registry,
	snapshots *SnapshotManager,
	intents *IntentStore,
	api WishlistAPI,
	notifier Notifier,
	logger *slog.Logger,
) *Service {
	return &Service{
		cache:     cache,
		registry:  registry,
		snapshots: snapshots,
		intents:   intents,
		api:       api,
		notifier:  notifier,
		logger:    logger,
	}
}

// Membership returns the recommendation's wishlist ids as currently cached
// on the detail surface, empty when the surface is absent.
func (s *Service) Membership(ref RecommendationRef) []string {
	value, ok := s.cache.Get(DetailKey(ref.Slug))
	if !ok {
		return nil
	}
	rec, ok := value.(domain.Recommendation)
	if !ok {
		return nil
	}
	return slices.Clone(rec.WishlistIDs)
}

// Save adds the recommendation to the wishlist with an optimistic cache
// update. Saving to a wishlist it already belongs to leaves the cache
// untouched; the request still fires and reconciliation still runs.
func (s *Service) Save(ctx context.Context, ref RecommendationRef, wishlistID string) error {
	return s.mutate(ctx, ref, wishlistID, actionSave, nil)
}

// SaveWithCommit is Save with a commit callback, invoked inside the success
// path after the server accepts the write but before any pending redirect
// intent is consumed. Callers that race a redirect against the save use it to
// observe the commit without a gap.
func (s *Service) SaveWithCommit(ctx context.Context, ref RecommendationRef, wishlistID string, onCommit func()) error {
	return s.mutate(ctx, ref, wishlistID, actionSave, onCommit)
}

// Remove takes the recommendation out of the wishlist, symmetric to Save.
func (s *Service) Remove(ctx context.Context, ref RecommendationRef, wishlistID string) error {
	return s.mutate(ctx, ref, wishlistID, actionRemove, nil)
}

// mutateContext carries the rollback state from the optimistic phase to the
// settle phase.
type mutateContext struct {
	snapshot         *Snapshot
	wishlistSurfaces []surfaceCopy
	noop             bool
}

func (s *Service) mutate(ctx context.Context, ref RecommendationRef, wishlistID, action string, onCommit func()) error {
	return mutation.Run(ctx, mutation.Mutation[*mutateContext, domain.Membership]{
		Name: "wishlist-" + action,

		OnMutate: func(ctx context.Context) (*mutateContext, error) {
			// A racing background refetch must not land between the
			// snapshot and the optimistic write.
			s.cache.CancelInFlight(DetailKey(ref.Slug))
			s.cache.CancelInFlight(WishlistsBase())

			mc := &mutateContext{
				snapshot:         s.snapshots.Capture(ref),
				wishlistSurfaces: s.snapshots.CaptureWishlistSurfaces(),
			}

			current := s.Membership(ref)
			saved := slices.Contains(current, wishlistID)

			// Double-save and double-remove races resolve to no-ops.
			if (action == actionSave) == saved {
				mc.noop = true
				syncMutations.WithLabelValues(action, outcomeNoop).Inc()
				return mc, nil
			}

			var next []string
			delta := -1
			if action == actionSave {
				next = append(slices.Clone(current), wishlistID)
				delta = 1
			} else {
				next = slices.DeleteFunc(slices.Clone(current), func(id string) bool {
					return id == wishlistID
				})
			}

			s.registry.ApplyMembership(ref, next)
			s.registry.PatchWishlistSurfaces(wishlistID, delta, action == actionSave)
			return mc, nil
		},

		Request: func(ctx context.Context) (domain.Membership, error) {
			if action == actionSave {
				return s.api.AddToWishlist(ctx, wishlistID, ref.ID)
			}
			return s.api.RemoveFromWishlist(ctx, wishlistID, ref.ID)
		},

		OnSuccess: func(ctx context.Context, mc *mutateContext, resp domain.Membership) {
			if onCommit != nil {
				onCommit()
			}

			if s.intents.Consume(ref.Slug, wishlistID) {
				// The user redirected this save before it settled; the
				// coordinator already reverted the cache.
				syncMutations.WithLabelValues(action, outcomeRedirected).Inc()
				s.logger.Debug("membership mutation suppressed by pending intent",
					slog.String("action", action),
					slog.String("slug", ref.Slug),
					slog.String("wishlist_id", wishlistID),
				)
				return
			}

			s.registry.ApplyMembership(ref, resp.WishlistIDs)
			s.invalidateAfterMutation(ref)

			if !mc.noop {
				syncMutations.WithLabelValues(action, outcomeSucceeded).Inc()
			}
		},

		OnError: func(ctx context.Context, mc *mutateContext, err error) {
			if s.intents.Consume(ref.Slug, wishlistID) {
				// The user redirected this save before it failed; the
				// coordinator already reverted the cache, and restoring the
				// snapshot here would clobber writes made after the redirect.
				// Nothing committed server-side, so there is nothing to
				// compensate and nothing worth alerting on.
				syncMutations.WithLabelValues(action, outcomeRedirected).Inc()
				s.logger.Debug("membership mutation failure suppressed by pending intent",
					slog.String("action", action),
					slog.String("slug", ref.Slug),
					slog.String("wishlist_id", wishlistID),
					slog.String("error", err.Error()),
				)
				return
			}

			s.snapshots.Restore(mc.snapshot)
			s.snapshots.RestoreSurfaces(mc.wishlistSurfaces)

			syncMutations.WithLabelValues(action, outcomeFailed).Inc()
			s.logger.Error("membership mutation failed, cache rolled back",
				slog.String("action", action),
				slog.String("recommendation_id", ref.ID),
				slog.String("wishlist_id", wishlistID),
				slog.String("error", err.Error()),
			)
			s.notifier.MutationFailed(ctx, action, ref, wishlistID, err)
		},
	})
}

// invalidateAfterMutation marks every family the mutation could have touched
// stale. Only surfaces with an active observer refetch eagerly; the rest wait
// until they are next observed.
func (s *Service) invalidateAfterMutation(ref RecommendationRef) {
	opts := querycache.InvalidateOptions{ActiveOnly: true}

	s.cache.Invalidate(DetailKey(ref.Slug), opts)
	s.cache.Invalidate(ImportDetailsBase(), opts)
	s.cache.Invalidate(ImportRecommendationsBase(), opts)
	s.cache.Invalidate(CookbookRecommendationsBase(), opts)
	s.cache.Invalidate(WishlistRecommendationsBase(), opts)
	s.cache.Invalidate(WishlistsBase(), opts)
}
