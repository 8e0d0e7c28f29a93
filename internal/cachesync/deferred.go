package cachesync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/romarioraffington/prepped-client-sub000/internal/mutation"
	"github.com/romarioraffington/prepped-client-sub000/internal/querycache"
	pkgerrors "github.com/romarioraffington/prepped-client-sub000/pkg/errors"
)

// Toaster shows the dismissible quick-save toast. The implementation owns the
// auto-dismiss timer and calls the coordinator's ConfirmSave when it fires.
type Toaster interface {
	ShowQuickSaveToast(ctx context.Context, ref RecommendationRef, wishlistID string)
}

// Navigator opens the manual wishlist-picker UI.
type Navigator interface {
	OpenWishlistPicker(ctx context.Context, ref RecommendationRef)
}

// DefaultChangeNavigationDelay lets the cache reversion flush through
// subscribers before the picker opens, so the previous state never flickers.
const DefaultChangeNavigationDelay = 300 * time.Millisecond

// QuickSaveCoordinator drives the quick-save flow: heart-tap saves
// immediately to the user's last-used wishlist while a toast offers a
// "Change" action that redirects the save before it visibly completes
// against the original target.
//
// One interaction is live at a time. Its three flags (mutationCalled,
// changeClicked, mutationSucceeded) gate the race between the toast's
// deferred confirm, the mutation settling, and the user pressing Change.
type QuickSaveCoordinator struct {
	svc       *Service
	exec      *mutation.Executor
	registry  *Registry
	intents   *IntentStore
	targets   TargetStore
	cache     *querycache.Store
	toaster   Toaster
	navigator Navigator
	logger    *slog.Logger

	// NavigationDelay is overridable for tests.
	NavigationDelay time.Duration

	mu      sync.Mutex
	current *interaction
}

// interaction is the per-heart-tap state.
type interaction struct {
	ref      RecommendationRef
	userID   string
	targetID string

	// prevIDs is the membership cached before the optimistic write, used for
	// the targeted rollback when Change is pressed mid-flight.
	prevIDs []string

	mutationCalled    bool
	changeClicked     bool
	mutationSucceeded bool
}

func NewQuickSaveCoordinator(
	svc *Service,
	exec *mutation.Executor,
	registry *Registry,
	intents *IntentStore,
	targets TargetStore,
	cache *querycache.Store,
	toaster Toaster,
	navigator Navigator,
	logger *slog.Logger,
) *QuickSaveCoordinator {
	return &QuickSaveCoordinator{
		svc:             svc,
		exec:            exec,
		registry:        registry,
		intents:         intents,
		targets:         targets,
		cache:           cache,
		toaster:         toaster,
		navigator:       navigator,
		logger:          logger,
		NavigationDelay: DefaultChangeNavigationDelay,
	}
}

// HandleHeartTap starts a quick save. With a cached target it resets the
// interaction flags and shows the toast, whose auto-dismiss timer calls
// ConfirmSave. Without one it opens the picker.
func (c *QuickSaveCoordinator) HandleHeartTap(ctx context.Context, userID string, ref RecommendationRef) error {
	targetID, err := c.targets.Target(ctx, userID)
	if err != nil {
		return err
	}
	if targetID == "" {
		c.navigator.OpenWishlistPicker(ctx, ref)
		return nil
	}

	c.mu.Lock()
	c.current = &interaction{
		ref:      ref,
		userID:   userID,
		targetID: targetID,
		prevIDs:  c.svc.Membership(ref),
	}
	c.mu.Unlock()

	c.toaster.ShowQuickSaveToast(ctx, ref, targetID)
	return nil
}

// ConfirmSave fires the deferred save. It is single-shot: a second call, or
// a call after Change was pressed, is a no-op.
func (c *QuickSaveCoordinator) ConfirmSave(ctx context.Context) {
	c.mu.Lock()
	it := c.current
	if it == nil || it.mutationCalled || it.changeClicked {
		c.mu.Unlock()
		return
	}
	it.mutationCalled = true
	c.mu.Unlock()

	c.exec.Go(ctx, "quick-save", func(ctx context.Context) error {
		// The commit flag is set from inside the save's success path, under
		// the coordinator lock, so HandleChange can never observe a save the
		// server has committed as still in flight.
		err := c.svc.SaveWithCommit(ctx, it.ref, it.targetID, func() {
			c.mu.Lock()
			it.mutationSucceeded = true
			c.mu.Unlock()
		})

		if err != nil && errors.Is(err, pkgerrors.ErrNotFound) {
			c.clearStaleTarget(ctx, it)
			return nil
		}
		return err
	})
}

// clearStaleTarget handles the server reporting the cached target gone:
// forget it so the next quick save does not repeat the failure, then fall
// back to the manual picker.
func (c *QuickSaveCoordinator) clearStaleTarget(ctx context.Context, it *interaction) {
	if err := c.targets.ClearTarget(ctx, it.userID); err != nil {
		c.logger.Warn("failed to clear stale quick-save target",
			slog.String("user_id", it.userID),
			slog.String("wishlist_id", it.targetID),
			slog.String("error", err.Error()),
		)
	}
	staleTargetsCleared.Inc()
	c.logger.Info("quick-save target no longer exists, cleared",
		slog.String("user_id", it.userID),
		slog.String("wishlist_id", it.targetID),
	)
	c.navigator.OpenWishlistPicker(ctx, it.ref)
}

// HandleChange redirects the live quick save. It runs its cache work
// synchronously, before any navigation:
//
//  1. flips changeClicked, suppressing a ConfirmSave that has not fired yet;
//  2. if the save is in flight but not yet committed, registers a pending
//     intent under the lock so a settle that lands anyway is ignored at the
//     cache level;
//  3. if the save already started, re-applies the pre-tap membership
//     (membership only; the full surface snapshot stays with the mutation);
//  4. clears the ContainsRecommendation flag for the original target;
//  5. if the save already succeeded, takes back the optimistic saved count
//     and issues a compensating delete, since the server has committed the
//     add; otherwise just invalidates in the background;
//  6. after a short delay, opens the picker.
func (c *QuickSaveCoordinator) HandleChange(ctx context.Context) {
	c.mu.Lock()
	it := c.current
	if it == nil || it.changeClicked {
		c.mu.Unlock()
		return
	}
	it.changeClicked = true
	mutationCalled := it.mutationCalled
	mutationSucceeded := it.mutationSucceeded
	if mutationCalled && !mutationSucceeded {
		// Registered under the lock the commit hook also takes, so the
		// intent exists before the in-flight save can settle. A committed
		// save gets no intent; its compensating delete must reconcile.
		c.intents.Register(it.ref.Slug, it.targetID)
	}
	c.mu.Unlock()

	quickSaveRedirects.Inc()

	if mutationCalled {
		c.registry.ApplyMembership(it.ref, it.prevIDs)
	}
	c.registry.ClearContainsFlag(it.targetID)

	if mutationSucceeded {
		// Cache reversion alone cannot undo a committed add: take back the
		// optimistic saved count, then delete on the server.
		c.registry.PatchWishlistSurfaces(it.targetID, -1, false)
		compensatingDeletes.Inc()
		c.exec.Go(ctx, "quick-save-compensate", func(ctx context.Context) error {
			return c.svc.Remove(ctx, it.ref, it.targetID)
		})
	} else {
		opts := querycache.InvalidateOptions{ActiveOnly: true}
		c.cache.Invalidate(DetailKey(it.ref.Slug), opts)
		c.cache.Invalidate(WishlistsBase(), opts)
	}

	ref := it.ref
	if c.NavigationDelay <= 0 {
		c.navigator.OpenWishlistPicker(ctx, ref)
		return
	}
	time.AfterFunc(c.NavigationDelay, func() {
		c.navigator.OpenWishlistPicker(ctx, ref)
	})
}

// SaveToWishlist is the picker path: save to an explicitly chosen wishlist
// and remember it as the next quick-save target.
func (c *QuickSaveCoordinator) SaveToWishlist(ctx context.Context, userID string, ref RecommendationRef, wishlistID string) error {
	if err := c.svc.Save(ctx, ref, wishlistID); err != nil {
		return err
	}
	if err := c.targets.SetTarget(ctx, userID, wishlistID); err != nil {
		c.logger.Warn("failed to remember quick-save target",
			slog.String("user_id", userID),
			slog.String("wishlist_id", wishlistID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// HandleWishlistDeleted drops the user's quick-save target when the deleted
// wishlist was that target. Other wishlists leave the target intact.
func (c *QuickSaveCoordinator) HandleWishlistDeleted(ctx context.Context, userID, wishlistID string) error {
	targetID, err := c.targets.Target(ctx, userID)
	if err != nil {
		return err
	}
	if targetID != wishlistID {
		return nil
	}
	return c.targets.ClearTarget(ctx, userID)
}

// Wait blocks until background saves and compensations settle. Intended for
// shutdown and tests.
func (c *QuickSaveCoordinator) Wait() {
	c.exec.Wait()
}
