package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/chaudhary-hadi27/usman-fast-food/apperrors"
	"github.com/chaudhary-hadi27/usman-fast-food/models"
)

// CartStore is the durable slot behind each session's cart.
type CartStore interface {
	GetCart(ctx context.Context, sessionID string) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	DeleteCart(ctx context.Context, sessionID string) error
}

// CartObserver is notified after every successful cart mutation. The header
// badge and similar read-side views subscribe here instead of reaching into
// shared state.
type CartObserver func(cart *models.Cart)

// CartService owns one durable cart per customer session. Mutations apply to
// the in-memory aggregate first; persistence is best-effort and a failed write
// never blocks the mutation from taking effect for the rest of the session.
type CartService struct {
	store CartStore

	mu        sync.RWMutex
	observers []CartObserver
}

func NewCartService(store CartStore) *CartService {
	return &CartService{store: store}
}

// Subscribe registers an observer for cart change notifications.
func (s *CartService) Subscribe(obs CartObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, obs)
}

// Get loads the session's cart, returning an empty cart when none is stored.
func (s *CartService) Get(ctx context.Context, sessionID string) (*models.Cart, error) {
	cart, err := s.store.GetCart(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Transient("failed to load cart", err)
	}
	if cart == nil {
		cart = &models.Cart{SessionID: sessionID}
	}
	return cart, nil
}

// AddItem merges the item into the cart. The boolean mirrors the aggregate's
// bound check: false means the per-item cap would be exceeded and the cart is
// unchanged.
func (s *CartService) AddItem(ctx context.Context, sessionID string, item models.CartItem, quantity int) (*models.Cart, bool, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}

	ok := cart.AddItem(item, quantity)
	if ok {
		s.persist(ctx, cart)
	}
	return cart, ok, nil
}

// RemoveItem deletes the line; absent ids are a quiet no-op.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, menuItemID string) (*models.Cart, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.RemoveItem(menuItemID)
	s.persist(ctx, cart)
	return cart, nil
}

// SetQuantity replaces a line's quantity, rejecting values outside the cap.
func (s *CartService) SetQuantity(ctx context.Context, sessionID, menuItemID string, quantity int) (*models.Cart, bool, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}

	ok := cart.SetQuantity(menuItemID, quantity)
	if ok {
		s.persist(ctx, cart)
	}
	return cart, ok, nil
}

// Increment bumps a line by one, refusing at the cap.
func (s *CartService) Increment(ctx context.Context, sessionID, menuItemID string) (*models.Cart, bool, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}

	ok := cart.Increment(menuItemID)
	if ok {
		s.persist(ctx, cart)
	}
	return cart, ok, nil
}

// Decrement lowers a line by one, removing it at quantity 1.
func (s *CartService) Decrement(ctx context.Context, sessionID, menuItemID string) (*models.Cart, bool, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}

	ok := cart.Decrement(menuItemID)
	if ok {
		s.persist(ctx, cart)
	}
	return cart, ok, nil
}

// Clear empties the cart. Called exactly once, right after a successful order
// submission.
func (s *CartService) Clear(ctx context.Context, sessionID string) (*models.Cart, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.Clear()
	if err := s.store.DeleteCart(ctx, sessionID); err != nil {
		zap.L().Warn("failed to clear cart slot", zap.String("session_id", sessionID), zap.Error(err))
	}
	s.notify(cart)
	return cart, nil
}

// persist writes the slot and announces the change. A write failure is logged
// and swallowed; the in-memory state already reflects the mutation.
func (s *CartService) persist(ctx context.Context, cart *models.Cart) {
	if err := s.store.SaveCart(ctx, cart); err != nil {
		zap.L().Warn("failed to persist cart", zap.String("session_id", cart.SessionID), zap.Error(err))
	}
	s.notify(cart)
}

func (s *CartService) notify(cart *models.Cart) {
	s.mu.RLock()
	observers := s.observers
	s.mu.RUnlock()
	for _, obs := range observers {
		obs(cart)
	}
}
