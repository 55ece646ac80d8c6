package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/chaudhary-hadi27/usman-fast-food/apperrors"
	"github.com/chaudhary-hadi27/usman-fast-food/models"
	"github.com/chaudhary-hadi27/usman-fast-food/repository"
)

// MenuCache fronts the storefront listing.
type MenuCache interface {
	GetMenu(ctx context.Context) ([]models.MenuItem, error)
	SetMenu(ctx context.Context, items []models.MenuItem, ttl time.Duration) error
	InvalidateMenu(ctx context.Context) error
}

// MenuItemInput is the admin create/update payload.
type MenuItemInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Available   *bool   `json:"available"`
}

// MenuService serves the catalog. The ordering core treats it as read-only;
// only the admin dashboard mutates it.
type MenuService struct {
	repo     repository.MenuRepository
	cache    MenuCache
	cacheTTL time.Duration
}

func NewMenuService(repo repository.MenuRepository, cache MenuCache, cacheTTL time.Duration) *MenuService {
	return &MenuService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// List returns menu items, serving the storefront's unfiltered available
// listing from cache when possible.
func (s *MenuService) List(ctx context.Context, category string, availableOnly bool) ([]models.MenuItem, error) {
	if category != "" && !models.ValidCategory(category) {
		return nil, apperrors.Validation("category", fmt.Sprintf("unknown category %q", category))
	}

	cacheable := category == "" && availableOnly
	if cacheable && s.cache != nil {
		if items, err := s.cache.GetMenu(ctx); err == nil && items != nil {
			return items, nil
		}
	}

	items, err := s.repo.Find(ctx, category, availableOnly)
	if err != nil {
		return nil, apperrors.Transient("failed to load menu", err)
	}

	if cacheable && s.cache != nil {
		if err := s.cache.SetMenu(ctx, items, s.cacheTTL); err != nil {
			zap.L().Warn("failed to cache menu", zap.Error(err))
		}
	}
	return items, nil
}

// Get returns one catalog item.
func (s *MenuService) Get(ctx context.Context, id string) (*models.MenuItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err == repository.ErrNoDocument {
		return nil, apperrors.NotFound("menu item not found")
	}
	if err != nil {
		return nil, apperrors.Transient("failed to load menu item", err)
	}
	return item, nil
}

// Create adds a catalog item and invalidates the storefront cache.
func (s *MenuService) Create(ctx context.Context, input *MenuItemInput) (*models.MenuItem, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	available := true
	if input.Available != nil {
		available = *input.Available
	}
	item := &models.MenuItem{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Image:       input.Image,
		Available:   available,
	}

	id, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, apperrors.Transient("failed to create menu item", err)
	}
	s.invalidate(ctx)

	return s.Get(ctx, id)
}

// Update applies a partial update and invalidates the storefront cache.
func (s *MenuService) Update(ctx context.Context, id string, input *MenuItemInput) (*models.MenuItem, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	updates := bson.M{
		"name":        input.Name,
		"description": input.Description,
		"price":       input.Price,
		"category":    input.Category,
		"image":       input.Image,
	}
	if input.Available != nil {
		updates["available"] = *input.Available
	}

	matched, err := s.repo.Update(ctx, id, updates)
	if err == repository.ErrNoDocument || matched == 0 {
		return nil, apperrors.NotFound("menu item not found")
	}
	if err != nil {
		return nil, apperrors.Transient("failed to update menu item", err)
	}
	s.invalidate(ctx)

	return s.Get(ctx, id)
}

// Delete removes a catalog item and invalidates the storefront cache.
func (s *MenuService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err == repository.ErrNoDocument || (err == nil && deleted == 0) {
		return apperrors.NotFound("menu item not found")
	}
	if err != nil {
		return apperrors.Transient("failed to delete menu item", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *MenuService) validateInput(input *MenuItemInput) error {
	if input.Name == "" || len(input.Name) < 3 {
		return apperrors.Validation("name", "name must be at least 3 characters")
	}
	if len(input.Description) < 10 {
		return apperrors.Validation("description", "description must be at least 10 characters")
	}
	if input.Price <= 0 || input.Price > 100000 {
		return apperrors.Validation("price", "price must be between 0 and 100000")
	}
	if !models.ValidCategory(input.Category) {
		return apperrors.Validation("category", fmt.Sprintf("unknown category %q", input.Category))
	}
	if input.Image == "" {
		return apperrors.Validation("image", "image is required")
	}
	return nil
}

func (s *MenuService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateMenu(ctx); err != nil {
		zap.L().Warn("failed to invalidate menu cache", zap.Error(err))
	}
}
