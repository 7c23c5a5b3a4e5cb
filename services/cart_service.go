package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"storefront/cache"
	"storefront/models"
	"storefront/repositories"
	"storefront/utils"
)

type CartService struct {
	carts    repositories.CartStore
	products repositories.ProductStore
	users    repositories.UserStore
	cache    cache.CartCache
	tokens   TokenIssuer
	logger   *slog.Logger
	group    singleflight.Group
	now      func() time.Time
}

func NewCartService(
	carts repositories.CartStore,
	products repositories.ProductStore,
	users repositories.UserStore,
	cartCache cache.CartCache,
	tokens TokenIssuer,
	logger *slog.Logger,
) *CartService {
	if cartCache == nil {
		cartCache = cache.Noop{}
	}
	return &CartService{
		carts:    carts,
		products: products,
		users:    users,
		cache:    cartCache,
		tokens:   tokens,
		logger:   logger,
		now:      time.Now,
	}
}

// AddItem adds req to the cart owned by req.UserID, which defaults to the caller
// and must equal it. The refreshed access token is returned with the cart.
func (s *CartService) AddItem(ctx context.Context, callerID int64, req models.AddToCartRequest) (*models.AddItemResult, error) {
	ownerID := req.UserID
	if ownerID == 0 {
		ownerID = callerID
	}
	if ownerID != callerID {
		return nil, utils.NewUnauthorized("You are not allowed to modify this cart")
	}

	identity, err := s.users.FindIdentity(ctx, ownerID)
	if err != nil {
		return nil, utils.NewInternal("Failed to load user", err)
	}
	if identity == nil {
		return nil, utils.NewNotFound("User not found")
	}
	if identity.IsDeleted {
		return nil, utils.NewForbidden("Account has been deleted")
	}
	if !identity.IsActive {
		return nil, utils.NewForbidden("Account is not active")
	}

	product, err := s.validateProduct(ctx, req)
	if err != nil {
		return nil, err
	}

	cart, err := s.addToCart(ctx, models.UserOwner(ownerID), product, req)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.IssueAccessToken(utils.TokenSubject{
		ID:    identity.ID,
		Role:  identity.Role,
		Email: identity.Email,
	})
	if err != nil {
		return nil, utils.NewInternal("Failed to issue access token", err)
	}

	return &models.AddItemResult{AccessToken: token, Cart: cart}, nil
}

// AddGuestItem is AddItem for an anonymous session cart; no identity or token is involved.
func (s *CartService) AddGuestItem(ctx context.Context, sessionID string, req models.AddToCartRequest) (*models.Cart, error) {
	if sessionID == "" {
		return nil, utils.NewBadRequest("Session id is required")
	}

	product, err := s.validateProduct(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.addToCart(ctx, models.SessionOwner(sessionID), product, req)
}

// GetCart reads through the cache. An owner without a cart gets an empty, unsaved one.
func (s *CartService) GetCart(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	key := owner.CacheKey()
	if cart, ok := s.cache.Get(ctx, key); ok {
		return cart, nil
	}

	// the flight is shared, so one caller cancelling must not fail the rest
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		cart, err := s.carts.FindByOwner(loadCtx, owner)
		if err != nil {
			return nil, utils.NewInternal("Failed to load cart", err)
		}
		if cart == nil {
			return models.NewCart(owner), nil
		}
		s.cache.Set(loadCtx, key, cart)
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	// results are shared between every caller collapsed into the same flight
	return v.(*models.Cart).Clone(), nil
}

func (s *CartService) UpdateItemQuantity(ctx context.Context, userID int64, req models.UpdateCartItemRequest) (*models.Cart, error) {
	cart, idx, err := s.findLine(ctx, models.UserOwner(userID), req.ProductID, req.Size, req.Color)
	if err != nil {
		return nil, err
	}

	item := &cart.Items[idx]
	product, err := s.products.FindForValidation(ctx, item.ProductObjectID, item.ProductID)
	if err != nil {
		return nil, utils.NewInternal("Failed to load product", err)
	}
	if product == nil || !product.IsAvailable() {
		return nil, utils.NewBadRequest("Product is not available")
	}
	if req.Quantity > product.Stock {
		return nil, utils.NewBadRequest("Insufficient stock")
	}

	item.Quantity = req.Quantity
	item.TotalPrice = utils.LineTotal(item.PricePerUnit, item.Quantity)
	item.UpdatedAt = s.now()

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID int64, req models.RemoveCartItemRequest) (*models.Cart, error) {
	cart, idx, err := s.findLine(ctx, models.UserOwner(userID), req.ProductID, req.Size, req.Color)
	if err != nil {
		return nil, err
	}

	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) validateProduct(ctx context.Context, req models.AddToCartRequest) (*models.Product, error) {
	product, err := s.products.FindForValidation(ctx, req.ProductObjectID, req.ProductID)
	if err != nil {
		return nil, utils.NewInternal("Failed to load product", err)
	}
	if product == nil || !product.IsAvailable() {
		return nil, utils.NewBadRequest("Product is not available")
	}
	if !product.Price.IsPositive() {
		return nil, utils.NewBadRequest("Product has no price")
	}
	if req.Quantity > product.Stock {
		return nil, utils.NewBadRequest("Insufficient stock")
	}
	if req.Size != nil && *req.Size != "" && !product.HasSize(*req.Size) {
		return nil, utils.NewBadRequest("Size not available")
	}
	if req.Color != nil && *req.Color != "" && !product.HasColor(*req.Color) {
		return nil, utils.NewBadRequest("Color not available")
	}
	return product, nil
}

// addToCart merges req into the owner's cart by (productId, size, color). Stock is
// checked against the merged quantity but not reserved.
func (s *CartService) addToCart(ctx context.Context, owner models.CartOwner, product *models.Product, req models.AddToCartRequest) (*models.Cart, error) {
	cart, err := s.getOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if idx := cart.FindItem(product.Code, req.Size, req.Color); idx >= 0 {
		item := &cart.Items[idx]
		quantity := item.Quantity + req.Quantity
		if quantity > product.Stock {
			return nil, utils.NewBadRequest("Insufficient stock")
		}
		item.Quantity = quantity
		item.PricePerUnit = product.Price
		item.TotalPrice = utils.LineTotal(product.Price, quantity)
		item.UpdatedAt = now
		if req.ColorCode != nil {
			item.ColorCode = req.ColorCode
		}
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID:       product.Code,
			ProductObjectID: product.ID,
			ProductName:     product.Name,
			PricePerUnit:    product.Price,
			Quantity:        req.Quantity,
			TotalPrice:      utils.LineTotal(product.Price, req.Quantity),
			Size:            req.Size,
			Color:           req.Color,
			ColorCode:       req.ColorCode,
			ProductImage:    product.Image,
			UpdatedAt:       now,
		})
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) getOrCreate(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	cart, err := s.carts.FindByOwner(ctx, owner)
	if err != nil {
		return nil, utils.NewInternal("Failed to load cart", err)
	}
	if cart != nil {
		return cart, nil
	}

	cart = models.NewCart(owner)
	err = s.carts.Create(ctx, cart)
	if errors.Is(err, repositories.ErrDuplicate) {
		// a concurrent request created it first
		cart, err = s.carts.FindByOwner(ctx, owner)
		if err == nil && cart == nil {
			err = repositories.ErrNotFound
		}
	}
	if err != nil {
		return nil, utils.NewInternal("Failed to create cart", err)
	}
	s.logger.Debug("cart created", "owner", owner.CacheKey(), "cart_id", cart.ID)
	return cart, nil
}

func (s *CartService) findLine(ctx context.Context, owner models.CartOwner, productID string, size, color *string) (*models.Cart, int, error) {
	cart, err := s.carts.FindByOwner(ctx, owner)
	if err != nil {
		return nil, 0, utils.NewInternal("Failed to load cart", err)
	}
	if cart == nil {
		return nil, 0, utils.NewNotFound("Cart not found")
	}

	idx := cart.FindItem(productID, size, color)
	if idx < 0 {
		return nil, 0, utils.NewNotFound("Item not found in cart")
	}
	return cart, idx, nil
}

func (s *CartService) save(ctx context.Context, cart *models.Cart) error {
	err := s.carts.Save(ctx, cart)
	if errors.Is(err, repositories.ErrNotFound) {
		return utils.NewNotFound("Cart not found")
	}
	if err != nil {
		return utils.NewInternal("Failed to save cart", err)
	}

	key := cart.Owner().CacheKey()
	s.cache.DeletePrefix(ctx, key)
	s.cache.Set(ctx, key, cart)
	return nil
}
