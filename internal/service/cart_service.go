package service

import (
	"github.com/shopspring/decimal"

	"github.com/dairydrop/internal/constants"
	"github.com/dairydrop/internal/models"
	"github.com/dairydrop/internal/repository"
)

// CartService owns the per-user cart. Prices are resolved from the live
// catalog on every read; snapshots happen at checkout.
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService creates a cart service.
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// CartSummary is the cart with live pricing.
type CartSummary struct {
	Items    []models.CartItem `json:"items"`
	Subtotal models.Money      `json:"subtotal"`
}

// Add puts a product in the cart or bumps its quantity.
func (s *CartService) Add(userID, productID uint, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	if product.Status == constants.ProductStatusInactive {
		return ErrProductInactive
	}
	return s.cartRepo.Upsert(&models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	})
}

// SetQuantity sets an absolute quantity; zero removes the line.
func (s *CartService) SetQuantity(userID, productID uint, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	existing, err := s.cartRepo.Get(userID, productID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrCartItemNotFound
	}
	if quantity == 0 {
		return s.cartRepo.Remove(userID, productID)
	}
	return s.cartRepo.UpdateQuantity(userID, productID, quantity)
}

// Remove deletes one line.
func (s *CartService) Remove(userID, productID uint) error {
	return s.cartRepo.Remove(userID, productID)
}

// Get returns the cart with a live subtotal.
func (s *CartService) Get(userID uint) (*CartSummary, error) {
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	subtotal := decimal.Zero
	for i := range items {
		if items[i].Product == nil {
			continue
		}
		price := items[i].Product.EffectivePrice()
		subtotal = subtotal.Add(price.Decimal.Mul(decimal.NewFromInt(int64(items[i].Quantity))))
	}
	return &CartSummary{
		Items:    items,
		Subtotal: models.NewMoneyFromDecimal(subtotal),
	}, nil
}

// CheckoutItems converts the cart into order creation lines.
func (s *CartService) CheckoutItems(userID uint) ([]CreateOrderItem, error) {
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}
	lines := make([]CreateOrderItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, CreateOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return lines, nil
}
