package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ishu34311-maker/Sales/internal/models"
)

// TimestampLayout is the order timestamp format, second precision, local
// time zone of the running process.
const TimestampLayout = "2006-01-02 15:04:05"

var (
	ErrUserExists = errors.New("user already exists")
	ErrEmptyCart  = errors.New("cart is empty")
	ErrNotFound   = errors.New("not found")
)

// Store holds the process-wide database handle. One Store is created at
// startup and injected into every handler.
type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) UserExists(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddUser inserts a new user. Uniqueness is enforced by the unique index
// on username, not by a check-then-insert, concurrent calls for the same
// name race safely and exactly one wins.
func (s *Store) AddUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	user := models.User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         "user",
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUser(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Store) AddProduct(ctx context.Context, name string, price float64) (*models.Product, error) {
	prod := models.Product{Name: name, Price: price}
	if err := s.DB.WithContext(ctx).Create(&prod).Error; err != nil {
		return nil, err
	}
	return &prod, nil
}

func (s *Store) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var prod models.Product
	if err := s.DB.WithContext(ctx).First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &prod, nil
}

// ListProducts returns every product in insertion order.
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	var items []models.Product
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountProducts(ctx context.Context) (int64, error) {
	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) ListProductsPage(ctx context.Context, offset, limit int) ([]models.Product, error) {
	var items []models.Product
	if err := s.DB.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddOrder inserts an order for the given cart with a wall-clock timestamp
// generated at call time.
func (s *Store) AddOrder(ctx context.Context, username string, cart []models.OrderItem) (*models.Order, error) {
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}

	order := models.Order{
		Username:  username,
		Timestamp: time.Now().Format(TimestampLayout),
		Items:     cart,
	}
	if err := s.DB.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Store) ListOrdersFor(ctx context.Context, username string) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").
		Where("username = ?", username).
		Order("id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Store) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := s.DB.WithContext(ctx).Preload("Items").Order("id ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// AddToCart appends a snapshot of the product to the user's persistent cart.
func (s *Store) AddToCart(ctx context.Context, username string, p *models.Product) (*models.CartItem, error) {
	item := models.CartItem{
		Username: username,
		Name:     p.Name,
		Price:    p.Price,
	}
	if err := s.DB.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetCart(ctx context.Context, username string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := s.DB.WithContext(ctx).Where("username = ?", username).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ClearCart(ctx context.Context, username string) error {
	return s.DB.WithContext(ctx).Where("username = ?", username).Delete(&models.CartItem{}).Error
}

// Checkout turns the user's cart into an order in one transaction and
// clears the cart. Returns ErrEmptyCart when there is nothing to buy.
func (s *Store) Checkout(ctx context.Context, username string) (*models.Order, error) {
	var order models.Order

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var items []models.CartItem
		if err := tx.Where("username = ?", username).Order("id ASC").Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		cart := make([]models.OrderItem, 0, len(items))
		for _, it := range items {
			cart = append(cart, models.OrderItem{Name: it.Name, Price: it.Price})
		}

		order = models.Order{
			Username:  username,
			Timestamp: time.Now().Format(TimestampLayout),
			Items:     cart,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		return tx.Where("username = ?", username).Delete(&models.CartItem{}).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &order, nil
}

// SalesRow is one flattened order line for the daily sales report.
type SalesRow struct {
	Product string  `json:"product"`
	Price   float64 `json:"price"`
	Date    string  `json:"date"`
}

// SalesRows flattens every order's cart into per-line-item rows, the date
// is the timestamp's date portion.
func (s *Store) SalesRows(ctx context.Context) ([]SalesRow, error) {
	orders, err := s.ListAllOrders(ctx)
	if err != nil {
		return nil, err
	}

	var rows []SalesRow
	for _, order := range orders {
		date, _, _ := strings.Cut(order.Timestamp, " ")
		for _, item := range order.Items {
			rows = append(rows, SalesRow{
				Product: item.Name,
				Price:   item.Price,
				Date:    date,
			})
		}
	}
	return rows, nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return fmt.Errorf("db() error: %w", err)
	}
	return sqlDB.Close()
}
