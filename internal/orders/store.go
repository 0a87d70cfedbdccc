// Package orders holds the operator's local view of store orders. It never
// triggers notifications; callers compose a status change with dispatch.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"woo-notify/internal/apperrors"
	"woo-notify/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatusAll disables status filtering.
const StatusAll = "all"

type Filter struct {
	Status string
	Search string
}

func (f Filter) status() string {
	s := strings.TrimSpace(f.Status)
	if s == StatusAll {
		return ""
	}
	return s
}

// Match applies the filter to a single order in memory with the same rules
// List uses in SQL.
func (f Filter) Match(o models.Order) bool {
	if s := f.status(); s != "" && string(o.Status) != s {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(o.Number), term) ||
		strings.Contains(strings.ToLower(o.FirstName+" "+o.LastName), term)
}

// Apply returns the orders matching f, keeping their order.
func (f Filter) Apply(in []models.Order) []models.Order {
	out := make([]models.Order, 0, len(in))
	for _, o := range in {
		if f.Match(o) {
			out = append(out, o)
		}
	}
	return out
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// likeEscaper makes a search term match literally inside LIKE ... ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// List returns every matching order, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]models.Order, error) {
	return s.ListPage(ctx, f, 1, 0)
}

// ListPage returns page (1-based) of size matching orders, newest first.
// size <= 0 returns every match.
func (s *Store) ListPage(ctx context.Context, f Filter, page, size int) ([]models.Order, error) {
	if page < 1 {
		page = 1
	}
	q := s.db.WithContext(ctx).Model(&models.Order{}).Order("date_created DESC, id DESC")
	if status := f.status(); status != "" {
		q = q.Where("status = ?", status)
	}

	term := strings.ToLower(strings.TrimSpace(f.Search))
	// sqlite's LOWER folds ASCII only, so non-ASCII terms are matched with
	// Filter.Match after the status filter.
	if term != "" && !isASCII(term) {
		all := []models.Order{}
		if err := q.Find(&all).Error; err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}
		return paginate(f.Apply(all), page, size), nil
	}

	if term != "" {
		like := "%" + likeEscaper.Replace(term) + "%"
		q = q.Where(`(LOWER(number) LIKE ? ESCAPE '\' OR LOWER(first_name || ' ' || last_name) LIKE ? ESCAPE '\')`, like, like)
	}
	if size > 0 {
		q = q.Limit(size).Offset((page - 1) * size)
	}

	orders := []models.Order{}
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func paginate(in []models.Order, page, size int) []models.Order {
	if size <= 0 {
		return in
	}
	start := (page - 1) * size
	if start >= len(in) {
		return []models.Order{}
	}
	end := start + size
	if end > len(in) {
		end = len(in)
	}
	return in[start:end]
}

func (s *Store) Get(ctx context.Context, id int64) (models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, apperrors.NotFound("order %d not found", id)
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("get order %d: %w", id, err)
	}
	return order, nil
}

// Upsert imports orders from the store, overwriting local copies.
func (s *Store) Upsert(ctx context.Context, orders ...models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&orders).Error
	if err != nil {
		return fmt.Errorf("import %d orders: %w", len(orders), err)
	}
	return nil
}

// SetStatus changes the status of one order and returns the updated order.
// The status is validated before the database is touched.
func (s *Store) SetStatus(ctx context.Context, id int64, status models.OrderStatus) (models.Order, error) {
	if !status.Valid() {
		return models.Order{}, apperrors.InvalidInput("invalid status value %q", status)
	}

	var updated models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).Where("id = ?", id).Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("order %d not found", id)
		}
		return tx.First(&updated, "id = ?", id).Error
	})
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return models.Order{}, err
		}
		return models.Order{}, fmt.Errorf("set status of order %d: %w", id, err)
	}
	return updated, nil
}
