package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/vitalis-clinic/backoffice/internal"
	"github.com/vitalis-clinic/backoffice/internal/content"
)

// Repository implements content.RepositoryAPI for one collection using GORM.
type Repository[T content.Record] struct {
	db         *gorm.DB
	collection content.Collection[T]
}

func NewRepository[T content.Record](db *gorm.DB, collection content.Collection[T]) *Repository[T] {
	return &Repository[T]{db: db, collection: collection}
}

// List fetches one page ordered newest-first, with a case-insensitive
// substring match over the collection's searchable columns.
func (r *Repository[T]) List(ctx context.Context, q content.PageQuery) ([]T, int64, error) {
	tx := r.db.WithContext(ctx).Model(r.collection.New())
	tx = r.applySearch(tx, q.Search)

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []T
	err := tx.
		Order("created_at DESC, id DESC").
		Limit(q.Limit).
		Offset(q.Offset()).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *Repository[T]) GetByID(ctx context.Context, id int64) (T, error) {
	rec := r.collection.New()
	err := r.db.WithContext(ctx).Where("id = ?", id).First(rec).Error
	if err != nil {
		var zero T
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, internal.ErrRecordNotFound
		}
		return zero, err
	}
	return rec, nil
}

func (r *Repository[T]) Create(ctx context.Context, rec T) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *Repository[T]) Update(ctx context.Context, rec T) error {
	return r.db.WithContext(ctx).
		Model(rec).
		Select("*").
		Omit("id", "created_at").
		Updates(rec).Error
}

func (r *Repository[T]) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(r.collection.New(), id).Error
}

func (r *Repository[T]) applySearch(tx *gorm.DB, search string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" || len(r.collection.Searchable) == 0 {
		return tx
	}

	pattern := "%" + strings.ToLower(search) + "%"
	clauses := make([]string, len(r.collection.Searchable))
	args := make([]interface{}, len(r.collection.Searchable))
	for i, col := range r.collection.Searchable {
		clauses[i] = fmt.Sprintf("LOWER(%s) LIKE ?", col)
		args[i] = pattern
	}
	return tx.Where(strings.Join(clauses, " OR "), args...)
}
