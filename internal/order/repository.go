package order

import (
	"context"
	"log"
	"sync"

	"gorm.io/gorm"

	"vbgateway/kit/db"
)

type Repository interface {
	Load(ctx context.Context, orderID string) (*Order, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(g *gorm.DB) *GormRepository {
	return &GormRepository{db: g}
}

func (r *GormRepository) Load(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	if err := r.db.WithContext(ctx).First(&o, "id = ?", orderID).Error; err != nil {
		log.Printf("layer=repo component=order repo=GormRepository method=Load order_id=%s err=%v", orderID, err)
		return nil, db.Translate(err)
	}
	return &o, nil
}

type InMemoryRepository struct {
	mu   sync.Mutex
	data map[string]*Order
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{data: make(map[string]*Order)}
}

func (r *InMemoryRepository) Put(o *Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cpy := *o
	r.data[o.ID] = &cpy
}

func (r *InMemoryRepository) Load(ctx context.Context, orderID string) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.data[orderID]
	if !ok {
		log.Printf("layer=repo component=order repo=InMemoryRepository method=Load order_id=%s err=%v", orderID, db.ErrNotFound)
		return nil, db.ErrNotFound
	}
	cpy := *o
	return &cpy, nil
}
