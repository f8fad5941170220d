package payment

import (
	"context"
	"log"
	"strings"
	"sync"

	"gorm.io/gorm"

	"vbgateway/kit/db"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(g *gorm.DB) *GormRepository {
	return &GormRepository{db: g}
}

func (r *GormRepository) Create(ctx context.Context, p *Payment) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		log.Printf("layer=repo component=payment repo=GormRepository method=Create payment_id=%s order_id=%s err=%v", p.ID, p.OrderID, err)
		return db.Translate(err)
	}
	return nil
}

func (r *GormRepository) Save(ctx context.Context, p *Payment) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		log.Printf("layer=repo component=payment repo=GormRepository method=Save payment_id=%s err=%v", p.ID, err)
		return db.Translate(err)
	}
	return nil
}

func (r *GormRepository) LoadUnchanged(ctx context.Context, paymentID string) (*Payment, error) {
	var p Payment
	if err := r.db.WithContext(ctx).First(&p, "id = ?", paymentID).Error; err != nil {
		log.Printf("layer=repo component=payment repo=GormRepository method=LoadUnchanged payment_id=%s err=%v", paymentID, err)
		return nil, db.Translate(err)
	}
	return &p, nil
}

func (r *GormRepository) QueryByRemoteIDPrefix(ctx context.Context, prefix string, gatewayIDs []string) ([]*Payment, error) {
	var out []*Payment
	q := r.db.WithContext(ctx).
		Where("remote_id LIKE ?", likeEscape(prefix)+"%").
		Where("gateway_id IN ?", gatewayIDs).
		Order("authorized_at ASC")
	if err := q.Find(&out).Error; err != nil {
		log.Printf("layer=repo component=payment repo=GormRepository method=QueryByRemoteIDPrefix prefix=%s err=%v", prefix, err)
		return nil, db.Translate(err)
	}
	return out, nil
}

func (r *GormRepository) QueryByOrderID(ctx context.Context, orderID, gatewayID string) ([]*Payment, error) {
	var out []*Payment
	q := r.db.WithContext(ctx).
		Where("order_id = ? AND gateway_id = ?", orderID, gatewayID).
		Order("authorized_at ASC")
	if err := q.Find(&out).Error; err != nil {
		log.Printf("layer=repo component=payment repo=GormRepository method=QueryByOrderID order_id=%s err=%v", orderID, err)
		return nil, db.Translate(err)
	}
	return out, nil
}

func likeEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

type InMemoryRepository struct {
	mu   sync.Mutex
	data map[string]*Payment
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{data: make(map[string]*Payment)}
}

func (r *InMemoryRepository) Create(ctx context.Context, p *Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[p.ID]; ok {
		log.Printf("layer=repo component=payment repo=InMemoryRepository method=Create payment_id=%s err=%v", p.ID, db.ErrConflict)
		return db.ErrConflict
	}
	cpy := *p
	r.data[p.ID] = &cpy
	return nil
}

func (r *InMemoryRepository) Save(ctx context.Context, p *Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cpy := *p
	r.data[p.ID] = &cpy
	return nil
}

func (r *InMemoryRepository) LoadUnchanged(ctx context.Context, paymentID string) (*Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[paymentID]
	if !ok {
		log.Printf("layer=repo component=payment repo=InMemoryRepository method=LoadUnchanged payment_id=%s err=%v", paymentID, db.ErrNotFound)
		return nil, db.ErrNotFound
	}
	cpy := *p
	return &cpy, nil
}

func (r *InMemoryRepository) QueryByRemoteIDPrefix(ctx context.Context, prefix string, gatewayIDs []string) ([]*Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Payment
	for _, p := range r.data {
		if !strings.HasPrefix(p.RemoteID, prefix) {
			continue
		}
		if !contains(gatewayIDs, p.GatewayID) {
			continue
		}
		cpy := *p
		out = append(out, &cpy)
	}
	return out, nil
}

func (r *InMemoryRepository) QueryByOrderID(ctx context.Context, orderID, gatewayID string) ([]*Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Payment
	for _, p := range r.data {
		if p.OrderID == orderID && p.GatewayID == gatewayID {
			cpy := *p
			out = append(out, &cpy)
		}
	}
	return out, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
