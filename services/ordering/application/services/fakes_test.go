package services

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dineqr/dineqr/pkg/config"
	"github.com/dineqr/dineqr/pkg/logger"
	"github.com/dineqr/dineqr/services/ordering/domain"
	"github.com/dineqr/dineqr/services/ordering/domain/models"
	"github.com/dineqr/dineqr/services/ordering/domain/repositories"
)

func testLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

// memRepo is an in-memory OrderRepository and AdditionRepository.
// Transact runs serialised and applies staged writes only when fn succeeds,
// with the same unique and version checks the SQL store makes.
type memRepo struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]*models.Order
	additions []models.KitchenAddition
	seq       int64
	transacts int
	lastLimit int

	// beforeInsert runs once, inside the next Insert, to simulate a
	// concurrent request that opened the table first.
	beforeInsert func(r *memRepo)
}

func newMemRepo() *memRepo {
	return &memRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (r *memRepo) seed(o *models.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o.Clone()
}

func (r *memRepo) snapshot(id uuid.UUID) *models.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok {
		return o.Clone()
	}
	return nil
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

func (r *memRepo) Transact(_ context.Context, fn func(store repositories.OrderStore) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transacts++

	st := &memStore{repo: r, staged: map[uuid.UUID]*models.Order{}}
	if err := fn(st); err != nil {
		return err
	}
	for id, o := range st.staged {
		r.orders[id] = o
	}
	for _, a := range st.adds {
		r.seq++
		a.Seq = r.seq
		r.additions = append(r.additions, a)
	}
	return nil
}

func (r *memRepo) GetByID(_ context.Context, restaurantID, id uuid.UUID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.RestaurantID != restaurantID {
		return nil, domain.ErrOrderNotFound
	}
	return o.Clone(), nil
}

func (r *memRepo) list(restaurantID uuid.UUID, keep func(*models.Order) bool) []*models.Order {
	var out []*models.Order
	for _, o := range r.orders {
		if o.RestaurantID == restaurantID && keep(o) {
			out = append(out, o.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *models.Order) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out
}

func (r *memRepo) ListRecent(_ context.Context, restaurantID uuid.UUID, limit int) ([]*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit
	out := r.list(restaurantID, func(*models.Order) bool { return true })
	slices.Reverse(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) ListKitchenQueue(_ context.Context, restaurantID uuid.UUID) ([]*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(restaurantID, func(o *models.Order) bool {
		return o.Status != models.StatusServed && o.Status != models.StatusClosed
	}), nil
}

func (r *memRepo) ListCreatedBetween(_ context.Context, restaurantID uuid.UUID, from, to time.Time) ([]*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(restaurantID, func(o *models.Order) bool {
		return !o.CreatedAt.Before(from) && o.CreatedAt.Before(to)
	}), nil
}

func (r *memRepo) ListNew(_ context.Context, restaurantID uuid.UUID, limit int) ([]models.KitchenAddition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit
	var out []models.KitchenAddition
	for _, a := range r.additions {
		if a.RestaurantID == restaurantID && a.Status == models.AdditionNew {
			out = append(out, a)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memRepo) Acknowledge(_ context.Context, restaurantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.additions {
		if a.ID == id && a.RestaurantID == restaurantID {
			r.additions[i].Status = models.AdditionPreparing
			return nil
		}
	}
	return domain.ErrAdditionNotFound
}

func (r *memRepo) additionsFor(orderID uuid.UUID) []models.KitchenAddition {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.KitchenAddition
	for _, a := range r.additions {
		if a.OrderID == orderID {
			out = append(out, a)
		}
	}
	return out
}

type memStore struct {
	repo   *memRepo
	staged map[uuid.UUID]*models.Order
	adds   []models.KitchenAddition
}

func (s *memStore) current(id uuid.UUID) (*models.Order, bool) {
	if o, ok := s.staged[id]; ok {
		return o, true
	}
	o, ok := s.repo.orders[id]
	return o, ok
}

func (s *memStore) FindOpenByTable(_ context.Context, restaurantID uuid.UUID, tableNo int) (*models.Order, error) {
	var newest *models.Order
	for id := range s.repo.orders {
		o, _ := s.current(id)
		if o.RestaurantID != restaurantID || o.TableNo != tableNo || !o.Status.IsOpen() {
			continue
		}
		if newest == nil || o.CreatedAt.After(newest.CreatedAt) {
			newest = o
		}
	}
	if newest == nil {
		return nil, domain.ErrOrderNotFound
	}
	return newest.Clone(), nil
}

func (s *memStore) GetByID(_ context.Context, restaurantID, id uuid.UUID) (*models.Order, error) {
	o, ok := s.current(id)
	if !ok || o.RestaurantID != restaurantID {
		return nil, domain.ErrOrderNotFound
	}
	return o.Clone(), nil
}

func (s *memStore) Insert(ctx context.Context, o *models.Order) error {
	if hook := s.repo.beforeInsert; hook != nil {
		s.repo.beforeInsert = nil
		hook(s.repo)
	}
	if _, err := s.FindOpenByTable(ctx, o.RestaurantID, o.TableNo); err == nil {
		return domain.ErrOpenOrderExists
	}
	s.staged[o.ID] = o.Clone()
	return nil
}

func (s *memStore) save(o *models.Order) error {
	cur, ok := s.current(o.ID)
	if !ok || cur.RestaurantID != o.RestaurantID {
		return domain.ErrOrderNotFound
	}
	if cur.Version != o.Version {
		return domain.ErrConcurrentUpdate
	}
	o.Version++
	s.staged[o.ID] = o.Clone()
	return nil
}

func (s *memStore) SaveItems(_ context.Context, o *models.Order) error {
	return s.save(o)
}

func (s *memStore) SaveStatus(_ context.Context, o *models.Order, _ models.OrderStatus) error {
	return s.save(o)
}

func (s *memStore) InsertAdditions(_ context.Context, adds []models.KitchenAddition) error {
	s.adds = append(s.adds, adds...)
	return nil
}

// memCache is a KitchenFeedCache and SalesSnapshotCache.
type memCache[T any] struct {
	mu      sync.Mutex
	entries map[string]T
	deletes []string
	sets    int
}

func newMemCache[T any]() *memCache[T] {
	return &memCache[T]{entries: map[string]T{}}
}

func (c *memCache[T]) Get(_ context.Context, key string) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		var zero T
		return zero, redis.Nil
	}
	return v, nil
}

func (c *memCache[T]) Set(_ context.Context, key string, v T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = v
	c.sets++
	return nil
}

func (c *memCache[T]) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.deletes = append(c.deletes, key)
	return nil
}

type stubRestaurants struct {
	byID  map[uuid.UUID]*models.Restaurant
	stats []models.RestaurantStats
	sales []models.DailySales
	calls int
}

func (s *stubRestaurants) GetByID(_ context.Context, id uuid.UUID) (*models.Restaurant, error) {
	if r, ok := s.byID[id]; ok {
		return r, nil
	}
	return nil, domain.ErrRestaurantMissing
}

func (s *stubRestaurants) GetBySubdomain(_ context.Context, subdomain string) (*models.Restaurant, error) {
	for _, r := range s.byID {
		if r.Subdomain == subdomain {
			return r, nil
		}
	}
	return nil, domain.ErrRestaurantMissing
}

func (s *stubRestaurants) UpdateProfile(_ context.Context, id uuid.UUID, p models.RestaurantProfile) (*models.Restaurant, error) {
	r, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrRestaurantMissing
	}
	updated := *r
	updated.Name, updated.GSTIN, updated.Address, updated.Phone = p.Name, p.GSTIN, p.Address, p.Phone
	s.byID[id] = &updated
	return &updated, nil
}

func (s *stubRestaurants) Stats(context.Context) ([]models.RestaurantStats, error) {
	return s.stats, nil
}

func (s *stubRestaurants) DailySales(context.Context, time.Time, time.Time) ([]models.DailySales, error) {
	s.calls++
	return s.sales, nil
}

type stubMenu map[uuid.UUID]repositories.MenuEntry

func (m stubMenu) LookupMenuItem(_ context.Context, _ uuid.UUID, id uuid.UUID) (repositories.MenuEntry, error) {
	e, ok := m[id]
	if !ok {
		return repositories.MenuEntry{}, domain.ErrMenuItemNotFound
	}
	return e, nil
}
