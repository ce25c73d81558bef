package usecase

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/blueice-inventory-service/internal/apperror"
	"github.com/fekuna/blueice-inventory-service/internal/auth"
	"github.com/fekuna/blueice-inventory-service/internal/inventory"
	"github.com/fekuna/blueice-inventory-service/internal/inventory/dto"
	"github.com/fekuna/blueice-inventory-service/internal/model"
	"github.com/fekuna/blueice-inventory-service/internal/store/memory"
	"github.com/fekuna/blueice-inventory-service/pkg/cache"
	"github.com/fekuna/blueice-inventory-service/pkg/logger"
	"github.com/fekuna/blueice-inventory-service/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return v, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := strconv.ParseInt(string(c.data[key]), 10, 64)
	n++
	c.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

// pausingRepo holds Snapshot open after the read until release is closed.
type pausingRepo struct {
	inventory.Repository
	taken   chan struct{}
	release chan struct{}
}

func (r *pausingRepo) Snapshot(ctx context.Context) ([]model.Product, map[string]int, error) {
	products, withCustomers, err := r.Repository.Snapshot(ctx)
	close(r.taken)
	<-r.release
	return products, withCustomers, err
}

// conflictingRepo fails the first n ApplyMovement calls with ErrConflict.
type conflictingRepo struct {
	inventory.Repository
	mu    sync.Mutex
	n     int
	calls int
}

func (r *conflictingRepo) ApplyMovement(ctx context.Context, productID string, mutate inventory.MutateFunc) (*model.Product, error) {
	r.mu.Lock()
	r.calls++
	fail := r.calls <= r.n
	r.mu.Unlock()
	if fail {
		return nil, apperror.ErrConflict
	}
	return r.Repository.ApplyMovement(ctx, productID, mutate)
}

type fixture struct {
	store     *memory.Store
	uc        *inventoryUseCase
	cache     *memCache
	publisher *recordingPublisher
	metrics   *metrics.Registry
}

func newFixture(t *testing.T, repo inventory.Repository, store *memory.Store) *fixture {
	t.Helper()
	f := &fixture{
		store:     store,
		cache:     newMemCache(),
		publisher: &recordingPublisher{},
		metrics:   metrics.NewRegistry(),
	}
	uc := NewInventoryUseCase(
		repo,
		f.cache,
		f.publisher,
		auth.NewRoleAuthorizer([]string{"ADMIN", "SUPER_ADMIN"}),
		f.metrics,
		logger.NewNop(),
		Options{MaxRetries: 3, RetryBackoff: time.Millisecond, StatsTTL: time.Minute},
	)
	f.uc = uc.(*inventoryUseCase)
	return f
}

func setup(t *testing.T, stock model.StockLevels) *fixture {
	t.Helper()
	store := memory.NewStore()
	p := model.Product{BaseModel: model.BaseModel{ID: "p1"}, Name: "19L Bottle", SKU: "B19", IsReturnable: true}
	p.SetStock(stock)
	store.AddProduct(p)
	return newFixture(t, store.Inventory(), store)
}

func (f *fixture) stock(t *testing.T) model.StockLevels {
	t.Helper()
	p, ok := f.store.Product("p1")
	require.True(t, ok)
	return p.Stock()
}

func admin() context.Context {
	return auth.WithUser(context.Background(), auth.UserContext{UserID: "u-admin", Role: "ADMIN"})
}

func TestScenarios(t *testing.T) {
	f := setup(t, model.StockLevels{})
	ctx := context.Background()

	p, err := f.uc.Restock(ctx, &dto.RestockInput{ProductID: "p1", Filled: 50, Empty: 20})
	require.NoError(t, err)
	assert.Equal(t, model.StockLevels{Filled: 50, Empty: 20}, p.Stock())

	p, err = f.uc.Refill(ctx, &dto.RefillInput{ProductID: "p1", Quantity: 15})
	require.NoError(t, err)
	assert.Equal(t, model.StockLevels{Filled: 65, Empty: 5}, p.Stock())

	_, err = f.uc.RecordDamageOrLoss(ctx, &dto.DamageInput{ProductID: "p1", Quantity: 70, Type: model.MovementDamage, Reason: "test"})
	require.ErrorIs(t, err, apperror.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "have 65, need 70")
	assert.Equal(t, model.StockLevels{Filled: 65, Empty: 5}, f.stock(t))

	p, err = f.uc.RecordDamageOrLoss(ctx, &dto.DamageInput{ProductID: "p1", Quantity: 5, Type: model.MovementLoss, Reason: "stolen"})
	require.NoError(t, err)
	assert.Equal(t, model.StockLevels{Filled: 60, Empty: 5}, p.Stock())

	assert.Len(t, f.store.Movements(), 3)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.MovementRejections.WithLabelValues("DAMAGE", "insufficient_stock")))
}

func TestMovementLog(t *testing.T) {
	f := setup(t, model.StockLevels{Filled: 10, Empty: 10})
	ctx := auth.WithUser(context.Background(), auth.UserContext{UserID: "u1", Role: "WAREHOUSE"})
	notes := "  truck 4 "

	_, err := f.uc.RecordDamageOrLoss(ctx, &dto.DamageInput{ProductID: "p1", Quantity: 4, Type: model.MovementDamage, Reason: "cracked", Notes: &notes})
	require.NoError(t, err)

	log := f.store.Movements()
	require.Len(t, log, 1)
	m := log[0]
	assert.Equal(t, model.MovementDamage, m.Kind)
	assert.Equal(t, model.StockLevels{Filled: -4, Damaged: 4}, m.Change())
	assert.Equal(t, model.StockLevels{Filled: 6, Empty: 10, Damaged: 4}, m.After())
	assert.Equal(t, model.StockLevels{Filled: 10, Empty: 10}, m.Before())
	require.NotNil(t, m.Reason)
	assert.Equal(t, "cracked", *m.Reason)
	require.NotNil(t, m.Notes)
	assert.Equal(t, "truck 4", *m.Notes)
	require.NotNil(t, m.CreatedBy)
	assert.Equal(t, "u1", *m.CreatedBy)
	assert.NotEmpty(t, m.ID)

	assert.Equal(t, []string{"p1"}, f.publisher.keys)
}

func TestValidationLeavesStockUntouched(t *testing.T) {
	start := model.StockLevels{Filled: 10, Empty: 3, Damaged: 1}
	f := setup(t, start)
	ctx := context.Background()

	cases := map[string]func() error{
		"zero restock": func() error {
			_, err := f.uc.Restock(ctx, &dto.RestockInput{ProductID: "p1"})
			return err
		},
		"negative restock": func() error {
			_, err := f.uc.Restock(ctx, &dto.RestockInput{ProductID: "p1", Filled: -1, Empty: 5})
			return err
		},
		"missing product id": func() error {
			_, err := f.uc.Refill(ctx, &dto.RefillInput{Quantity: 1})
			return err
		},
		"damage without reason": func() error {
			_, err := f.uc.RecordDamageOrLoss(ctx, &dto.DamageInput{ProductID: "p1", Quantity: 1, Type: model.MovementDamage})
			return err
		},
		"unknown damage type": func() error {
			_, err := f.uc.RecordDamageOrLoss(ctx, &dto.DamageInput{ProductID: "p1", Quantity: 1, Type: "BROKEN", Reason: "x"})
			return err
		},
	}
	for name, run := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, run(), apperror.ErrValidation)
		})
	}

	assert.Equal(t, start, f.stock(t))
	assert.Empty(t, f.store.Movements())
	assert.Empty(t, f.publisher.keys)
}

func TestRefillBound(t *testing.T) {
	f := setup(t, model.StockLevels{Filled: 2, Empty: 7})
	ctx := context.Background()

	_, err := f.uc.Refill(ctx, &dto.RefillInput{ProductID: "p1", Quantity: 8})
	require.ErrorIs(t, err, apperror.ErrInsufficientStock)
	assert.Equal(t, model.StockLevels{Filled: 2, Empty: 7}, f.stock(t))

	p, err := f.uc.Refill(ctx, &dto.RefillInput{ProductID: "p1", Quantity: 7})
	require.NoError(t, err)
	assert.Equal(t, model.StockLevels{Filled: 9, Empty: 0}, p.Stock())
}

func TestRestockBeyondCounterLimit(t *testing.T) {
	f := setup(t, model.StockLevels{Filled: inventory.MaxQuantity - 5})

	_, err := f.uc.Restock(context.Background(), &dto.RestockInput{ProductID: "p1", Filled: 10})
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, model.StockLevels{Filled: inventory.MaxQuantity - 5}, f.stock(t))
	assert.Empty(t, f.store.Movements())

	p, err := f.uc.Restock(context.Background(), &dto.RestockInput{ProductID: "p1", Filled: 5})
	require.NoError(t, err)
	assert.Equal(t, inventory.MaxQuantity, p.StockFilled)
}

func TestUnknownProduct(t *testing.T) {
	f := setup(t, model.StockLevels{})

	_, err := f.uc.Restock(context.Background(), &dto.RestockInput{ProductID: "nope", Filled: 1})
	require.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Contains(t, err.Error(), `"nope"`)
}

func TestAdjustStock(t *testing.T) {
	input := &dto.AdjustmentInput{ProductID: "p1", StockFilled: 12, StockEmpty: 0, StockDamaged: 3, Reason: "physical count"}

	t.Run("refused without admin", func(t *testing.T) {
		f := setup(t, model.StockLevels{Filled: 20})

		_, err := f.uc.AdjustStock(context.Background(), input)
		assert.ErrorIs(t, err, apperror.ErrForbidden)

		staff := auth.WithUser(context.Background(), auth.UserContext{UserID: "u2", Role: "DRIVER"})
		_, err = f.uc.AdjustStock(staff, input)
		assert.ErrorIs(t, err, apperror.ErrForbidden)

		assert.Equal(t, model.StockLevels{Filled: 20}, f.stock(t))
		assert.Empty(t, f.store.Movements())
	})

	t.Run("admin overwrites counters", func(t *testing.T) {
		f := setup(t, model.StockLevels{Filled: 20})

		p, err := f.uc.AdjustStock(admin(), input)
		require.NoError(t, err)
		assert.Equal(t, model.StockLevels{Filled: 12, Damaged: 3}, p.Stock())

		log := f.store.Movements()
		require.Len(t, log, 1)
		assert.Equal(t, model.MovementAdjust, log[0].Kind)
		assert.Equal(t, model.StockLevels{Filled: -8, Damaged: 3}, log[0].Change())
	})

	t.Run("negative target rejected", func(t *testing.T) {
		f := setup(t, model.StockLevels{Filled: 20})
		bad := *input
		bad.StockEmpty = -1
		_, err := f.uc.AdjustStock(admin(), &bad)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})
}

func TestConcurrentRefillsNeverOversell(t *testing.T) {
	f := setup(t, model.StockLevels{Filled: 0, Empty: 30})

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		ok, rejected int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Refill(context.Background(), &dto.RefillInput{ProductID: "p1", Quantity: 1})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, apperror.ErrInsufficientStock) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 30, ok)
	assert.Equal(t, 20, rejected)
	assert.Equal(t, model.StockLevels{Filled: 30, Empty: 0}, f.stock(t))
	assert.Len(t, f.store.Movements(), 30)
}

func TestConflictsAreRetried(t *testing.T) {
	store := memory.NewStore()
	store.AddProduct(model.Product{BaseModel: model.BaseModel{ID: "p1"}, StockEmpty: 5})

	t.Run("succeeds within budget", func(t *testing.T) {
		repo := &conflictingRepo{Repository: store.Inventory(), n: 2}
		f := newFixture(t, repo, store)

		p, err := f.uc.Refill(context.Background(), &dto.RefillInput{ProductID: "p1", Quantity: 1})
		require.NoError(t, err)
		assert.Equal(t, 1, p.StockFilled)
		assert.Equal(t, 3, repo.calls)
		assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.MovementRetries))
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		repo := &conflictingRepo{Repository: store.Inventory(), n: 100}
		f := newFixture(t, repo, store)

		_, err := f.uc.Refill(context.Background(), &dto.RefillInput{ProductID: "p1", Quantity: 1})
		require.ErrorIs(t, err, apperror.ErrConflict)
		assert.Equal(t, 4, repo.calls)
	})
}

func TestInventoryStats(t *testing.T) {
	f := setup(t, model.StockLevels{Filled: 60, Empty: 5, Damaged: 2})
	f.store.AddProduct(model.Product{BaseModel: model.BaseModel{ID: "p0"}, Name: "10L Bottle", SKU: "B10", IsReturnable: true})
	f.store.AddCustomer(model.RouteCustomer{ID: "c1", Name: "Ali"})
	f.store.AddCustomer(model.RouteCustomer{ID: "c2", Name: "Sara"})
	f.store.SetWallet("c1", "p1", 20)
	f.store.SetWallet("c2", "p1", 10)
	f.store.SetWallet("c2", "p0", -3)
	ctx := context.Background()

	stats, err := f.uc.GetInventoryStats(ctx)
	require.NoError(t, err)

	require.Len(t, stats.Products, 2)
	assert.Equal(t, "p0", stats.Products[0].ID, "ordered by name")
	assert.Equal(t, 0, stats.Products[0].BottlesWithCustomers)
	row := stats.Products[1]
	assert.Equal(t, 30, row.BottlesWithCustomers)
	assert.Equal(t, row.StockFilled+row.StockEmpty+row.StockDamaged+row.BottlesWithCustomers, row.TotalBottles)
	assert.Equal(t, 97, stats.Totals.Total)

	t.Run("served from cache until a movement", func(t *testing.T) {
		require.True(t, f.cache.has(inventory.StatsKey(0)))

		_, err := f.uc.GetInventoryStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.StatsCacheHits))

		_, err = f.uc.Restock(ctx, &dto.RestockInput{ProductID: "p1", Filled: 1})
		require.NoError(t, err)
		assert.False(t, f.cache.has(inventory.StatsKey(1)))

		fresh, err := f.uc.GetInventoryStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 98, fresh.Totals.Total)
	})
}

func TestInventoryStats_SlowReadDoesNotCacheOldTotals(t *testing.T) {
	store := memory.NewStore()
	store.AddProduct(model.Product{BaseModel: model.BaseModel{ID: "p1"}, Name: "19L Bottle", StockFilled: 10})
	repo := &pausingRepo{Repository: store.Inventory(), taken: make(chan struct{}), release: make(chan struct{})}
	f := newFixture(t, repo, store)
	ctx := context.Background()

	type result struct {
		stats *model.InventoryStats
		err   error
	}
	slow := make(chan result, 1)
	go func() {
		stats, err := f.uc.GetInventoryStats(ctx)
		slow <- result{stats, err}
	}()

	<-repo.taken
	_, err := f.uc.Restock(ctx, &dto.RestockInput{ProductID: "p1", Filled: 5})
	require.NoError(t, err)
	close(repo.release)

	old := <-slow
	require.NoError(t, old.err)
	assert.Equal(t, 10, old.stats.Totals.Filled)

	stats, err := f.uc.GetInventoryStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, stats.Totals.Filled)
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.StatsCacheHits))
}

func TestInventoryStats_CacheReadErrorFallsBackToStore(t *testing.T) {
	f := setup(t, model.StockLevels{Filled: 7})
	require.NoError(t, f.cache.Set(context.Background(), inventory.StatsVersionKey, []byte("garbage"), 0))

	stats, err := f.uc.GetInventoryStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Totals.Filled)
	assert.False(t, f.cache.has(inventory.StatsKey(0)))
}

func TestBottlesWithCustomers(t *testing.T) {
	f := setup(t, model.StockLevels{})
	f.store.AddProduct(model.Product{BaseModel: model.BaseModel{ID: "p2"}, Name: "Dispenser", SKU: "D1", IsReturnable: true})
	f.store.AddCustomer(model.RouteCustomer{ID: "c1", Name: "Ali"})
	f.store.AddCustomer(model.RouteCustomer{ID: "c2", Name: "Sara"})
	f.store.AddCustomer(model.RouteCustomer{ID: "c3", Name: "Omar"})
	f.store.SetWallet("c1", "p1", 4)
	f.store.SetWallet("c2", "p1", 9)
	f.store.SetWallet("c3", "p1", 0)
	f.store.SetWallet("c3", "p2", 4)
	f.store.SetWallet("c2", "p2", -1)

	all, err := f.uc.GetBottlesWithCustomers(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c2", all[0].CustomerID)
	assert.Equal(t, 9, all[0].BottleBalance)
	assert.Equal(t, []string{"c1", "c3"}, []string{all[1].CustomerID, all[2].CustomerID})
	assert.Equal(t, "Dispenser", all[2].ProductName)

	one, err := f.uc.GetBottlesWithCustomers(context.Background(), "p2")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "c3", one[0].CustomerID)
}

func TestListMovements(t *testing.T) {
	f := setup(t, model.StockLevels{})
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	tick := 0
	f.uc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	for i := 0; i < 3; i++ {
		_, err := f.uc.Restock(ctx, &dto.RestockInput{ProductID: "p1", Empty: 10})
		require.NoError(t, err)
	}
	_, err := f.uc.Refill(ctx, &dto.RefillInput{ProductID: "p1", Quantity: 4})
	require.NoError(t, err)

	items, total, err := f.uc.ListMovements(ctx, &dto.MovementFilters{ProductID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, items, 4)
	assert.Equal(t, model.MovementRefill, items[0].Kind, "newest first")

	items, total, err = f.uc.ListMovements(ctx, &dto.MovementFilters{Kind: model.MovementRestock, Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, items, 1)

	_, _, err = f.uc.ListMovements(ctx, &dto.MovementFilters{Kind: "SOLD"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestCanceledContextStopsRetries(t *testing.T) {
	store := memory.NewStore()
	store.AddProduct(model.Product{BaseModel: model.BaseModel{ID: "p1"}, StockEmpty: 5})
	repo := &conflictingRepo{Repository: store.Inventory(), n: 100}
	f := newFixture(t, repo, store)
	f.uc.opts.RetryBackoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.uc.Refill(ctx, &dto.RefillInput{ProductID: "p1", Quantity: 1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, repo.calls)
}
