package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/adapter/memory"
	"github.com/YelzhanWeb/restaurant/internal/domain"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"

	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2026, 10, 17, 12, 30, 0, 0, time.UTC)

type recordingPublisher struct {
	mu      sync.Mutex
	placed  []interfaces.OrderPlacedMessage
	changed []interfaces.StatusChangedMessage
	err     error
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, msg interfaces.OrderPlacedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.placed = append(p.placed, msg)
	return p.err
}

func (p *recordingPublisher) PublishStatusChanged(_ context.Context, msg interfaces.StatusChangedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changed = append(p.changed, msg)
	return p.err
}

type fixture struct {
	store     *memory.Store
	svc       *Service
	publisher *recordingPublisher
	soup      *domain.MenuItem
	tea       *domain.MenuItem
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repositories()

	soup := &domain.MenuItem{Name: "Soup", Price: decimal.NewFromInt(10)}
	tea := &domain.MenuItem{Name: "Tea", Price: decimal.NewFromInt(5)}
	for _, item := range []*domain.MenuItem{soup, tea} {
		if err := repos.Menu.Create(ctx, item); err != nil {
			t.Fatalf("seed menu: %v", err)
		}
	}
	for _, n := range []int{1, 2} {
		table, _ := domain.NewTable(n)
		if err := repos.Tables.Create(ctx, table); err != nil {
			t.Fatalf("seed table: %v", err)
		}
	}

	publisher := &recordingPublisher{}
	opts = append([]Option{WithClock(func() time.Time { return fixedNow }), WithPublisher(publisher)}, opts...)
	return &fixture{
		store:     store,
		svc:       NewService(store, logger.Nop(), opts...),
		publisher: publisher,
		soup:      soup,
		tea:       tea,
	}
}

func (f *fixture) tableStatus(t *testing.T, number int) domain.TableStatus {
	t.Helper()
	table, err := f.store.Repositories().Tables.FindByNumber(context.Background(), number)
	if err != nil {
		t.Fatalf("find table %d: %v", number, err)
	}
	return table.Status
}

func (f *fixture) order(t *testing.T, table int, lines ...domain.OrderLineRequest) int {
	t.Helper()
	id, err := f.svc.CreateOrder(context.Background(), interfaces.CreateOrderCommand{TableNumber: table, Items: lines})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	return id
}

func line(itemID, qty int) domain.OrderLineRequest {
	return domain.OrderLineRequest{MenuItemID: itemID, Quantity: qty}
}

func TestCreateOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.order(t, 1, line(f.soup.ID, 2), line(f.tea.ID, 1))

	if got := f.tableStatus(t, 1); got != domain.TableOccupied {
		t.Fatalf("table status = %s, want occupied", got)
	}

	detail, err := f.svc.Detail(ctx, id)
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if detail.Status != domain.StatusReceived || detail.TableNumber != 1 || !detail.OrderTime.Equal(fixedNow) {
		t.Fatalf("unexpected order: %+v", detail.Order)
	}
	if len(detail.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(detail.Lines))
	}
	if !detail.Total.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("total = %s, want 25", detail.Total)
	}

	history, err := f.svc.History(ctx, id)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].Status != domain.StatusReceived {
		t.Fatalf("unexpected history: %+v", history)
	}

	if len(f.publisher.placed) != 1 || f.publisher.placed[0].OrderID != id || f.publisher.placed[0].TableNumber != 1 {
		t.Fatalf("unexpected published orders: %+v", f.publisher.placed)
	}
}

func TestCreateOrder_OccupiedTable(t *testing.T) {
	f := newFixture(t)
	f.order(t, 1, line(f.soup.ID, 1))

	for i := 0; i < 3; i++ {
		_, err := f.svc.CreateOrder(context.Background(), interfaces.CreateOrderCommand{
			TableNumber: 1,
			Items:       []domain.OrderLineRequest{line(f.tea.ID, 1)},
		})
		if !errors.Is(err, domain.ErrTableOccupied) {
			t.Fatalf("attempt %d: err = %v, want ErrTableOccupied", i, err)
		}
	}

	active, _ := f.svc.ActiveOrders(context.Background())
	if len(active) != 1 {
		t.Fatalf("expected 1 active order, got %d", len(active))
	}
}

func TestCreateOrder_ConcurrentSameTable(t *testing.T) {
	f := newFixture(t)

	const callers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		occupied  int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateOrder(context.Background(), interfaces.CreateOrderCommand{
				TableNumber: 2,
				Items:       []domain.OrderLineRequest{line(f.soup.ID, 1)},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrTableOccupied):
				occupied++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 || occupied != callers-1 {
		t.Fatalf("succeeded=%d occupied=%d, want 1 and %d", succeeded, occupied, callers-1)
	}
}

func TestCreateOrder_UnknownItemRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateOrder(ctx, interfaces.CreateOrderCommand{
		TableNumber: 1,
		Items:       []domain.OrderLineRequest{line(f.soup.ID, 2), line(999, 1)},
	})
	if !errors.Is(err, domain.ErrMenuItemNotFound) {
		t.Fatalf("err = %v, want ErrMenuItemNotFound", err)
	}

	if got := f.tableStatus(t, 1); got != domain.TableAvailable {
		t.Fatalf("table status = %s, want available", got)
	}
	active, _ := f.svc.ActiveOrders(ctx)
	if len(active) != 0 {
		t.Fatalf("expected no orders, got %d", len(active))
	}
	refs, _ := f.store.Repositories().Menu.CountReferences(ctx, f.soup.ID)
	if refs != 0 {
		t.Fatalf("expected no line items for soup, got %d", refs)
	}
	if _, err := f.svc.Detail(ctx, 1); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("rolled back order is visible: %v", err)
	}
	if len(f.publisher.placed) != 0 {
		t.Fatal("nothing must be published for a failed order")
	}
}

func TestCreateOrder_Invalid(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		cmd     interfaces.CreateOrderCommand
		wantErr error
	}{
		{"no items", interfaces.CreateOrderCommand{TableNumber: 1}, domain.ErrValidation},
		{"zero quantity", interfaces.CreateOrderCommand{TableNumber: 1, Items: []domain.OrderLineRequest{line(f.soup.ID, 0)}}, domain.ErrValidation},
		{"bad item id", interfaces.CreateOrderCommand{TableNumber: 1, Items: []domain.OrderLineRequest{line(0, 1)}}, domain.ErrValidation},
		{"zero table", interfaces.CreateOrderCommand{TableNumber: 0, Items: []domain.OrderLineRequest{line(f.soup.ID, 1)}}, domain.ErrValidation},
		{"unknown table", interfaces.CreateOrderCommand{TableNumber: 42, Items: []domain.OrderLineRequest{line(f.soup.ID, 1)}}, domain.ErrTableNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateOrder(context.Background(), tt.cmd)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if got := f.tableStatus(t, 1); got != domain.TableAvailable {
		t.Fatalf("table status = %s after rejected orders", got)
	}
}

func TestAdvanceStatus_PaidReleasesTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.order(t, 1, line(f.soup.ID, 2))

	for _, status := range []string{"preparing", "ready", "paid"} {
		if err := f.svc.AdvanceStatus(ctx, id, status, ""); err != nil {
			t.Fatalf("AdvanceStatus(%s): %v", status, err)
		}
	}

	if got := f.tableStatus(t, 1); got != domain.TableAvailable {
		t.Fatalf("table status = %s, want available", got)
	}
	detail, _ := f.svc.Detail(ctx, id)
	if detail.Status != domain.StatusPaid || !detail.Total.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("unexpected detail: status=%s total=%s", detail.Status, detail.Total)
	}

	last := f.publisher.changed[len(f.publisher.changed)-1]
	if last.OldStatus != domain.StatusReady || last.NewStatus != domain.StatusPaid || !last.TableReleased {
		t.Fatalf("unexpected status event: %+v", last)
	}

	history, _ := f.svc.History(ctx, id)
	if len(history) != 4 {
		t.Fatalf("expected 4 history rows, got %d", len(history))
	}

	// The table takes new orders again.
	f.order(t, 1, line(f.tea.ID, 1))
}

func TestAdvanceStatus_KeepsTableWithOtherOpenOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.order(t, 1, line(f.soup.ID, 1))

	// An administrator frees the table by hand and a second order lands on it.
	if err := f.store.Repositories().Tables.SetStatus(ctx, 1, domain.TableAvailable); err != nil {
		t.Fatal(err)
	}
	f.order(t, 1, line(f.tea.ID, 1))

	if err := f.svc.AdvanceStatus(ctx, first, "paid", ""); err != nil {
		t.Fatalf("AdvanceStatus: %v", err)
	}
	if got := f.tableStatus(t, 1); got != domain.TableOccupied {
		t.Fatalf("table status = %s, want occupied", got)
	}
}

// callLog records the order of table locks and active-order counts inside
// transactions.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

type loggingTables struct {
	interfaces.TableRepository
	log *callLog
}

func (t loggingTables) LockByID(ctx context.Context, id int) (*domain.Table, error) {
	t.log.add("lock table")
	return t.TableRepository.LockByID(ctx, id)
}

type loggingOrders struct {
	interfaces.OrderRepository
	log *callLog
}

func (o loggingOrders) CountActiveByTable(ctx context.Context, tableID, excludeOrderID int) (int, error) {
	o.log.add("count active")
	return o.OrderRepository.CountActiveByTable(ctx, tableID, excludeOrderID)
}

type loggingStore struct {
	*memory.Store
	log *callLog
}

func (s loggingStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos interfaces.Repositories) error) error {
	return s.Store.WithinTx(ctx, func(ctx context.Context, repos interfaces.Repositories) error {
		repos.Tables = loggingTables{TableRepository: repos.Tables, log: s.log}
		repos.Orders = loggingOrders{OrderRepository: repos.Orders, log: s.log}
		return fn(ctx, repos)
	})
}

func TestAdvanceStatus_PaymentLocksTableBeforeCounting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.order(t, 1, line(f.soup.ID, 1))

	log := &callLog{}
	svc := NewService(loggingStore{Store: f.store, log: log}, logger.Nop())
	if err := svc.AdvanceStatus(ctx, id, "paid", ""); err != nil {
		t.Fatalf("AdvanceStatus: %v", err)
	}

	if len(log.calls) < 2 || log.calls[0] != "lock table" || log.calls[1] != "count active" {
		t.Fatalf("calls = %v, want table lock before active-order count", log.calls)
	}
}

func TestAdvanceStatus_ConcurrentPaymentsReleaseSharedTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.order(t, 1, line(f.soup.ID, 1))
	if err := f.store.Repositories().Tables.SetStatus(ctx, 1, domain.TableAvailable); err != nil {
		t.Fatal(err)
	}
	second := f.order(t, 1, line(f.tea.ID, 1))

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, id := range []int{first, second} {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			errs <- f.svc.AdvanceStatus(ctx, id, "paid", "")
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("AdvanceStatus: %v", err)
		}
	}

	if got := f.tableStatus(t, 1); got != domain.TableAvailable {
		t.Fatalf("table status = %s, want available", got)
	}
}

func TestAdvanceStatusFrom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.order(t, 1, line(f.soup.ID, 1))

	if err := f.svc.AdvanceStatusFrom(ctx, id, domain.StatusReceived, "preparing", "chef"); err != nil {
		t.Fatalf("AdvanceStatusFrom: %v", err)
	}
	if err := f.svc.AdvanceStatus(ctx, id, "paid", ""); err != nil {
		t.Fatalf("AdvanceStatus: %v", err)
	}

	err := f.svc.AdvanceStatusFrom(ctx, id, domain.StatusPreparing, "ready", "chef")
	if !errors.Is(err, domain.ErrStatusChanged) {
		t.Fatalf("err = %v, want ErrStatusChanged", err)
	}

	detail, _ := f.svc.Detail(ctx, id)
	if detail.Status != domain.StatusPaid {
		t.Fatalf("status = %s, want paid", detail.Status)
	}
	if got := f.tableStatus(t, 1); got != domain.TableAvailable {
		t.Fatalf("table status = %s, want available", got)
	}
	history, _ := f.svc.History(ctx, id)
	if len(history) != 3 {
		t.Fatalf("rejected move was logged: %d history rows", len(history))
	}
	if n := len(f.publisher.changed); n != 2 {
		t.Fatalf("published %d status events, want 2", n)
	}
}

func TestAdvanceStatus_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.order(t, 1, line(f.soup.ID, 1))

	if err := f.svc.AdvanceStatus(ctx, id, "cooking", ""); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
	if err := f.svc.AdvanceStatus(ctx, 999, "ready", ""); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
	if err := f.svc.AdvanceStatus(ctx, id, " READY ", ""); err != nil {
		t.Fatalf("status input should be normalized: %v", err)
	}
}

func TestAdvanceStatus_TransitionPolicy(t *testing.T) {
	t.Run("unrestricted by default", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		id := f.order(t, 1, line(f.soup.ID, 1))

		for _, status := range []string{"paid", "received", "ready", "ready"} {
			if err := f.svc.AdvanceStatus(ctx, id, status, ""); err != nil {
				t.Fatalf("AdvanceStatus(%s): %v", status, err)
			}
		}
		// Reopening a paid order takes the table again.
		if got := f.tableStatus(t, 1); got != domain.TableOccupied {
			t.Fatalf("table status = %s, want occupied", got)
		}
	})

	t.Run("strict", func(t *testing.T) {
		f := newFixture(t, WithStrictTransitions(true))
		ctx := context.Background()
		id := f.order(t, 1, line(f.soup.ID, 1))

		if err := f.svc.AdvanceStatus(ctx, id, "ready", ""); err != nil {
			t.Fatalf("skipping forward must be allowed: %v", err)
		}
		for _, status := range []string{"preparing", "received", "ready"} {
			if err := f.svc.AdvanceStatus(ctx, id, status, ""); !errors.Is(err, domain.ErrInvalidTransition) {
				t.Fatalf("AdvanceStatus(%s): err = %v, want ErrInvalidTransition", status, err)
			}
		}
		detail, _ := f.svc.Detail(ctx, id)
		if detail.Status != domain.StatusReady {
			t.Fatalf("status = %s, want ready", detail.Status)
		}
	})
}

func TestDetail_LivePriceJoin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.order(t, 1, line(f.soup.ID, 2))

	detail, _ := f.svc.Detail(ctx, id)
	if !detail.Total.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("total = %s, want 20", detail.Total)
	}

	if err := f.store.Repositories().Menu.UpdatePrice(ctx, f.soup.ID, decimal.NewFromInt(15)); err != nil {
		t.Fatal(err)
	}

	detail, _ = f.svc.Detail(ctx, id)
	if !detail.Total.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("total after reprice = %s, want 30", detail.Total)
	}
	if !detail.Lines[0].Price.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("line price = %s, want 15", detail.Lines[0].Price)
	}
}

func TestActiveOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	clock := fixedNow
	f.svc.now = func() time.Time { return clock }

	later := f.order(t, 2, line(f.tea.ID, 1))
	clock = fixedNow.Add(-time.Hour)
	earlier := f.order(t, 1, line(f.soup.ID, 1))

	active, err := f.svc.ActiveOrders(ctx)
	if err != nil {
		t.Fatalf("ActiveOrders: %v", err)
	}
	if len(active) != 2 || active[0].ID != earlier || active[1].ID != later {
		t.Fatalf("unexpected order: %+v", active)
	}

	if err := f.svc.AdvanceStatus(ctx, earlier, "paid", ""); err != nil {
		t.Fatal(err)
	}
	active, _ = f.svc.ActiveOrders(ctx)
	if len(active) != 1 || active[0].ID != later || active[0].TableNumber != 2 {
		t.Fatalf("paid orders must not be listed: %+v", active)
	}
}

func TestPublishFailureDoesNotFailCommit(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")

	id := f.order(t, 1, line(f.soup.ID, 1))
	if err := f.svc.AdvanceStatus(context.Background(), id, "paid", ""); err != nil {
		t.Fatalf("AdvanceStatus: %v", err)
	}
	if got := f.tableStatus(t, 1); got != domain.TableAvailable {
		t.Fatalf("table status = %s, want available", got)
	}
}
