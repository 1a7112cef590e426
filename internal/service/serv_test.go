package service_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/linemk/tool-shop/internal/domain/models"
	security "github.com/linemk/tool-shop/internal/jwt-new"
	"github.com/linemk/tool-shop/internal/payment"
	"github.com/linemk/tool-shop/internal/service"
	"github.com/linemk/tool-shop/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUserRepo struct {
	users map[string]*models.User // ключ - email
	err   error
}

var _ storage.UserStorage = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) ListUsers(ctx context.Context) ([]*models.User, error) {
	out := make([]*models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, f.err
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) UpsertUser(ctx context.Context, user *models.User) (*storage.UpdateResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if existing, ok := f.users[user.Email]; ok {
		existing.Name = user.Name
		user.ID = existing.ID
		return &storage.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
	}
	id := int64(len(f.users) + 1)
	f.users[user.Email] = &models.User{ID: id, Email: user.Email, Name: user.Name}
	user.ID = id
	return &storage.UpdateResult{UpsertedID: &id}, nil
}

func (f *fakeUserRepo) SetRole(ctx context.Context, email, role string) (*storage.UpdateResult, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	if user.Role == role {
		return &storage.UpdateResult{MatchedCount: 1}, nil
	}
	user.Role = role
	return &storage.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

// fakeOrderRepo повторяет поведение уникального индекса (email, tool_name)
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[int64]*models.Order
	nextID int64
}

var _ storage.OrderStorage = (*fakeOrderRepo)(nil)

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int64]*models.Order)}
}

func (f *fakeOrderRepo) CreateOrder(ctx context.Context, order *models.Order) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.Email == order.Email && o.ToolName == order.ToolName {
			return false, nil
		}
	}
	f.nextID++
	order.ID = f.nextID
	order.CreatedAt = time.Now()
	stored := *order
	f.orders[order.ID] = &stored
	return true, nil
}

func (f *fakeOrderRepo) FindOrder(ctx context.Context, email, toolName string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.Email == email && o.ToolName == toolName {
			return o, nil
		}
	}
	return nil, storage.ErrOrderNotFound
}

func (f *fakeOrderRepo) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, storage.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeOrderRepo) ListOrders(ctx context.Context) ([]*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Order, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeOrderRepo) ListOrdersByEmail(ctx context.Context, email string) ([]*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Order, 0)
	for _, o := range f.orders {
		if o.Email == email {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) MarkOrderShifted(ctx context.Context, id int64) (*storage.UpdateResult, error) {
	o, err := f.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Shift = true
	return &storage.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (f *fakeOrderRepo) DeleteOrder(ctx context.Context, id int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return 0, nil
	}
	if o.Paid {
		return 0, storage.ErrOrderAlreadyPaid
	}
	delete(f.orders, id)
	return 1, nil
}

func (f *fakeOrderRepo) LockOrderByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error) {
	o, err := f.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) MarkOrderPaidTx(ctx context.Context, tx *sql.Tx, id int64, transactionID string) error {
	o, err := f.GetOrderByID(ctx, id)
	if err != nil {
		return err
	}
	o.Paid = true
	o.Status = true
	o.TransactionID = &transactionID
	return nil
}

type fakeReviewRepo struct {
	reviews map[string]*models.Review
}

var _ storage.ReviewStorage = (*fakeReviewRepo)(nil)

func (f *fakeReviewRepo) ListReviews(ctx context.Context) ([]*models.Review, error) {
	out := make([]*models.Review, 0, len(f.reviews))
	for _, r := range f.reviews {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeReviewRepo) GetReviewByEmail(ctx context.Context, email string) (*models.Review, error) {
	r, ok := f.reviews[email]
	if !ok {
		return nil, storage.ErrReviewNotFound
	}
	return r, nil
}

func (f *fakeReviewRepo) UpsertReview(ctx context.Context, review *models.Review) (*storage.UpdateResult, error) {
	if existing, ok := f.reviews[review.Email]; ok {
		review.ID = existing.ID
		stored := *review
		f.reviews[review.Email] = &stored
		return &storage.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
	}
	id := int64(len(f.reviews) + 1)
	review.ID = id
	stored := *review
	f.reviews[review.Email] = &stored
	return &storage.UpdateResult{UpsertedID: &id}, nil
}

type fakePaymentRepo struct {
	payments []*models.Payment
	err      error
}

var _ storage.PaymentStorage = (*fakePaymentRepo)(nil)

func (f *fakePaymentRepo) CreatePaymentTx(ctx context.Context, tx *sql.Tx, p *models.Payment) error {
	if f.err != nil {
		return f.err
	}
	f.payments = append(f.payments, p)
	return nil
}

type fakeGateway struct {
	amount decimal.Decimal
	secret string
	err    error
}

var _ payment.Gateway = (*fakeGateway)(nil)

func (f *fakeGateway) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal) (string, error) {
	f.amount = amount
	return f.secret, f.err
}

func TestOrderService_PlaceOrderTwice(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := service.NewOrderService(discardLogger(), repo)
	ctx := context.Background()

	first, err := svc.PlaceOrder(ctx, &models.Order{Email: "a@x.com", ToolName: "Drill", Quantity: 1})
	require.NoError(t, err)
	assert.True(t, first.Created)

	second, err := svc.PlaceOrder(ctx, &models.Order{Email: "a@x.com", ToolName: "Drill", Quantity: 3})
	require.NoError(t, err)
	assert.False(t, second.Created, "duplicate order must be rejected")
	assert.Equal(t, first.Order.ID, second.Order.ID, "existing order is returned")
	assert.Equal(t, 1, second.Order.Quantity, "duplicate is not merged")

	orders, err := svc.ListOrdersByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestOrderService_ConcurrentPlaceOrder(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := service.NewOrderService(discardLogger(), repo)

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.PlaceOrder(context.Background(), &models.Order{Email: "a@x.com", ToolName: "Saw"})
			if assert.NoError(t, err) && res.Created {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	all, _ := repo.ListOrders(context.Background())
	assert.Len(t, all, 1)
}

func TestOrderService_MarkShiftedNotFound(t *testing.T) {
	svc := service.NewOrderService(discardLogger(), newFakeOrderRepo())
	_, err := svc.MarkShifted(context.Background(), 42)
	assert.True(t, errors.Is(err, storage.ErrOrderNotFound))
}

func TestReviewService_UpsertTwice(t *testing.T) {
	repo := &fakeReviewRepo{reviews: make(map[string]*models.Review)}
	svc := service.NewReviewService(discardLogger(), repo)
	ctx := context.Background()

	res, err := svc.UpsertReview(ctx, &models.Review{Email: "a@x.com", Name: "A", Comment: "ok", Rating: 3})
	require.NoError(t, err)
	require.NotNil(t, res.UpsertedID)

	res, err = svc.UpsertReview(ctx, &models.Review{Email: "a@x.com", Name: "A", Comment: "great", Rating: 5})
	require.NoError(t, err)
	assert.Nil(t, res.UpsertedID)
	assert.Equal(t, int64(1), res.ModifiedCount)

	reviews, err := svc.ListReviews(ctx)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "great", reviews[0].Comment)
	assert.Equal(t, 5, reviews[0].Rating)
}

func TestUserService_LoginIssuesToken(t *testing.T) {
	repo := newFakeUserRepo()
	secret := []byte("testsecret")
	svc := service.NewUserService(discardLogger(), repo, secret, time.Hour)

	res, err := svc.Login(context.Background(), &models.User{Email: "a@x.com", Name: "A", Role: models.RoleAdmin})
	require.NoError(t, err)
	require.NotNil(t, res.Result.UpsertedID)

	claims, err := security.ParseToken(res.AccessToken, secret)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email)

	isAdmin, err := svc.IsAdmin(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.False(t, isAdmin, "role in the upsert body is ignored")

	// повторный вход обновляет запись и снова выдаёт токен
	res, err = svc.Login(context.Background(), &models.User{Email: "a@x.com", Name: "B"})
	require.NoError(t, err)
	assert.Nil(t, res.Result.UpsertedID)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "B", repo.users["a@x.com"].Name)
}

func TestUserService_PromoteAndIsAdmin(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["a@x.com"] = &models.User{ID: 1, Email: "a@x.com"}
	svc := service.NewUserService(discardLogger(), repo, []byte("s"), time.Hour)
	ctx := context.Background()

	res, err := svc.Promote(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ModifiedCount)

	isAdmin, err := svc.IsAdmin(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, isAdmin)

	isAdmin, err = svc.IsAdmin(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.False(t, isAdmin)

	_, err = svc.Promote(ctx, "nobody@x.com")
	assert.True(t, errors.Is(err, storage.ErrUserNotFound))
}

func TestUserService_IsAdminStorageError(t *testing.T) {
	repo := newFakeUserRepo()
	repo.err = errors.New("connection refused")
	svc := service.NewUserService(discardLogger(), repo, []byte("s"), time.Hour)

	_, err := svc.IsAdmin(context.Background(), "a@x.com")
	assert.Error(t, err)
}

func newPaymentFixture(t *testing.T) (*fakeOrderRepo, *fakePaymentRepo, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	orders := newFakeOrderRepo()
	_, err = orders.CreateOrder(context.Background(), &models.Order{Email: "a@x.com", ToolName: "Drill"})
	require.NoError(t, err)
	return orders, &fakePaymentRepo{}, mock, db
}

func TestPaymentService_ConfirmPayment(t *testing.T) {
	orders, payments, mock, db := newPaymentFixture(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	svc := service.NewPaymentService(discardLogger(), db, orders, payments, &fakeGateway{})
	res, err := svc.ConfirmPayment(context.Background(), 1, "tx_1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ModifiedCount)

	order, err := orders.GetOrderByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, order.Paid)
	assert.True(t, order.Status)
	require.NotNil(t, order.TransactionID)
	assert.Equal(t, "tx_1", *order.TransactionID)
	assert.Len(t, payments.payments, 1)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderService_CancelPaidOrder(t *testing.T) {
	orders, payments, mock, db := newPaymentFixture(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	ctx := context.Background()
	_, err := service.NewPaymentService(discardLogger(), db, orders, payments, &fakeGateway{}).ConfirmPayment(ctx, 1, "tx_1")
	require.NoError(t, err)

	svc := service.NewOrderService(discardLogger(), orders)
	deleted, err := svc.CancelOrder(ctx, 1)
	assert.True(t, errors.Is(err, storage.ErrOrderAlreadyPaid))
	assert.Equal(t, int64(0), deleted)

	_, err = svc.GetOrder(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, payments.payments, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentService_ConfirmPaymentIdempotent(t *testing.T) {
	orders, payments, mock, db := newPaymentFixture(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := service.NewPaymentService(discardLogger(), db, orders, payments, &fakeGateway{})
	ctx := context.Background()

	_, err := svc.ConfirmPayment(ctx, 1, "tx_1")
	require.NoError(t, err)

	res, err := svc.ConfirmPayment(ctx, 1, "tx_1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.ModifiedCount)
	assert.Len(t, payments.payments, 1, "no second payment record")

	_, err = svc.ConfirmPayment(ctx, 1, "tx_2")
	assert.True(t, errors.Is(err, storage.ErrOrderAlreadyPaid))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentService_ConfirmPaymentRollback(t *testing.T) {
	orders, payments, mock, db := newPaymentFixture(t)
	payments.err = errors.New("insert failed")
	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := service.NewPaymentService(discardLogger(), db, orders, payments, &fakeGateway{})
	_, err := svc.ConfirmPayment(context.Background(), 1, "tx_1")
	assert.Error(t, err)

	order, _ := orders.GetOrderByID(context.Background(), 1)
	assert.False(t, order.Paid, "order stays unpaid after rollback")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentService_ConfirmPaymentOrderNotFound(t *testing.T) {
	orders, payments, mock, db := newPaymentFixture(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := service.NewPaymentService(discardLogger(), db, orders, payments, &fakeGateway{})
	_, err := svc.ConfirmPayment(context.Background(), 99, "tx_1")
	assert.True(t, errors.Is(err, storage.ErrOrderNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentService_CreatePaymentIntent(t *testing.T) {
	gw := &fakeGateway{secret: "pi_secret"}
	svc := service.NewPaymentService(discardLogger(), nil, newFakeOrderRepo(), &fakePaymentRepo{}, gw)
	ctx := context.Background()

	secret, err := svc.CreatePaymentIntent(ctx, decimal.RequireFromString("19.99"))
	require.NoError(t, err)
	assert.Equal(t, "pi_secret", secret)
	assert.True(t, gw.amount.Equal(decimal.RequireFromString("19.99")))

	_, err = svc.CreatePaymentIntent(ctx, decimal.Zero)
	assert.True(t, errors.Is(err, payment.ErrInvalidAmount))

	gw.err = errors.New("stripe down")
	_, err = svc.CreatePaymentIntent(ctx, decimal.NewFromInt(5))
	assert.True(t, errors.Is(err, service.ErrPaymentGateway))

	// отказ шлюза по сумме остаётся ошибкой клиента, а не провайдера
	gw.err = payment.ErrInvalidAmount
	_, err = svc.CreatePaymentIntent(ctx, decimal.RequireFromString("184467440737095516.17"))
	assert.True(t, errors.Is(err, payment.ErrInvalidAmount))
	assert.False(t, errors.Is(err, service.ErrPaymentGateway))
}

func TestToolService_UpdateQuantity(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE tools SET available_quantity").
		WithArgs(5, int64(123)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	svc := service.NewToolService(discardLogger(), storage.NewToolRepository(db))
	res, err := svc.UpdateQuantity(context.Background(), 123, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.MatchedCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
