package order

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mangogik/catalog-hotel/pkg/errors"
)

func TestOrderRepositorySaveReturnsID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewOrderRepository(quietLogger(), db)

	now := time.Now().UTC()
	notes := "leave at the door"
	o := Order{
		CustomerID:        3,
		StayID:            9,
		OrderCode:         "TMP-abc",
		PaymentPreference: PaymentMethodCash,
		Status:            OrderStatusPending,
		Subtotal:          100000,
		GrandTotal:        100000,
		Notes:             &notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	mock.ExpectPrepare("INSERT INTO orders").
		ExpectQuery().
		WithArgs(o.CustomerID, o.StayID, o.OrderCode, o.PaymentPreference, o.Status,
			o.Subtotal, o.DiscountTotal, o.GrandTotal, sqlmock.AnyArg(), o.CreatedAt, o.UpdatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	id, err := repo.Save(context.Background(), o, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 42 {
		t.Fatalf("want id 42, got %d", id)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOrderRepositoryExistsByOrderCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewOrderRepository(quietLogger(), db)

	mock.ExpectPrepare("SELECT EXISTS").
		ExpectQuery().
		WithArgs("ORD-42-20250101000000-ABCD").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByOrderCode(context.Background(), "ORD-42-20250101000000-ABCD", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Fatal("want exists true")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOrderRepositoryFindByOrderCodeNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewOrderRepository(quietLogger(), db)

	mock.ExpectPrepare("SELECT(.|\n)+FROM orders").
		ExpectQuery().
		WithArgs("MISSING").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "customer_id", "stay_id", "order_code", "payment_preference", "status",
			"subtotal", "discount_total", "grand_total", "notes", "created_at", "updated_at",
		}))

	_, err = repo.FindByOrderCode(context.Background(), "MISSING", nil)
	if err == nil {
		t.Fatal("expected an error")
	}

	ae := errors.Destruct(err)
	if ae.HTTPStatusCode != http.StatusNotFound {
		t.Fatalf("want 404, got %d", ae.HTTPStatusCode)
	}
}

func TestOrderRepositoryTransactionLifecycle(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewOrderRepository(quietLogger(), db)

	mock.ExpectBegin()
	mock.ExpectCommit()

	tx, err := repo.BeginTx(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := repo.CommitTx(context.Background(), tx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
