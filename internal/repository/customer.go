package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bookmycut/booking-server-go/internal/database"
	"github.com/bookmycut/booking-server-go/internal/model"
)

type CustomerRepository interface {
	FindByPhone(ctx context.Context, phoneNumber string) (*model.Customer, error)
	FindByID(ctx context.Context, id string) (*model.Customer, error)
	// Upsert creates the customer on first contact and refreshes the display
	// name on every subsequent inbound event.
	Upsert(ctx context.Context, phoneNumber, name string) (*model.Customer, error)
	AddLoyaltyPoints(ctx context.Context, id string, points int, visitedAt time.Time) error
	List(ctx context.Context) ([]model.Customer, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) CustomerRepository
}

type customerRepo struct {
	db database.DBTX
}

func NewCustomerRepository(db *sqlx.DB) CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) WithTx(tx *sqlx.Tx) CustomerRepository {
	return &customerRepo{db: tx}
}

func (r *customerRepo) FindByPhone(ctx context.Context, phoneNumber string) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.GetContext(ctx, &customer, `
		SELECT * FROM customers WHERE phone_number = $1
	`, phoneNumber)
	return HandleNotFound(&customer, err)
}

func (r *customerRepo) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.GetContext(ctx, &customer, `
		SELECT * FROM customers WHERE id = $1
	`, id)
	return HandleNotFound(&customer, err)
}

func (r *customerRepo) Upsert(ctx context.Context, phoneNumber, name string) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.GetContext(ctx, &customer, `
		INSERT INTO customers (phone_number, name)
		VALUES ($1, $2)
		ON CONFLICT (phone_number) DO UPDATE SET
			name = EXCLUDED.name,
			updated_at = NOW()
		RETURNING *
	`, phoneNumber, name)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) AddLoyaltyPoints(ctx context.Context, id string, points int, visitedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE customers SET
			loyalty_points = loyalty_points + $2,
			last_visit = $3,
			updated_at = NOW()
		WHERE id = $1
	`, id, points, visitedAt)
	return err
}

func (r *customerRepo) List(ctx context.Context) ([]model.Customer, error) {
	customers := []model.Customer{}
	err := r.db.SelectContext(ctx, &customers, `
		SELECT * FROM customers ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return customers, nil
}
