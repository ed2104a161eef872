package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/bookmycut/booking-server-go/internal/database"
	"github.com/bookmycut/booking-server-go/internal/model"
)

type ServiceRepository interface {
	// FindActive returns the bookable catalog ordered by category so that the
	// channel list renders one section per category.
	FindActive(ctx context.Context) ([]model.Service, error)
	// FindActiveByServiceID resolves a list-row selection id to a service.
	// Inactive services resolve to nil.
	FindActiveByServiceID(ctx context.Context, serviceID string) (*model.Service, error)
	FindByID(ctx context.Context, id string) (*model.Service, error)
	Create(ctx context.Context, params model.CreateServiceParams) (*model.Service, error)
	List(ctx context.Context) ([]model.Service, error)
}

type serviceRepo struct {
	db database.DBTX
}

func NewServiceRepository(db *sqlx.DB) ServiceRepository {
	return &serviceRepo{db: db}
}

func (r *serviceRepo) FindActive(ctx context.Context) ([]model.Service, error) {
	services := []model.Service{}
	err := r.db.SelectContext(ctx, &services, `
		SELECT * FROM services
		WHERE is_active = TRUE
		ORDER BY category, title
	`)
	if err != nil {
		return nil, err
	}
	return services, nil
}

func (r *serviceRepo) FindActiveByServiceID(ctx context.Context, serviceID string) (*model.Service, error) {
	var service model.Service
	err := r.db.GetContext(ctx, &service, `
		SELECT * FROM services
		WHERE service_id = $1 AND is_active = TRUE
	`, serviceID)
	return HandleNotFound(&service, err)
}

func (r *serviceRepo) FindByID(ctx context.Context, id string) (*model.Service, error) {
	var service model.Service
	err := r.db.GetContext(ctx, &service, `
		SELECT * FROM services WHERE id = $1
	`, id)
	return HandleNotFound(&service, err)
}

func (r *serviceRepo) Create(ctx context.Context, params model.CreateServiceParams) (*model.Service, error) {
	var service model.Service
	err := r.db.GetContext(ctx, &service, `
		INSERT INTO services (service_id, category, title, description, duration_minutes, price, loyalty_points)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING *
	`, params.ServiceID, params.Category, params.Title, params.Description,
		params.DurationMinutes, params.Price, params.LoyaltyPoints)
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *serviceRepo) List(ctx context.Context) ([]model.Service, error) {
	services := []model.Service{}
	err := r.db.SelectContext(ctx, &services, `
		SELECT * FROM services ORDER BY category, title
	`)
	if err != nil {
		return nil, err
	}
	return services, nil
}
