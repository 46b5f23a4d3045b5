package ports

import (
	"context"
	"market-dash-service/internal/domain"
)

// Port: delivery companies and the fleet and methods they own.
type DeliveryRepository interface {
	// ownerID of 0 lists every company.
	ListCompanies(ctx context.Context, ownerID int64) ([]*domain.DeliveryCompany, error)
	GetCompany(ctx context.Context, id int64) (*domain.DeliveryCompany, error)
	CreateCompany(ctx context.Context, c *domain.DeliveryCompany) error
	UpdateCompany(ctx context.Context, c *domain.DeliveryCompany) error
	DeleteCompany(ctx context.Context, id int64) error

	ListDrivers(ctx context.Context, companyID int64) ([]*domain.DeliveryDriver, error)
	GetDriver(ctx context.Context, id int64) (*domain.DeliveryDriver, error)
	CreateDriver(ctx context.Context, d *domain.DeliveryDriver) error
	UpdateDriver(ctx context.Context, d *domain.DeliveryDriver) error
	DeleteDriver(ctx context.Context, id int64) error

	ListCars(ctx context.Context, companyID int64) ([]*domain.DeliveryCar, error)
	GetCar(ctx context.Context, id int64) (*domain.DeliveryCar, error)
	CreateCar(ctx context.Context, c *domain.DeliveryCar) error
	UpdateCar(ctx context.Context, c *domain.DeliveryCar) error
	DeleteCar(ctx context.Context, id int64) error

	ListMethods(ctx context.Context, companyID int64) ([]*domain.DeliveryMethod, error)
	GetMethod(ctx context.Context, id int64) (*domain.DeliveryMethod, error)
	CreateMethod(ctx context.Context, m *domain.DeliveryMethod) error
	DeleteMethod(ctx context.Context, id int64) error
}
