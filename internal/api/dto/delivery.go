package dto

import "time"

type CompanyResponse struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type CompanyDetailsResponse struct {
	CompanyResponse
	Drivers []DriverResponse `json:"drivers"`
	Cars    []CarResponse    `json:"cars"`
	Methods []MethodResponse `json:"methods"`
}

type ListCompaniesResponse struct {
	Companies []CompanyResponse `json:"companies"`
}

type CreateCompanyRequest struct {
	OwnerID int64  `json:"owner_id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Status  string `json:"status"`
}

type UpdateCompanyRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Status  *string `json:"status"`
}

type DriverResponse struct {
	ID            int64  `json:"id"`
	CompanyID     int64  `json:"company_id"`
	CarID         *int64 `json:"car_id"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"license_number"`
	Status        string `json:"status"`
}

type ListDriversResponse struct {
	Drivers []DriverResponse `json:"drivers"`
}

type CreateDriverRequest struct {
	CarID         *int64 `json:"car_id"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"license_number"`
	Status        string `json:"status"`
}

// UpdateDriverRequest only changes the fields that are present.
// ClearCar unassigns the driver's car.
type UpdateDriverRequest struct {
	CarID         *int64  `json:"car_id"`
	ClearCar      bool    `json:"clear_car"`
	Name          *string `json:"name"`
	Phone         *string `json:"phone"`
	LicenseNumber *string `json:"license_number"`
	Status        *string `json:"status"`
}

type CarResponse struct {
	ID          int64  `json:"id"`
	CompanyID   int64  `json:"company_id"`
	PlateNumber string `json:"plate_number"`
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Color       string `json:"color"`
	CapacityKg  int    `json:"capacity_kg"`
}

type ListCarsResponse struct {
	Cars []CarResponse `json:"cars"`
}

type CreateCarRequest struct {
	PlateNumber string `json:"plate_number"`
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Color       string `json:"color"`
	CapacityKg  int    `json:"capacity_kg"`
}

type UpdateCarRequest struct {
	PlateNumber *string `json:"plate_number"`
	Brand       *string `json:"brand"`
	Model       *string `json:"model"`
	Color       *string `json:"color"`
	CapacityKg  *int    `json:"capacity_kg"`
}

type MethodResponse struct {
	ID            int64  `json:"id"`
	CompanyID     int64  `json:"company_id"`
	Label         string `json:"label"`
	PriceCents    int64  `json:"price_cents"`
	EstimatedDays int    `json:"estimated_days"`
}

type ListMethodsResponse struct {
	Methods []MethodResponse `json:"methods"`
}

type CreateMethodRequest struct {
	Label         string `json:"label"`
	PriceCents    int64  `json:"price_cents"`
	EstimatedDays int    `json:"estimated_days"`
}
