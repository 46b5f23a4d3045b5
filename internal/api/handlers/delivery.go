package handlers

import (
	"market-dash-service/internal/api/dto"
	"market-dash-service/internal/domain"
	"market-dash-service/internal/services"
	"net/http"
)

// DeliveryHandler exposes delivery companies with their drivers, cars and
// delivery methods.
type DeliveryHandler struct {
	Svc *services.DeliveryService
}

func (h *DeliveryHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}

	companies, err := h.Svc.ListCompanies(r.Context(), a)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := dto.ListCompaniesResponse{Companies: make([]dto.CompanyResponse, 0, len(companies))}
	for _, c := range companies {
		res.Companies = append(res.Companies, companyResponse(c))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *DeliveryHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	d, err := h.Svc.GetCompany(r.Context(), a, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := dto.CompanyDetailsResponse{
		CompanyResponse: companyResponse(d.Company),
		Drivers:         make([]dto.DriverResponse, 0, len(d.Drivers)),
		Cars:            make([]dto.CarResponse, 0, len(d.Cars)),
		Methods:         make([]dto.MethodResponse, 0, len(d.Methods)),
	}
	for _, dr := range d.Drivers {
		res.Drivers = append(res.Drivers, driverResponse(dr))
	}
	for _, c := range d.Cars {
		res.Cars = append(res.Cars, carResponse(c))
	}
	for _, m := range d.Methods {
		res.Methods = append(res.Methods, methodResponse(m))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *DeliveryHandler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req dto.CreateCompanyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c := &domain.DeliveryCompany{
		OwnerID: req.OwnerID,
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Status:  domain.CompanyStatus(req.Status),
	}
	if err := h.Svc.CreateCompany(r.Context(), a, c); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, companyResponse(c))
}

func (h *DeliveryHandler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.UpdateCompanyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch := services.CompanyPatch{Name: req.Name, Phone: req.Phone, Email: req.Email, Address: req.Address}
	if req.Status != nil {
		st := domain.CompanyStatus(*req.Status)
		patch.Status = &st
	}

	c, err := h.Svc.UpdateCompany(r.Context(), a, id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, companyResponse(c))
}

func (h *DeliveryHandler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Svc.DeleteCompany(r.Context(), a, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DeliveryHandler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	drivers, err := h.Svc.ListDrivers(r.Context(), a, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := dto.ListDriversResponse{Drivers: make([]dto.DriverResponse, 0, len(drivers))}
	for _, d := range drivers {
		res.Drivers = append(res.Drivers, driverResponse(d))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *DeliveryHandler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.CreateDriverRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	d := &domain.DeliveryDriver{
		CompanyID:     id,
		CarID:         req.CarID,
		Name:          req.Name,
		Phone:         req.Phone,
		LicenseNumber: req.LicenseNumber,
		Status:        domain.DriverStatus(req.Status),
	}
	if err := h.Svc.CreateDriver(r.Context(), a, d); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, driverResponse(d))
}

func (h *DeliveryHandler) UpdateDriver(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	driverID, ok := pathID(w, r, "driverID")
	if !ok {
		return
	}
	var req dto.UpdateDriverRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ClearCar && req.CarID != nil {
		writeError(w, r, http.StatusBadRequest, "car_id and clear_car are mutually exclusive")
		return
	}

	patch := services.DriverPatch{Name: req.Name, Phone: req.Phone, LicenseNumber: req.LicenseNumber}
	switch {
	case req.ClearCar:
		var none *int64
		patch.CarID = &none
	case req.CarID != nil:
		patch.CarID = &req.CarID
	}
	if req.Status != nil {
		st := domain.DriverStatus(*req.Status)
		patch.Status = &st
	}

	d, err := h.Svc.UpdateDriver(r.Context(), a, id, driverID, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, driverResponse(d))
}

func (h *DeliveryHandler) DeleteDriver(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	driverID, ok := pathID(w, r, "driverID")
	if !ok {
		return
	}

	if err := h.Svc.DeleteDriver(r.Context(), a, id, driverID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DeliveryHandler) ListCars(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	cars, err := h.Svc.ListCars(r.Context(), a, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := dto.ListCarsResponse{Cars: make([]dto.CarResponse, 0, len(cars))}
	for _, c := range cars {
		res.Cars = append(res.Cars, carResponse(c))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *DeliveryHandler) CreateCar(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.CreateCarRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c := &domain.DeliveryCar{
		CompanyID:   id,
		PlateNumber: req.PlateNumber,
		Brand:       req.Brand,
		Model:       req.Model,
		Color:       req.Color,
		CapacityKg:  req.CapacityKg,
	}
	if err := h.Svc.CreateCar(r.Context(), a, c); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, carResponse(c))
}

func (h *DeliveryHandler) UpdateCar(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	carID, ok := pathID(w, r, "carID")
	if !ok {
		return
	}
	var req dto.UpdateCarRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.Svc.UpdateCar(r.Context(), a, id, carID, services.CarPatch{
		PlateNumber: req.PlateNumber,
		Brand:       req.Brand,
		Model:       req.Model,
		Color:       req.Color,
		CapacityKg:  req.CapacityKg,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, carResponse(c))
}

func (h *DeliveryHandler) DeleteCar(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	carID, ok := pathID(w, r, "carID")
	if !ok {
		return
	}

	if err := h.Svc.DeleteCar(r.Context(), a, id, carID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DeliveryHandler) ListMethods(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	methods, err := h.Svc.ListMethods(r.Context(), a, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := dto.ListMethodsResponse{Methods: make([]dto.MethodResponse, 0, len(methods))}
	for _, m := range methods {
		res.Methods = append(res.Methods, methodResponse(m))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *DeliveryHandler) CreateMethod(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.CreateMethodRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	m := &domain.DeliveryMethod{
		CompanyID:     id,
		Label:         req.Label,
		PriceCents:    req.PriceCents,
		EstimatedDays: req.EstimatedDays,
	}
	if err := h.Svc.CreateMethod(r.Context(), a, m); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, methodResponse(m))
}

func (h *DeliveryHandler) DeleteMethod(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	methodID, ok := pathID(w, r, "methodID")
	if !ok {
		return
	}

	if err := h.Svc.DeleteMethod(r.Context(), a, id, methodID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
