package api

import (
	"market-dash-service/internal/api/handlers"
	"market-dash-service/internal/ports"
	"market-dash-service/internal/services"
	"net/http"
	"time"
)

// Store is every repository the services need, as implemented by the SQL store.
type Store interface {
	ports.ProfileRepository
	ports.ShopRepository
	ports.ProductRepository
	ports.DeliveryRepository
	ports.OrderRepository
}

// Services bundles the application services the handlers call.
type Services struct {
	Profiles *services.ProfileService
	Catalog  *services.CatalogService
	Delivery *services.DeliveryService
	Orders   *services.OrderService
	Reports  *services.ReportService
}

// NewServices builds the application services over one store. cache may be nil.
func NewServices(store Store, cache ports.ReportCache, cacheTTL time.Duration) Services {
	scoper := &services.Scoper{Shops: store, Delivery: store}
	return Services{
		Profiles: &services.ProfileService{Profiles: store},
		Catalog: &services.CatalogService{
			Shops: store, Products: store, Profiles: store, Orders: store,
			Delivery: store, Scoper: scoper,
		},
		Delivery: &services.DeliveryService{Delivery: store, Profiles: store},
		Orders: &services.OrderService{
			Orders: store, Shops: store, Products: store, Profiles: store,
			Delivery: store, Scoper: scoper,
		},
		Reports: &services.ReportService{
			Orders: store, Shops: store, Products: store, Profiles: store,
			Scoper: scoper, Cache: cache, CacheTTL: cacheTTL,
		},
	}
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(svc Services, profiles ports.ProfileRepository) http.Handler {
	api := http.NewServeMux()

	profileHandler := &handlers.ProfileHandler{Svc: svc.Profiles}
	api.HandleFunc("GET /profiles", profileHandler.List)
	api.HandleFunc("POST /profiles", profileHandler.Create)
	api.HandleFunc("GET /profiles/{id}", profileHandler.Get)
	api.HandleFunc("PATCH /profiles/{id}/role", profileHandler.UpdateRole)

	catalog := &handlers.CatalogHandler{Svc: svc.Catalog}
	api.HandleFunc("GET /shops", catalog.ListShops)
	api.HandleFunc("POST /shops", catalog.CreateShop)
	api.HandleFunc("GET /shops/{id}", catalog.GetShop)
	api.HandleFunc("PUT /shops/{id}", catalog.UpdateShop)
	api.HandleFunc("DELETE /shops/{id}", catalog.DeleteShop)
	api.HandleFunc("PUT /shops/{id}/delivery-companies", catalog.SetDeliveryCompanies)
	api.HandleFunc("GET /products", catalog.ListProducts)
	api.HandleFunc("POST /products", catalog.CreateProduct)
	api.HandleFunc("GET /products/{id}", catalog.GetProduct)
	api.HandleFunc("PUT /products/{id}", catalog.UpdateProduct)
	api.HandleFunc("DELETE /products/{id}", catalog.DeleteProduct)

	delivery := &handlers.DeliveryHandler{Svc: svc.Delivery}
	api.HandleFunc("GET /delivery-companies", delivery.ListCompanies)
	api.HandleFunc("POST /delivery-companies", delivery.CreateCompany)
	api.HandleFunc("GET /delivery-companies/{id}", delivery.GetCompany)
	api.HandleFunc("PUT /delivery-companies/{id}", delivery.UpdateCompany)
	api.HandleFunc("DELETE /delivery-companies/{id}", delivery.DeleteCompany)
	api.HandleFunc("GET /delivery-companies/{id}/drivers", delivery.ListDrivers)
	api.HandleFunc("POST /delivery-companies/{id}/drivers", delivery.CreateDriver)
	api.HandleFunc("PUT /delivery-companies/{id}/drivers/{driverID}", delivery.UpdateDriver)
	api.HandleFunc("DELETE /delivery-companies/{id}/drivers/{driverID}", delivery.DeleteDriver)
	api.HandleFunc("GET /delivery-companies/{id}/cars", delivery.ListCars)
	api.HandleFunc("POST /delivery-companies/{id}/cars", delivery.CreateCar)
	api.HandleFunc("PUT /delivery-companies/{id}/cars/{carID}", delivery.UpdateCar)
	api.HandleFunc("DELETE /delivery-companies/{id}/cars/{carID}", delivery.DeleteCar)
	api.HandleFunc("GET /delivery-companies/{id}/methods", delivery.ListMethods)
	api.HandleFunc("POST /delivery-companies/{id}/methods", delivery.CreateMethod)
	api.HandleFunc("DELETE /delivery-companies/{id}/methods/{methodID}", delivery.DeleteMethod)

	orders := &handlers.OrderHandler{Svc: svc.Orders, Reports: svc.Reports}
	api.HandleFunc("GET /orders", orders.List)
	api.HandleFunc("POST /orders", orders.Create)
	api.HandleFunc("GET /orders/export.csv", orders.Export)
	api.HandleFunc("GET /orders/{id}", orders.Get)
	api.HandleFunc("DELETE /orders/{id}", orders.Delete)
	api.HandleFunc("PATCH /orders/{id}/status", orders.UpdateStatus)
	api.HandleFunc("PATCH /orders/{id}/driver", orders.AssignDriver)
	api.HandleFunc("GET /orders/{id}/comments", orders.ListComments)
	api.HandleFunc("POST /orders/{id}/comments", orders.AddComment)

	reports := &handlers.ReportHandler{Svc: svc.Reports}
	api.HandleFunc("GET /reports/dashboard", reports.Dashboard)
	api.HandleFunc("GET /reports/revenue", reports.Revenue)
	api.HandleFunc("GET /reports/top-shops", reports.TopShops)

	root := http.NewServeMux()
	root.HandleFunc("GET /health", handlers.Health)
	root.Handle("/", actorMiddleware(profiles, api))

	return requestIDMiddleware(loggingMiddleware(root))
}
