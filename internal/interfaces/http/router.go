package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Emlak-api/internal/application/broker"
	"github.com/jhoicas/Emlak-api/internal/application/documents"
	"github.com/jhoicas/Emlak-api/internal/application/inventory"
	"github.com/jhoicas/Emlak-api/internal/application/sales"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Pipeline    *sales.PipelineUseCase
	Offers      *sales.OfferUseCase
	Deposits    *sales.DepositUseCase
	Plans       *sales.PaymentPlanUseCase
	Assignment  *sales.AssignmentUseCase
	Brokers     *broker.UseCase
	Catalog     *inventory.CatalogUseCase
	Customers   *inventory.CustomerUseCase
	SchedulePDF *documents.SchedulePDFUseCase
	JWTSecret   string
}

// Router registra las rutas de la API. Todo /api exige Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	staff := RequireRole(RoleAdmin, RoleManager, RoleSales)
	managers := RequireRole(RoleAdmin, RoleManager)
	referrals := RequireRole(RoleAdmin, RoleManager, RoleSales, RoleBroker)

	// Ventas
	saleHandler := NewSaleHandler(deps.Pipeline, deps.Assignment, deps.Plans)
	salesGroup := api.Group("/sales", staff)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Put("/:id/status", saleHandler.UpdateStatus)
	salesGroup.Put("/:id/unit", saleHandler.MatchUnit)
	salesGroup.Delete("/:id/unit", saleHandler.UnmatchUnit)
	salesGroup.Post("/:id/reservation", saleHandler.Reserve)
	salesGroup.Delete("/:id/reservation", saleHandler.CancelReservation)
	salesGroup.Post("/:id/restart", saleHandler.Restart)
	salesGroup.Post("/:id/assign", managers, saleHandler.Assign)
	salesGroup.Post("/:id/payment-plan", saleHandler.CreatePaymentPlan)
	api.Post("/payment-plans/preview", staff, saleHandler.PreviewSchedule)

	// Ofertas y contraofertas
	offerHandler := NewOfferHandler(deps.Offers)
	offers := api.Group("/offers", staff)
	offers.Get("/:id", offerHandler.GetByID)
	offers.Post("/:id/negotiations", offerHandler.CreateNegotiation)
	offers.Get("/:id/negotiations", offerHandler.ListNegotiations)
	offers.Post("/:id/finalize", offerHandler.Finalize)
	offers.Post("/:id/approve", managers, offerHandler.Approve)
	negotiations := api.Group("/negotiations", staff)
	negotiations.Post("/:id/approve", offerHandler.ApproveNegotiation)
	negotiations.Post("/:id/reject", offerHandler.RejectNegotiation)

	// Señas
	depositHandler := NewDepositHandler(deps.Deposits)
	deposits := api.Group("/deposits", staff)
	deposits.Get("/", depositHandler.List)
	deposits.Post("/:id/confirm", depositHandler.Confirm)
	deposits.Post("/:id/refund", depositHandler.StartRefund)
	deposits.Post("/:id/refund/confirm", managers, depositHandler.ConfirmRefund)
	deposits.Post("/:id/cancel", depositHandler.Cancel)

	// Contratos
	contractHandler := NewContractHandler(deps.SchedulePDF)
	api.Get("/contracts/:id/schedule.pdf", staff, contractHandler.SchedulePDF)

	// Brokers
	brokerHandler := NewBrokerHandler(deps.Brokers)
	api.Post("/brokers", managers, brokerHandler.CreateBroker)
	leads := api.Group("/broker-leads", referrals)
	leads.Post("/", brokerHandler.RegisterLead)
	leads.Get("/:id", brokerHandler.GetLead)
	leads.Get("/:id/history", brokerHandler.History)
	leads.Put("/:id/customer", brokerHandler.LinkCustomer)
	leads.Put("/:id/status", brokerHandler.UpdateStatus)

	// Catálogo
	catalogHandler := NewCatalogHandler(deps.Catalog, deps.Customers)
	api.Post("/projects", managers, catalogHandler.CreateProject)
	api.Post("/units", managers, catalogHandler.CreateUnit)
	api.Get("/units", staff, catalogHandler.ListUnits)
	api.Get("/units/:id", staff, catalogHandler.GetUnit)
	api.Post("/teams", managers, catalogHandler.CreateTeam)
	api.Post("/customers", staff, catalogHandler.CreateCustomer)
	api.Get("/customers", staff, catalogHandler.ListCustomers)
}
