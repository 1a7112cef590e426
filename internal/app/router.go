package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/tool-shop/internal/app/handlers"
	"github.com/linemk/tool-shop/internal/authz"
	"github.com/linemk/tool-shop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/tool-shop/internal/lib/cors"
	"github.com/linemk/tool-shop/internal/lib/logger/handlers/urllog"
	"github.com/linemk/tool-shop/internal/lib/metrics"
	"github.com/linemk/tool-shop/internal/service"
)

// Services - бизнес-слой, который обслуживает маршрутизатор
type Services struct {
	Tools    service.ToolService
	Orders   service.OrderService
	Users    service.UserService
	Reviews  service.ReviewService
	Payments service.PaymentService
}

type RouterConfig struct {
	JWTSecret []byte
	CORS      cors.Options
}

// NewRouter собирает все маршруты. users нужен гардам для чтения роли вызывающего
func NewRouter(log *slog.Logger, cfg RouterConfig, users authz.UserLookup, svc Services) http.Handler {
	router := chi.NewRouter()
	// настройка middleware; URLFormat не подключаем, он срезает ".com" у email в пути
	router.Use(middleware.RequestID)
	router.Use(metrics.Middleware)
	router.Use(urllog.New(log))
	router.Use(middleware.Recoverer)
	router.Use(cors.New(cfg.CORS))

	policy := authz.NewPolicy()
	adminOnly := func(action authz.Action) func(http.Handler) http.Handler {
		return authz.RoleGuard(log, users, policy, action)
	}

	router.Get("/", handlers.HomeHandler())
	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	// открытые эндпоинты
	router.Get("/tools", handlers.ListToolsHandler(log, svc.Tools))
	router.Get("/purchase/{id}", handlers.GetToolHandler(log, svc.Tools))
	router.Put("/tool/{id}", handlers.UpdateToolQuantityHandler(log, svc.Tools))

	router.Get("/get/orders", handlers.ListAllOrdersHandler(log, svc.Orders))
	router.Post("/order", handlers.PlaceOrderHandler(log, svc.Orders))
	router.Patch("/shift/order/{id}", handlers.ShiftOrderHandler(log, svc.Orders))

	router.Put("/user/{email}", handlers.UpsertUserHandler(log, svc.Users))
	router.Get("/admin/{email}", handlers.AdminCheckHandler(log, svc.Users))

	router.Get("/reviews", handlers.ListReviewsHandler(log, svc.Reviews))
	router.Get("/review/{email}", handlers.GetReviewHandler(log, svc.Reviews))
	router.Put("/review/{email}", handlers.UpsertReviewHandler(log, svc.Reviews))

	// эндпоинты с токеном
	router.Group(func(r chi.Router) {
		r.Use(jwtmiddleware.NewJWTMiddleware(log, cfg.JWTSecret))

		r.Get("/orders", handlers.ListOrdersByEmailHandler(log, svc.Orders, users, policy))
		r.Get("/order/{id}", handlers.GetOrderHandler(log, svc.Orders))
		r.Delete("/cancel/order/{id}", handlers.CancelOrderHandler(log, svc.Orders))
		r.Patch("/order/{id}", handlers.ConfirmPaymentHandler(log, svc.Payments))
		r.Post("/create-payment-intent", handlers.CreatePaymentIntentHandler(log, svc.Payments))

		r.Get("/users", handlers.ListUsersHandler(log, svc.Users))

		// только для администратора
		r.With(adminOnly(authz.ActionToolCreate)).Post("/tool", handlers.CreateToolHandler(log, svc.Tools))
		r.With(adminOnly(authz.ActionToolDelete)).Delete("/tool/{id}", handlers.DeleteToolHandler(log, svc.Tools))
		r.With(adminOnly(authz.ActionUserPromote)).Patch("/user/{email}", handlers.PromoteUserHandler(log, svc.Users))
	})

	return router
}
