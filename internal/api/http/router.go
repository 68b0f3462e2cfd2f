package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	platformobservability "github.com/shestoi/inventory-allocation/platform/observability"
)

// NewRouter создаёт HTTP роутер inventory.
// health - обработчик /health (readiness по зависимостям), регистрируется без observability middleware.
// logger используется для observability HTTP middleware (trace_id в логах).
func NewRouter(handler *Handler, health http.Handler, logger *zap.Logger) chi.Router {
	router := chi.NewRouter()

	if health != nil {
		router.Method(http.MethodGet, "/health", health)
	}

	router.Group(func(r chi.Router) {
		// Observability: trace context + span на каждый запрос, logger с trace_id в контексте
		if logger != nil {
			r.Use(platformobservability.HTTPMiddleware("inventory", logger))
		}

		r.Route("/v1/variants/{variantID}", func(r chi.Router) {
			r.Post("/confirm", handler.PostConfirm)
			r.Get("/availability", handler.GetAvailability)
			r.Get("/items", handler.GetVariantItems)
			r.Post("/items", handler.PostVariantItem)
			r.Delete("/items/{itemID}", handler.DeleteVariantItem)
		})

		r.Get("/v1/items/{itemID}/variants", handler.GetItemVariants)

		r.Route("/v1/reservations", func(r chi.Router) {
			r.Post("/", handler.PostReservation)
			r.Patch("/line-items/{lineItemID}", handler.PatchLineItemReservation)
			r.Delete("/line-items/{lineItemID}", handler.DeleteLineItemReservation)
		})

		r.Post("/v1/fulfillments/validate", handler.PostValidateFulfillment)
	})

	return router
}
