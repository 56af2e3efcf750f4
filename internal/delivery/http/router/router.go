package router

import (
	"github.com/gin-gonic/gin"
	"github.com/merchkit/payment-service/internal/delivery/http/handlers"
	"github.com/merchkit/payment-service/internal/delivery/http/middleware"
	"github.com/merchkit/payment-service/internal/domain"
	"github.com/merchkit/payment-service/internal/infrastructure/ratelimit"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Webhook *handlers.WebhookHandler
	Order   *handlers.OrderHandler
	Payment *handlers.PaymentHandler
}

func New(h Handlers, guard *ratelimit.Guard, resolver domain.IdentityResolver) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Identity(resolver))

	r.GET("/healthz", func(c *gin.Context) { c.Status(200) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/webhooks/payments/:provider",
		middleware.Admission(guard, ratelimit.ClassWebhook),
		h.Webhook.HandleProviderEvent)

	api := r.Group("/api/v1")

	mutate := api.Group("", middleware.Admission(guard, ratelimit.ClassPaymentMutation))
	{
		mutate.POST("/orders", h.Order.CreateOrder)
		mutate.POST("/orders/:id/confirm", h.Order.ConfirmOrder)
		mutate.POST("/orders/:id/complete", h.Order.CompleteOrder)
		mutate.POST("/orders/:id/cancel", h.Order.CancelOrder)
		mutate.POST("/payments/:id/refund", h.Payment.RequestRefund)
	}

	read := api.Group("", middleware.Admission(guard, ratelimit.ClassGeneral))
	{
		read.GET("/orders/:id", h.Order.GetOrder)
		read.GET("/orders/:id/audit", h.Order.GetOrderAudit)
		read.GET("/payments/:id", h.Payment.GetPayment)
	}

	return r
}
