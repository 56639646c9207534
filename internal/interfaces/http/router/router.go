package router

import (
	"github.com/gin-gonic/gin"

	"github.com/hasancagrigungor/ravla/internal/interfaces/http/handler"
)

func RegisterRoutes(r *gin.Engine, sessions *handler.SessionHandler, geocodes *handler.GeocodeHandler) {
	api := r.Group("/api")
	{
		api.POST("/sessions", sessions.CreateSession)
		api.GET("/sessions/:id", sessions.GetSession)
		api.POST("/sessions/:id/bindings", sessions.PostBinding)

		api.GET("/sessions/:id/reports/buyer-summary", sessions.BuyerSummary)
		api.GET("/sessions/:id/reports/multi-product-orders", sessions.MultiProductOrders)
		api.GET("/sessions/:id/reports/quantity-threshold", sessions.QuantityThreshold)
		api.GET("/sessions/:id/reports/repeat-products", sessions.RepeatProducts)
		api.GET("/sessions/:id/reports/filtered", sessions.FilteredRows)
		api.GET("/sessions/:id/reports/product-breakdown", sessions.ProductBreakdown)

		api.GET("/sessions/:id/export/:format", sessions.Export)

		api.POST("/geocode", geocodes.Resolve)
	}
}
