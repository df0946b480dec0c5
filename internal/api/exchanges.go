package api

import (
	"net/http" // HTTP status codes

	"kyc_arena/internal/middleware" // Context helpers
	"kyc_arena/internal/service"    // Exchange catalogue

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Money
	"github.com/sirupsen/logrus"    // Logging
)

// Request struct for creating an exchange
type CreateExchangeRequest struct {
	Name      string           `json:"name" binding:"required"` // Unique name
	PriceUsdt *decimal.Decimal `json:"priceUsdt"`               // Payout per good verdict, defaults to zero
	IsActive  *bool            `json:"isActive"`                // Defaults to true
}

// Request struct for repricing an exchange
type UpdatePriceRequest struct {
	PriceUsdt *decimal.Decimal `json:"priceUsdt"`
}

// ListExchangesHandler returns active exchanges, or all of them for admins
func ListExchangesHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		activeOnly := !middleware.Allowed(middleware.CurrentUser(c).Role, middleware.CapManageExchanges)
		exchanges, err := svc.ListExchanges(c.Request.Context(), activeOnly)
		if err != nil {
			respondError(c, err, "fetch exchanges")
			return
		}
		out := make([]exchangeResponse, 0, len(exchanges))
		for i := range exchanges {
			out = append(out, toExchangeResponse(&exchanges[i]))
		}
		c.JSON(http.StatusOK, out)
	}
}

// CreateExchangeHandler adds an exchange to the catalogue
func CreateExchangeHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateExchangeRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Exchange name and a numeric price are required"})
			return
		}
		price := decimal.Zero
		if req.PriceUsdt != nil {
			price = *req.PriceUsdt
		}
		active := true
		if req.IsActive != nil {
			active = *req.IsActive
		}
		ex, err := svc.CreateExchange(c.Request.Context(), req.Name, price, active)
		if err != nil {
			respondError(c, err, "create exchange")
			return
		}
		logrus.WithFields(logrus.Fields{"exchange": ex.Name, "price": ex.PriceUsdt.StringFixed(2)}).Info("Exchange created")
		c.JSON(http.StatusCreated, toExchangeResponse(ex))
	}
}

// ToggleExchangeHandler flips whether an exchange accepts submissions
func ToggleExchangeHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		ex, err := svc.ToggleExchange(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "toggle exchange")
			return
		}
		c.JSON(http.StatusOK, toExchangeResponse(ex))
	}
}

// UpdateExchangePriceHandler changes the payout of an exchange
func UpdateExchangePriceHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var req UpdatePriceRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || req.PriceUsdt == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A numeric price is required"})
			return
		}
		ex, err := svc.UpdateExchangePrice(c.Request.Context(), id, *req.PriceUsdt)
		if err != nil {
			respondError(c, err, "update price")
			return
		}
		logrus.WithFields(logrus.Fields{"exchange": ex.Name, "price": ex.PriceUsdt.StringFixed(2)}).Info("Exchange repriced")
		c.JSON(http.StatusOK, toExchangeResponse(ex))
	}
}
