package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"options-pricer/metrics"
	"options-pricer/models"
	"options-pricer/pricing"

	"github.com/gin-gonic/gin"
)

// CalculationStore persists calculations.
type CalculationStore interface {
	Create(ctx context.Context, calc *models.Calculation) error
	List(ctx context.Context) ([]models.Calculation, error)
}

// CalculationInput is the body of a calculate request. Pointers let a
// missing field be told apart from an explicit zero.
type CalculationInput struct {
	StockPrice     *float64 `json:"stock_price" binding:"required,gt=0"`
	StrikePrice    *float64 `json:"strike_price" binding:"required,gt=0"`
	TimeToMaturity *float64 `json:"time_to_maturity" binding:"required,gt=0"`
	RiskFreeRate   *float64 `json:"risk_free_rate" binding:"required,gte=0"`
	DividendYield  *float64 `json:"dividend_yield" binding:"required,gte=0"`
	Volatility     *float64 `json:"volatility" binding:"required,gt=0,lte=1"`
}

func (in CalculationInput) toPricing() pricing.Input {
	return pricing.Input{
		StockPrice:     *in.StockPrice,
		StrikePrice:    *in.StrikePrice,
		TimeToMaturity: *in.TimeToMaturity,
		RiskFreeRate:   *in.RiskFreeRate,
		DividendYield:  *in.DividendYield,
		Volatility:     *in.Volatility,
	}
}

type CalculationOutput struct {
	ID              uint      `json:"id"`
	CallOptionPrice float64   `json:"call_option_price"`
	PutOptionPrice  float64   `json:"put_option_price"`
	Timestamp       time.Time `json:"timestamp"`
}

type PricingHandler struct {
	calcs   CalculationStore
	metrics *metrics.Metrics
}

func NewPricingHandler(calcs CalculationStore, m *metrics.Metrics) *PricingHandler {
	return &PricingHandler{calcs: calcs, metrics: m}
}

// Calculate prices the options described in the body and stores the run.
func (h *PricingHandler) Calculate(c *gin.Context) {
	var input CalculationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.observe("invalid")
		bindError(c, err)
		return
	}

	p := input.toPricing()
	result, err := pricing.Calculate(p)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidInput) {
			h.observe("invalid")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		h.observe("error")
		internalError(c, "Black-Scholes calculation failed", err)
		return
	}

	calc := models.Calculation{
		StockPrice:      p.StockPrice,
		StrikePrice:     p.StrikePrice,
		TimeToMaturity:  p.TimeToMaturity,
		RiskFreeRate:    p.RiskFreeRate,
		DividendYield:   p.DividendYield,
		Volatility:      p.Volatility,
		CallOptionPrice: result.CallPrice,
		PutOptionPrice:  result.PutPrice,
	}
	if err := h.calcs.Create(c.Request.Context(), &calc); err != nil {
		h.observe("error")
		internalError(c, "Failed to save calculation", err)
		return
	}

	h.observe("success")
	c.JSON(http.StatusOK, CalculationOutput{
		ID:              calc.ID,
		CallOptionPrice: calc.CallOptionPrice,
		PutOptionPrice:  calc.PutOptionPrice,
		Timestamp:       calc.Timestamp,
	})
}

// ListCalculations returns every stored calculation.
func (h *PricingHandler) ListCalculations(c *gin.Context) {
	calcs, err := h.calcs.List(c.Request.Context())
	if err != nil {
		internalError(c, "Failed to fetch calculations", err)
		return
	}
	c.JSON(http.StatusOK, calcs)
}

func (h *PricingHandler) observe(outcome string) {
	if h.metrics != nil {
		h.metrics.CalculationsTotal.WithLabelValues(outcome).Inc()
	}
}
