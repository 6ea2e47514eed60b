// Package pricing implements closed-form Black-Scholes pricing for European
// options on an asset paying a continuous dividend yield.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput = errors.New("invalid pricing input")
	ErrComputation  = errors.New("black-scholes calculation failed")
)

// Input holds the market parameters of a single calculation.
type Input struct {
	StockPrice     float64 // S
	StrikePrice    float64 // X
	TimeToMaturity float64 // T, in years
	RiskFreeRate   float64 // r
	DividendYield  float64 // q
	Volatility     float64 // v
}

// Result holds call and put prices rounded to four decimal places.
type Result struct {
	CallPrice float64
	PutPrice  float64
}

// Calculate prices a European call and put.
//
// Inputs outside the domain of the formula (non-positive S, X, T or v, or any
// non-finite value) return ErrInvalidInput. Range limits stricter than the
// mathematical domain, such as v <= 1, are enforced by callers.
func Calculate(in Input) (Result, error) {
	if err := in.check(); err != nil {
		return Result{}, err
	}

	sqrtT := math.Sqrt(in.TimeToMaturity)
	volSqrtT := in.Volatility * sqrtT

	d1 := (math.Log(in.StockPrice/in.StrikePrice) +
		(in.RiskFreeRate-in.DividendYield+in.Volatility*in.Volatility/2)*in.TimeToMaturity) / volSqrtT
	d2 := d1 - volSqrtT

	spotDisc := in.StockPrice * math.Exp(-in.DividendYield*in.TimeToMaturity)
	strikeDisc := in.StrikePrice * math.Exp(-in.RiskFreeRate*in.TimeToMaturity)

	call := spotDisc*NormCDF(d1) - strikeDisc*NormCDF(d2)
	put := strikeDisc*NormCDF(-d2) - spotDisc*NormCDF(-d1)

	if !finite(call) || !finite(put) {
		return Result{}, fmt.Errorf("%w: non-finite result (call=%v, put=%v)", ErrComputation, call, put)
	}

	return Result{CallPrice: round4(call), PutPrice: round4(put)}, nil
}

// NormCDF is the standard normal cumulative distribution function.
func NormCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

func (in Input) check() error {
	fields := []struct {
		name     string
		value    float64
		positive bool
	}{
		{"stock price", in.StockPrice, true},
		{"strike price", in.StrikePrice, true},
		{"time to maturity", in.TimeToMaturity, true},
		{"risk-free rate", in.RiskFreeRate, false},
		{"dividend yield", in.DividendYield, false},
		{"volatility", in.Volatility, true},
	}
	for _, f := range fields {
		if !finite(f.value) {
			return fmt.Errorf("%w: %s must be a finite number", ErrInvalidInput, f.name)
		}
		if f.positive && f.value <= 0 {
			return fmt.Errorf("%w: %s must be greater than 0", ErrInvalidInput, f.name)
		}
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// round4 rounds half away from zero. Tiny negative values left over from
// floating-point cancellation come out as zero.
func round4(x float64) float64 {
	f, _ := decimal.NewFromFloat(x).Round(4).Float64()
	if f == 0 {
		return 0
	}
	return f
}
