package models

import "time"

// Calculation is a persisted Black-Scholes run. Rows are insert-only.
type Calculation struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	StockPrice      float64   `gorm:"not null" json:"stock_price"`
	StrikePrice     float64   `gorm:"not null" json:"strike_price"`
	TimeToMaturity  float64   `gorm:"not null" json:"time_to_maturity"`
	RiskFreeRate    float64   `gorm:"not null" json:"risk_free_rate"`
	DividendYield   float64   `gorm:"not null" json:"dividend_yield"`
	Volatility      float64   `gorm:"not null" json:"volatility"`
	CallOptionPrice float64   `gorm:"not null" json:"call_option_price"`
	PutOptionPrice  float64   `gorm:"not null" json:"put_option_price"`
	Timestamp       time.Time `gorm:"autoCreateTime;not null;index" json:"timestamp"`
}
