package service

import (
	"errors"
	"math"
)

// PaymentEstimate is an amortized repayment schedule summary. It is shown
// next to a prediction and is not a model input.
type PaymentEstimate struct {
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalPayment   float64 `json:"total_payment"`
	TotalInterest  float64 `json:"total_interest"`
}

// roundTo2Decimals rounds a float64 to cents.
func roundTo2Decimals(value float64) float64 {
	return math.Round(value*100) / 100
}

// EstimatePayment computes the fixed monthly payment for amount borrowed at
// annualRate (a fraction, 0.05 for 5%) over months.
func EstimatePayment(amount, annualRate float64, months int) (PaymentEstimate, error) {
	if amount <= 0 {
		return PaymentEstimate{}, errors.New("loan amount must be positive")
	}
	if annualRate < 0 {
		return PaymentEstimate{}, errors.New("interest rate must not be negative")
	}
	if months <= 0 {
		return PaymentEstimate{}, errors.New("loan duration must be positive")
	}

	var monthly float64
	if annualRate == 0 {
		monthly = amount / float64(months)
	} else {
		r := annualRate / 12
		n := float64(months)
		monthly = amount * (r / (1 - math.Pow(1+r, -n)))
	}

	total := monthly * float64(months)
	return PaymentEstimate{
		MonthlyPayment: roundTo2Decimals(monthly),
		TotalPayment:   roundTo2Decimals(total),
		TotalInterest:  roundTo2Decimals(total - amount),
	}, nil
}
