package service

import (
	"loan-predictor/domain"
)

// stubClassifier returns fixed labels and records what it was asked.
type stubClassifier struct {
	labels []int
	err    error
	calls  int
	rows   [][]float32
}

func (c *stubClassifier) Predict(rows [][]float32) ([]int, error) {
	c.calls++
	c.rows = rows
	if c.err != nil {
		return nil, c.err
	}
	return c.labels, nil
}

func testSchema() domain.Schema {
	return domain.Schema{
		Version:      "test-v1",
		FeatureOrder: domain.CanonicalFeatureOrder,
		Encodings:    domain.DefaultEncodingTable(),
	}
}

// exampleAttributes is the reference applicant as typed input.
func exampleAttributes() domain.RawAttributes {
	return domain.RawAttributes{
		domain.AttrAge:                    40.0,
		domain.AttrMaritalStatus:          "Married",
		domain.AttrEmploymentStatus:       "Employed",
		domain.AttrEducationLevel:         "Bachelor",
		domain.AttrAnnualIncome:           50000.0,
		domain.AttrNetWorth:               100000.0,
		domain.AttrCreditScore:            500.0,
		domain.AttrTotalLiabilities:       3000.0,
		domain.AttrTotalDebtToIncomeRatio: 0.30,
		domain.AttrLoanAmount:             10000.0,
		domain.AttrLoanDuration:           24.0,
		domain.AttrInterestRate:           0.05,
	}
}

func exampleVector() domain.FeatureVector {
	return domain.FeatureVector{40, 1, 0, 1, 50000, 100000, 500, 3000, 0.30, 10000, 24, 0.05}
}
