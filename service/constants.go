package service

import "loan-predictor/domain"

// Bound is the accepted range, default and step of a numeric input widget.
type Bound struct {
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Default float64 `json:"default" yaml:"default"`
	Step    float64 `json:"step" yaml:"step"`
}

// Contains reports whether v lies within the bound.
func (b Bound) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// InputBounds are the sanity limits of the interactive dashboard. The
// Assembler does not enforce them.
var InputBounds = map[string]Bound{
	domain.AttrAge:                    {Min: 18, Max: 80, Default: 40, Step: 1},
	domain.AttrAnnualIncome:           {Min: 0, Max: 500_000, Default: 50_000, Step: 1000},
	domain.AttrNetWorth:               {Min: 0, Max: 5_000_000, Default: 100_000, Step: 10_000},
	domain.AttrCreditScore:            {Min: 300, Max: 800, Default: 500, Step: 5},
	domain.AttrTotalLiabilities:       {Min: 0, Max: 25_000, Default: 3000, Step: 100},
	domain.AttrTotalDebtToIncomeRatio: {Min: 0.016, Max: 4.65, Default: 0.30, Step: 0.01},
	domain.AttrLoanAmount:             {Min: 0, Max: 500_000, Default: 10_000, Step: 1000},
	domain.AttrLoanDuration:           {Min: 12, Max: 120, Default: 24, Step: 1},
	domain.AttrInterestRate:           {Min: 0.01, Max: 0.50, Default: 0.05, Step: 0.01},
}

// InputGroup is a titled set of attributes shown together.
type InputGroup struct {
	Title      string
	Attributes []string
}

// InputGroups orders the dashboard prompts.
var InputGroups = []InputGroup{
	{
		Title: "Personal Details",
		Attributes: []string{
			domain.AttrAge,
			domain.AttrMaritalStatus,
			domain.AttrEmploymentStatus,
			domain.AttrEducationLevel,
		},
	},
	{
		Title: "Financial Details",
		Attributes: []string{
			domain.AttrAnnualIncome,
			domain.AttrNetWorth,
			domain.AttrCreditScore,
			domain.AttrTotalLiabilities,
			domain.AttrTotalDebtToIncomeRatio,
		},
	},
	{
		Title: "Loan Details",
		Attributes: []string{
			domain.AttrLoanAmount,
			domain.AttrLoanDuration,
			domain.AttrInterestRate,
		},
	},
}
