package domain

// Attribute names as they appear in the training data.
const (
	AttrAge                    = "Age"
	AttrMaritalStatus          = "MaritalStatus"
	AttrEmploymentStatus       = "EmploymentStatus"
	AttrEducationLevel         = "EducationLevel"
	AttrAnnualIncome           = "AnnualIncome"
	AttrNetWorth               = "NetWorth"
	AttrCreditScore            = "CreditScore"
	AttrTotalLiabilities       = "TotalLiabilities"
	AttrTotalDebtToIncomeRatio = "TotalDebtToIncomeRatio"
	AttrLoanAmount             = "LoanAmount"
	AttrLoanDuration           = "LoanDuration"
	AttrInterestRate           = "InterestRate"
)

// CanonicalFeatureOrder is the column order the classifier was trained on.
// Any permutation still yields a valid-looking prediction, so the order is
// pinned here and checked against every loaded model artifact.
var CanonicalFeatureOrder = []string{
	AttrAge,
	AttrMaritalStatus,
	AttrEmploymentStatus,
	AttrEducationLevel,
	AttrAnnualIncome,
	AttrNetWorth,
	AttrCreditScore,
	AttrTotalLiabilities,
	AttrTotalDebtToIncomeRatio,
	AttrLoanAmount,
	AttrLoanDuration,
	AttrInterestRate,
}

// FeatureCount is the width of a single-row feature vector.
const FeatureCount = 12

// CategoricalAttributes lists the fields encoded through the EncodingTable.
var CategoricalAttributes = []string{
	AttrMaritalStatus,
	AttrEmploymentStatus,
	AttrEducationLevel,
}

// IsCategorical reports whether name is one of the encoded fields.
func IsCategorical(name string) bool {
	for _, c := range CategoricalAttributes {
		if c == name {
			return true
		}
	}
	return false
}

// RawAttributes maps attribute names to raw values. Numeric fields hold a
// float64 (or any Go number) when typed, or a string when they come from a
// submitted form. Categorical fields hold the category label.
type RawAttributes map[string]any

// FeatureVector is one row of classifier input in CanonicalFeatureOrder.
type FeatureVector []float32

// Clone returns a copy that shares no storage with v.
func (v FeatureVector) Clone() FeatureVector {
	out := make(FeatureVector, len(v))
	copy(out, v)
	return out
}

// Schema is the contract between the inference code and a trained model:
// the feature order and the label encodings it was trained with.
type Schema struct {
	Version      string
	FeatureOrder []string
	Encodings    EncodingTable
}
