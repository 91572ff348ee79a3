package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"loan-predictor/domain"
)

const maxBodyBytes = 64 << 10

// formFields maps the web form's input names to attribute names.
var formFields = map[string]string{
	"age":                    domain.AttrAge,
	"maritalStatus":          domain.AttrMaritalStatus,
	"employmentStatus":       domain.AttrEmploymentStatus,
	"educationLevel":         domain.AttrEducationLevel,
	"annualIncome":           domain.AttrAnnualIncome,
	"netWorth":               domain.AttrNetWorth,
	"creditScore":            domain.AttrCreditScore,
	"totalLiabilities":       domain.AttrTotalLiabilities,
	"totalDebtToIncomeRatio": domain.AttrTotalDebtToIncomeRatio,
	"loanAmount":             domain.AttrLoanAmount,
	"loanDuration":           domain.AttrLoanDuration,
	"interestRate":           domain.AttrInterestRate,
}

// attributeName accepts either the form name or the attribute name.
func attributeName(key string) (string, bool) {
	if name, ok := formFields[key]; ok {
		return name, true
	}
	for _, name := range domain.CanonicalFeatureOrder {
		if name == key {
			return name, true
		}
	}
	return "", false
}

// shadowed reports whether key is a form alias for name while the request
// also carries name itself. The attribute name always wins, so a request
// that sends both resolves the same way every time.
func shadowed(key, name string, has func(string) bool) bool {
	return key != name && has(name)
}

// readAttributes builds RawAttributes from a form or JSON request body.
// Unknown keys are ignored; missing ones are left for the Assembler to report.
func readAttributes(w http.ResponseWriter, r *http.Request) (domain.RawAttributes, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return readJSONAttributes(r)
	}

	if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	raw := make(domain.RawAttributes, len(formFields))
	for key, values := range r.PostForm {
		name, ok := attributeName(key)
		if !ok || len(values) == 0 || shadowed(key, name, r.PostForm.Has) {
			continue
		}
		raw[name] = values[0]
	}
	return raw, nil
}

func readJSONAttributes(r *http.Request) (domain.RawAttributes, error) {
	var body map[string]any
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	raw := make(domain.RawAttributes, len(body))
	for key, value := range body {
		name, ok := attributeName(key)
		if !ok || shadowed(key, name, func(k string) bool { _, ok := body[k]; return ok }) {
			continue
		}
		raw[name] = value
	}
	return raw, nil
}
