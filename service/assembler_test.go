package service

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-predictor/domain"
)

func TestAssemble_ReferenceApplicant(t *testing.T) {
	vector, err := NewAssembler(testSchema()).Assemble(exampleAttributes())

	require.NoError(t, err)
	assert.Equal(t, exampleVector(), vector)
	assert.Len(t, vector, domain.FeatureCount)
}

func TestAssemble_FormStrings(t *testing.T) {
	raw := domain.RawAttributes{}
	for k, v := range exampleAttributes() {
		if f, ok := v.(float64); ok {
			raw[k] = " " + strconv.FormatFloat(f, 'f', -1, 64) + " "
			continue
		}
		raw[k] = v
	}

	vector, err := NewAssembler(testSchema()).Assemble(raw)

	require.NoError(t, err)
	assert.Equal(t, exampleVector(), vector)
}

func TestAssemble_IntegerInputs(t *testing.T) {
	raw := exampleAttributes()
	raw[domain.AttrAge] = 40
	raw[domain.AttrLoanDuration] = int64(24)

	vector, err := NewAssembler(testSchema()).Assemble(raw)

	require.NoError(t, err)
	assert.Equal(t, exampleVector(), vector)
}

func TestAssemble_IsDeterministic(t *testing.T) {
	a := NewAssembler(testSchema())

	first, err := a.Assemble(exampleAttributes())
	require.NoError(t, err)
	second, err := a.Assemble(exampleAttributes())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAssemble_MissingField(t *testing.T) {
	a := NewAssembler(testSchema())

	for _, field := range domain.CanonicalFeatureOrder {
		t.Run(field, func(t *testing.T) {
			raw := exampleAttributes()
			delete(raw, field)

			vector, err := a.Assemble(raw)

			assert.Nil(t, vector)
			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, field, vErr.Field)
			assert.Equal(t, domain.ReasonMissing, vErr.Reason)
			assert.ErrorIs(t, err, domain.ErrMissingAttribute)
		})
	}
}

func TestAssemble_NilValueIsMissing(t *testing.T) {
	raw := exampleAttributes()
	raw[domain.AttrCreditScore] = nil

	_, err := NewAssembler(testSchema()).Assemble(raw)

	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, domain.AttrCreditScore, vErr.Field)
	assert.Equal(t, domain.ReasonMissing, vErr.Reason)
}

func TestAssemble_BlankTextIsMissing(t *testing.T) {
	cases := map[string]string{
		domain.AttrAge:           "",
		domain.AttrAnnualIncome:  "   ",
		domain.AttrMaritalStatus: "",
	}
	a := NewAssembler(testSchema())

	for field, value := range cases {
		t.Run(field, func(t *testing.T) {
			raw := exampleAttributes()
			raw[field] = value

			_, err := a.Assemble(raw)

			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, field, vErr.Field)
			assert.Equal(t, domain.ReasonMissing, vErr.Reason)
			assert.Equal(t, field+" is required", vErr.Error())
		})
	}
}

func TestAssemble_FirstMissingFieldInFeatureOrder(t *testing.T) {
	raw := exampleAttributes()
	delete(raw, domain.AttrInterestRate)
	delete(raw, domain.AttrEmploymentStatus)

	_, err := NewAssembler(testSchema()).Assemble(raw)

	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, domain.AttrEmploymentStatus, vErr.Field)
}

func TestAssemble_UnknownCategory(t *testing.T) {
	raw := exampleAttributes()
	raw[domain.AttrMaritalStatus] = "Engaged"

	vector, err := NewAssembler(testSchema()).Assemble(raw)

	assert.Nil(t, vector)
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, domain.AttrMaritalStatus, vErr.Field)
	assert.Equal(t, domain.ReasonUnknownCategory, vErr.Reason)
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)
}

func TestAssemble_CategoryMustBeText(t *testing.T) {
	raw := exampleAttributes()
	raw[domain.AttrEducationLevel] = 1.0

	_, err := NewAssembler(testSchema()).Assemble(raw)

	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, domain.AttrEducationLevel, vErr.Field)
	assert.Equal(t, domain.ReasonUnknownCategory, vErr.Reason)
}

func TestAssemble_UnparsableNumber(t *testing.T) {
	cases := map[string]any{
		"text":      "forty",
		"nan":       "NaN",
		"inf":       math.Inf(1),
		"overflow":  1e300,
		"bool":      true,
		"nan float": math.NaN(),
	}
	a := NewAssembler(testSchema())

	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			raw := exampleAttributes()
			raw[domain.AttrAge] = value

			vector, err := a.Assemble(raw)

			assert.Nil(t, vector)
			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, domain.AttrAge, vErr.Field)
			assert.Equal(t, domain.ReasonUnparsable, vErr.Reason)
			assert.ErrorIs(t, err, domain.ErrUnparsable)
		})
	}
}

func TestAssemble_NoRangeEnforcement(t *testing.T) {
	raw := exampleAttributes()
	raw[domain.AttrAge] = 200.0
	raw[domain.AttrCreditScore] = -5.0

	vector, err := NewAssembler(testSchema()).Assemble(raw)

	require.NoError(t, err)
	assert.Equal(t, float32(200), vector[0])
	assert.Equal(t, float32(-5), vector[6])
}

func TestAssemble_IgnoresExtraAttributes(t *testing.T) {
	raw := exampleAttributes()
	raw["RiskScore"] = 42.0

	vector, err := NewAssembler(testSchema()).Assemble(raw)

	require.NoError(t, err)
	assert.Equal(t, exampleVector(), vector)
}
