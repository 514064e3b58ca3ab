// Package models defines the data structures for the churn prediction engine.
package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Form field names accepted by the prediction endpoint.
const (
	FieldCreditScore     = "CreditScore"
	FieldAge             = "Age"
	FieldTenure          = "Tenure"
	FieldBalance         = "Balance"
	FieldNumOfProducts   = "NumOfProducts"
	FieldEstimatedSalary = "EstimatedSalary"
	FieldHasCrCard       = "HasCrCard"
	FieldIsActiveMember  = "IsActiveMember"
	FieldGender          = "Gender"
)

// InputFields returns the recognized input keys in form order.
func InputFields() []string {
	return []string{
		FieldCreditScore,
		FieldAge,
		FieldTenure,
		FieldBalance,
		FieldNumOfProducts,
		FieldEstimatedSalary,
		FieldHasCrCard,
		FieldIsActiveMember,
		FieldGender,
	}
}

// CustomerInput holds the raw attributes of one bank customer.
type CustomerInput struct {
	CreditScore     float64 `json:"credit_score"`
	Age             float64 `json:"age"`
	Tenure          float64 `json:"tenure"`
	Balance         float64 `json:"balance"`
	NumOfProducts   int     `json:"num_of_products"`
	EstimatedSalary float64 `json:"estimated_salary"`
	HasCrCard       int     `json:"has_cr_card"`
	IsActiveMember  int     `json:"is_active_member"`
	Gender          string  `json:"gender"`
}

// ParseCustomerInput converts form values into a CustomerInput.
// Gender is copied verbatim; normalization belongs to the label encoder.
func ParseCustomerInput(fields map[string]string) (*CustomerInput, error) {
	in := &CustomerInput{}
	var err error

	if in.CreditScore, err = floatField(fields, FieldCreditScore); err != nil {
		return nil, err
	}
	if in.Age, err = floatField(fields, FieldAge); err != nil {
		return nil, err
	}
	if in.Tenure, err = floatField(fields, FieldTenure); err != nil {
		return nil, err
	}
	if in.Balance, err = floatField(fields, FieldBalance); err != nil {
		return nil, err
	}
	if in.NumOfProducts, err = intField(fields, FieldNumOfProducts); err != nil {
		return nil, err
	}
	if in.EstimatedSalary, err = floatField(fields, FieldEstimatedSalary); err != nil {
		return nil, err
	}
	if in.HasCrCard, err = intField(fields, FieldHasCrCard); err != nil {
		return nil, err
	}
	if in.IsActiveMember, err = intField(fields, FieldIsActiveMember); err != nil {
		return nil, err
	}

	gender, ok := fields[FieldGender]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, FieldGender)
	}
	in.Gender = gender

	return in, nil
}

func floatField(fields map[string]string, name string) (float64, error) {
	raw, ok := fields[name]
	if !ok {
		return 0, &InvalidNumericInputError{Field: name, Err: ErrMissingField}
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &InvalidNumericInputError{Field: name, Value: raw, Err: numErr(err)}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &InvalidNumericInputError{Field: name, Value: raw, Err: ErrNonFiniteValue}
	}

	return v, nil
}

func intField(fields map[string]string, name string) (int, error) {
	raw, ok := fields[name]
	if !ok {
		return 0, &InvalidNumericInputError{Field: name, Err: ErrMissingField}
	}

	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &InvalidNumericInputError{Field: name, Value: raw, Err: numErr(err)}
	}

	return v, nil
}

// numErr strips the strconv wrapper so messages do not repeat the input.
func numErr(err error) error {
	if ne, ok := err.(*strconv.NumError); ok {
		return ne.Err
	}
	return err
}
