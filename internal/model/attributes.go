// Package model defines the core domain models used throughout the application.
package model

import "time"

// Attributes holds the named fields of a single expense record.
type Attributes struct {
	Date          time.Time
	Category      string
	Merchant      string
	PaymentMethod string
	Notes         string
	Amount        float64
	Confidence    float64
}

// Clone returns a value copy of the attributes. Working copies and
// snapshots must never share storage with the draft they came from.
func (a Attributes) Clone() Attributes {
	return a
}

// Field names accepted by EditSession.UpdateField and recorded in change logs.
const (
	FieldAmount        = "amount"
	FieldCategory      = "category"
	FieldMerchant      = "merchant"
	FieldPaymentMethod = "payment_method"
	FieldDate          = "date"
	FieldNotes         = "notes"
)

// Get returns the named field's current value, or nil for an unknown field.
func (a Attributes) Get(field string) any {
	switch field {
	case FieldAmount:
		return a.Amount
	case FieldCategory:
		return a.Category
	case FieldMerchant:
		return a.Merchant
	case FieldPaymentMethod:
		return a.PaymentMethod
	case FieldDate:
		return a.Date
	case FieldNotes:
		return a.Notes
	default:
		return nil
	}
}

// Set overwrites the named field. Unknown fields are ignored; the caller
// validates field names before mutating a session.
func (a *Attributes) Set(field string, value any) {
	switch field {
	case FieldAmount:
		if v, ok := value.(float64); ok {
			a.Amount = v
		}
	case FieldCategory:
		if v, ok := value.(string); ok {
			a.Category = v
		}
	case FieldMerchant:
		if v, ok := value.(string); ok {
			a.Merchant = v
		}
	case FieldPaymentMethod:
		if v, ok := value.(string); ok {
			a.PaymentMethod = v
		}
	case FieldDate:
		if v, ok := value.(time.Time); ok {
			a.Date = v
		}
	case FieldNotes:
		if v, ok := value.(string); ok {
			a.Notes = v
		}
	}
}
