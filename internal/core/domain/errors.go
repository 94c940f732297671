package domain

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration    = errors.New("configuration error")
	ErrValidation       = errors.New("validation error")
	ErrCatalog          = errors.New("catalog error")
	ErrNotFound         = errors.New("not found")
	ErrProductNotFound  = errors.New("product not found in catalog")
	ErrAmbiguousMatch   = errors.New("ambiguous catalog match")
	ErrOrderNotEditable = errors.New("sales order is not editable")
)

// A MissingConfigurationError reports a required setting left empty.
type MissingConfigurationError struct {
	Field string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s is not set", e.Field)
}

func (e *MissingConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// A ReferenceNotFoundError reports a configured price list or item group
// that no longer exists in the store.
type ReferenceNotFoundError struct {
	Kind string
	Name string
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("configuration: %s %q not found", e.Kind, e.Name)
}

func (e *ReferenceNotFoundError) Unwrap() error {
	return ErrConfiguration
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// A CatalogError is either an explicit error payload returned by the
// distributor or a failure to reach it (Err is set then).
type CatalogError struct {
	Number      string
	Message     string
	Description string
	Err         error
}

func (e *CatalogError) Error() string {
	msg := "catalog"
	if e.Number != "" {
		msg += " error " + e.Number
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Description != "" {
		msg += " (" + e.Description + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CatalogError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrCatalog, e.Err}
	}
	return []error{ErrCatalog}
}
