// Package validation checks configuration structs with go-playground/validator
// and reports failures as INVALID_CONFIG errors that name each offending
// field by its configuration key.
package validation
