package pipeline

import (
	"errors"
	"strings"
)

var (
	ErrMalformedBody = errors.New("pipeline: malformed request body")
	ErrInvalid       = errors.New("pipeline: validation failed")
	ErrDuplicateNode = errors.New("pipeline: duplicate node id")
	ErrDanglingEdge  = errors.New("pipeline: edge references unknown node")
)

// FieldError describes a single field that failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// ValidationErrors collects every field that failed validation.
// It matches ErrInvalid with errors.Is, and ErrDuplicateNode or
// ErrDanglingEdge when a reference check produced one of its entries.
type ValidationErrors []FieldError

func (ve ValidationErrors) Error() string {
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return ErrInvalid.Error() + ": " + strings.Join(parts, "; ")
}

func (ve ValidationErrors) Is(target error) bool {
	switch target {
	case ErrInvalid:
		return true
	case ErrDuplicateNode:
		return ve.hasTag(tagUnique)
	case ErrDanglingEdge:
		return ve.hasTag(tagNodeRef)
	}
	return false
}

func (ve ValidationErrors) hasTag(tag string) bool {
	for _, fe := range ve {
		if fe.Tag == tag {
			return true
		}
	}
	return false
}
