package internal

import (
	"errors"
	"strings"
)

var (
	ErrFetchFailure         = errors.New("fetch failure")
	ErrReferenceUnavailable = errors.New("reference table unavailable")
	ErrNoMedalTable         = errors.New("no medal table")
	ErrUnmappedCountry      = errors.New("unmapped country")
)

// UnmappedError lists the labels that could not be resolved to a NOC.
type UnmappedError struct {
	Labels []string
}

func (e *UnmappedError) Error() string {
	return "unmapped countries: " + strings.Join(e.Labels, ", ")
}

func (e *UnmappedError) Is(target error) bool {
	return target == ErrUnmappedCountry
}
