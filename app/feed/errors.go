package feed

import (
	"fmt"
	"sort"
	"strings"
)

// ConfigurationError reports a site configuration that cannot be applied,
// such as a missing required location path. It is never retried.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// CardinalityMismatchError reports field sequences of different lengths.
type CardinalityMismatchError struct {
	Lengths map[string]int
}

func (e *CardinalityMismatchError) Error() string {
	fields := make([]string, 0, len(e.Lengths))
	for field := range e.Lengths {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = fmt.Sprintf("%s=%d", field, e.Lengths[field])
	}
	return "cardinality mismatch: " + strings.Join(parts, ", ")
}

type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type ProbeError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *ProbeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to probe %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to probe %s: %v", e.URL, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("cache %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
