// Package errors defines the error taxonomy for tandem: defects that are
// fatal at startup or indicate broken invariants, unit load failures, and a
// concurrent collector used when many loads run in parallel.
package errors

import (
	"errors"
	"fmt"
	"sync"
)

// DefectClass categorizes invariant violations. Defects are never
// per-request conditions: build and config defects must be caught by startup
// validation, programming defects indicate a broken cross-pass invariant.
type DefectClass int

const (
	// DefectBuild marks a violation of a build-time invariant, such as a
	// unit name bound in one route-tree flavor but not the other.
	DefectBuild DefectClass = iota
	// DefectConfig marks invalid route or server configuration, such as a
	// misplaced catch-all or a tree that cannot match every path.
	DefectConfig
	// DefectProgramming marks an invariant the code itself must uphold,
	// such as hydrating a split point with no registered lazy binding.
	DefectProgramming
)

// String returns the string representation of the defect class.
func (c DefectClass) String() string {
	switch c {
	case DefectBuild:
		return "build"
	case DefectConfig:
		return "config"
	case DefectProgramming:
		return "programming"
	default:
		return "unknown"
	}
}

// DefectError is a fatal classification of an invariant violation.
type DefectError struct {
	Class   DefectClass
	Unit    string
	Message string
}

// Error implements the error interface.
func (e *DefectError) Error() string {
	if e.Unit != "" {
		return fmt.Sprintf("%s defect: unit %q: %s", e.Class, e.Unit, e.Message)
	}
	return fmt.Sprintf("%s defect: %s", e.Class, e.Message)
}

// BuildDefect creates a build-class defect error.
func BuildDefect(format string, args ...interface{}) *DefectError {
	return &DefectError{Class: DefectBuild, Message: fmt.Sprintf(format, args...)}
}

// ConfigDefect creates a config-class defect error.
func ConfigDefect(format string, args ...interface{}) *DefectError {
	return &DefectError{Class: DefectConfig, Message: fmt.Sprintf(format, args...)}
}

// UnknownUnit creates the programming-class defect raised when a split point
// references a unit with no lazy binding. This can only happen if the eager
// and lazy route trees diverged.
func UnknownUnit(name string) *DefectError {
	return &DefectError{
		Class:   DefectProgramming,
		Unit:    name,
		Message: "no lazy binding registered",
	}
}

// IsDefect reports whether err is (or wraps) a DefectError.
func IsDefect(err error) bool {
	var de *DefectError
	return errors.As(err, &de)
}

// LoadError wraps a lazy loader failure with the unit it belongs to.
type LoadError struct {
	Unit string
	Err  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("loading unit %q: %v", e.Unit, e.Err)
}

// Unwrap returns the underlying loader error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Collector gathers errors from concurrent operations so that every failure
// is reported, not just the first one observed.
type Collector struct {
	mu     sync.Mutex
	errors []error
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add records an error. Nil errors are ignored.
func (c *Collector) Add(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, err)
}

// HasErrors reports whether any error was recorded.
func (c *Collector) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errors) > 0
}

// All returns a copy of the recorded errors.
func (c *Collector) All() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]error, len(c.errors))
	copy(result, c.errors)
	return result
}

// Err returns all recorded errors joined into one, or nil when none were
// recorded.
func (c *Collector) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return errors.Join(c.errors...)
}

// Clear discards all recorded errors.
func (c *Collector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = c.errors[:0]
}
