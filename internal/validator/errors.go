package validator

import (
	"errors"
	"fmt"
	"strings"
)

// Issue is a single problem found in a flow definition.
type Issue struct {
	NodeUUID string // Owning node, empty for flow-level issues
	Path     string // Location in the serialized flow, e.g. nodes[1].exits[0]
	Reason   string
}

func (i *Issue) Error() string {
	var b strings.Builder
	if i.Path != "" {
		b.WriteString(i.Path)
		b.WriteString(": ")
	}
	b.WriteString(i.Reason)
	if i.NodeUUID != "" {
		fmt.Fprintf(&b, " (node %s)", i.NodeUUID)
	}
	return b.String()
}

// AggregateError collects every issue found in one validation pass.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap exposes the individual issues to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// Issues returns the issues carried by err, or nil when err is not an
// AggregateError.
func Issues(err error) []*Issue {
	var aggr *AggregateError
	if !errors.As(err, &aggr) {
		return nil
	}
	out := make([]*Issue, 0, len(aggr.Errors))
	for _, e := range aggr.Errors {
		var issue *Issue
		if errors.As(e, &issue) {
			out = append(out, issue)
		}
	}
	return out
}

type collector struct {
	errs []error
}

func (c *collector) add(node, path, format string, args ...any) {
	c.errs = append(c.errs, &Issue{NodeUUID: node, Path: path, Reason: fmt.Sprintf(format, args...)})
}

func (c *collector) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return &AggregateError{Errors: c.errs}
}
