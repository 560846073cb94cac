package validator

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/aretw0/flowgraph/pkg/codec"
	"github.com/aretw0/flowgraph/pkg/domain"
)

//go:embed flow.schema.json
var flowSchemaJSON []byte

const flowSchemaURL = "https://flowgraph.dev/schemas/flow.json"

// SchemaValidator checks serialized flows against the flow JSON Schema
// (draft 2020-12). It is safe for concurrent use.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// NewSchemaValidator compiles the embedded flow schema.
func NewSchemaValidator() (*SchemaValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(flowSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal flow schema: %w", err)
	}
	if err := c.AddResource(flowSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add flow schema resource: %w", err)
	}
	schema, err := c.Compile(flowSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile flow schema: %w", err)
	}
	return &SchemaValidator{schema: schema}, nil
}

// ValidateJSON validates a raw JSON flow document.
func (v *SchemaValidator) ValidateJSON(data []byte) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return &AggregateError{Errors: []error{&Issue{Reason: "invalid json: " + err.Error()}}}
	}
	return v.validate(doc)
}

// ValidateFlow validates the serialized form of flow.
func (v *SchemaValidator) ValidateFlow(flow *domain.Flow) error {
	data, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("failed to serialize flow: %w", err)
	}
	return v.ValidateJSON(data)
}

func (v *SchemaValidator) validate(doc any) error {
	err := v.schema.Validate(doc)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return &AggregateError{Errors: []error{&Issue{Reason: err.Error()}}}
	}
	var c collector
	collectViolations(&c, verr)
	return c.err()
}

// collectViolations walks a ValidationError tree and records its leaves.
func collectViolations(c *collector, verr *jsonschema.ValidationError) {
	if len(verr.Causes) == 0 {
		c.add("", instancePath(verr.InstanceLocation), "%s", leafMessage(verr))
		return
	}
	for _, cause := range verr.Causes {
		collectViolations(c, cause)
	}
}

// instancePath renders a location like ["nodes","0","exits"] as
// nodes[0].exits.
func instancePath(loc []string) string {
	var b strings.Builder
	for _, part := range loc {
		if isIndex(part) {
			fmt.Fprintf(&b, "[%s]", part)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// leafMessage strips the location prefix the library puts on the first
// line of its messages.
func leafMessage(verr *jsonschema.ValidationError) string {
	msg := strings.TrimSpace(verr.Error())
	if i := strings.LastIndex(msg, "\n"); i >= 0 {
		msg = strings.TrimSpace(msg[i+1:])
	}
	msg = strings.TrimPrefix(msg, "- ")
	if i := strings.Index(msg, "': "); i >= 0 && strings.HasPrefix(msg, "at '") {
		msg = msg[i+3:]
	}
	return msg
}

// Linter runs the schema check and, when the document is well formed,
// the structural checks.
type Linter struct {
	schema *SchemaValidator
}

// NewLinter creates a Linter.
func NewLinter() (*Linter, error) {
	sv, err := NewSchemaValidator()
	if err != nil {
		return nil, err
	}
	return &Linter{schema: sv}, nil
}

// Lint validates a flow document in the given format. It returns the
// decoded flow when decoding succeeded, even if issues were found.
func (l *Linter) Lint(data []byte, f codec.Format) (*domain.Flow, error) {
	jsonData := data
	if f == codec.YAML {
		var err error
		if jsonData, err = codec.YAMLToJSON(data); err != nil {
			return nil, &AggregateError{Errors: []error{&Issue{Reason: err.Error()}}}
		}
	} else if f != codec.JSON {
		return nil, fmt.Errorf("%w: %q", codec.ErrUnsupportedFormat, f)
	}

	if err := l.schema.ValidateJSON(jsonData); err != nil {
		return nil, err
	}

	flow, err := codec.DecodeFlow(jsonData, codec.JSON)
	if err != nil {
		return nil, &AggregateError{Errors: []error{&Issue{Reason: err.Error()}}}
	}
	return flow, ValidateFlow(flow)
}
