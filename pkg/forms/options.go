package forms

import (
	"strings"

	"github.com/aretw0/flowgraph/pkg/assets"
	"github.com/aretw0/flowgraph/pkg/domain"
	"github.com/aretw0/flowgraph/pkg/dsl"
)

// SelectOption describes a select control: its label and which record
// keys hold the option label and value.
type SelectOption struct {
	Label    string `json:"label"`
	LabelKey string `json:"labelKey"`
	ValueKey string `json:"valueKey"`
}

// NewSelectOption builds a select control option with a trimmed,
// capitalized label.
func NewSelectOption(label string) SelectOption {
	return SelectOption{
		Label:    dsl.Capitalize(strings.TrimSpace(label)),
		LabelKey: "name",
		ValueKey: "id",
	}
}

// Option is a name/id pair as consumed by select controls.
type Option struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// GroupOptions maps groups to options. A nil list uses the group fixture.
func GroupOptions(groups []domain.Group) []Option {
	if groups == nil {
		groups = assets.Groups()
	}
	out := make([]Option, 0, len(groups))
	for _, g := range groups {
		out = append(out, Option{Name: g.Name, ID: g.UUID})
	}
	return out
}

// GroupsFrom returns the group options starting at index from. A negative
// index counts back from the end; an index past the end yields none.
func GroupsFrom(from int, groups []domain.Group) []Option {
	opts := GroupOptions(groups)
	if from < 0 {
		from += len(opts)
		if from < 0 {
			from = 0
		}
	}
	if from > len(opts) {
		from = len(opts)
	}
	return opts[from:]
}
