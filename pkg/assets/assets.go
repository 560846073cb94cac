// Package assets provides the asset fixtures builders fall back to when a
// caller supplies none: contact groups, languages and a few well-known
// records. Accessors always return fresh copies.
package assets

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aretw0/flowgraph/pkg/domain"
)

//go:embed groups.json
var groupsJSON []byte

//go:embed languages.json
var languagesJSON []byte

// Language is an entry of the language asset listing.
type Language struct {
	ISO  string `json:"iso"`
	Name string `json:"name"`
}

type page[T any] struct {
	Assets []T `json:"assets"`
}

var (
	loadOnce  sync.Once
	groups    []domain.Group
	languages []Language
	loadErr   error
)

func load() error {
	loadOnce.Do(func() {
		var g page[domain.Group]
		if err := json.Unmarshal(groupsJSON, &g); err != nil {
			loadErr = fmt.Errorf("failed to parse groups fixture: %w", err)
			return
		}
		var l page[Language]
		if err := json.Unmarshal(languagesJSON, &l); err != nil {
			loadErr = fmt.Errorf("failed to parse languages fixture: %w", err)
			return
		}
		groups, languages = g.Assets, l.Assets
	})
	return loadErr
}

// Groups returns a copy of the group fixture.
// The fixture is embedded at build time, so an error here is a build defect
// and Groups panics rather than returning an empty list silently.
func Groups() []domain.Group {
	if err := load(); err != nil {
		panic(err)
	}
	out := make([]domain.Group, len(groups))
	copy(out, groups)
	return out
}

// Languages returns the language fixture converted to assets.
func Languages() []domain.Asset {
	if err := load(); err != nil {
		panic(err)
	}
	out := make([]domain.Asset, 0, len(languages))
	for _, l := range languages {
		out = append(out, LanguageToAsset(l))
	}
	return out
}

// LanguageToAsset converts a language listing entry to an asset record.
func LanguageToAsset(l Language) domain.Asset {
	return domain.Asset{ID: l.ISO, Name: l.Name, Type: domain.AssetLanguage}
}

// Well-known asset records.
var (
	English          = domain.Asset{Name: "English", ID: "eng", Type: domain.AssetLanguage}
	Spanish          = domain.Asset{Name: "Spanish", ID: "spa", Type: domain.AssetLanguage}
	SubscribersGroup = domain.Asset{Name: "Subscriber", ID: "subscribers_group", Type: domain.AssetGroup}
	FeedbackLabel    = domain.Asset{Name: "Feedback", ID: "feedback_label", Type: domain.AssetLabel}
)
