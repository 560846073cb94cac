package dsl

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/flowgraph/pkg/domain"
)

// ErrUnknownRecipe is returned when no recipe has the requested name.
var ErrUnknownRecipe = errors.New("unknown recipe")

// Recipe is a named graph construction recipe that can be driven by loose
// parameters, as received from the CLI, HTTP or MCP tool calls.
type Recipe struct {
	Name        string
	Description string
	build       func(params map[string]any, ids UUIDSource) (domain.RenderNode, error)
}

// Build runs the recipe. Unknown parameters are rejected. When ids is nil
// every identifier not supplied in params takes its fixed default;
// otherwise missing identifiers are drawn from ids.
func (r Recipe) Build(params map[string]any, ids UUIDSource) (domain.RenderNode, error) {
	node, err := r.build(params, ids)
	if err != nil {
		return domain.RenderNode{}, fmt.Errorf("recipe %s: %w", r.Name, err)
	}
	return node, nil
}

// Recipe names.
const (
	RecipeWebhook         = "webhook"
	RecipeWaitForResponse = "wait_for_response"
	RecipeStartFlow       = "start_flow"
	RecipeSplitByGroups   = "split_by_groups"
)

var recipes = map[string]Recipe{
	RecipeWebhook: {
		Name:        RecipeWebhook,
		Description: "Call a webhook and split on Success, Failure or Unreachable.",
		build:       buildWebhook,
	},
	RecipeWaitForResponse: {
		Name:        RecipeWaitForResponse,
		Description: "Wait for a message and route it by keyword categories, with an Other fallback.",
		build:       buildWaitForResponse,
	},
	RecipeStartFlow: {
		Name:        RecipeStartFlow,
		Description: "Enter a child flow and resume on Complete or Expired.",
		build:       buildStartFlow,
	},
	RecipeSplitByGroups: {
		Name:        RecipeSplitByGroups,
		Description: "Split on contact group membership, one exit per group.",
		build:       buildGroups,
	},
}

// Recipes lists the available recipes sorted by name.
func Recipes() []Recipe {
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupRecipe returns the recipe with the given name.
func LookupRecipe(name string) (Recipe, error) {
	r, ok := recipes[name]
	if !ok {
		return Recipe{}, fmt.Errorf("%w: %q", ErrUnknownRecipe, name)
	}
	return r, nil
}

func decodeParams(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

type webhookParams struct {
	UUID       string            `json:"uuid"`
	ActionUUID string            `json:"action_uuid"`
	URL        string            `json:"url"`
	Method     string            `json:"method"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

func buildWebhook(params map[string]any, ids UUIDSource) (domain.RenderNode, error) {
	var p webhookParams
	if err := decodeParams(params, &p); err != nil {
		return domain.RenderNode{}, err
	}

	if p.Headers == nil {
		p.Headers = map[string]string{}
	}

	cfg := WebhookConfig{UUID: ids.fill(p.UUID)}
	if p.URL != "" || p.ActionUUID != "" || p.Method != "" || len(p.Headers) > 0 || p.Body != "" || ids != nil {
		action := CallWebhook(CallWebhookConfig{
			UUID:    or(ids.fill(p.ActionUUID), "a564374c-ee42-4f13-8fc3-cda99f43b6ae"),
			URL:     or(p.URL, "http://www.google.com"),
			Method:  p.Method,
			Headers: p.Headers,
			Body:    p.Body,
		})
		cfg.Action = &action
	}
	for i := range cfg.ExitUUIDs {
		cfg.ExitUUIDs[i] = ids.fill("")
		cfg.CaseUUIDs[i] = ids.fill("")
	}
	return WebhookRouterNode(cfg), nil
}

type waitParams struct {
	UUID       string   `json:"uuid"`
	Timeout    int      `json:"timeout"`
	Operand    string   `json:"operand"`
	ResultName string   `json:"result_name"`
	Categories []string `json:"categories"`
}

func buildWaitForResponse(params map[string]any, ids UUIDSource) (domain.RenderNode, error) {
	var p waitParams
	if err := decodeParams(params, &p); err != nil {
		return domain.RenderNode{}, err
	}
	if p.Timeout < 0 {
		return domain.RenderNode{}, fmt.Errorf("timeout must not be negative, got %d", p.Timeout)
	}
	if len(p.Categories) == 0 {
		p.Categories = []string{"Yes", "No"}
	}

	nodeUUID := or(ids.fill(p.UUID), "wait-router")
	exits := make([]domain.Exit, 0, len(p.Categories)+1)
	cases := make([]domain.Case, 0, len(p.Categories))
	for i, category := range p.Categories {
		category = strings.TrimSpace(category)
		if category == "" {
			return domain.RenderNode{}, fmt.Errorf("category %d is empty", i)
		}
		exitUUID := or(ids.fill(""), fmt.Sprintf("%s-exit-%d", nodeUUID, i))
		caseUUID := or(ids.fill(""), fmt.Sprintf("%s-case-%d", nodeUUID, i))
		exits = append(exits, NamedExit(exitUUID, category, ""))
		cases = append(cases, Case(caseUUID, domain.OpHasAnyWord, exitUUID, strings.ToLower(category)))
	}
	other := NamedExit(or(ids.fill(""), nodeUUID+"-exit-other"), "Other", "")
	exits = append(exits, other)

	return WaitRouterNode(exits, cases, WaitRouterConfig{
		UUID:            nodeUUID,
		Timeout:         p.Timeout,
		Operand:         p.Operand,
		ResultName:      p.ResultName,
		DefaultExitUUID: domain.Ptr(other.UUID),
	}), nil
}

type startFlowParams struct {
	UUID       string `json:"uuid"`
	ActionUUID string `json:"action_uuid"`
	FlowUUID   string `json:"flow_uuid"`
	FlowName   string `json:"flow_name"`
}

func buildStartFlow(params map[string]any, ids UUIDSource) (domain.RenderNode, error) {
	var p startFlowParams
	if err := decodeParams(params, &p); err != nil {
		return domain.RenderNode{}, err
	}

	cfg := StartFlowConfig{UUID: ids.fill(p.ActionUUID)}
	if p.FlowUUID != "" || p.FlowName != "" {
		cfg.Flow = &domain.FlowRef{
			UUID: or(p.FlowUUID, "colors-0"),
			Name: or(p.FlowName, "Colors"),
		}
	}

	nodeCfg := StartFlowNodeConfig{UUID: ids.fill(p.UUID)}
	for i := range nodeCfg.ExitUUIDs {
		nodeCfg.ExitUUIDs[i] = ids.fill("")
		nodeCfg.CaseUUIDs[i] = ids.fill("")
	}
	return StartFlowNode(StartFlowAction(cfg), nodeCfg), nil
}

type groupsParams struct {
	UUID   string         `json:"uuid"`
	Groups []domain.Group `json:"groups"`
}

func buildGroups(params map[string]any, ids UUIDSource) (domain.RenderNode, error) {
	var p groupsParams
	if err := decodeParams(params, &p); err != nil {
		return domain.RenderNode{}, err
	}
	seen := make(map[string]int, len(p.Groups))
	for i, g := range p.Groups {
		if g.UUID == "" {
			return domain.RenderNode{}, fmt.Errorf("group %d has no uuid", i)
		}
		if j, dup := seen[g.UUID]; dup {
			return domain.RenderNode{}, fmt.Errorf("groups %d and %d share uuid %s", j, i, g.UUID)
		}
		seen[g.UUID] = i
	}

	cfg := GroupsConfig{UUID: ids.fill(p.UUID)}
	if ids != nil {
		cfg.CaseUUID = func(int) string { return ids() }
	}
	return GroupsRouterNode(p.Groups, cfg), nil
}
