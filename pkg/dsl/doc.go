/*
Package dsl provides builders for flow graph entities and a few ready-made
graph construction recipes.

Entity builders (SendMsg, Exit, Case, SwitchRouter, ...) take a config struct
and fill every zero field with a stable default, so two calls with the same
config produce equal values. NewFlowNode and NewRenderNode assemble nodes
without validating them; the linter in internal/validator does that.

Recipes build whole split nodes: a webhook call, a wait for a reply, a
sub-flow and a group split. They are also exposed by name through Recipes
and LookupRecipe for the CLI and transports.

Example usage:

	ask := dsl.WaitRouterNode(
		[]domain.Exit{dsl.NamedExit("yes", "Yes", ""), dsl.NamedExit("other", "Other", "")},
		[]domain.Case{dsl.Case("case-yes", domain.OpHasAnyWord, "yes", "yes")},
		dsl.WaitRouterConfig{UUID: "ask", DefaultExitUUID: domain.Ptr("other")},
	)
	thanks := dsl.NewRenderNode(
		[]domain.Action{dsl.SendMsg(dsl.SendMsgConfig{UUID: "thanks-msg", Text: "Thanks!"})},
		[]domain.Exit{dsl.Exit(dsl.ExitConfig{UUID: "thanks-exit", Terminal: true})},
		dsl.NodeConfig{UUID: "thanks"},
	)

	flow, err := dsl.New("survey-0", "Survey").
		Add(ask).
		Add(thanks).
		Connect("ask", "yes", "thanks").
		Build()
*/
package dsl
