package dsl

import (
	"fmt"

	"github.com/aretw0/flowgraph/pkg/domain"
)

// WebhookConfig configures WebhookRouterNode. Any zero uuid keeps the
// corresponding default. Exits and cases are ordered Success, Failure,
// Unreachable.
type WebhookConfig struct {
	UUID      string
	Action    *domain.CallWebhook
	CaseUUIDs [3]string
	ExitUUIDs [3]string
	UI        *domain.UINode
}

const webhookNodeUUID = "c6f278d5-2741-4c0a-880c-52a07dea91a5"

var (
	webhookCaseUUIDs = [3]string{
		"89f9a8c0-e399-4c49-8409-43e37c318423",
		"62e70441-a846-461d-8d57-4538d726b209",
		"eeb6ae86-f2ac-4ed2-a3b0-b211e0e5d4b3",
	}
	webhookExitUUIDs = [3]string{
		"34bab8f0-4efa-40b7-a3c1-39ce856ea740",
		"ca80b96d-5178-4c0c-b98f-8f42e5fcc4f5",
		"023db634-a097-4351-8662-8447d971ff74",
	}
	webhookStatuses = [3]string{
		domain.WebhookStatusSuccess,
		domain.WebhookStatusResponseError,
		domain.WebhookStatusConnectionError,
	}
	webhookExitNames = [3]string{
		domain.WebhookExitSuccess,
		domain.WebhookExitFailure,
		domain.WebhookExitUnreachable,
	}
)

// WebhookRouterNode builds a node that calls a webhook and splits on the
// call status. The Failure exit doubles as the default. All exits are
// terminal until connected.
func WebhookRouterNode(cfg WebhookConfig) domain.RenderNode {
	action := CallWebhook(CallWebhookConfig{
		UUID:    "a564374c-ee42-4f13-8fc3-cda99f43b6ae",
		URL:     "http://www.google.com",
		Method:  MethodGet,
		Headers: map[string]string{},
	})
	if cfg.Action != nil {
		action = CallWebhook(CallWebhookConfig{
			UUID:    cfg.Action.UUID,
			URL:     cfg.Action.URL,
			Method:  cfg.Action.Method,
			Headers: cfg.Action.Headers,
			Body:    cfg.Action.Body,
		})
	}

	exits := make([]domain.Exit, 3)
	cases := make([]domain.Case, 3)
	for i := range exits {
		exitUUID := or(cfg.ExitUUIDs[i], webhookExitUUIDs[i])
		exits[i] = NamedExit(exitUUID, webhookExitNames[i], "")
		cases[i] = Case(or(cfg.CaseUUIDs[i], webhookCaseUUIDs[i]), domain.OpIsTextEQ, exitUUID, webhookStatuses[i])
	}

	ui := cfg.UI
	if ui == nil {
		ui = UIAt(domain.TypeSplitByWebhook, 0, 0)
	}
	return NewRenderNode([]domain.Action{action}, exits, NodeConfig{
		UUID: or(cfg.UUID, webhookNodeUUID),
		Router: SwitchRouter(cases, SwitchRouterConfig{
			Operand:         domain.WebhookOperand,
			DefaultExitUUID: domain.Ptr(exits[1].UUID),
		}),
		UI: ui,
	})
}

// WaitRouterConfig configures WaitRouterNode.
// UUID defaults to "wait-router" and Operand to "@input". A zero Timeout
// omits the timeout.
type WaitRouterConfig struct {
	UUID            string
	Timeout         int
	Operand         string
	ResultName      string
	DefaultExitUUID *string
	UI              *domain.UINode
}

// WaitRouterNode builds an action-less node that waits for a message and
// routes the reply through cases.
func WaitRouterNode(exits []domain.Exit, cases []domain.Case, cfg WaitRouterConfig) domain.RenderNode {
	ui := cfg.UI
	if ui == nil {
		ui = UIAt(domain.TypeWaitForResponse, 0, 0)
	}
	wait := Wait(domain.WaitMsg, cfg.Timeout)
	return NewRenderNode([]domain.Action{}, exits, NodeConfig{
		UUID: or(cfg.UUID, "wait-router"),
		Router: SwitchRouter(cases, SwitchRouterConfig{
			Operand:         cfg.Operand,
			DefaultExitUUID: cfg.DefaultExitUUID,
			ResultName:      cfg.ResultName,
		}),
		Wait: &wait,
		UI:   ui,
	})
}

// StartFlowNodeConfig configures StartFlowNode. Exits and cases are
// ordered Complete, Expired.
type StartFlowNodeConfig struct {
	UUID         string
	ExitUUIDs    [2]string
	CaseUUIDs    [2]string
	Destinations [2]string
	UI           *domain.UINode
}

var (
	startFlowExitUUIDs    = [2]string{"exit1", "exit2"}
	startFlowCaseUUIDs    = [2]string{"start_flow_case-0", "start_flow_case-1"}
	startFlowDestinations = [2]string{"destination-completed", "destination-expired"}
	startFlowExitNames    = [2]string{domain.StartFlowExitComplete, domain.StartFlowExitExpired}
	startFlowArgs         = [2]string{domain.StartFlowArgComplete, domain.StartFlowArgExpired}
)

// StartFlowNode builds a node that enters a child flow and resumes on its
// run status.
func StartFlowNode(action domain.StartFlow, cfg StartFlowNodeConfig) domain.RenderNode {
	exits := make([]domain.Exit, 2)
	cases := make([]domain.Case, 2)
	for i := range exits {
		exitUUID := or(cfg.ExitUUIDs[i], startFlowExitUUIDs[i])
		exits[i] = NamedExit(exitUUID, startFlowExitNames[i], or(cfg.Destinations[i], startFlowDestinations[i]))
		cases[i] = Case(or(cfg.CaseUUIDs[i], startFlowCaseUUIDs[i]), domain.OpHasRunStatus, exitUUID, startFlowArgs[i])
	}

	ui := cfg.UI
	if ui == nil {
		ui = UIAt(domain.TypeSplitBySubflow, 0, 0)
	}
	wait := Wait(domain.WaitFlow, 0)
	return NewRenderNode([]domain.Action{action}, exits, NodeConfig{
		UUID:   or(cfg.UUID, "start_flow_node-0"),
		Router: SwitchRouter(cases, SwitchRouterConfig{Operand: domain.StartFlowOperand}),
		Wait:   &wait,
		UI:     ui,
	})
}

// GroupsConfig configures GroupsRouterNode.
type GroupsConfig struct {
	UUID string
	// CaseUUID names the case for the i-th group; defaults to
	// "split_by_group-<i>".
	CaseUUID func(i int) string
	// Destination names the node the i-th exit leads to; defaults to
	// "node-<i>".
	Destination func(i int) string
	UI          *domain.UINode
}

// GroupsRouterNode builds a node splitting on contact group membership,
// with one exit and one case per group in input order. Each exit takes the
// group's uuid and name. A nil groups list uses the group fixture.
func GroupsRouterNode(groups []domain.Group, cfg GroupsConfig) domain.RenderNode {
	groups = groupsOrFixture(groups)

	caseUUID := cfg.CaseUUID
	if caseUUID == nil {
		caseUUID = func(i int) string { return fmt.Sprintf("split_by_group-%d", i) }
	}
	destination := cfg.Destination
	if destination == nil {
		destination = func(i int) string { return fmt.Sprintf("node-%d", i) }
	}

	exits := make([]domain.Exit, len(groups))
	cases := make([]domain.Case, len(groups))
	for i, g := range groups {
		exits[i] = NamedExit(g.UUID, g.Name, destination(i))
		cases[i] = Case(caseUUID(i), domain.OpHasGroup, g.UUID, g.UUID)
	}

	ui := cfg.UI
	if ui == nil {
		ui = UIAt(domain.TypeSplitByGroups, 0, 0)
	}
	wait := Wait(domain.WaitGroup, 0)
	return NewRenderNode([]domain.Action{}, exits, NodeConfig{
		UUID:   or(cfg.UUID, "split_by_groups-0"),
		Router: SwitchRouter(cases, SwitchRouterConfig{Operand: domain.GroupsOperand}),
		Wait:   &wait,
		UI:     ui,
	})
}
