package dsl

import "github.com/aretw0/flowgraph/pkg/domain"

// Case builds a switch router case. The arguments are copied; no arguments
// yields an empty list.
func Case(uuid string, op domain.Operator, exitUUID string, args ...string) domain.Case {
	return domain.Case{
		UUID:      uuid,
		Type:      op,
		Arguments: cloneSlice(args),
		ExitUUID:  exitUUID,
	}
}

// ExitConfig configures Exit. A nil Name leaves the exit unnamed.
// Destination defaults to "node-1" unless Terminal is set.
type ExitConfig struct {
	UUID        string
	Name        *string
	Destination string
	Terminal    bool
}

// Exit builds a node exit.
func Exit(cfg ExitConfig) domain.Exit {
	exit := domain.Exit{UUID: or(cfg.UUID, "exit-0")}
	if cfg.Name != nil {
		exit.Name = domain.Ptr(*cfg.Name)
	}
	if !cfg.Terminal {
		exit.DestinationNodeUUID = domain.Ptr(or(cfg.Destination, "node-1"))
	}
	return exit
}

// NamedExit is shorthand for an exit with a name and a destination.
// An empty destination makes the exit terminal.
func NamedExit(uuid, name, destination string) domain.Exit {
	return Exit(ExitConfig{
		UUID:        uuid,
		Name:        &name,
		Destination: destination,
		Terminal:    destination == "",
	})
}

// Wait builds a wait annotation. A zero timeout is treated as "no
// timeout" and leaves the key out entirely.
func Wait(t domain.WaitType, timeout int) domain.Wait {
	w := domain.Wait{Type: t}
	if timeout != 0 {
		w.Timeout = domain.Ptr(timeout)
	}
	return w
}

// Router builds a switch-typed base router. The result name is only set
// when non-empty.
func Router(resultName string) domain.BaseRouter {
	return domain.BaseRouter{
		Type:       domain.RouterSwitch,
		ResultName: resultName,
	}
}

// SwitchRouterConfig configures SwitchRouter.
// Operand defaults to "@input"; a nil DefaultExitUUID serializes as null.
type SwitchRouterConfig struct {
	Operand         string
	DefaultExitUUID *string
	ResultName      string
}

// SwitchRouter builds a switch router over cases, preserving their order.
func SwitchRouter(cases []domain.Case, cfg SwitchRouterConfig) domain.SwitchRouter {
	out := make([]domain.Case, len(cases))
	for i, c := range cases {
		c.Arguments = cloneSlice(c.Arguments)
		out[i] = c
	}

	var def *string
	if cfg.DefaultExitUUID != nil {
		def = domain.Ptr(*cfg.DefaultExitUUID)
	}
	return domain.SwitchRouter{
		BaseRouter:      Router(cfg.ResultName),
		Operand:         or(cfg.Operand, domain.InputOperand),
		Cases:           out,
		DefaultExitUUID: def,
	}
}
