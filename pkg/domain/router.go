package domain

import (
	"encoding/json"
	"fmt"
)

// RouterType is the discriminator of a router.
type RouterType string

const (
	RouterSwitch RouterType = "switch"
	RouterRandom RouterType = "random"
)

// Operator is the test a Case applies to the router operand.
type Operator string

const (
	OpHasAnyWord       Operator = "has_any_word"
	OpHasAllWords      Operator = "has_all_words"
	OpHasPhrase        Operator = "has_phrase"
	OpHasOnlyPhrase    Operator = "has_only_phrase"
	OpHasBeginning     Operator = "has_beginning"
	OpHasText          Operator = "has_text"
	OpHasPattern       Operator = "has_pattern"
	OpHasNumber        Operator = "has_number"
	OpHasNumberBetween Operator = "has_number_between"
	OpHasNumberLT      Operator = "has_number_lt"
	OpHasNumberLTE     Operator = "has_number_lte"
	OpHasNumberEQ      Operator = "has_number_eq"
	OpHasNumberGTE     Operator = "has_number_gte"
	OpHasNumberGT      Operator = "has_number_gt"
	OpHasDate          Operator = "has_date"
	OpHasDateLT        Operator = "has_date_lt"
	OpHasDateEQ        Operator = "has_date_eq"
	OpHasDateGT        Operator = "has_date_gt"
	OpHasPhone         Operator = "has_phone"
	OpHasEmail         Operator = "has_email"
	OpHasValue         Operator = "has_value"
	OpHasError         Operator = "has_error"
	OpHasRunStatus     Operator = "has_run_status"
	OpHasGroup         Operator = "has_group"
	OpHasWaitTimedOut  Operator = "has_wait_timed_out"
	OpIsTextEQ         Operator = "is_text_eq"
	OpIsError          Operator = "is_error"
)

// operatorArity is the number of arguments each operator expects.
var operatorArity = map[Operator]int{
	OpHasAnyWord:       1,
	OpHasAllWords:      1,
	OpHasPhrase:        1,
	OpHasOnlyPhrase:    1,
	OpHasBeginning:     1,
	OpHasText:          0,
	OpHasPattern:       1,
	OpHasNumber:        0,
	OpHasNumberBetween: 2,
	OpHasNumberLT:      1,
	OpHasNumberLTE:     1,
	OpHasNumberEQ:      1,
	OpHasNumberGTE:     1,
	OpHasNumberGT:      1,
	OpHasDate:          0,
	OpHasDateLT:        1,
	OpHasDateEQ:        1,
	OpHasDateGT:        1,
	OpHasPhone:         0,
	OpHasEmail:         0,
	OpHasValue:         0,
	OpHasError:         0,
	OpHasRunStatus:     1,
	OpHasGroup:         1,
	OpHasWaitTimedOut:  0,
	OpIsTextEQ:         1,
	OpIsError:          0,
}

// Valid reports whether op is a known operator.
func (op Operator) Valid() bool {
	_, ok := operatorArity[op]
	return ok
}

// Arity returns the expected argument count, or -1 for unknown operators.
func (op Operator) Arity() int {
	n, ok := operatorArity[op]
	if !ok {
		return -1
	}
	return n
}

// Case is one conditional branch of a switch router.
type Case struct {
	UUID      string   `json:"uuid"`
	Type      Operator `json:"type"`
	Arguments []string `json:"arguments"`
	ExitUUID  string   `json:"exit_uuid"`
}

// Router selects the exit taken after a node's actions run.
// Implementations are BaseRouter and SwitchRouter.
type Router interface {
	RouterType() RouterType
	Result() string
	isRouter()
}

// BaseRouter carries the fields shared by every router.
type BaseRouter struct {
	Type RouterType `json:"type"`
	// An empty result name is not written; editors treat "" and absent
	// alike.
	ResultName string `json:"result_name,omitempty"`
}

func (r BaseRouter) RouterType() RouterType { return r.Type }
func (r BaseRouter) Result() string         { return r.ResultName }
func (BaseRouter) isRouter()                {}

// SwitchRouter evaluates Cases in order against Operand; the first match
// wins. DefaultExitUUID, when set, is taken if nothing matches. It is
// serialized as null when unset.
type SwitchRouter struct {
	BaseRouter
	Operand         string  `json:"operand"`
	Cases           []Case  `json:"cases"`
	DefaultExitUUID *string `json:"default_exit_uuid"`
}

// AsSwitch returns the router as a SwitchRouter when it is one.
func AsSwitch(r Router) (SwitchRouter, bool) {
	switch v := r.(type) {
	case SwitchRouter:
		return v, true
	case *SwitchRouter:
		if v != nil {
			return *v, true
		}
	}
	return SwitchRouter{}, false
}

// DecodeRouter reconstructs a Router from JSON. A document carrying
// "cases" or "operand" decodes as a SwitchRouter; anything else as a
// BaseRouter. "null" yields a nil Router.
func DecodeRouter(data []byte) (Router, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("failed to read router: %w", err)
	}

	var head BaseRouter
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("failed to read router type: %w", err)
	}
	if head.Type != RouterSwitch && head.Type != RouterRandom {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRouterType, head.Type)
	}

	_, hasCases := keys["cases"]
	_, hasOperand := keys["operand"]
	if !hasCases && !hasOperand {
		return head, nil
	}

	var sw SwitchRouter
	if err := json.Unmarshal(data, &sw); err != nil {
		return nil, fmt.Errorf("failed to decode switch router: %w", err)
	}
	return sw, nil
}
