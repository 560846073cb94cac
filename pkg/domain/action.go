package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Action is a single effect performed when a node executes.
// The set of implementations is closed; each one serializes with its
// "type" discriminator.
type Action interface {
	Type() Type
	ActionUUID() string
	isAction()
}

// SendMsg sends a message to the contact.
type SendMsg struct {
	UUID    string `json:"uuid"`
	Text    string `json:"text"`
	AllURNs bool   `json:"all_urns"`
}

// SendEmail sends an email to a fixed list of addresses.
type SendEmail struct {
	UUID      string   `json:"uuid"`
	Subject   string   `json:"subject"`
	Body      string   `json:"body"`
	Addresses []string `json:"addresses"`
}

// CallWebhook calls an external URL; its outcome is exposed as @run.webhook.
type CallWebhook struct {
	UUID    string            `json:"uuid"`
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers,omitzero"`
	Body    string            `json:"body,omitempty"`
}

// StartSession starts a flow for other contacts and groups.
type StartSession struct {
	UUID     string    `json:"uuid"`
	Groups   []Group   `json:"groups"`
	Contacts []Contact `json:"contacts"`
	Flow     FlowRef   `json:"flow"`
}

// BroadcastMsg sends a message to other contacts and groups.
type BroadcastMsg struct {
	UUID     string    `json:"uuid"`
	Groups   []Group   `json:"groups"`
	Contacts []Contact `json:"contacts"`
	Text     string    `json:"text"`
}

// ChangeGroups adds the contact to groups.
type ChangeGroups struct {
	UUID   string  `json:"uuid"`
	Groups []Group `json:"groups"`
}

// RemoveFromGroups removes the contact from groups, or from every group
// when AllGroups is set.
type RemoveFromGroups struct {
	UUID      string  `json:"uuid"`
	Groups    []Group `json:"groups"`
	AllGroups bool    `json:"all_groups"`
}

// SetContactName updates the contact's name property.
type SetContactName struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// SetContactField updates a custom contact field.
type SetContactField struct {
	UUID  string `json:"uuid"`
	Field Field  `json:"field"`
	Value string `json:"value"`
}

// SetContactLanguage updates the contact's preferred language (ISO 639-3).
type SetContactLanguage struct {
	UUID     string `json:"uuid"`
	Language string `json:"language"`
}

// SetContactChannel updates the contact's preferred channel.
type SetContactChannel struct {
	UUID    string  `json:"uuid"`
	Channel Channel `json:"channel"`
}

// SetRunResult saves a named result on the current run.
type SetRunResult struct {
	UUID     string `json:"uuid"`
	Name     string `json:"name"`
	Value    string `json:"value"`
	Category string `json:"category"`
}

// AddLabels labels the last input message.
type AddLabels struct {
	UUID   string  `json:"uuid"`
	Labels []Label `json:"labels"`
}

// StartFlow enters a child flow; the parent resumes when it completes or expires.
type StartFlow struct {
	UUID string  `json:"uuid"`
	Flow FlowRef `json:"flow"`
}

func (SendMsg) Type() Type            { return TypeSendMsg }
func (SendEmail) Type() Type          { return TypeSendEmail }
func (CallWebhook) Type() Type        { return TypeCallWebhook }
func (StartSession) Type() Type       { return TypeStartSession }
func (BroadcastMsg) Type() Type       { return TypeSendBroadcast }
func (ChangeGroups) Type() Type       { return TypeAddContactGroups }
func (RemoveFromGroups) Type() Type   { return TypeRemoveContactGroups }
func (SetContactName) Type() Type     { return TypeSetContactName }
func (SetContactField) Type() Type    { return TypeSetContactField }
func (SetContactLanguage) Type() Type { return TypeSetContactLanguage }
func (SetContactChannel) Type() Type  { return TypeSetContactChannel }
func (SetRunResult) Type() Type       { return TypeSetRunResult }
func (AddLabels) Type() Type          { return TypeAddInputLabels }
func (StartFlow) Type() Type          { return TypeStartFlow }

func (a SendMsg) ActionUUID() string            { return a.UUID }
func (a SendEmail) ActionUUID() string          { return a.UUID }
func (a CallWebhook) ActionUUID() string        { return a.UUID }
func (a StartSession) ActionUUID() string       { return a.UUID }
func (a BroadcastMsg) ActionUUID() string       { return a.UUID }
func (a ChangeGroups) ActionUUID() string       { return a.UUID }
func (a RemoveFromGroups) ActionUUID() string   { return a.UUID }
func (a SetContactName) ActionUUID() string     { return a.UUID }
func (a SetContactField) ActionUUID() string    { return a.UUID }
func (a SetContactLanguage) ActionUUID() string { return a.UUID }
func (a SetContactChannel) ActionUUID() string  { return a.UUID }
func (a SetRunResult) ActionUUID() string       { return a.UUID }
func (a AddLabels) ActionUUID() string          { return a.UUID }
func (a StartFlow) ActionUUID() string          { return a.UUID }

func (SendMsg) isAction()            {}
func (SendEmail) isAction()          {}
func (CallWebhook) isAction()        {}
func (StartSession) isAction()       {}
func (BroadcastMsg) isAction()       {}
func (ChangeGroups) isAction()       {}
func (RemoveFromGroups) isAction()   {}
func (SetContactName) isAction()     {}
func (SetContactField) isAction()    {}
func (SetContactLanguage) isAction() {}
func (SetContactChannel) isAction()  {}
func (SetRunResult) isAction()       {}
func (AddLabels) isAction()          {}
func (StartFlow) isAction()          {}

func (a SendMsg) MarshalJSON() ([]byte, error) {
	type plain SendMsg
	return marshalTyped(a.Type(), plain(a))
}

func (a SendEmail) MarshalJSON() ([]byte, error) {
	type plain SendEmail
	return marshalTyped(a.Type(), plain(a))
}

func (a CallWebhook) MarshalJSON() ([]byte, error) {
	type plain CallWebhook
	return marshalTyped(a.Type(), plain(a))
}

func (a StartSession) MarshalJSON() ([]byte, error) {
	type plain StartSession
	return marshalTyped(a.Type(), plain(a))
}

func (a BroadcastMsg) MarshalJSON() ([]byte, error) {
	type plain BroadcastMsg
	return marshalTyped(a.Type(), plain(a))
}

func (a ChangeGroups) MarshalJSON() ([]byte, error) {
	type plain ChangeGroups
	return marshalTyped(a.Type(), plain(a))
}

func (a RemoveFromGroups) MarshalJSON() ([]byte, error) {
	type plain RemoveFromGroups
	return marshalTyped(a.Type(), plain(a))
}

func (a SetContactName) MarshalJSON() ([]byte, error) {
	type plain SetContactName
	return marshalTyped(a.Type(), plain(a))
}

func (a SetContactField) MarshalJSON() ([]byte, error) {
	type plain SetContactField
	return marshalTyped(a.Type(), plain(a))
}

func (a SetContactLanguage) MarshalJSON() ([]byte, error) {
	type plain SetContactLanguage
	return marshalTyped(a.Type(), plain(a))
}

func (a SetContactChannel) MarshalJSON() ([]byte, error) {
	type plain SetContactChannel
	return marshalTyped(a.Type(), plain(a))
}

func (a SetRunResult) MarshalJSON() ([]byte, error) {
	type plain SetRunResult
	return marshalTyped(a.Type(), plain(a))
}

func (a AddLabels) MarshalJSON() ([]byte, error) {
	type plain AddLabels
	return marshalTyped(a.Type(), plain(a))
}

func (a StartFlow) MarshalJSON() ([]byte, error) {
	type plain StartFlow
	return marshalTyped(a.Type(), plain(a))
}

// marshalTyped encodes v and prepends the "type" discriminator.
// v must not itself implement json.Marshaler on Action, or this recurses.
func marshalTyped(t Type, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	head, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	buf.Write(head)
	if len(body) > 2 {
		buf.WriteByte(',')
		buf.Write(body[1:])
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

type actionKind struct {
	fromJSON func([]byte) (Action, error)
	fromMap  func(map[string]any) (Action, error)
}

func kindOf[T Action]() actionKind {
	return actionKind{
		fromJSON: func(data []byte) (Action, error) {
			var a T
			if err := json.Unmarshal(data, &a); err != nil {
				return nil, err
			}
			return a, nil
		},
		fromMap: func(m map[string]any) (Action, error) {
			var a T
			dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
				TagName:          "json",
				WeaklyTypedInput: true,
				Result:           &a,
			})
			if err != nil {
				return nil, err
			}
			if err := dec.Decode(m); err != nil {
				return nil, err
			}
			return a, nil
		},
	}
}

var actionKinds = map[Type]actionKind{
	TypeSendMsg:             kindOf[SendMsg](),
	TypeSendEmail:           kindOf[SendEmail](),
	TypeCallWebhook:         kindOf[CallWebhook](),
	TypeStartSession:        kindOf[StartSession](),
	TypeSendBroadcast:       kindOf[BroadcastMsg](),
	TypeAddContactGroups:    kindOf[ChangeGroups](),
	TypeRemoveContactGroups: kindOf[RemoveFromGroups](),
	TypeSetContactName:      kindOf[SetContactName](),
	TypeSetContactField:     kindOf[SetContactField](),
	TypeSetContactLanguage:  kindOf[SetContactLanguage](),
	TypeSetContactChannel:   kindOf[SetContactChannel](),
	TypeSetRunResult:        kindOf[SetRunResult](),
	TypeAddInputLabels:      kindOf[AddLabels](),
	TypeStartFlow:           kindOf[StartFlow](),
}

// DecodeAction reconstructs an Action from its JSON form, dispatching on "type".
func DecodeAction(data []byte) (Action, error) {
	var head struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("failed to read action type: %w", err)
	}
	kind, ok := actionKinds[head.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownActionType, head.Type)
	}
	a, err := kind.fromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s action: %w", head.Type, err)
	}
	return a, nil
}

// ActionFromMap reconstructs an Action from a generic map, as produced by
// YAML decoding or tool-call arguments.
func ActionFromMap(m map[string]any) (Action, error) {
	raw, _ := m["type"].(string)
	kind, ok := actionKinds[Type(raw)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownActionType, raw)
	}
	a, err := kind.fromMap(m)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s action: %w", raw, err)
	}
	return a, nil
}
