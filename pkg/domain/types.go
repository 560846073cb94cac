package domain

// Type identifies an action kind or an editor node kind.
// Action types double as the "type" discriminator of serialized actions;
// split types only ever appear in UI metadata.
type Type string

// Action types.
const (
	TypeSendMsg             Type = "send_msg"
	TypeSendEmail           Type = "send_email"
	TypeSendBroadcast       Type = "send_broadcast"
	TypeCallWebhook         Type = "call_webhook"
	TypeStartSession        Type = "start_session"
	TypeAddContactGroups    Type = "add_contact_groups"
	TypeRemoveContactGroups Type = "remove_contact_groups"
	TypeSetContactName      Type = "set_contact_name"
	TypeSetContactField     Type = "set_contact_field"
	TypeSetContactLanguage  Type = "set_contact_language"
	TypeSetContactChannel   Type = "set_contact_channel"
	TypeSetRunResult        Type = "set_run_result"
	TypeAddInputLabels      Type = "add_input_labels"
	TypeStartFlow           Type = "start_flow"
)

// Node (split) types used by the editor.
const (
	TypeWaitForResponse   Type = "wait_for_response"
	TypeSplitByExpression Type = "split_by_expression"
	TypeSplitByGroups     Type = "split_by_groups"
	TypeSplitBySubflow    Type = "split_by_subflow"
	TypeSplitByWebhook    Type = "split_by_webhook"
	TypeSplitByRunResult  Type = "split_by_run_result"
	TypeSplitByRandom     Type = "split_by_random"
)

// IsAction reports whether t names an action kind.
func (t Type) IsAction() bool {
	_, ok := actionKinds[t]
	return ok
}

// IsSplit reports whether t names a router-bearing editor node kind.
func (t Type) IsSplit() bool {
	switch t {
	case TypeWaitForResponse, TypeSplitByExpression, TypeSplitByGroups,
		TypeSplitBySubflow, TypeSplitByWebhook, TypeSplitByRunResult,
		TypeSplitByRandom:
		return true
	}
	return false
}

// FlowType is the channel family a flow is authored for.
type FlowType string

const (
	FlowTypeMessaging FlowType = "messaging"
	FlowTypeVoice     FlowType = "voice"
)

// AssetType classifies externally supplied asset records.
type AssetType string

const (
	AssetGroup    AssetType = "group"
	AssetLabel    AssetType = "label"
	AssetLanguage AssetType = "language"
	AssetField    AssetType = "field"
	AssetFlow     AssetType = "flow"
	AssetChannel  AssetType = "channel"
	AssetContact  AssetType = "contact"
)
