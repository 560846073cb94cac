package dsl

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/flowgraph/pkg/assets"
	"github.com/aretw0/flowgraph/pkg/domain"
)

// SendMsgConfig configures SendMsg. Zero fields take defaults.
type SendMsgConfig struct {
	UUID    string
	Text    string
	AllURNs bool
}

// SendMsg builds a send_msg action.
// Defaults: uuid "send_msg-0", text "Hey!".
func SendMsg(cfg SendMsgConfig) domain.SendMsg {
	return domain.SendMsg{
		UUID:    or(cfg.UUID, "send_msg-0"),
		Text:    or(cfg.Text, "Hey!"),
		AllURNs: cfg.AllURNs,
	}
}

// SendEmailConfig configures SendEmail.
type SendEmailConfig struct {
	UUID      string
	Subject   string
	Body      string
	Addresses []string
}

// SendEmail builds a send_email action.
func SendEmail(cfg SendEmailConfig) domain.SendEmail {
	addresses := cfg.Addresses
	if addresses == nil {
		addresses = []string{"jane@example.com"}
	}
	return domain.SendEmail{
		UUID:      or(cfg.UUID, "send_email-0"),
		Subject:   or(cfg.Subject, "New Sign Up"),
		Body:      or(cfg.Body, "@run.results.name just signed up."),
		Addresses: cloneSlice(addresses),
	}
}

// CallWebhookConfig configures CallWebhook.
type CallWebhookConfig struct {
	UUID    string
	URL     string
	Method  string
	Headers map[string]string
	Body    string
}

// CallWebhook builds a call_webhook action.
// Defaults: uuid "call_webhook-0", url "https://www.example.com", method GET.
func CallWebhook(cfg CallWebhookConfig) domain.CallWebhook {
	var headers map[string]string
	if cfg.Headers != nil {
		headers = make(map[string]string, len(cfg.Headers))
		for k, v := range cfg.Headers {
			headers[k] = v
		}
	}
	return domain.CallWebhook{
		UUID:    or(cfg.UUID, "call_webhook-0"),
		URL:     or(cfg.URL, "https://www.example.com"),
		Method:  strings.ToUpper(or(cfg.Method, MethodGet)),
		Headers: headers,
		Body:    cfg.Body,
	}
}

// HTTP methods accepted by webhook actions.
const (
	MethodGet    = "GET"
	MethodPost   = "POST"
	MethodPut    = "PUT"
	MethodDelete = "DELETE"
)

// StartSessionConfig configures StartSession.
type StartSessionConfig struct {
	UUID     string
	Groups   []domain.Group
	Contacts []domain.Contact
	Flow     *domain.FlowRef
}

// StartSession builds a start_session action.
func StartSession(cfg StartSessionConfig) domain.StartSession {
	flow := domain.FlowRef{UUID: "flow_uuid", Name: "Flow to Start"}
	if cfg.Flow != nil {
		flow = *cfg.Flow
	}
	return domain.StartSession{
		UUID:     or(cfg.UUID, "start-session-0"),
		Groups:   orSlice(cfg.Groups, defaultRecipientGroups),
		Contacts: orSlice(cfg.Contacts, defaultRecipientContacts),
		Flow:     flow,
	}
}

// BroadcastMsgConfig configures BroadcastMsg.
type BroadcastMsgConfig struct {
	UUID     string
	Groups   []domain.Group
	Contacts []domain.Contact
	Text     string
}

// BroadcastMsg builds a send_broadcast action.
func BroadcastMsg(cfg BroadcastMsgConfig) domain.BroadcastMsg {
	return domain.BroadcastMsg{
		UUID:     or(cfg.UUID, "send_broadcast-0"),
		Groups:   orSlice(cfg.Groups, defaultRecipientGroups),
		Contacts: orSlice(cfg.Contacts, defaultRecipientContacts),
		Text:     or(cfg.Text, "Hello World"),
	}
}

var defaultRecipientGroups = []domain.Group{
	{UUID: "group-0", Name: "Cat Fanciers"},
	{UUID: "group-1", Name: "Cat Facts"},
}

var defaultRecipientContacts = []domain.Contact{
	{UUID: "contact-0", Name: "Kellan Alexander"},
	{UUID: "contact-1", Name: "Norbert Kwizera"},
	{UUID: "contact-2", Name: "Rowan Seymour"},
}

// ChangeGroupsConfig configures AddGroups and RemoveGroups.
// A nil Groups falls back to the group fixture.
type ChangeGroupsConfig struct {
	UUID   string
	Groups []domain.Group
}

// AddGroups builds an add_contact_groups action.
func AddGroups(cfg ChangeGroupsConfig) domain.ChangeGroups {
	return domain.ChangeGroups{
		UUID:   or(cfg.UUID, "add_contact_groups-0"),
		Groups: groupsOrFixture(cfg.Groups),
	}
}

// RemoveGroups builds a remove_contact_groups action that removes the
// contact from the listed groups only.
func RemoveGroups(cfg ChangeGroupsConfig) domain.RemoveFromGroups {
	return domain.RemoveFromGroups{
		UUID:      or(cfg.UUID, "remove_contact_groups-0"),
		Groups:    groupsOrFixture(cfg.Groups),
		AllGroups: false,
	}
}

// StartFlowConfig configures StartFlowAction.
type StartFlowConfig struct {
	UUID string
	Flow *domain.FlowRef
}

// StartFlowAction builds a start_flow action. The flow name is trimmed and
// capitalized. Defaults: uuid "start_flow-0", flow "Colors" / "colors-0".
func StartFlowAction(cfg StartFlowConfig) domain.StartFlow {
	flow := domain.FlowRef{Name: "Colors", UUID: "colors-0"}
	if cfg.Flow != nil {
		flow = *cfg.Flow
	}
	return domain.StartFlow{
		UUID: or(cfg.UUID, "start_flow-0"),
		Flow: domain.FlowRef{
			Name: Capitalize(strings.TrimSpace(flow.Name)),
			UUID: flow.UUID,
		},
	}
}

// SetContactNameConfig configures SetContactName.
type SetContactNameConfig struct {
	UUID string
	Name string
}

// SetContactName builds a set_contact_name action.
func SetContactName(cfg SetContactNameConfig) domain.SetContactName {
	return domain.SetContactName{
		UUID: or(cfg.UUID, "set_contact_name-0"),
		Name: or(cfg.Name, "Jane Goodall"),
	}
}

// SetContactFieldConfig configures SetContactField.
type SetContactFieldConfig struct {
	UUID  string
	Field *domain.Field
	Value string
}

// SetContactField builds a set_contact_field action.
func SetContactField(cfg SetContactFieldConfig) domain.SetContactField {
	field := domain.Field{Key: "age", Name: "Age"}
	if cfg.Field != nil {
		field = *cfg.Field
	}
	return domain.SetContactField{
		UUID:  or(cfg.UUID, "set_contact_field-0"),
		Field: field,
		Value: or(cfg.Value, "25"),
	}
}

// SetContactLanguageConfig configures SetContactLanguage.
type SetContactLanguageConfig struct {
	UUID     string
	Language string
}

// SetContactLanguage builds a set_contact_language action.
func SetContactLanguage(cfg SetContactLanguageConfig) domain.SetContactLanguage {
	return domain.SetContactLanguage{
		UUID:     or(cfg.UUID, "set_contact_language-0"),
		Language: or(cfg.Language, "eng"),
	}
}

// SetContactChannelConfig configures SetContactChannel.
// ChannelUUID defaults to the action uuid.
type SetContactChannelConfig struct {
	UUID        string
	ChannelUUID string
	ChannelName string
}

// SetContactChannel builds a set_contact_channel action.
func SetContactChannel(cfg SetContactChannelConfig) domain.SetContactChannel {
	uuid := or(cfg.UUID, "set_contact_channel-0")
	return domain.SetContactChannel{
		UUID: uuid,
		Channel: domain.Channel{
			UUID: or(cfg.ChannelUUID, uuid),
			Name: or(cfg.ChannelName, "Twilio Channel"),
		},
	}
}

// SetRunResultConfig configures SetRunResult. Category has no default.
type SetRunResultConfig struct {
	UUID     string
	Name     string
	Value    string
	Category string
}

// SetRunResult builds a set_run_result action.
func SetRunResult(cfg SetRunResultConfig) domain.SetRunResult {
	return domain.SetRunResult{
		UUID:     or(cfg.UUID, "set_run_result-0"),
		Name:     or(cfg.Name, "Name"),
		Value:    or(cfg.Value, "Grace"),
		Category: cfg.Category,
	}
}

// AddLabels builds an add_input_labels action. Its uuid is derived from
// the label count so repeated calls with the same labels are equal.
func AddLabels(labels []domain.Label) domain.AddLabels {
	return domain.AddLabels{
		UUID:   fmt.Sprintf("labels-action-uuid-%d", len(labels)),
		Labels: cloneSlice(labels),
	}
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func groupsOrFixture(groups []domain.Group) []domain.Group {
	if groups == nil {
		return assets.Groups()
	}
	return cloneSlice(groups)
}

func or(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func orSlice[T any](value, fallback []T) []T {
	if value == nil {
		return cloneSlice(fallback)
	}
	return cloneSlice(value)
}

// cloneSlice copies s, returning an empty (never nil) slice for nil input
// so serialized lists are [] rather than null.
func cloneSlice[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}
