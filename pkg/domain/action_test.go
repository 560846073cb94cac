package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flowgraph/pkg/domain"
)

func TestAction_MarshalCarriesType(t *testing.T) {
	data, err := json.Marshal(domain.SendMsg{UUID: "send_msg-0", Text: "Hey!"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"send_msg","uuid":"send_msg-0","text":"Hey!","all_urns":false}`, string(data))
}

func TestDecodeAction_AllKinds(t *testing.T) {
	actions := []domain.Action{
		domain.SendMsg{UUID: "1", Text: "hi", AllURNs: true},
		domain.SendEmail{UUID: "2", Subject: "s", Body: "b", Addresses: []string{"a@b.c"}},
		domain.CallWebhook{UUID: "3", URL: "https://x", Method: "POST", Headers: map[string]string{"A": "B"}},
		domain.StartSession{UUID: "4", Groups: []domain.Group{{UUID: "g", Name: "G"}}, Contacts: []domain.Contact{}, Flow: domain.FlowRef{UUID: "f", Name: "F"}},
		domain.BroadcastMsg{UUID: "5", Groups: []domain.Group{}, Contacts: []domain.Contact{{UUID: "c", Name: "C"}}, Text: "t"},
		domain.ChangeGroups{UUID: "6", Groups: []domain.Group{{UUID: "g", Name: "G"}}},
		domain.RemoveFromGroups{UUID: "7", Groups: []domain.Group{}, AllGroups: true},
		domain.SetContactName{UUID: "8", Name: "Jane"},
		domain.SetContactField{UUID: "9", Field: domain.Field{Key: "age", Name: "Age"}, Value: "25"},
		domain.SetContactLanguage{UUID: "10", Language: "eng"},
		domain.SetContactChannel{UUID: "11", Channel: domain.Channel{UUID: "11", Name: "Twilio"}},
		domain.SetRunResult{UUID: "12", Name: "Name", Value: "Grace"},
		domain.AddLabels{UUID: "13", Labels: []domain.Label{{UUID: "l", Name: "L"}}},
		domain.StartFlow{UUID: "14", Flow: domain.FlowRef{UUID: "f", Name: "F"}},
	}

	for _, a := range actions {
		t.Run(string(a.Type()), func(t *testing.T) {
			assert.True(t, a.Type().IsAction())

			data, err := json.Marshal(a)
			require.NoError(t, err)

			back, err := domain.DecodeAction(data)
			require.NoError(t, err)
			assert.Equal(t, a, back)
			assert.Equal(t, a.ActionUUID(), back.ActionUUID())
		})
	}
}

func TestDecodeAction_UnknownType(t *testing.T) {
	_, err := domain.DecodeAction([]byte(`{"type":"launch_rocket","uuid":"x"}`))
	assert.ErrorIs(t, err, domain.ErrUnknownActionType)

	_, err = domain.DecodeAction([]byte(`not json`))
	assert.Error(t, err)
}

func TestActionFromMap(t *testing.T) {
	a, err := domain.ActionFromMap(map[string]any{
		"type":  "set_contact_field",
		"uuid":  "set_contact_field-0",
		"field": map[string]any{"key": "age", "name": "Age"},
		"value": 25,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SetContactField{
		UUID:  "set_contact_field-0",
		Field: domain.Field{Key: "age", Name: "Age"},
		Value: "25",
	}, a)

	_, err = domain.ActionFromMap(map[string]any{"uuid": "x"})
	assert.ErrorIs(t, err, domain.ErrUnknownActionType)
}

func TestCallWebhook_HeadersPresence(t *testing.T) {
	for name, tc := range map[string]struct {
		in      string
		headers bool
	}{
		"Empty":  {in: `{"type":"call_webhook","uuid":"w","url":"http://x","method":"GET","headers":{}}`, headers: true},
		"Absent": {in: `{"type":"call_webhook","uuid":"w","url":"http://x","method":"GET"}`, headers: false},
	} {
		t.Run(name, func(t *testing.T) {
			a, err := domain.DecodeAction([]byte(tc.in))
			require.NoError(t, err)

			out, err := json.Marshal(a)
			require.NoError(t, err)
			var doc map[string]any
			require.NoError(t, json.Unmarshal(out, &doc))
			_, has := doc["headers"]
			assert.Equal(t, tc.headers, has)
		})
	}
}
