package wire

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/ccpubsub/internal/model"
)

func TestDecodeDropsFramesWithoutDiscriminators(t *testing.T) {
	tests := []struct {
		name  string
		frame string
	}{
		{name: "not json", frame: "hello"},
		{name: "empty", frame: ""},
		{name: "null", frame: "null"},
		{name: "array", frame: `[{"domain":"direct","type":"whoami"}]`},
		{name: "string", frame: `"direct"`},
		{name: "missing domain", frame: `{"type":"whoami","payload":{"connectionID":"c1"}}`},
		{name: "missing type", frame: `{"domain":"direct","payload":{"connectionID":"c1"}}`},
		{name: "non-string domain", frame: `{"domain":1,"type":"whoami"}`},
		{name: "unknown pair", frame: `{"domain":"direct","type":"effect-request","payload":{}}`},
		{name: "unknown type", frame: `{"domain":"pub","type":"something-new","payload":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, ok := Decode([]byte(tt.frame))
			assert.False(t, ok)
			assert.Nil(t, event)
		})
	}
}

func TestDecodeDirectEvents(t *testing.T) {
	event, ok := Decode([]byte(`{"domain":"direct","type":"whoami","payload":{"connectionID":"conn-1"}}`))
	require.True(t, ok)
	assert.Equal(t, model.WhoAmIEvent{ConnectionID: "conn-1"}, event)

	event, ok = Decode([]byte(`{"domain":"direct","type":"login-success","payload":{"token":"a.b.c"}}`))
	require.True(t, ok)
	assert.Equal(t, model.LoginSuccessEvent{Token: "a.b.c"}, event)

	event, ok = Decode([]byte(`{"domain":"direct","type":"subscription-result","payload":{"success":["pub/u1"],"failure":[]}}`))
	require.True(t, ok)
	assert.Equal(t, model.SubscriptionResultEvent{Success: []string{"pub/u1"}, Failure: []string{}}, event)
}

func TestDecodeWithoutPayload(t *testing.T) {
	event, ok := Decode([]byte(`{"domain":"pub","type":"game-session-stop"}`))
	require.True(t, ok)
	assert.Equal(t, model.KeyGameSessionStop, event.Key())
}

func TestDecodeEffectRequest(t *testing.T) {
	frame := `{
		"domain": "pub",
		"type": "effect-request",
		"payload": {
			"effect": {"effectID": "kill", "type": "game", "name": {"public": "Kill Player", "sort": "kill"}, "image": "x.png"},
			"target": {"ccUID": "u1", "image": "", "name": "Streamer", "profile": "twitch", "originID": "o1"},
			"requester": {"ccUID": "u2", "image": "", "name": "Viewer", "profile": "twitch", "originID": "o2"},
			"sourceDetails": {"type": "twitch-channel-reward", "name": "Kill", "rewardID": "r", "redemptionID": "d", "twitchID": "t", "cost": 100},
			"game": {"gamePackID": "GP", "platform": "PC", "name": "Game"},
			"gamePack": {"gamePackID": "GP", "platform": "PC", "name": "Game Pack"},
			"parameters": {"color": {"value": "#ff0000", "type": "hex-color", "title": "Color"}},
			"quantity": 2,
			"requestID": "R1",
			"timestamp": 1700000000.5
		}
	}`

	event, ok := Decode([]byte(frame))
	require.True(t, ok)

	req, isReq := event.(model.EffectRequestEvent)
	require.True(t, isReq)
	assert.Equal(t, "R1", req.RequestID)
	assert.Equal(t, "Kill Player", PublicEffectName(req.Effect.Name))
	assert.Equal(t, model.EffectKindGame, req.Effect.Type)
	assert.Equal(t, "Viewer", req.RequesterName())
	assert.Equal(t, 100, req.SourceDetails.Cost)
	assert.Equal(t, "#ff0000", req.Parameters["color"].Value)
	assert.Equal(t, 2, req.Quantity)
}

func TestDecodeIrregularEffectRequests(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		check   func(t *testing.T, req model.EffectRequestEvent)
	}{
		{
			name:    "fractional quantity",
			payload: `{"requestID":"R1","quantity":1.5}`,
			check: func(t *testing.T, req model.EffectRequestEvent) {
				assert.Equal(t, 0, req.Quantity)
			},
		},
		{
			name:    "numeric effect name",
			payload: `{"requestID":"R2","effect":{"effectID":"kill","name":42}}`,
			check: func(t *testing.T, req model.EffectRequestEvent) {
				assert.Equal(t, "kill", req.Effect.EffectID)
				assert.Equal(t, "42", PublicEffectName(req.Effect.Name))
			},
		},
		{
			name:    "string timestamp",
			payload: `{"requestID":"R3","timestamp":"1700000000","requester":{"name":"Viewer"}}`,
			check: func(t *testing.T, req model.EffectRequestEvent) {
				assert.Zero(t, req.Timestamp)
				assert.Equal(t, "Viewer", req.RequesterName())
			},
		},
		{
			name:    "fractional gift cost",
			payload: `{"requestID":"R4","sourceDetails":{"type":"tiktok-gift","cost":2.5}}`,
			check: func(t *testing.T, req model.EffectRequestEvent) {
				require.NotNil(t, req.SourceDetails)
				assert.Equal(t, "tiktok-gift", req.SourceDetails.Type)
				assert.Equal(t, 0, req.SourceDetails.Cost)
			},
		},
		{
			name:    "effect name object with numeric public",
			payload: `{"requestID":"R5","effect":{"name":{"public":7,"sort":"s"}}}`,
			check: func(t *testing.T, req model.EffectRequestEvent) {
				assert.Equal(t, "", PublicEffectName(req.Effect.Name))
				assert.Equal(t, "s", req.Effect.Name.Sort)
			},
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, ok := Decode([]byte(`{"domain":"pub","type":"effect-request","payload":` + tt.payload + `}`))
			require.True(t, ok)

			req, isReq := event.(model.EffectRequestEvent)
			require.True(t, isReq)
			assert.Equal(t, fmt.Sprintf("R%d", i+1), req.RequestID)
			tt.check(t, req)
		})
	}
}

func TestDecodeKeepsEventWithIrregularPayload(t *testing.T) {
	event, ok := Decode([]byte(`{"domain":"direct","type":"whoami","payload":{"connectionID":42}}`))
	require.True(t, ok)
	assert.Equal(t, model.WhoAmIEvent{}, event)

	event, ok = Decode([]byte(`{"domain":"pub","type":"effect-request","payload":"R1"}`))
	require.True(t, ok)
	assert.Equal(t, model.KeyEffectRequest, event.Key())
}

func TestPublicEffectName(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "bare string", raw: `"Spawn Creeper"`, expected: "Spawn Creeper"},
		{name: "empty string", raw: `""`, expected: ""},
		{name: "object", raw: `{"public":"Spawn Creeper","sort":"creeper"}`, expected: "Spawn Creeper"},
		{name: "object without sort", raw: `{"public":"Heal"}`, expected: "Heal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var name model.EffectName
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &name))
			assert.Equal(t, tt.expected, PublicEffectName(name))
		})
	}
}

func TestEffectNameKeepsItsForm(t *testing.T) {
	for _, raw := range []string{`"Heal"`, `{"public":"Heal","sort":"h"}`} {
		var name model.EffectName
		require.NoError(t, json.Unmarshal([]byte(raw), &name))
		out, err := json.Marshal(name)
		require.NoError(t, err)
		assert.JSONEq(t, raw, string(out))
	}
}

func TestEncodeWhoAmI(t *testing.T) {
	data, err := Encode(model.WhoAmIRequest{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"whoami"}`, string(data))
}

func TestEncodeSubscribe(t *testing.T) {
	data, err := Encode(model.SubscribeRequest{Topics: []string{"pub/u1"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"subscribe","data":{"topics":["pub/u1"]}}`, string(data))
}

func TestEncodeEffectResponse(t *testing.T) {
	req := model.RPCRequest{
		Token: "tok",
		Call: model.EffectResponseCall{
			ID: "call-1",
			Arg: model.EffectResponseArg{
				ID:      "arg-1",
				Request: "R1",
				Status:  model.StatusSuccess,
				Message: "",
				Stamp:   1700000000.25,
			},
		},
	}

	data, err := Encode(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"action": "rpc",
		"data": {
			"token": "tok",
			"call": {
				"id": "call-1",
				"type": "call",
				"method": "effectResponse",
				"args": [{"id": "arg-1", "request": "R1", "status": "success", "message": "", "stamp": 1700000000.25}]
			}
		}
	}`, string(data))
}

func TestEncodeTimedEffectResponse(t *testing.T) {
	arg := model.EffectResponseArg{
		ID:            "arg-1",
		Request:       "R1",
		Status:        model.StatusTimedBegin,
		Stamp:         1,
		TimeRemaining: 15 * time.Second,
	}

	data, err := Encode(model.RPCRequest{Token: "tok", Call: model.EffectResponseCall{ID: "c", Arg: arg}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"timeRemaining":15000`)

	arg.TimeRemaining = -time.Second
	_, err = Encode(model.RPCRequest{Token: "tok", Call: model.EffectResponseCall{ID: "c", Arg: arg}})
	assert.ErrorIs(t, err, model.ErrInvalidStatus)
}

func TestEncodeTimedResponseWithNoTimeLeft(t *testing.T) {
	for _, status := range []model.EffectStatus{model.StatusTimedBegin, model.StatusTimedPause, model.StatusTimedResume} {
		t.Run(string(status), func(t *testing.T) {
			arg := model.EffectResponseArg{ID: "arg-1", Request: "R1", Status: status, Stamp: 1}
			data, err := Encode(model.RPCRequest{Token: "tok", Call: model.EffectResponseCall{ID: "c", Arg: arg}})
			require.NoError(t, err)
			assert.Contains(t, string(data), `"timeRemaining":0`)

			req, err := DecodeRequest(data)
			require.NoError(t, err)
			decoded := req.(model.RPCRequest).Call.(model.EffectResponseCall).Arg
			assert.Equal(t, status, decoded.Status)
			assert.Zero(t, decoded.TimeRemaining)
		})
	}
}

func TestEncodeInstantResponseRejectsTimeRemaining(t *testing.T) {
	arg := model.EffectResponseArg{ID: "a", Request: "R1", Status: model.StatusFailTemporary, TimeRemaining: time.Second}
	_, err := Encode(model.RPCRequest{Token: "tok", Call: model.EffectResponseCall{ID: "c", Arg: arg}})
	assert.ErrorIs(t, err, model.ErrInvalidStatus)
}

func TestEncodeEffectReport(t *testing.T) {
	req := model.RPCRequest{
		Token: "tok",
		Call: model.EffectReportCall{
			ID: "call-1",
			Args: []model.EffectReportArg{
				{ID: "a1", Stamp: 2, IDs: []string{"kill", "heal"}, Status: model.ReportMenuHidden},
				{ID: "a2", Stamp: 2, IdentifierType: model.IdentifierCategory, IDs: []string{"items"}, Status: model.ReportMenuUnavailable},
			},
		},
	}

	data, err := Encode(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"action": "rpc",
		"data": {
			"token": "tok",
			"call": {
				"id": "call-1",
				"type": "call",
				"method": "effectReport",
				"args": [
					{"id": "a1", "stamp": 2, "ids": ["kill", "heal"], "status": "menuHidden"},
					{"id": "a2", "stamp": 2, "identifierType": "category", "ids": ["items"], "status": "menuUnavailable"}
				]
			}
		}
	}`, string(data))
}

func TestDecodeRequestRoundTrip(t *testing.T) {
	requests := []model.Request{
		model.WhoAmIRequest{},
		model.SubscribeRequest{Topics: []string{"pub/u1", "pub/u2"}},
		model.RPCRequest{Token: "tok", Call: model.EffectResponseCall{ID: "c1", Arg: model.EffectResponseArg{
			ID: "a1", Request: "R1", Status: model.StatusTimedPause, Stamp: 3, TimeRemaining: 2500 * time.Millisecond,
		}}},
		model.RPCRequest{Token: "tok", Call: model.EffectReportCall{ID: "c2", Args: []model.EffectReportArg{
			{ID: "a2", Stamp: 4, IDs: []string{"kill"}, Status: model.ReportMenuVisible},
		}}},
	}

	for _, req := range requests {
		data, err := Encode(req)
		require.NoError(t, err)
		decoded, err := DecodeRequest(data)
		require.NoError(t, err)
		assert.Equal(t, req, decoded)
	}
}

func TestDecodeRequestErrors(t *testing.T) {
	_, err := DecodeRequest([]byte(`{"action":"dance"}`))
	assert.ErrorIs(t, err, model.ErrUnknownRequest)

	_, err = DecodeRequest([]byte(`{"action":"subscribe"}`))
	assert.ErrorIs(t, err, model.ErrUnknownRequest)

	_, err = DecodeRequest([]byte(`{"action":"rpc","data":{"token":"t","call":{"id":"c","type":"call","method":"explode","args":[]}}}`))
	assert.ErrorIs(t, err, model.ErrUnknownMethod)

	_, err = DecodeRequest([]byte(`{"action":"rpc","data":{"token":"t","call":{"id":"c","type":"call","method":"effectResponse","args":[]}}}`))
	assert.Error(t, err)

	_, err = DecodeRequest([]byte(`not json`))
	assert.Error(t, err)
}

func TestEncodeEventRoundTrip(t *testing.T) {
	events := []model.Event{
		model.WhoAmIEvent{ConnectionID: "c1"},
		model.LoginSuccessEvent{Token: "a.b.c"},
		model.GameSessionStartEvent{GameSessionID: "gs1"},
		model.EffectRequestEvent{
			Effect:    model.Effect{EffectID: "heal", Type: model.EffectKindGame, Name: model.EffectName{Public: "Heal"}},
			Target:    model.User{SubjectID: "u1", Name: "Streamer", Profile: model.ProfileTwitch},
			RequestID: "R9",
			Timestamp: 10,
		},
	}

	for _, ev := range events {
		data, err := EncodeEvent(ev)
		require.NoError(t, err)
		decoded, ok := Decode(data)
		require.True(t, ok)
		assert.Equal(t, ev, decoded)
	}
}
