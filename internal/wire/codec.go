package wire

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcoot/ccpubsub/internal/model"
)

// payloadDecoders maps every known (domain, type) pair to its payload shape.
// Pairs missing from this table are dropped by Decode.
var payloadDecoders = map[model.EventKey]func(json.RawMessage) model.Event{
	model.KeyWhoAmI:             decodePayload[model.WhoAmIEvent],
	model.KeyLoginSuccess:       decodePayload[model.LoginSuccessEvent],
	model.KeySubscriptionResult: decodePayload[model.SubscriptionResultEvent],
	model.KeyGameSessionStart:   decodePayload[model.GameSessionStartEvent],
	model.KeyGameSessionStop:    decodePayload[model.GameSessionStopEvent],
	model.KeyEffectRequest:      decodePayload[model.EffectRequestEvent],
}

// decodePayload never fails. When the payload does not match T as a whole,
// its top-level fields are decoded one at a time and the ones that do not
// fit are left at their zero value.
func decodePayload[T model.Event](raw json.RawMessage) model.Event {
	var event T
	if len(raw) == 0 {
		return event
	}
	if err := json.Unmarshal(raw, &event); err == nil {
		return event
	}

	var zero T
	event = zero
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return event
	}
	for name, value := range fields {
		single, err := json.Marshal(map[string]json.RawMessage{name: value})
		if err != nil {
			continue
		}
		// type mismatches inside the field are skipped by Unmarshal itself
		_ = json.Unmarshal(single, &event)
	}
	return event
}

// Decode parses an inbound frame. It reports false, rather than an error,
// for a frame it cannot route: invalid JSON, a non-object, a missing or
// non-string discriminator, or an unknown (domain, type) pair. An
// irregular payload still yields the event with whatever fields decoded.
func Decode(data []byte) (model.Event, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, false
	}
	if _, ok := fields["domain"]; !ok {
		return nil, false
	}
	if _, ok := fields["type"]; !ok {
		return nil, false
	}

	var env eventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, false
	}

	decode, ok := payloadDecoders[model.EventKey{Domain: env.Domain, Type: env.Type}]
	if !ok {
		return nil, false
	}
	return decode(env.Payload), true
}

// Encode serializes an outbound request
func Encode(req model.Request) ([]byte, error) {
	env := requestEnvelope{Action: req.Action()}

	switch r := req.(type) {
	case model.WhoAmIRequest:
		// no data
	case model.SubscribeRequest:
		topics := r.Topics
		if topics == nil {
			topics = []string{}
		}
		data, err := json.Marshal(subscribeData{Topics: topics})
		if err != nil {
			return nil, err
		}
		env.Data = data
	case model.RPCRequest:
		call, err := encodeCall(r.Call)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(rpcData{Token: r.Token, Call: call})
		if err != nil {
			return nil, err
		}
		env.Data = data
	default:
		return nil, fmt.Errorf("%w: %T", model.ErrUnknownRequest, req)
	}

	return json.Marshal(env)
}

func encodeCall(call model.RPCCall) (callData, error) {
	var args any

	switch c := call.(type) {
	case model.EffectResponseCall:
		arg, err := encodeResponseArg(c.Arg)
		if err != nil {
			return callData{}, err
		}
		args = []effectResponseArg{arg}
	case model.EffectReportCall:
		out := make([]effectReportArg, 0, len(c.Args))
		for _, a := range c.Args {
			ids := a.IDs
			if ids == nil {
				ids = []string{}
			}
			out = append(out, effectReportArg{
				ID:             a.ID,
				Stamp:          a.Stamp,
				IdentifierType: a.IdentifierType,
				IDs:            ids,
				Status:         a.Status,
			})
		}
		args = out
	default:
		return callData{}, fmt.Errorf("%w: %T", model.ErrUnknownMethod, call)
	}

	raw, err := json.Marshal(args)
	if err != nil {
		return callData{}, err
	}
	return callData{
		ID:     call.CallID(),
		Type:   callType,
		Method: call.Method(),
		Args:   raw,
	}, nil
}

func encodeResponseArg(a model.EffectResponseArg) (effectResponseArg, error) {
	if err := a.Validate(); err != nil {
		return effectResponseArg{}, err
	}
	out := effectResponseArg{
		ID:      a.ID,
		Request: a.Request,
		Status:  a.Status,
		Message: a.Message,
		Stamp:   a.Stamp,
	}
	if a.Status.IsTimed() {
		ms := a.TimeRemaining.Milliseconds()
		out.TimeRemaining = &ms
	}
	return out, nil
}

// PublicEffectName returns the display string of an effect name
func PublicEffectName(name model.EffectName) string {
	return name.Public
}

// EncodeEvent serializes an event into its inbound envelope
func EncodeEvent(event model.Event) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	key := event.Key()
	return json.Marshal(eventEnvelope{
		Domain:  key.Domain,
		Type:    key.Type,
		Payload: payload,
	})
}

// DecodeRequest parses an outbound request envelope. Unlike Decode it
// returns errors, since the receiving side answers malformed requests.
func DecodeRequest(data []byte) (model.Request, error) {
	var env requestEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("invalid request envelope: %w", err)
	}

	switch env.Action {
	case model.ActionWhoAmI:
		return model.WhoAmIRequest{}, nil
	case model.ActionSubscribe:
		var d subscribeData
		if err := unmarshalData(env.Data, &d); err != nil {
			return nil, err
		}
		return model.SubscribeRequest{Topics: d.Topics}, nil
	case model.ActionRPC:
		var d rpcData
		if err := unmarshalData(env.Data, &d); err != nil {
			return nil, err
		}
		call, err := decodeCall(d.Call)
		if err != nil {
			return nil, err
		}
		return model.RPCRequest{Token: d.Token, Call: call}, nil
	default:
		return nil, fmt.Errorf("%w: action %q", model.ErrUnknownRequest, env.Action)
	}
}

func unmarshalData(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing data", model.ErrUnknownRequest)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid request data: %w", err)
	}
	return nil
}

func decodeCall(c callData) (model.RPCCall, error) {
	switch c.Method {
	case model.MethodEffectResponse:
		var args []effectResponseArg
		if err := json.Unmarshal(c.Args, &args); err != nil {
			return nil, fmt.Errorf("invalid effectResponse args: %w", err)
		}
		if len(args) != 1 {
			return nil, fmt.Errorf("effectResponse takes exactly one argument, got %d", len(args))
		}
		a := args[0]
		arg := model.EffectResponseArg{
			ID:      a.ID,
			Request: a.Request,
			Status:  a.Status,
			Message: a.Message,
			Stamp:   a.Stamp,
		}
		if a.TimeRemaining != nil {
			arg.TimeRemaining = time.Duration(*a.TimeRemaining) * time.Millisecond
		}
		return model.EffectResponseCall{ID: c.ID, Arg: arg}, nil
	case model.MethodEffectReport:
		var args []effectReportArg
		if err := json.Unmarshal(c.Args, &args); err != nil {
			return nil, fmt.Errorf("invalid effectReport args: %w", err)
		}
		out := make([]model.EffectReportArg, 0, len(args))
		for _, a := range args {
			out = append(out, model.EffectReportArg{
				ID:             a.ID,
				Stamp:          a.Stamp,
				IdentifierType: a.IdentifierType,
				IDs:            a.IDs,
				Status:         a.Status,
			})
		}
		return model.EffectReportCall{ID: c.ID, Args: out}, nil
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownMethod, c.Method)
	}
}
