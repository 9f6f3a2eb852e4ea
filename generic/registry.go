package generic

import (
	"encoding/json"
	"fmt"
	"sort"
)

// =============================================================================
// REGISTRY - Event type name <-> Go type
// =============================================================================

// Registry maps stored event type names to decoders. Build one at startup,
// register every event the deployment knows, and pass it to whatever reads
// or writes the log.
type Registry struct {
	decoders map[string]func(json.RawMessage) (Event, error)
}

func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]func(json.RawMessage) (Event, error))}
}

// RegisterEvent makes events of type E decodable by their EventType name.
func RegisterEvent[E Event](r *Registry) {
	var zero E
	r.decoders[zero.EventType()] = func(data json.RawMessage) (Event, error) {
		var e E
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return e, nil
	}
}

// Types returns the registered type names, sorted.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.decoders))
	for t := range r.decoders {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Encode serializes an event for the log. UnknownEvent passes through untouched.
func (r *Registry) Encode(e Event) (EventData, error) {
	if u, ok := e.(UnknownEvent); ok {
		return EventData{Type: u.Type, Data: u.Data}, nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return EventData{}, fmt.Errorf("encode %s: %w", e.EventType(), err)
	}
	return EventData{Type: e.EventType(), Data: data}, nil
}

// Decode turns a recorded event back into its Go value. Types the registry
// does not know come back as UnknownEvent rather than an error.
func (r *Registry) Decode(rec RecordedEvent) (Event, error) {
	decode, ok := r.decoders[rec.Type]
	if !ok {
		return UnknownEvent{Type: rec.Type, Data: rec.Data}, nil
	}
	e, err := decode(rec.Data)
	if err != nil {
		return nil, fmt.Errorf("decode %s at %s/%d: %w", rec.Type, rec.Stream, rec.Position, err)
	}
	return e, nil
}
