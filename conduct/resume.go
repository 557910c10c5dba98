package conduct

import "encoding/json"

// resumeFrame is Frame's wire shape: a nil Vars (mask) encodes as a JSON
// null and decodes back to a nil map, while an empty let's {} decodes to a
// non-nil empty map, so the two stay distinct.
type resumeFrame struct {
	Kind      string         `json:"kind"`
	Vars      map[string]any `json:"vars"`
	HandlerPC int            `json:"handlerPC,omitempty"`
	AfterPC   int            `json:"afterPC,omitempty"`
}

// resumeRestore is a pending finally-finalizer restoration, carried across
// suspend/resume so an action inside a finalizer still reports back to the
// right place.
type resumeRestore struct {
	AfterPC int  `json:"afterPC"`
	HasErr  bool `json:"hasErr,omitempty"`
	Value   any  `json:"value,omitempty"`
	ErrVal  any  `json:"errVal,omitempty"`
}

// Resume is the continuation token handed back to the host after a
// Conductor suspends at an Action state, per §4.4.3. The host invokes the
// named action itself, then calls Conductor.Resume with this token and the
// action's result or error to continue execution from exactly where it
// left off.
type Resume struct {
	PC       int             `json:"pc"`
	Stack    []resumeFrame   `json:"stack"`
	Restores []resumeRestore `json:"restores,omitempty"`
}

// Encode serializes a Resume token, keyed under "$resume" the way the host
// protocol expects a suspended conductor's continuation to travel inside an
// activation result.
func (r *Resume) Encode() (map[string]any, error) {
	js, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var generic map[string]any
	if err := json.Unmarshal(js, &generic); err != nil {
		return nil, err
	}
	return map[string]any{"$resume": generic}, nil
}

// DecodeResume extracts a Resume token from a "$resume"-keyed map, the
// inverse of Encode.
func DecodeResume(v map[string]any) (*Resume, error) {
	raw, ok := v["$resume"]
	if !ok {
		return nil, ErrBadResume
	}
	js, err := json.Marshal(raw)
	if err != nil {
		return nil, ErrBadResume
	}
	var r Resume
	if err := json.Unmarshal(js, &r); err != nil {
		return nil, ErrBadResume
	}
	return &r, nil
}

func framesToResume(stack []*Frame) []resumeFrame {
	out := make([]resumeFrame, len(stack))
	for i, f := range stack {
		out[i] = resumeFrame{Kind: f.Kind, Vars: f.Vars, HandlerPC: f.HandlerPC, AfterPC: f.AfterPC}
	}
	return out
}

func resumeToFrames(rf []resumeFrame) []*Frame {
	out := make([]*Frame, len(rf))
	for i, f := range rf {
		out[i] = &Frame{Kind: f.Kind, Vars: f.Vars, HandlerPC: f.HandlerPC, AfterPC: f.AfterPC}
	}
	return out
}

func restoresToResume(restores []restoreEntry) []resumeRestore {
	out := make([]resumeRestore, len(restores))
	for i, r := range restores {
		rr := resumeRestore{AfterPC: r.AfterPC, Value: r.Value}
		if r.Err != nil {
			rr.HasErr = true
			rr.ErrVal = r.Err.Value
		}
		out[i] = rr
	}
	return out
}

func resumeToRestores(rr []resumeRestore) []restoreEntry {
	out := make([]restoreEntry, len(rr))
	for i, r := range rr {
		e := restoreEntry{AfterPC: r.AfterPC, Value: r.Value}
		if r.HasErr {
			e.Err = &ThrownError{Value: r.ErrVal}
		}
		out[i] = e
	}
	return out
}
