package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region messages
// PlanRequest is the JSON shape of every request Struct.
type PlanRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query,omitempty"`
	Context   string `json:"context,omitempty"`
}

// ChatReply is the JSON shape of the Chat reply Struct.
type ChatReply struct {
	Text string `json:"text"`
}
// #endregion messages

// #region conversion
// toStruct converts any JSON-marshalable value to a Struct.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("convert message: %w", err)
	}
	return out, nil
}

// fromStruct decodes a Struct into v through its JSON form.
func fromStruct(in *structpb.Struct, v any) error {
	if in == nil {
		in = &structpb.Struct{}
	}
	data, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("convert message: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}
	return nil
}
// #endregion conversion
