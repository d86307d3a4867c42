package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

// Codec turns envelopes into frames and frames into client messages.
type Codec interface {
	Name() string
	// Binary reports whether frames must be sent as binary websocket messages.
	Binary() bool
	Encode(t string, payload any) ([]byte, error)
	Decode(b []byte) (ClientMessage, error)
}

// CodecByName returns the codec registered under name. An empty name selects JSON.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", CodecJSON:
		return JSON, nil
	case CodecMsgpack:
		return Msgpack, nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

var (
	JSON    Codec = jsonCodec{}
	Msgpack Codec = msgpackCodec{}
)

type jsonCodec struct{}

func (jsonCodec) Name() string { return CodecJSON }
func (jsonCodec) Binary() bool { return false }

func (jsonCodec) Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("trying to encode envelope with empty type")
	}
	return json.Marshal(Envelope{T: t, P: payload})
}

func (jsonCodec) Decode(b []byte) (ClientMessage, error) {
	if len(b) == 0 {
		return ClientMessage{}, fmt.Errorf("empty frame")
	}
	var m ClientMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return ClientMessage{}, fmt.Errorf("decode json frame: %w", err)
	}
	return m, nil
}

type msgpackCodec struct{}

func (msgpackCodec) Name() string { return CodecMsgpack }
func (msgpackCodec) Binary() bool { return true }

func (msgpackCodec) Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("trying to encode envelope with empty type")
	}
	return msgpack.Marshal(&Envelope{T: t, P: payload})
}

func (msgpackCodec) Decode(b []byte) (ClientMessage, error) {
	if len(b) == 0 {
		return ClientMessage{}, fmt.Errorf("empty frame")
	}
	var m ClientMessage
	if err := msgpack.Unmarshal(b, &m); err != nil {
		return ClientMessage{}, fmt.Errorf("decode msgpack frame: %w", err)
	}
	return m, nil
}
