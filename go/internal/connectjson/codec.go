// Package connectjson lets connect handlers and clients exchange plain Go
// structs encoded as JSON, and maps lifecycle failures to connect codes.
package connectjson

import (
	"bytes"
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

const (
	codecName        = "json"
	codecNameCharset = "json; charset=utf-8"
)

// Codec is a connect.Codec backed by encoding/json
type Codec struct {
	name string
}

var _ connect.Codec = Codec{}

// Name is the content-subtype the codec is registered under
func (c Codec) Name() string {
	if c.name == "" {
		return codecName
	}
	return c.name
}

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(msg); err != nil {
		return fmt.Errorf("invalid JSON message: %w", err)
	}
	return nil
}

// HandlerOptions registers the codec under both JSON content types and adds
// the correlation interceptor
func HandlerOptions() []connect.HandlerOption {
	return []connect.HandlerOption{
		connect.WithCodec(Codec{name: codecName}),
		connect.WithCodec(Codec{name: codecNameCharset}),
		connect.WithInterceptors(NewCorrelationInterceptor()),
	}
}

// ClientOptions makes a connect client speak JSON through the codec
func ClientOptions() []connect.ClientOption {
	return []connect.ClientOption{
		connect.WithCodec(Codec{name: codecName}),
	}
}
