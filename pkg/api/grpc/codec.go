package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// codecName is registered with grpc-go's global codec registry and
// forced on both the server (grpc.ForceServerCodec) and client
// (grpc.ForceCodec) sides in place of the default protobuf codec,
// since this service has no .proto-generated types to marshal.
const codecName = "json"

// jsonCodec implements encoding.Codec by marshaling request/response
// structs as JSON instead of protobuf wire format. RPC framing,
// compression, flow control, and deadline propagation are all still
// handled by grpc-go itself; only the per-message encoding changes.
type jsonCodec struct{}

// Marshal implements encoding.Codec.
func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal implements encoding.Codec.
func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// Name implements encoding.Codec.
func (jsonCodec) Name() string {
	return codecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
