package core

import (
	"io"

	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/decoder"
)

// SonicSerializer is the default Serializer, backed by bytedance/sonic.
type SonicSerializer struct{}

// Marshal encodes a value to JSON bytes.
func (SonicSerializer) Marshal(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

// Unmarshal decodes buffered JSON bytes into v.
func (SonicSerializer) Unmarshal(data []byte, v any) error {
	return sonic.Unmarshal(data, v)
}

// Decode reads JSON directly from a stream into v.
func (SonicSerializer) Decode(r io.Reader, v any) error {
	return decoder.NewStreamDecoder(r).Decode(v)
}
