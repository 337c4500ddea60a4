package signing

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/vmihailenco/msgpack/v5"
)

// signatureHexLength is the hex length of a 65 byte signature without 0x.
const signatureHexLength = 130

// Signature is an ECDSA signature split into its components.
// V is always 27 or 28.
type Signature struct {
	R common.Hash
	S common.Hash
	V byte
}

type signatureWire struct {
	R string `json:"r" msgpack:"r"`
	S string `json:"s" msgpack:"s"`
	V uint8  `json:"v" msgpack:"v"`
}

func (s Signature) wire() signatureWire {
	return signatureWire{
		R: hexutil.Encode(s.R[:]),
		S: hexutil.Encode(s.S[:]),
		V: s.V,
	}
}

// SplitSignature decomposes a 0x-prefixed hex signature into r, s and v.
//
// The trailing byte may be 0x1b/0x1c (Ethereum style) or 0x00/0x01 (raw
// recovery id); both are normalized to 27/28.
func SplitSignature(sig string) (Signature, error) {
	raw := trimHexPrefix(sig)

	if len(raw) != signatureHexLength {
		return Signature{}, fmt.Errorf("%w: bad sig length: %d", ErrMalformedSignature, len(raw))
	}

	b, err := hex.DecodeString(raw)
	if err != nil {
		return Signature{}, fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}

	var out Signature
	switch b[64] {
	case 0x1b, 0x00:
		out.V = 27
	case 0x1c, 0x01:
		out.V = 28
	default:
		return Signature{}, fmt.Errorf("%w: bad sig v %s", ErrMalformedSignature, raw[128:])
	}

	copy(out.R[:], b[:32])
	copy(out.S[:], b[32:64])

	return out, nil
}

// Bytes returns the 65 byte [R || S || V] form.
func (s Signature) Bytes() []byte {
	out := make([]byte, 0, 65)
	out = append(out, s.R[:]...)
	out = append(out, s.S[:]...)
	return append(out, s.V)
}

// Hex returns the 0x-prefixed hex of Bytes.
func (s Signature) Hex() string {
	return hexutil.Encode(s.Bytes())
}

// MarshalJSON encodes the signature as:
// { "r": "0x...", "s": "0x...", "v": <number> }
func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.wire())
}

var _ msgpack.CustomEncoder = (*Signature)(nil)

func (s *Signature) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(s.wire())
}

// UnmarshalJSON decodes from:
// { "r": "0x...", "s": "0x...", "v": <number> }
func (s *Signature) UnmarshalJSON(data []byte) error {
	var a signatureWire
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	r, err := decodeWord("r", a.R)
	if err != nil {
		return err
	}
	sv, err := decodeWord("s", a.S)
	if err != nil {
		return err
	}

	s.R = r
	s.S = sv
	s.V = a.V

	return nil
}

func decodeWord(name, text string) (common.Hash, error) {
	b, err := hexutil.Decode(text)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf(
			"invalid %s length: got %d, want %d",
			name,
			len(b),
			common.HashLength,
		)
	}
	return common.BytesToHash(b), nil
}

func (s Signature) String() string {
	return fmt.Sprintf(
		"R: %s, S: %s, V: %d",
		hexutil.Encode(s.R[:]),
		hexutil.Encode(s.S[:]),
		s.V,
	)
}
