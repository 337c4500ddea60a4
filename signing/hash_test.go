package signing

import (
	"bytes"
	"errors"
	"testing"

	"github.com/alinkon0207/hlsign/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/samber/mo"
)

func testAction() types.Action {
	return types.NewAction("type", "test")
}

func TestEncodeActionPreservesInsertionOrder(t *testing.T) {
	got, err := EncodeAction(types.NewAction("type", "test", "a", 1))
	if err != nil {
		t.Fatal(err)
	}

	// fixmap(2) "type" "test" "a" 1
	want := []byte{
		0x82,
		0xa4, 't', 'y', 'p', 'e', 0xa4, 't', 'e', 's', 't',
		0xa1, 'a', 0x01,
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("encoding mismatch:\n got %x\nwant %x", got, want)
	}

	reordered, err := EncodeAction(types.NewAction("a", 1, "type", "test"))
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(got, reordered) {
		t.Fatal("expected different encodings for different field orders")
	}
}

func TestEncodeActionCompactInts(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  []byte
	}{
		{"int64 fixint", int64(10), []byte{0x0a}},
		{"uint64 uint16", uint64(1000), []byte{0xcd, 0x03, 0xe8}},
		{"negative fixint", int64(-1), []byte{0xff}},
		{"float64", 1.5, []byte{0xcb, 0x3f, 0xf8, 0, 0, 0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeAction(tt.value)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Fatalf("EncodeAction(%v) = %x, want %x", tt.value, got, tt.want)
			}
		})
	}
}

func TestActionBufferWithoutVault(t *testing.T) {
	action := testAction()
	encoded, err := EncodeAction(action)
	if err != nil {
		t.Fatal(err)
	}
	n := len(encoded)

	data, err := ActionBuffer(action, 1, mo.None[common.Address]())
	if err != nil {
		t.Fatal(err)
	}

	if len(data) != n+9 {
		t.Fatalf("buffer length = %d, want %d", len(data), n+9)
	}
	if !bytes.Equal(data[:n], encoded) {
		t.Fatalf("action bytes mismatch: %x", data[:n])
	}
	if want := []byte{0, 0, 0, 0, 0, 0, 0, 1}; !bytes.Equal(data[n:n+8], want) {
		t.Fatalf("nonce bytes = %x, want %x", data[n:n+8], want)
	}
	if data[n+8] != 0 {
		t.Fatalf("vault flag = %d, want 0", data[n+8])
	}
}

func TestActionBufferWithVault(t *testing.T) {
	vault, err := ParseAddress("0x1719884eb866cb12b2287399b15f7db5e7d775ea")
	if err != nil {
		t.Fatal(err)
	}

	action := testAction()
	encoded, err := EncodeAction(action)
	if err != nil {
		t.Fatal(err)
	}
	n := len(encoded)

	data, err := ActionBuffer(action, 1700000000000, mo.Some(vault))
	if err != nil {
		t.Fatal(err)
	}

	if len(data) != n+29 {
		t.Fatalf("buffer length = %d, want %d", len(data), n+29)
	}
	if data[n+8] != 1 {
		t.Fatalf("vault flag = %d, want 1", data[n+8])
	}
	if !bytes.Equal(data[n+9:n+29], vault.Bytes()) {
		t.Fatalf("vault bytes = %x, want %x", data[n+9:n+29], vault.Bytes())
	}
	// 1700000000000 = 0x18BCFE56800
	if want := []byte{0, 0, 0x01, 0x8b, 0xcf, 0xe5, 0x68, 0x00}; !bytes.Equal(data[n:n+8], want) {
		t.Fatalf("nonce bytes = %x, want %x", data[n:n+8], want)
	}
}

func TestActionBufferWithExpiresAfter(t *testing.T) {
	action := testAction()
	encoded, err := EncodeAction(action)
	if err != nil {
		t.Fatal(err)
	}
	n := len(encoded)

	data, err := ActionBuffer(action, 1, mo.None[common.Address](), WithExpiresAfter(2))
	if err != nil {
		t.Fatal(err)
	}

	if len(data) != n+18 {
		t.Fatalf("buffer length = %d, want %d", len(data), n+18)
	}
	if want := []byte{0, 0, 0, 0, 0, 0, 0, 0, 2}; !bytes.Equal(data[n+9:], want) {
		t.Fatalf("expiry bytes = %x, want %x", data[n+9:], want)
	}
}

func TestHashActionIsKeccakOfBuffer(t *testing.T) {
	action := testAction()

	data, err := ActionBuffer(action, 1700000000000, mo.None[common.Address]())
	if err != nil {
		t.Fatal(err)
	}

	hash, err := HashAction(action, 1700000000000, mo.None[common.Address]())
	if err != nil {
		t.Fatal(err)
	}

	if want := crypto.Keccak256Hash(data); hash != want {
		t.Fatalf("hash = %s, want %s", hash.Hex(), want.Hex())
	}
}

func TestHashActionRejectsUnencodableAction(t *testing.T) {
	_, err := HashAction(types.NewAction("type", "bad", "ch", make(chan int)), 0, mo.None[common.Address]())
	if err == nil {
		t.Fatal("expected encoding error, got nil")
	}
}

func TestParseAddress(t *testing.T) {
	want := common.HexToAddress("0xd36e4a5805f6b14c2f4fa0a2ff7b8d5b35e10971")

	valid := []string{
		"0xd36e4a5805f6b14c2f4Fa0A2fF7B8D5b35E10971",
		"d36e4a5805f6b14c2f4fa0a2ff7b8d5b35e10971",
		"0XD36E4A5805F6B14C2F4FA0A2FF7B8D5B35E10971",
	}
	for _, in := range valid {
		got, err := ParseAddress(in)
		if err != nil {
			t.Fatalf("ParseAddress(%q) unexpected error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseAddress(%q) = %s, want %s", in, got.Hex(), want.Hex())
		}
	}

	invalid := map[string]string{
		"odd length":   "0xd36e4a5805f6b14c2f4fa0a2ff7b8d5b35e1097",
		"non hex":      "0xz36e4a5805f6b14c2f4fa0a2ff7b8d5b35e10971",
		"too short":    "0xd36e",
		"too long":     "0xd36e4a5805f6b14c2f4fa0a2ff7b8d5b35e1097100",
		"empty string": "",
	}
	for name, in := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAddress(in)
			if !errors.Is(err, ErrMalformedAddress) {
				t.Fatalf("ParseAddress(%q) error = %v, want ErrMalformedAddress", in, err)
			}
		})
	}
}

func TestParseVaultAddress(t *testing.T) {
	none, err := ParseVaultAddress("  ")
	if err != nil {
		t.Fatal(err)
	}
	if none.IsPresent() {
		t.Fatal("expected no vault for blank input")
	}

	some, err := ParseVaultAddress("0x1719884eb866cb12b2287399b15f7db5e7d775ea")
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := some.Get(); !ok || v != common.HexToAddress("0x1719884eb866cb12b2287399b15f7db5e7d775ea") {
		t.Fatalf("unexpected vault %v", some)
	}

	if _, err := ParseVaultAddress("0x12"); !errors.Is(err, ErrMalformedAddress) {
		t.Fatalf("expected ErrMalformedAddress, got %v", err)
	}
}
