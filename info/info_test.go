package info

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alinkon0207/hlsign/rest"
	"github.com/alinkon0207/hlsign/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/maxatome/go-testdeep/td"
)

// Mock REST client for testing
type mockRestClient struct {
	postFunc func(ctx context.Context, path string, body any, result any) error
}

var _ rest.ClientInterface = (*mockRestClient)(nil)

func (m *mockRestClient) Post(ctx context.Context, path string, body any, result any) error {
	return m.postFunc(ctx, path, body, result)
}

// replyWith returns a mock that records the request body and decodes reply
// into the result.
func replyWith(t *testing.T, reply string, gotBody *map[string]any) *mockRestClient {
	return &mockRestClient{
		postFunc: func(ctx context.Context, path string, body any, result any) error {
			if path != "/info" {
				t.Errorf("expected path /info, got %s", path)
			}
			if gotBody != nil {
				*gotBody = body.(map[string]any)
			}
			return json.Unmarshal([]byte(reply), result)
		},
	}
}

var testUser = common.HexToAddress("0xF39FD6E51AAD88F6F4CE6AB8827279CFFFB92266")

func TestSpotBalances(t *testing.T) {
	var body map[string]any
	client := NewWithClient(replyWith(t, `{
		"balances": [
			{"coin": "USDC", "token": 0, "hold": "0.0", "total": "14.625485", "entryNtl": "0.0"},
			{"coin": "PURR", "token": 1, "hold": "100", "total": "2000", "entryNtl": "1234.56"}
		]
	}`, &body))

	balances, err := client.SpotBalances(context.Background(), testUser)
	if err != nil {
		t.Fatalf("SpotBalances: %v", err)
	}

	td.Cmp(t, body, map[string]any{
		"type": "spotClearinghouseState",
		"user": "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266",
	})

	td.Cmp(t, balances, map[string]SpotBalance{
		"USDC": {Coin: "USDC", Token: 0, Total: 14.625485},
		"PURR": {Coin: "PURR", Token: 1, Total: 2000, Hold: 100, EntryNtl: 1234.56},
	})
	td.Cmp(t, balances["PURR"].Available(), 1900.0)
}

func TestWithdrawable(t *testing.T) {
	var body map[string]any
	client := NewWithClient(replyWith(t, `{
		"marginSummary": {"accountValue": "13109.48", "totalMarginUsed": "4.96", "totalNtlPos": "24.95", "totalRawUsd": "13084.54"},
		"crossMarginSummary": {"accountValue": "13109.48", "totalMarginUsed": "4.96", "totalNtlPos": "24.95", "totalRawUsd": "13084.54"},
		"withdrawable": "13104.51"
	}`, &body))

	withdrawable, err := client.Withdrawable(context.Background(), testUser)
	if err != nil {
		t.Fatalf("Withdrawable: %v", err)
	}

	td.Cmp(t, body["type"], "clearinghouseState")
	td.Cmp(t, withdrawable, 13104.51)
}

func TestSpotToken(t *testing.T) {
	client := NewWithClient(replyWith(t, `{
		"tokens": [
			{"name": "USDC", "szDecimals": 8, "weiDecimals": 8, "index": 0, "tokenId": "0x6d1e7cde53ba9467b783cb7c530ce054", "isCanonical": true},
			{"name": "PURR", "szDecimals": 0, "weiDecimals": 5, "index": 1, "tokenId": "0xc1fb593aeffbeb02f85e0308e9956a90", "isCanonical": true}
		]
	}`, nil))

	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "PURR", want: "PURR:0xc1fb593aeffbeb02f85e0308e9956a90"},
		{name: "usdc", want: "USDC:0x6d1e7cde53ba9467b783cb7c530ce054"},
		{name: "HFUN:0x1234", want: "HFUN:0x1234"},
		{name: "NOPE", wantErr: true},
	}

	for _, tt := range tests {
		got, err := client.SpotToken(context.Background(), tt.name)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("SpotToken(%q) expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("SpotToken(%q): %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("SpotToken(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestUserStateError(t *testing.T) {
	boom := errors.New("boom")
	client := NewWithClient(&mockRestClient{
		postFunc: func(ctx context.Context, path string, body any, result any) error {
			return boom
		},
	})

	_, err := client.UserState(context.Background(), testUser)
	td.CmpErrorIs(t, err, boom)
}

func TestSpotUserStateOverHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"balances": [{"coin": "USDC", "token": 0, "hold": "1", "total": 5, "entryNtl": null}]}`))
	}))
	defer server.Close()

	state, err := New(Config{BaseURL: server.URL}).SpotUserState(context.Background(), testUser)
	if err != nil {
		t.Fatalf("SpotUserState: %v", err)
	}

	td.Cmp(t, state.Balances, []SpotBalance{
		{Coin: "USDC", Total: types.FloatString(5), Hold: types.FloatString(1)},
	})
}
