// Package blocksource resolves Bitcoin block heights to block hashes via a
// mempool.space-compatible HTTP API. The engine never talks to it directly;
// it only consumes the Resolution this package returns.
package blocksource

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/logger"
	"github.com/jmoiron/jsonq"
)

// DefaultBaseURL is the public mempool.space API.
const DefaultBaseURL = "https://mempool.space/api"

// Provider is the seed-source name reported in draw output.
const Provider = "mempool.space"

// State of one height resolution.
type State int

const (
	// Ready: the block exists and its hash was returned.
	Ready State = iota
	// NotYetAvailable: the provider has no block at that height yet. This
	// is the pending outcome, not an error.
	NotYetAvailable
	// Failed: transport error, unexpected status, or malformed body. Fatal.
	Failed
)

// Resolution is the outcome of resolving one block height.
type Resolution struct {
	State      State
	Hash       string
	StatusCode int
	Err        error
}

// BlockInfo is audit metadata about a resolved block.
type BlockInfo struct {
	Height    int
	Timestamp int64
}

// Client queries a block-explorer API with a bounded timeout.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the given API base URL. An empty baseURL
// selects mempool.space; a zero timeout defaults to 10 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// ResolveHeight looks up the block hash for a height. A 404 means the block
// has not been mined or observed yet and maps to NotYetAvailable; any other
// non-200 status, network failure, or non-hash body is Failed.
func (c *Client) ResolveHeight(height int) Resolution {
	url := fmt.Sprintf("%s/block-height/%d", c.baseURL, height)
	resp, err := c.http.Get(url)
	if err != nil {
		logger.Errorf("block height lookup failed: %v", err)
		return Resolution{State: Failed, Err: fmt.Errorf("failed to resolve block height via %s (network error)", Provider)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Resolution{State: NotYetAvailable, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		return Resolution{
			State:      Failed,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to resolve block height via %s (status %d)", Provider, resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Resolution{State: Failed, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading provider response: %v", err)}
	}
	hash := strings.ToLower(strings.TrimSpace(string(body)))
	if !validHash(hash) {
		return Resolution{State: Failed, StatusCode: resp.StatusCode, Err: fmt.Errorf("provider returned invalid block hash")}
	}
	return Resolution{State: Ready, Hash: hash, StatusCode: resp.StatusCode}
}

// BlockInfo fetches the height and timestamp of a block for audit output.
// Failures here never affect the draw; callers treat the info as optional.
func (c *Client) BlockInfo(hash string) (*BlockInfo, error) {
	url := fmt.Sprintf("%s/block/%s", c.baseURL, hash)
	resp, err := c.http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("block lookup failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("block lookup returned status %d", resp.StatusCode)
	}

	data := map[string]interface{}{}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding block info: %v", err)
	}
	jq := jsonq.NewQuery(data)
	height, err := jq.Int("height")
	if err != nil {
		return nil, fmt.Errorf("block info has no height: %v", err)
	}
	ts, err := jq.Int("timestamp")
	if err != nil {
		return nil, fmt.Errorf("block info has no timestamp: %v", err)
	}
	return &BlockInfo{Height: height, Timestamp: int64(ts)}, nil
}

func validHash(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
