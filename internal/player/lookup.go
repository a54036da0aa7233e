package player

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"warmap-server/internal/shared/errors"
)

// apiResponse is the upstream envelope. Code 0 means success; anything else
// carries the error in msg.
type apiResponse struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// LookupClient signs and forwards player lookups to the third-party API. The
// salt never leaves the server; clients only see the proxy endpoint.
type LookupClient struct {
	apiURL string
	salt   string
	http   *http.Client
	clock  func() time.Time
	logger *slog.Logger
}

func NewLookupClient(apiURL, salt string, timeout time.Duration, clock func() time.Time) *LookupClient {
	if clock == nil {
		clock = time.Now
	}
	return &LookupClient{
		apiURL: apiURL,
		salt:   salt,
		http:   &http.Client{Timeout: timeout},
		clock:  clock,
		logger: slog.With("component", "lookup_client"),
	}
}

// Sign computes the request signature: md5 hex of "fid=<fid>&time=<ms><salt>".
func (c *LookupClient) Sign(fid, timeMs string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("fid=%s&time=%s%s", fid, timeMs, c.salt)))
	return hex.EncodeToString(sum[:])
}

// Fetch looks up one player by fid.
func (c *LookupClient) Fetch(ctx context.Context, fid string) (*Player, error) {
	timeMs := fmt.Sprintf("%d", c.clock().UnixMilli())

	form := url.Values{}
	form.Set("fid", fid)
	form.Set("time", timeMs)
	form.Set("sign", c.Sign(fid, timeMs))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.WrapInternal("failed to build lookup request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.WrapExternal("player lookup request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapExternal("failed to read lookup response", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Lookup API returned non-200",
			"status", resp.StatusCode,
			"fid", fid,
		)
		return nil, errors.External(fmt.Sprintf("lookup API returned status %d", resp.StatusCode))
	}

	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.WrapExternal("failed to decode lookup response", err)
	}
	if envelope.Code != 0 {
		msg := envelope.Msg
		if msg == "" {
			msg = fmt.Sprintf("lookup API returned code %d", envelope.Code)
		}
		return nil, errors.External(msg)
	}

	var p Player
	if err := json.Unmarshal(envelope.Data, &p); err != nil {
		return nil, errors.WrapExternal("failed to decode player record", err)
	}
	if p.FID == "" {
		p.FID = fid
	}
	p.LastUpdated = c.clock().UnixMilli()

	return &p, nil
}
