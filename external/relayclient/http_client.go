package relayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/foxseedlab/koecheck/internal/audio"
	"github.com/foxseedlab/koecheck/internal/client"
	"github.com/foxseedlab/koecheck/internal/verify"
)

const maxErrorBody = 4096

type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) client.Relay {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Verify(ctx context.Context, blob audio.Blob, referenceText string, language verify.Language) (verify.Response, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("audio", "audio.wav")
	if err != nil {
		return verify.Response{}, err
	}
	if _, err := fw.Write(blob.Data); err != nil {
		return verify.Response{}, err
	}
	if err := mw.WriteField("text", referenceText); err != nil {
		return verify.Response{}, err
	}
	if err := mw.WriteField("language", string(language)); err != nil {
		return verify.Response{}, err
	}
	if err := mw.Close(); err != nil {
		return verify.Response{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/check-speech/", &body)
	if err != nil {
		return verify.Response{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out verify.Response
	if err := c.do(req, &out); err != nil {
		return verify.Response{}, err
	}
	return out, nil
}

func (c *HTTPClient) ListVerifications(ctx context.Context, limit int) ([]verify.HistoryEntry, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/verifications?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var out []verify.HistoryEntry
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("relay request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &client.TransportError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode relay response: %w", err)
	}
	return nil
}
