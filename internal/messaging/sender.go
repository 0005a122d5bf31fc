// Package messaging sends outbound messages through the Meta Graph API for
// the three supported platforms. Sends are fire-and-forget JSON POSTs; a
// failure is returned to the caller and never retried.
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"surcan_assistant_backend/internal/models"
)

const defaultGraphBaseURL = "https://graph.facebook.com"
const defaultAPIVersion = "v19.0"

// Sender delivers a reply to one platform user.
type Sender interface {
	SendText(ctx context.Context, to, text string) error
	SendProducts(ctx context.Context, to, text string, products []models.Product) error
}

type graphClient struct {
	accessToken string
	baseURL     string
	apiVersion  string
	httpClient  *http.Client
}

func newGraphClient(accessToken string, timeout time.Duration) graphClient {
	return graphClient{
		accessToken: accessToken,
		baseURL:     defaultGraphBaseURL,
		apiVersion:  defaultAPIVersion,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (c *graphClient) post(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/%s", c.baseURL, c.apiVersion, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("graph api %s returned %d: %s", path, resp.StatusCode, detail)
	}
	return nil
}
