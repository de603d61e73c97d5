// Package twitter posts on the connected account's behalf through the X
// API v2: media upload, tweet creation and the users/me liveness probe.
package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"github.com/yamato758/mikupost/internal/config"
	apperrors "github.com/yamato758/mikupost/internal/errors"
	"github.com/yamato758/mikupost/tokenstore"
)

const (
	requestTimeout = 30 * time.Second

	// mediaProcessingWait is the fallback wait when the upload reports
	// asynchronous processing but its status cannot be polled.
	mediaProcessingWait = 2 * time.Second

	maxProcessingPolls = 5
)

type Client struct {
	apiBase    string
	tokens     *tokenstore.Store
	httpClient *http.Client
}

func NewClient(cfg config.TwitterConfig, tokens *tokenstore.Store) *Client {
	return &Client{
		apiBase:    cfg.GetTwitterAPIBase(),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	tokens := c.tokens.Load(ctx)
	if tokens == nil || tokens.AccessToken == "" {
		return "", apperrors.ErrNotConnected
	}
	return tokens.AccessToken, nil
}

// UploadMedia uploads one image through the v2 media endpoint and
// returns its media id. When the upload reports pending processing the
// call waits for it to settle before returning.
func (c *Client) UploadMedia(ctx context.Context, image []byte, mimeType string) (string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	part, err := writer.CreateFormFile("media", "image.png")
	if err != nil {
		return "", fmt.Errorf("[UploadMedia] build form: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return "", fmt.Errorf("[UploadMedia] build form: %w", err)
	}
	if err := writer.WriteField("media_category", "tweet_image"); err != nil {
		return "", fmt.Errorf("[UploadMedia] build form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("[UploadMedia] build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/media/upload", &form)
	if err != nil {
		return "", fmt.Errorf("[UploadMedia] build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s", apperrors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s", apperrors.ErrNetwork, err)
	}
	if resp.StatusCode == http.StatusForbidden {
		return "", fmt.Errorf("media upload rejected, check that the media.write scope was granted")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("media upload failed: %s: %s", resp.Status, body)
	}

	mediaID := firstMediaID(body)
	if mediaID == "" {
		return "", fmt.Errorf("media upload response carried no media id")
	}

	if state := processingState(body); state == "pending" || state == "in_progress" {
		c.awaitProcessing(ctx, token, mediaID, checkAfterSecs(body))
	}
	return mediaID, nil
}

// firstMediaID probes the alternative shapes the upload endpoint has
// answered with.
func firstMediaID(body []byte) string {
	for _, path := range []string{"media_id_string", "data.media_id", "data.id", "id"} {
		if id := gjson.GetBytes(body, path); id.Exists() {
			return id.String()
		}
	}
	return ""
}

func processingState(body []byte) string {
	if state := gjson.GetBytes(body, "processing_info.state"); state.Exists() {
		return state.String()
	}
	return gjson.GetBytes(body, "data.processing_info.state").String()
}

func checkAfterSecs(body []byte) int {
	if secs := gjson.GetBytes(body, "processing_info.check_after_secs"); secs.Exists() {
		return int(secs.Int())
	}
	return int(gjson.GetBytes(body, "data.processing_info.check_after_secs").Int())
}

// awaitProcessing polls the upload status until it leaves the pending
// states, with a bounded number of tries. When the status endpoint is
// unavailable a single fixed wait stands in; uploads here are small, so
// processing settles quickly.
func (c *Client) awaitProcessing(ctx context.Context, token, mediaID string, checkAfter int) {
	expBackoff := backoff.NewExponentialBackOff()
	if checkAfter > 0 {
		expBackoff.InitialInterval = time.Duration(checkAfter) * time.Second
	}

	operation := func() (string, error) {
		state, err := c.processingStatus(ctx, token, mediaID)
		if err != nil {
			return "", backoff.Permanent(err)
		}
		if state == "pending" || state == "in_progress" {
			return "", fmt.Errorf("media %s still processing", mediaID)
		}
		return state, nil
	}

	state, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(maxProcessingPolls),
	)
	if err != nil {
		log.Warn().Err(err).Str("media_id", mediaID).Msg("media processing status unavailable, using fixed wait")
		select {
		case <-time.After(mediaProcessingWait):
		case <-ctx.Done():
		}
		return
	}
	if state == "failed" {
		log.Warn().Str("media_id", mediaID).Msg("media processing reported failure")
	}
}

func (c *Client) processingStatus(ctx context.Context, token, mediaID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/media/upload?media_id=%s", c.apiBase, mediaID), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("media status: %s", resp.Status)
	}

	state := processingState(body)
	if state == "" {
		// No processing info on the status answer means processing is done.
		state = "succeeded"
	}
	return state, nil
}

// CreateTweet posts the text with any uploaded media attached and
// returns the tweet id and canonical URL.
func (c *Client) CreateTweet(ctx context.Context, text string, mediaIDs []string) (string, string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", "", err
	}

	payload := map[string]any{"text": text}
	if len(mediaIDs) > 0 {
		payload["media"] = map[string]any{"media_ids": mediaIDs}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", "", fmt.Errorf("[CreateTweet] encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/tweets", bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("[CreateTweet] build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", apperrors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", apperrors.ErrNetwork, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", fmt.Errorf("tweet creation failed: %s: %s", resp.Status, respBody)
	}

	tweetID := gjson.GetBytes(respBody, "data.id").String()
	if tweetID == "" {
		return "", "", fmt.Errorf("tweet creation response carried no id")
	}
	return tweetID, "https://twitter.com/i/web/status/" + tweetID, nil
}

// Me fetches the connected account's username. Used as a best-effort
// liveness probe by the status endpoint.
func (c *Client) Me(ctx context.Context) (string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/users/me", nil)
	if err != nil {
		return "", fmt.Errorf("[Me] build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s", apperrors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s", apperrors.ErrNetwork, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("users/me failed: %s", resp.Status)
	}

	username := gjson.GetBytes(body, "data.username").String()
	if username == "" {
		return "", fmt.Errorf("users/me response carried no username")
	}
	return username, nil
}
