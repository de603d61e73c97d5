// Package imagegen generates the themed illustration for a post via the
// Gemini generateContent API and returns it as a base64 data URL.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"github.com/yamato758/mikupost/internal/config"
	apperrors "github.com/yamato758/mikupost/internal/errors"
)

const requestTimeout = 60 * time.Second

type Generator struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

func New(cfg config.ImageConfig) *Generator {
	return &Generator{
		apiKey:     cfg.GetImageAPIKey(),
		apiURL:     cfg.GetImageAPIURL(),
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// buildPrompt wraps the user's text in the fixed illustration theme.
func buildPrompt(userText string) string {
	return fmt.Sprintf(`Create an ultra cute chibi Hatsune Miku illustration themed around %q.

Character: super deformed chibi style, oversized head, tiny adorable body, big sparkling eyes with star and heart highlights, long flowing twintails with soft gradients, rosy pink cheeks, sweet innocent smile, small cute hands.

Style: kawaii, soft anime, pastel fantasy, fairy kei inspired, cotton candy aesthetic.

Atmosphere: dreamy ethereal glow, soft fluffy clouds, floating pastel bubbles, magical sparkles and glitter, scattered stars and hearts, rainbow light rays, bokeh effect, soft gradient background in pink, lavender and mint colors.

Lighting: soft diffused lighting, gentle glow around character, iridescent highlights.

Quality: masterpiece, best quality, ultra-detailed, 8k resolution, professional illustration, pixiv ranking, trending on artstation.

Mood: pure, innocent, angelic, heartwarming, magical girl vibes.

No text, no letters, no writing, no words, no signs, no symbols in the image.`, userText)
}

// Generate produces an illustration for the given text and returns it as
// a data URL ("data:<mime>;base64,<payload>").
func (g *Generator) Generate(ctx context.Context, userText string) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("%w: image API key", apperrors.ErrConfigIncomplete)
	}

	payload, err := json.Marshal(map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": buildPrompt(userText)}}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("[Generate] encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("[Generate] build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s", apperrors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s", apperrors.ErrNetwork, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		log.Warn().Str("status", resp.Status).Msg("image API rate limited")
		return "", fmt.Errorf("image API rate limit reached, try again later")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := gjson.GetBytes(body, "error.message").String()
		if message == "" {
			message = resp.Status
		}
		return "", fmt.Errorf("image generation request failed: %s", message)
	}

	return extractImage(body)
}

// extractImage finds the first inline image part in a generateContent
// response. The model may interleave text parts, and a text-only answer
// usually means the prompt was blocked.
func extractImage(body []byte) (string, error) {
	parts := gjson.GetBytes(body, "candidates.0.content.parts")
	if !parts.Exists() {
		return "", fmt.Errorf("image generation response carried no candidates")
	}

	var dataURL string
	parts.ForEach(func(_, part gjson.Result) bool {
		data := part.Get("inlineData.data")
		if !data.Exists() {
			return true
		}
		mimeType := part.Get("inlineData.mimeType").String()
		if mimeType == "" {
			mimeType = "image/png"
		}
		dataURL = fmt.Sprintf("data:%s;base64,%s", mimeType, data.String())
		return false
	})
	if dataURL != "" {
		return dataURL, nil
	}

	if text := gjson.GetBytes(body, "candidates.0.content.parts.#.text"); text.Exists() && len(text.Array()) > 0 {
		return "", fmt.Errorf("image generation was blocked: %s", text.Array()[0].String())
	}
	return "", fmt.Errorf("image generation response carried no image data")
}
