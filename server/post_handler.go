package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/yamato758/mikupost/imagegen"
)

const (
	maxTweetLength      = 280
	maxAdditionalImages = 3
	maxUploadBytes      = 8 << 20 // per attached image
)

type postRequest struct {
	Text string `json:"text"`
}

type postResponse struct {
	Success  bool   `json:"success"`
	TweetID  string `json:"tweetId"`
	TweetURL string `json:"tweetUrl"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type attachedImage struct {
	data     []byte
	mimeType string
}

// PostHandler runs the posting pipeline: validate the text, generate the
// themed illustration, upload media and create the tweet. Image
// generation and upload failures degrade to a text-only post rather than
// failing the whole request.
func (s *Server) PostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, extras, errMsg := parsePostRequest(r)
		if errMsg != "" {
			writeError(w, http.StatusBadRequest, ErrorTypeValidation, errMsg)
			return
		}
		if msg := validateTweetText(text); msg != "" {
			writeError(w, http.StatusBadRequest, ErrorTypeValidation, msg)
			return
		}

		tokens := s.tokens.Load(r.Context())
		if !tokens.Valid(s.nowTime()) {
			writeError(w, http.StatusUnauthorized, ErrorTypeAuth, "No connected account, please connect first")
			return
		}

		var mediaIDs []string
		imageURL, err := s.images.Generate(r.Context(), text)
		if err != nil {
			log.Warn().Err(err).Msg("image generation failed, posting without generated image")
			imageURL = ""
		}
		if imageURL != "" {
			if raw, mimeType, err := imagegen.DecodeDataURL(imageURL); err == nil {
				if mediaID, err := s.twitter.UploadMedia(r.Context(), raw, mimeType); err == nil {
					mediaIDs = append(mediaIDs, mediaID)
				} else {
					log.Warn().Err(err).Msg("generated image upload failed, posting without it")
					imageURL = ""
				}
			}
		}

		for _, extra := range extras {
			mediaID, err := s.twitter.UploadMedia(r.Context(), extra.data, extra.mimeType)
			if err != nil {
				log.Warn().Err(err).Msg("additional image upload failed, skipping it")
				continue
			}
			mediaIDs = append(mediaIDs, mediaID)
		}

		tweetID, tweetURL, err := s.twitter.CreateTweet(r.Context(), text, mediaIDs)
		if err != nil {
			log.Error().Err(err).Msg("tweet creation failed")
			writeError(w, http.StatusInternalServerError, ErrorTypeTweetPost, "Posting to X failed")
			return
		}

		writeJSON(w, http.StatusOK, postResponse{
			Success:  true,
			TweetID:  tweetID,
			TweetURL: tweetURL,
			ImageURL: imageURL,
		})
	}
}

// parsePostRequest accepts either a JSON body or a multipart form with
// up to three additional images (image0..image2).
func parsePostRequest(r *http.Request) (string, []attachedImage, string) {
	contentType := r.Header.Get("Content-Type")

	if strings.Contains(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(int64(maxAdditionalImages+1) * maxUploadBytes); err != nil {
			return "", nil, "Request body could not be parsed"
		}
		text := r.FormValue("text")

		var extras []attachedImage
		for i := 0; i < maxAdditionalImages; i++ {
			file, header, err := r.FormFile(fmt.Sprintf("image%d", i))
			if err != nil {
				continue
			}
			data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
			_ = file.Close()
			if err != nil {
				return "", nil, "Attached image could not be read"
			}
			mimeType := header.Header.Get("Content-Type")
			if mimeType == "" {
				mimeType = "image/png"
			}
			extras = append(extras, attachedImage{data: data, mimeType: mimeType})
		}
		return text, extras, ""
	}

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", nil, "Request body could not be parsed"
	}
	return req.Text, nil, ""
}

func validateTweetText(text string) string {
	if strings.TrimSpace(text) == "" {
		return "Please enter some text"
	}
	if utf8.RuneCountInString(text) > maxTweetLength {
		return fmt.Sprintf("Text must be %d characters or fewer", maxTweetLength)
	}
	return ""
}
