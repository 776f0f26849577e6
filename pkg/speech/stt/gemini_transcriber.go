package stt

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const transcribeEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s"

const transcribePrompt = "Transcribe this audio recording exactly as spoken. Return only the transcription text, nothing else."

type GeminiTranscriber struct {
	apiKey string
	model  string
	client *http.Client
}

func NewGeminiTranscriber(apiKey, model string) *GeminiTranscriber {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiTranscriber{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

type transcribeRequest struct {
	Contents []struct {
		Parts []transcribePart `json:"parts"`
	} `json:"contents"`
}

type transcribePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type transcribeResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (t *GeminiTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("no audio to transcribe")
	}
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	reqBody := transcribeRequest{}
	reqBody.Contents = []struct {
		Parts []transcribePart `json:"parts"`
	}{{
		Parts: []transcribePart{
			{Text: transcribePrompt},
			{InlineData: &inlineData{
				MimeType: mimeType,
				Data:     base64.StdEncoding.EncodeToString(audio),
			}},
		},
	}}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf(transcribeEndpoint, t.model, t.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("transcription returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed transcribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode transcription response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("transcription returned no candidates")
	}

	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
}
