package dto

import "time"

type CreateUserRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type UpdatePreferencesRequest struct {
	Preferences map[string]string `json:"preferences" validate:"required"`
}

type PreferencesResponse struct {
	Preferences map[string]string `json:"preferences"`
}

type TurnSourceResponse struct {
	Title       string     `json:"title"`
	SourceURL   string     `json:"source_url"`
	Similarity  float64    `json:"similarity"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

type HistoryItemResponse struct {
	Id           string               `json:"id"`
	QuestionText string               `json:"question_text"`
	PodcastText  string               `json:"podcast_text"`
	AudioURL     *string              `json:"audio_url,omitempty"`
	Sources      []TurnSourceResponse `json:"sources"`
	CreatedAt    time.Time            `json:"created_at"`
}

type HistoryListResponse struct {
	Items []HistoryItemResponse `json:"items"`
}
