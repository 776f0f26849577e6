package mapper

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"news-chatter-be/internal/entity"
	"news-chatter-be/internal/model"
)

func parseUUID(raw string) (uuid.UUID, error) {
	return uuid.Parse(raw)
}

type HistoryMapper struct{}

func NewHistoryMapper() *HistoryMapper {
	return &HistoryMapper{}
}

func (m *HistoryMapper) ToEntity(row *model.AudioHistory) *entity.TurnRecord {
	if row == nil {
		return nil
	}

	var sources []entity.TurnSource
	if len(row.SourceChunks) > 0 {
		// Best effort: a corrupt sources document should not hide the turn.
		_ = json.Unmarshal(row.SourceChunks, &sources)
	}

	return &entity.TurnRecord{
		Id:           row.Id,
		UserId:       row.UserId,
		QuestionText: row.QuestionText,
		PodcastText:  row.PodcastText,
		AudioURL:     row.AudioURL,
		Sources:      sources,
		CreatedAt:    row.CreatedAt,
	}
}

func (m *HistoryMapper) ToModel(record *entity.TurnRecord) (*model.AudioHistory, error) {
	if record == nil {
		return nil, nil
	}

	raw, err := json.Marshal(record.Sources)
	if err != nil {
		return nil, err
	}

	return &model.AudioHistory{
		Id:           record.Id,
		UserId:       record.UserId,
		QuestionText: record.QuestionText,
		PodcastText:  record.PodcastText,
		AudioURL:     record.AudioURL,
		SourceChunks: datatypes.JSON(raw),
	}, nil
}
