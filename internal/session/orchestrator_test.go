package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-chatter-be/internal/config"
	"news-chatter-be/internal/dto"
	"news-chatter-be/internal/entity"
	"news-chatter-be/internal/pkg/logger"
	"news-chatter-be/internal/retrieval"
	"news-chatter-be/pkg/enhance"
	"news-chatter-be/pkg/events"
)

type fakeEmitter struct {
	mu     sync.Mutex
	frames []interface{}
	binary [][]byte
}

func (f *fakeEmitter) SendJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, v)
	return nil
}

func (f *fakeEmitter) SendBinary(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	f.binary = append(f.binary, buf)
	return nil
}

func (f *fakeEmitter) statuses() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, frame := range f.frames {
		if msg, ok := frame.(dto.StatusMessage); ok {
			out = append(out, msg.Status)
		}
	}
	return out
}

func (f *fakeEmitter) errorMessages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, frame := range f.frames {
		if msg, ok := frame.(dto.ErrorMessage); ok {
			out = append(out, msg.Error)
		}
	}
	return out
}

func (f *fakeEmitter) warningMessages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, frame := range f.frames {
		if msg, ok := frame.(dto.WarningMessage); ok {
			out = append(out, msg.Warning)
		}
	}
	return out
}

type stubTranscriber struct {
	text string
	err  error
}

func (s *stubTranscriber) Transcribe(_ context.Context, _ []byte, _ string) (string, error) {
	return s.text, s.err
}

type stubEnhancer struct {
	subQueries []enhance.SubQuery
	err        error
}

func (s *stubEnhancer) Enhance(_ context.Context, _ string) ([]enhance.SubQuery, error) {
	return s.subQueries, s.err
}

type stubRetriever struct {
	passages     []*entity.RetrievedPassage
	failedLabels []string
	gotQueries   []enhance.SubQuery
}

func (s *stubRetriever) Retrieve(_ context.Context, subQueries []enhance.SubQuery, _ retrieval.Filters) ([]*entity.RetrievedPassage, []string) {
	s.gotQueries = subQueries
	return s.passages, s.failedLabels
}

type stubGenerator struct {
	script string
	err    error
}

func (s *stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	return s.script, s.err
}

type stubSynthesizer struct {
	pcm []byte
	err error
}

func (s *stubSynthesizer) Synthesize(_ context.Context, _ string) ([]byte, error) {
	return s.pcm, s.err
}

type stubPrefs struct {
	filters retrieval.Filters
	err     error
	calls   int
}

func (s *stubPrefs) FiltersFor(_ context.Context, _ string) (retrieval.Filters, error) {
	s.calls++
	return s.filters, s.err
}

type stubBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *stubBus) Publish(_ context.Context, event events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

func (b *stubBus) Close() {}

func (b *stubBus) published() []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]events.Event(nil), b.events...)
}

type stubRecorder struct {
	mu      sync.Mutex
	records []*entity.TurnRecord
}

func (s *stubRecorder) RecordTurn(record *entity.TurnRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func passage(similarity float64) *entity.RetrievedPassage {
	return &entity.RetrievedPassage{
		Id:            uuid.New(),
		Text:          "passage text",
		Title:         "Some headline",
		SourceURL:     "https://example.com/article",
		DocumentKey:   uuid.New().String(),
		Similarity:    similarity,
		RecencyWeight: 1.0,
		AdjustedScore: similarity,
	}
}

func newTestOrchestrator(
	transcriber *stubTranscriber,
	enhancer *stubEnhancer,
	retriever *stubRetriever,
	generator *stubGenerator,
	synthesizer *stubSynthesizer,
	recorder *stubRecorder,
) *Orchestrator {
	return NewOrchestrator(
		transcriber,
		enhancer,
		retriever,
		generator,
		synthesizer,
		&stubPrefs{},
		recorder,
		nil,
		logger.NewNoopLogger(),
		config.TimeoutConfig{},
	)
}

func processingSession(t *testing.T) (*Session, []byte, context.Context, context.CancelFunc) {
	t.Helper()
	return processingSessionFor(t, uuid.New().String())
}

func processingSessionFor(t *testing.T, userId string) (*Session, []byte, context.Context, context.CancelFunc) {
	t.Helper()
	sess := New(userId)
	_, err := sess.AppendChunk([]byte("fake opus audio"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	audio, err := sess.BeginProcessing(cancel)
	require.NoError(t, err)
	return sess, audio, ctx, cancel
}

func TestRunTurn_HappyPathEmitsStatusesInOrder(t *testing.T) {
	pcm := make([]byte, 20000)
	recorder := &stubRecorder{}
	retriever := &stubRetriever{passages: []*entity.RetrievedPassage{passage(0.9), passage(0.8)}}

	orch := newTestOrchestrator(
		&stubTranscriber{text: "what happened with the fed today"},
		&stubEnhancer{subQueries: []enhance.SubQuery{
			{Label: "original_query", Text: "what happened with the fed today"},
			{Label: "enhanced_query_1", Text: "federal reserve decision"},
		}},
		retriever,
		&stubGenerator{script: "Here is your briefing."},
		&stubSynthesizer{pcm: pcm},
		recorder,
	)

	sess, audio, ctx, cancel := processingSession(t)
	defer cancel()
	emitter := &fakeEmitter{}

	orch.RunTurn(ctx, sess, emitter, audio, "audio/webm")

	assert.Equal(t, []string{
		dto.StatusTranscribing,
		dto.StatusTranscribed,
		dto.StatusEnhancingQuery,
		dto.StatusRetrieving,
		dto.StatusGenerating,
		dto.StatusPodcastGenerated,
		dto.StatusConvertingToAudio,
		dto.StatusStreamingAudio,
		dto.StatusComplete,
	}, emitter.statuses())
	assert.Empty(t, emitter.errorMessages())
	assert.Equal(t, StateIdle, sess.State())

	// Binary frames reassemble to the WAV answer.
	total := 0
	for i, frame := range emitter.binary {
		if i < len(emitter.binary)-1 {
			assert.Len(t, frame, audioFrameSize)
		}
		total += len(frame)
	}
	assert.Equal(t, 44+len(pcm), total)
	assert.Equal(t, "RIFF", string(emitter.binary[0][:4]))

	require.Len(t, recorder.records, 1)
	record := recorder.records[0]
	assert.Equal(t, "what happened with the fed today", record.QuestionText)
	assert.Equal(t, "Here is your briefing.", record.PodcastText)
	assert.Len(t, record.Sources, 2)
}

func TestRunTurn_EnhancementFailureFallsBackToOriginalQuestion(t *testing.T) {
	retriever := &stubRetriever{passages: []*entity.RetrievedPassage{passage(0.9)}}
	orch := newTestOrchestrator(
		&stubTranscriber{text: "oil prices"},
		&stubEnhancer{err: errors.New("model unavailable")},
		retriever,
		&stubGenerator{script: "script"},
		&stubSynthesizer{pcm: make([]byte, 100)},
		&stubRecorder{},
	)

	sess, audio, ctx, cancel := processingSession(t)
	defer cancel()
	emitter := &fakeEmitter{}

	orch.RunTurn(ctx, sess, emitter, audio, "audio/webm")

	require.Len(t, retriever.gotQueries, 1)
	assert.Equal(t, "original_query", retriever.gotQueries[0].Label)
	assert.Equal(t, "oil prices", retriever.gotQueries[0].Text)
	assert.NotEmpty(t, emitter.warningMessages())
	assert.Contains(t, emitter.statuses(), dto.StatusComplete)
}

func TestRunTurn_EmptyEnhancementFallsBackToOriginalQuestion(t *testing.T) {
	retriever := &stubRetriever{passages: []*entity.RetrievedPassage{passage(0.9)}}
	orch := newTestOrchestrator(
		&stubTranscriber{text: "housing market"},
		&stubEnhancer{subQueries: []enhance.SubQuery{}},
		retriever,
		&stubGenerator{script: "script"},
		&stubSynthesizer{pcm: make([]byte, 100)},
		&stubRecorder{},
	)

	sess, audio, ctx, cancel := processingSession(t)
	defer cancel()
	emitter := &fakeEmitter{}

	orch.RunTurn(ctx, sess, emitter, audio, "audio/webm")

	require.Len(t, retriever.gotQueries, 1)
	assert.Equal(t, "original_query", retriever.gotQueries[0].Label)
	assert.Equal(t, "housing market", retriever.gotQueries[0].Text)
	assert.Empty(t, emitter.errorMessages())
	assert.Contains(t, emitter.statuses(), dto.StatusComplete)
}

func TestRunTurn_AnonymousSessionSkipsHistoryButKeepsAnalytics(t *testing.T) {
	recorder := &stubRecorder{}
	prefs := &stubPrefs{}
	bus := &stubBus{}
	orch := NewOrchestrator(
		&stubTranscriber{text: "q"},
		&stubEnhancer{subQueries: []enhance.SubQuery{{Label: "original_query", Text: "q"}}},
		&stubRetriever{passages: []*entity.RetrievedPassage{passage(0.9)}},
		&stubGenerator{script: "script"},
		&stubSynthesizer{pcm: make([]byte, 100)},
		prefs,
		recorder,
		bus,
		logger.NewNoopLogger(),
		config.TimeoutConfig{},
	)

	sess, audio, ctx, cancel := processingSessionFor(t, "")
	defer cancel()
	emitter := &fakeEmitter{}

	orch.RunTurn(ctx, sess, emitter, audio, "audio/webm")

	assert.Contains(t, emitter.statuses(), dto.StatusComplete)
	assert.Empty(t, emitter.errorMessages())
	assert.Zero(t, prefs.calls)
	assert.Empty(t, recorder.records)

	published := bus.published()
	require.Len(t, published, 1)
	completed, ok := published[0].(events.TurnCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, "", completed.UserId)
	assert.Equal(t, "q", completed.Question)
}

func TestRunTurn_UnparseableUserIdSkipsHistoryOnly(t *testing.T) {
	recorder := &stubRecorder{}
	bus := &stubBus{}
	orch := NewOrchestrator(
		&stubTranscriber{text: "q"},
		&stubEnhancer{subQueries: []enhance.SubQuery{{Label: "original_query", Text: "q"}}},
		&stubRetriever{passages: []*entity.RetrievedPassage{passage(0.9)}},
		&stubGenerator{script: "script"},
		&stubSynthesizer{pcm: make([]byte, 100)},
		&stubPrefs{err: errors.New("no such user")},
		recorder,
		bus,
		logger.NewNoopLogger(),
		config.TimeoutConfig{},
	)

	sess, audio, ctx, cancel := processingSessionFor(t, "not-a-uuid")
	defer cancel()
	emitter := &fakeEmitter{}

	orch.RunTurn(ctx, sess, emitter, audio, "audio/webm")

	assert.Contains(t, emitter.statuses(), dto.StatusComplete)
	assert.Empty(t, recorder.records)

	published := bus.published()
	require.Len(t, published, 1)
	completed, ok := published[0].(events.TurnCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, "not-a-uuid", completed.UserId)
}

func TestRunTurn_TranscriptionFailureAbortsWithErrorFrame(t *testing.T) {
	recorder := &stubRecorder{}
	orch := newTestOrchestrator(
		&stubTranscriber{err: errors.New("speech api down")},
		&stubEnhancer{},
		&stubRetriever{},
		&stubGenerator{},
		&stubSynthesizer{},
		recorder,
	)

	sess, audio, ctx, cancel := processingSession(t)
	defer cancel()
	emitter := &fakeEmitter{}

	orch.RunTurn(ctx, sess, emitter, audio, "audio/webm")

	assert.Equal(t, []string{dto.StatusTranscribing}, emitter.statuses())
	require.Len(t, emitter.errorMessages(), 1)
	assert.Contains(t, emitter.errorMessages()[0], "transcribe")
	assert.Empty(t, recorder.records)
	assert.Equal(t, StateIdle, sess.State())
}

func TestRunTurn_PartialRetrievalFailureWarnsButCompletes(t *testing.T) {
	retriever := &stubRetriever{
		passages:     []*entity.RetrievedPassage{passage(0.9)},
		failedLabels: []string{"enhanced_query_1"},
	}
	orch := newTestOrchestrator(
		&stubTranscriber{text: "q"},
		&stubEnhancer{subQueries: []enhance.SubQuery{
			{Label: "original_query", Text: "q"},
			{Label: "enhanced_query_1", Text: "r"},
		}},
		retriever,
		&stubGenerator{script: "script"},
		&stubSynthesizer{pcm: make([]byte, 100)},
		&stubRecorder{},
	)

	sess, audio, ctx, cancel := processingSession(t)
	defer cancel()
	emitter := &fakeEmitter{}

	orch.RunTurn(ctx, sess, emitter, audio, "audio/webm")

	assert.NotEmpty(t, emitter.warningMessages())
	assert.Empty(t, emitter.errorMessages())
	assert.Contains(t, emitter.statuses(), dto.StatusComplete)
}

func TestRunTurn_EmptyRetrievalWarnsAndStillAnswers(t *testing.T) {
	retriever := &stubRetriever{failedLabels: []string{"original_query"}}
	orch := newTestOrchestrator(
		&stubTranscriber{text: "q"},
		&stubEnhancer{subQueries: []enhance.SubQuery{{Label: "original_query", Text: "q"}}},
		retriever,
		&stubGenerator{script: "I could not find anything relevant."},
		&stubSynthesizer{pcm: make([]byte, 100)},
		&stubRecorder{},
	)

	sess, audio, ctx, cancel := processingSession(t)
	defer cancel()
	emitter := &fakeEmitter{}

	orch.RunTurn(ctx, sess, emitter, audio, "audio/webm")

	assert.Empty(t, emitter.errorMessages())
	assert.NotEmpty(t, emitter.warningMessages())
	assert.Contains(t, emitter.statuses(), dto.StatusComplete)
}

func TestRunTurn_CancelledTurnStaysQuiet(t *testing.T) {
	orch := newTestOrchestrator(
		&stubTranscriber{err: context.Canceled},
		&stubEnhancer{},
		&stubRetriever{},
		&stubGenerator{},
		&stubSynthesizer{},
		&stubRecorder{},
	)

	sess, audio, ctx, cancel := processingSession(t)
	emitter := &fakeEmitter{}

	cancel() // reset arrived before the pipeline got going
	orch.RunTurn(ctx, sess, emitter, audio, "audio/webm")

	assert.Empty(t, emitter.errorMessages())
	assert.Equal(t, StateIdle, sess.State())
}
