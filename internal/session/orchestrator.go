package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"news-chatter-be/internal/config"
	"news-chatter-be/internal/constant"
	"news-chatter-be/internal/dto"
	"news-chatter-be/internal/entity"
	"news-chatter-be/internal/pkg/logger"
	"news-chatter-be/internal/retrieval"
	"news-chatter-be/pkg/enhance"
	"news-chatter-be/pkg/events"
	"news-chatter-be/pkg/llm"
	"news-chatter-be/pkg/speech/stt"
	"news-chatter-be/pkg/speech/tts"
)

// audioFrameSize is how much of the WAV answer goes into each binary frame.
const audioFrameSize = 8192

// Emitter writes frames back to one client. Implementations serialize writes;
// the pipeline goroutine and the read loop may both emit.
type Emitter interface {
	SendJSON(v interface{}) error
	SendBinary(data []byte) error
}

type IEnhancer interface {
	Enhance(ctx context.Context, question string) ([]enhance.SubQuery, error)
}

type IRetriever interface {
	Retrieve(ctx context.Context, subQueries []enhance.SubQuery, filters retrieval.Filters) ([]*entity.RetrievedPassage, []string)
}

// IPreferenceSource resolves a user's stored preferences into retrieval
// filters.
type IPreferenceSource interface {
	FiltersFor(ctx context.Context, userId string) (retrieval.Filters, error)
}

// ITurnRecorder persists a finished turn off the hot path.
type ITurnRecorder interface {
	RecordTurn(record *entity.TurnRecord) error
}

// Orchestrator runs the voice turn pipeline: transcribe, enhance, retrieve,
// generate, synthesize, stream. One instance serves every connection.
type Orchestrator struct {
	transcriber stt.ITranscriber
	enhancer    IEnhancer
	retriever   IRetriever
	generator   llm.IProvider
	synthesizer tts.ISynthesizer
	prefs       IPreferenceSource
	recorder    ITurnRecorder
	bus         events.IPublisher
	logger      logger.ILogger
	timeouts    config.TimeoutConfig
}

func NewOrchestrator(
	transcriber stt.ITranscriber,
	enhancer IEnhancer,
	retriever IRetriever,
	generator llm.IProvider,
	synthesizer tts.ISynthesizer,
	prefs IPreferenceSource,
	recorder ITurnRecorder,
	bus events.IPublisher,
	log logger.ILogger,
	timeouts config.TimeoutConfig,
) *Orchestrator {
	return &Orchestrator{
		transcriber: transcriber,
		enhancer:    enhancer,
		retriever:   retriever,
		generator:   generator,
		synthesizer: synthesizer,
		prefs:       prefs,
		recorder:    recorder,
		bus:         bus,
		logger:      log,
		timeouts:    timeouts,
	}
}

// RunTurn drives one buffered utterance through the pipeline, emitting status
// frames as it goes. It always returns the session to idle. A cancelled
// context (reset or disconnect) aborts quietly without an error frame.
func (o *Orchestrator) RunTurn(ctx context.Context, sess *Session, emitter Emitter, audio []byte, mimeType string) {
	defer sess.FinishProcessing()
	startedAt := time.Now()

	question, ok := o.transcribe(ctx, sess, emitter, audio, mimeType)
	if !ok {
		return
	}

	subQueries := o.enhance(ctx, emitter, question)
	if ctx.Err() != nil {
		return
	}

	passages, ok := o.retrieve(ctx, sess, emitter, subQueries)
	if !ok {
		return
	}

	script, ok := o.generate(ctx, sess, emitter, question, subQueries, passages)
	if !ok {
		return
	}

	wav, ok := o.synthesize(ctx, sess, emitter, script)
	if !ok {
		return
	}

	if !o.streamAudio(ctx, emitter, wav) {
		return
	}

	_ = emitter.SendJSON(dto.NewStatusMessage(dto.StatusComplete))
	o.finishTurn(sess, question, script, passages, len(wav), startedAt)
}

func (o *Orchestrator) transcribe(ctx context.Context, sess *Session, emitter Emitter, audio []byte, mimeType string) (string, bool) {
	_ = emitter.SendJSON(dto.NewStatusMessage(dto.StatusTranscribing))

	tctx, cancel := withTimeout(ctx, o.timeouts.Transcribe)
	defer cancel()

	question, err := o.transcriber.Transcribe(tctx, audio, mimeType)
	if err != nil {
		o.failTurn(ctx, sess, emitter, "transcribe", err)
		return "", false
	}
	if strings.TrimSpace(question) == "" {
		o.failTurn(ctx, sess, emitter, "transcribe", fmt.Errorf("empty transcription"))
		return "", false
	}

	msg := dto.NewStatusMessage(dto.StatusTranscribed)
	msg.Text = question
	_ = emitter.SendJSON(msg)
	return question, true
}

// enhance never fails the turn: a broken enhancement falls back to retrieving
// with the original question alone.
func (o *Orchestrator) enhance(ctx context.Context, emitter Emitter, question string) []enhance.SubQuery {
	_ = emitter.SendJSON(dto.NewStatusMessage(dto.StatusEnhancingQuery))

	ectx, cancel := withTimeout(ctx, o.timeouts.Enhance)
	defer cancel()

	subQueries, err := o.enhancer.Enhance(ectx, question)
	if err != nil {
		o.logger.Warn("chatter", "query enhancement failed, using original question", map[string]interface{}{
			"error": err.Error(),
		})
		_ = emitter.SendJSON(dto.NewWarningMessage("query enhancement unavailable, searching with your question as spoken"))
		return enhance.Fallback(question)
	}
	// No rewrites is as useless as an error: retrieval must always get at
	// least the question as spoken.
	if len(subQueries) == 0 {
		o.logger.Warn("chatter", "query enhancement returned no sub-queries, using original question", nil)
		return enhance.Fallback(question)
	}
	return subQueries
}

func (o *Orchestrator) retrieve(ctx context.Context, sess *Session, emitter Emitter, subQueries []enhance.SubQuery) ([]*entity.RetrievedPassage, bool) {
	_ = emitter.SendJSON(dto.NewStatusMessage(dto.StatusRetrieving))

	filters := retrieval.Filters{}
	if sess.UserId != "" {
		loaded, err := o.prefs.FiltersFor(ctx, sess.UserId)
		if err != nil {
			o.logger.Warn("chatter", "preference lookup failed, retrieving unfiltered", map[string]interface{}{
				"user_id": sess.UserId,
				"error":   err.Error(),
			})
			_ = emitter.SendJSON(dto.NewWarningMessage("could not load your preferences, searching all sources"))
		} else {
			filters = loaded
		}
	}

	passages, failedLabels := o.retriever.Retrieve(ctx, subQueries, filters)
	if ctx.Err() != nil {
		return nil, false
	}
	if len(failedLabels) > 0 {
		_ = emitter.SendJSON(dto.NewWarningMessage(fmt.Sprintf("%d of %d searches failed, results may be incomplete", len(failedLabels), len(subQueries))))
	}
	// An empty result does not abort: generation is told there is nothing
	// relevant and answers honestly.
	if len(passages) == 0 {
		_ = emitter.SendJSON(dto.NewWarningMessage("no relevant articles found for this question"))
	}

	return passages, true
}

func (o *Orchestrator) generate(ctx context.Context, sess *Session, emitter Emitter, question string, subQueries []enhance.SubQuery, passages []*entity.RetrievedPassage) (string, bool) {
	_ = emitter.SendJSON(dto.NewStatusMessage(dto.StatusGenerating))

	gctx, cancel := withTimeout(ctx, o.timeouts.Generate)
	defer cancel()

	prompt := fmt.Sprintf(constant.PodcastPromptTemplate, contextBlock(passages), questionBlock(question, subQueries))
	script, err := o.generator.Generate(gctx, prompt)
	if err != nil {
		o.failTurn(ctx, sess, emitter, "generate", err)
		return "", false
	}
	script = strings.TrimSpace(script)
	if script == "" {
		o.failTurn(ctx, sess, emitter, "generate", fmt.Errorf("empty answer"))
		return "", false
	}

	msg := dto.NewStatusMessage(dto.StatusPodcastGenerated)
	msg.Text = script
	_ = emitter.SendJSON(msg)
	return script, true
}

func (o *Orchestrator) synthesize(ctx context.Context, sess *Session, emitter Emitter, script string) ([]byte, bool) {
	_ = emitter.SendJSON(dto.NewStatusMessage(dto.StatusConvertingToAudio))

	sctx, cancel := withTimeout(ctx, o.timeouts.Synthesize)
	defer cancel()

	pcm, err := o.synthesizer.Synthesize(sctx, script)
	if err != nil {
		o.failTurn(ctx, sess, emitter, "synthesize", err)
		return nil, false
	}

	return tts.WrapPCM(pcm, tts.SampleRate, tts.NumChannels, tts.BitsPerSample), true
}

func (o *Orchestrator) streamAudio(ctx context.Context, emitter Emitter, wav []byte) bool {
	_ = emitter.SendJSON(dto.NewStatusMessage(dto.StatusStreamingAudio))

	for offset := 0; offset < len(wav); offset += audioFrameSize {
		if ctx.Err() != nil {
			return false
		}
		end := offset + audioFrameSize
		if end > len(wav) {
			end = len(wav)
		}
		if err := emitter.SendBinary(wav[offset:end]); err != nil {
			o.logger.Warn("chatter", "audio streaming aborted", map[string]interface{}{
				"error": err.Error(),
			})
			return false
		}
	}
	return true
}

func (o *Orchestrator) finishTurn(sess *Session, question, script string, passages []*entity.RetrievedPassage, audioBytes int, startedAt time.Time) {
	turnId := uuid.New()
	o.persistTurn(turnId, sess, question, script, passages)

	if o.bus != nil {
		pctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := o.bus.Publish(pctx, events.TurnCompletedEvent{
			TurnId:       turnId.String(),
			UserId:       sess.UserId,
			Question:     question,
			PassageCount: len(passages),
			AudioBytes:   audioBytes,
			DurationMs:   time.Since(startedAt).Milliseconds(),
			OccurredAt:   time.Now().UTC(),
		})
		if err != nil {
			o.logger.Warn("chatter", "failed to publish turn completed event", map[string]interface{}{
				"turn_id": turnId.String(),
				"error":   err.Error(),
			})
		}
	}

	o.logger.Info("chatter", "turn completed", map[string]interface{}{
		"turn_id":     turnId.String(),
		"user_id":     sess.UserId,
		"passages":    len(passages),
		"duration_ms": time.Since(startedAt).Milliseconds(),
	})
}

// persistTurn records history for authenticated sessions only. It never
// blocks analytics or the completion log.
func (o *Orchestrator) persistTurn(turnId uuid.UUID, sess *Session, question, script string, passages []*entity.RetrievedPassage) {
	if sess.UserId == "" {
		return
	}
	userId, err := uuid.Parse(sess.UserId)
	if err != nil {
		o.logger.Error("chatter", "skipping history for unparseable user id", map[string]interface{}{
			"user_id": sess.UserId,
			"error":   err.Error(),
		})
		return
	}

	sources := make([]entity.TurnSource, 0, len(passages))
	for _, p := range passages {
		sources = append(sources, entity.TurnSource{
			Title:       p.Title,
			SourceURL:   p.SourceURL,
			Similarity:  p.Similarity,
			PublishedAt: p.PublishedAt,
		})
	}

	record := &entity.TurnRecord{
		Id:           turnId,
		UserId:       userId,
		QuestionText: question,
		PodcastText:  script,
		Sources:      sources,
	}
	if err := o.recorder.RecordTurn(record); err != nil {
		o.logger.Error("chatter", "failed to enqueue turn for persistence", map[string]interface{}{
			"turn_id": turnId.String(),
			"error":   err.Error(),
		})
	}
}

// failTurn reports a stage failure to the client unless the turn was reset or
// the connection dropped, in which case nobody is listening.
func (o *Orchestrator) failTurn(ctx context.Context, sess *Session, emitter Emitter, stage string, cause error) {
	if ctx.Err() != nil {
		o.logger.Debug("chatter", "turn aborted", map[string]interface{}{
			"user_id": sess.UserId,
			"stage":   stage,
		})
		return
	}

	o.logger.Error("chatter", "turn failed", map[string]interface{}{
		"user_id": sess.UserId,
		"stage":   stage,
		"error":   cause.Error(),
	})
	_ = emitter.SendJSON(dto.NewErrorMessage(fmt.Sprintf("stage %s failed: %s", stage, cause.Error())))

	if o.bus != nil {
		pctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.bus.Publish(pctx, events.TurnFailedEvent{
			UserId:     sess.UserId,
			Stage:      stage,
			Reason:     cause.Error(),
			OccurredAt: time.Now().UTC(),
		})
	}
}

func contextBlock(passages []*entity.RetrievedPassage) string {
	if len(passages) == 0 {
		return "(no relevant articles found)"
	}

	var b strings.Builder
	for i, p := range passages {
		fmt.Fprintf(&b, "[%d] %s", i+1, p.Title)
		if p.PublishedAt != nil {
			fmt.Fprintf(&b, " (%s)", p.PublishedAt.Format("2006-01-02"))
		}
		b.WriteString("\n")
		b.WriteString(p.Text)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

// questionBlock gives the generator the question as spoken plus the rewrites
// retrieval actually searched with.
func questionBlock(question string, subQueries []enhance.SubQuery) string {
	var rewrites []string
	for _, sq := range subQueries {
		if sq.Label == "original_query" || sq.Text == question {
			continue
		}
		rewrites = append(rewrites, sq.Text)
	}
	if len(rewrites) == 0 {
		return question
	}
	return fmt.Sprintf("%s\n(related angles searched: %s)", question, strings.Join(rewrites, "; "))
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
