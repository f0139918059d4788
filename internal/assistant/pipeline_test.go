package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"workspace-assistant/internal/assistant/enrichment"
	"workspace-assistant/internal/assistant/filter"
	"workspace-assistant/internal/assistant/retrieval"
	"workspace-assistant/internal/common/config"
	apperrors "workspace-assistant/internal/common/errors"
	"workspace-assistant/internal/common/logger"
	"workspace-assistant/internal/models"
)

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

type fakeSearcher struct {
	hits       []models.RawHit
	lastFilter models.RetrievalFilter
	lastLimit  int
}

func (f *fakeSearcher) Search(_ context.Context, _ []float32, filter models.RetrievalFilter, limit int) ([]models.RawHit, error) {
	f.lastFilter = filter
	f.lastLimit = limit
	return f.hits, nil
}

type fakeStore struct {
	channels []models.ChannelInfo
	users    []models.UserInfo
}

func (f *fakeStore) Channels(context.Context, string, []string) ([]models.ChannelInfo, error) {
	return f.channels, nil
}

func (f *fakeStore) Users(context.Context, []string) ([]models.UserInfo, error) {
	return f.users, nil
}

type fakeGenerator struct {
	answer     string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (f *fakeGenerator) Complete(_ context.Context, systemPrompt, userMessage string) (string, error) {
	f.calls++
	f.lastSystem = systemPrompt
	f.lastUser = userMessage
	return f.answer, f.err
}

func newTestPipeline(searcher *fakeSearcher, store *fakeStore, generator *fakeGenerator) *Pipeline {
	cfg := config.RetrievalConfig{CountLimit: 1000, StatisticalLimit: 500, ChannelLimit: 100, DefaultLimit: 10}
	log := logger.NewNoOpLogger()
	return NewPipeline(
		filter.NewBuilder(cfg),
		retrieval.NewRetriever(fakeEmbedder{}, searcher, log),
		enrichment.NewEnricher(store, log),
		generator,
		log,
	)
}

func rawHit(userID string, latest, deleted bool) models.RawHit {
	return models.RawHit{
		Content: "some message",
		Metadata: models.HitMetadata{
			ChannelID: "ch-1",
			UserID:    userID,
			CreatedAt: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
			Version:   1,
			IsLatest:  latest,
			IsDeleted: deleted,
		},
	}
}

func TestProcess_CountQuery(t *testing.T) {
	searcher := &fakeSearcher{hits: []models.RawHit{
		rawHit("u-1", true, false),
		rawHit("u-2", true, false),
		rawHit("u-1", true, false),
	}}
	generator := &fakeGenerator{answer: "should not be used"}
	p := newTestPipeline(searcher, &fakeStore{}, generator)

	resp, err := p.Process(context.Background(), models.AssistantRequest{
		Message:     "How many messages today in #general",
		WorkspaceID: "ws-1",
		UserID:      "u-9",
	})

	assert.NoError(t, err)
	assert.Equal(t, "I found exactly 3 messages in channel #general during today.", resp.Message)
	assert.Equal(t, models.QueryTypeCount, resp.Metadata.QueryType)
	if assert.NotNil(t, resp.Metadata.AggregatedResult) && assert.NotNil(t, resp.Metadata.AggregatedResult.Count) {
		assert.Equal(t, 3, *resp.Metadata.AggregatedResult.Count)
	}
	assert.Equal(t, 0, generator.calls, "aggregate path must not call the generation provider")
	assert.Equal(t, 1000, searcher.lastLimit)
	assert.Equal(t, "general", searcher.lastFilter.ChannelName)
	assert.NotNil(t, searcher.lastFilter.CreatedAtGTE)
}

func TestProcess_CountExcludesDeletedAndStale(t *testing.T) {
	searcher := &fakeSearcher{hits: []models.RawHit{
		rawHit("u-1", true, false),
		rawHit("u-1", false, false),
		rawHit("u-1", true, true),
	}}
	p := newTestPipeline(searcher, &fakeStore{}, &fakeGenerator{})

	resp, err := p.Process(context.Background(), models.AssistantRequest{
		Message:     "how many messages are in here",
		WorkspaceID: "ws-1",
	})

	assert.NoError(t, err)
	assert.Equal(t, "I found exactly 1 message.", resp.Message)
}

func TestProcess_StatisticalLeastQuery(t *testing.T) {
	searcher := &fakeSearcher{hits: []models.RawHit{
		rawHit("u-a", true, false),
		rawHit("u-a", true, false),
		rawHit("u-b", true, false),
	}}
	store := &fakeStore{users: []models.UserInfo{
		{ID: "u-a", Username: "alice"},
		{ID: "u-b", Username: "bob"},
	}}
	generator := &fakeGenerator{}
	p := newTestPipeline(searcher, store, generator)

	resp, err := p.Process(context.Background(), models.AssistantRequest{
		Message:     "who is the least active user",
		WorkspaceID: "ws-1",
	})

	assert.NoError(t, err)
	assert.Contains(t, resp.Message, "least active users")
	assert.True(t, strings.Index(resp.Message, "@bob") < strings.Index(resp.Message, "@alice"),
		"ascending ranking must list bob before alice:\n%s", resp.Message)
	assert.Equal(t, 0, generator.calls)
	assert.Equal(t, 500, searcher.lastLimit)
}

func TestProcess_NarrativeQueryCallsGenerator(t *testing.T) {
	searcher := &fakeSearcher{hits: []models.RawHit{rawHit("u-1", true, false)}}
	store := &fakeStore{
		channels: []models.ChannelInfo{{ID: "ch-1", Name: "general"}},
		users:    []models.UserInfo{{ID: "u-1", Username: "alice", FullName: "Alice Smith"}},
	}
	generator := &fakeGenerator{answer: "Alice talked about the deployment."}
	p := newTestPipeline(searcher, store, generator)

	resp, err := p.Process(context.Background(), models.AssistantRequest{
		Message:     "What did @alice say about deployment",
		WorkspaceID: "ws-1",
		UserID:      "u-9",
		User:        &models.RequestUser{Username: "carol", FullName: "Carol Jones"},
	})

	assert.NoError(t, err)
	assert.Equal(t, "Alice talked about the deployment.", resp.Message)
	assert.Equal(t, models.QueryTypeUserContext, resp.Metadata.QueryType)
	assert.Nil(t, resp.Metadata.AggregatedResult)
	assert.Equal(t, 1, generator.calls)
	assert.Contains(t, generator.lastSystem, "Focus on user-specific interactions")
	assert.Contains(t, generator.lastSystem, "Alice Smith (@alice) in #general")
	assert.Contains(t, generator.lastUser, "Asked by: Carol Jones (@carol)")
	assert.Equal(t, []string{"alice"}, resp.Metadata.Analysis.Entities.Users)
}

func TestProcess_NarrativeWithNoHitsStillAnswers(t *testing.T) {
	generator := &fakeGenerator{answer: "Nothing relevant was found."}
	p := newTestPipeline(&fakeSearcher{}, &fakeStore{}, generator)

	resp, err := p.Process(context.Background(), models.AssistantRequest{
		Message:     "summarize the discussion",
		WorkspaceID: "ws-1",
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, generator.calls)
	assert.Contains(t, generator.lastSystem, "No valid messages were found for this query.")
	if assert.NotNil(t, resp.Metadata.MessageCount) {
		assert.Equal(t, 0, *resp.Metadata.MessageCount)
	}
}

func TestProcess_GenerationFailurePropagates(t *testing.T) {
	generator := &fakeGenerator{err: errors.New("GENERATION_TIMEOUT")}
	p := newTestPipeline(&fakeSearcher{}, &fakeStore{}, generator)

	resp, err := p.Process(context.Background(), models.AssistantRequest{
		Message:     "summarize the discussion",
		WorkspaceID: "ws-1",
	})

	assert.Nil(t, resp)
	var stdErr *apperrors.StandardError
	if assert.ErrorAs(t, err, &stdErr) {
		assert.Equal(t, apperrors.ErrCodeGenerationFailed, stdErr.Code)
	}
}
