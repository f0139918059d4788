// internal/assistant/pipeline.go
package assistant

import (
	"context"
	"fmt"
	"time"

	"workspace-assistant/internal/assistant/aggregation"
	"workspace-assistant/internal/assistant/enrichment"
	"workspace-assistant/internal/assistant/filter"
	"workspace-assistant/internal/assistant/format"
	"workspace-assistant/internal/assistant/instructions"
	"workspace-assistant/internal/assistant/queryanalysis"
	"workspace-assistant/internal/assistant/retrieval"
	apperrors "workspace-assistant/internal/common/errors"
	"workspace-assistant/internal/common/logger"
	"workspace-assistant/internal/common/metrics"
	"workspace-assistant/internal/models"
)

// Generator produces the final narrative answer from a system prompt and a
// user message. Aggregate query types never reach it.
type Generator interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// Pipeline wires the full query path: analysis, filtering, retrieval,
// enrichment, then either deterministic aggregation or prompt assembly plus
// generation.
type Pipeline struct {
	builder   *filter.Builder
	retriever *retrieval.Retriever
	enricher  *enrichment.Enricher
	generator Generator
	log       logger.Logger
}

func NewPipeline(builder *filter.Builder, retriever *retrieval.Retriever, enricher *enrichment.Enricher, generator Generator, log logger.Logger) *Pipeline {
	return &Pipeline{
		builder:   builder,
		retriever: retriever,
		enricher:  enricher,
		generator: generator,
		log:       log,
	}
}

// Process answers one assistant request. Aggregate queries are answered
// entirely in-process; narrative queries call the generation provider and
// propagate its failures to the caller.
func (p *Pipeline) Process(ctx context.Context, req models.AssistantRequest) (*models.AssistantResponse, error) {
	started := time.Now()

	analysis := queryanalysis.Analyze(req.Message)
	retrievalFilter := p.builder.Build(analysis, req.WorkspaceID, req.ChannelName)
	limit := p.builder.ResultCap(analysis.Type)

	p.log.Info("processing query", map[string]interface{}{
		"workspace_id": req.WorkspaceID,
		"query_type":   string(analysis.Type),
		"limit":        limit,
	})

	hits := p.retriever.Retrieve(ctx, req.Message, analysis, retrievalFilter, limit)
	messages := p.enricher.Enrich(ctx, req.WorkspaceID, hits)

	var response *models.AssistantResponse
	var path string
	if analysis.Type.IsAggregate() {
		path = "aggregate"
		response = p.aggregate(req.Message, analysis, retrievalFilter, messages)
	} else {
		path = "narrative"
		var err error
		response, err = p.narrative(ctx, req, analysis, messages)
		if err != nil {
			metrics.QueriesFailed.WithLabelValues(string(analysis.Type), string(apperrors.ErrCodeGenerationFailed)).Inc()
			return nil, err
		}
	}

	metrics.QueriesProcessed.WithLabelValues(string(analysis.Type), path).Inc()
	metrics.QueryDuration.WithLabelValues(string(analysis.Type)).Observe(time.Since(started).Seconds())
	return response, nil
}

func (p *Pipeline) aggregate(query string, analysis models.QueryAnalysis, retrievalFilter models.RetrievalFilter, messages []models.MessageContext) *models.AssistantResponse {
	ascending := queryanalysis.WantsAscending(query)
	result := aggregation.Aggregate(analysis.Type, messages, ascending)
	answer := format.FormatAggregate(result, retrievalFilter.ChannelName, analysis.Entities.Timeframe, ascending)

	count := len(messages)
	return &models.AssistantResponse{
		Message: answer,
		Metadata: models.ResponseMetadata{
			QueryType:        analysis.Type,
			MessageCount:     &count,
			AggregatedResult: result,
			Analysis:         analysis,
		},
	}
}

func (p *Pipeline) narrative(ctx context.Context, req models.AssistantRequest, analysis models.QueryAnalysis, messages []models.MessageContext) (*models.AssistantResponse, error) {
	systemPrompt := fmt.Sprintf("%s\n\nMessage context:\n%s",
		instructions.Compose(analysis), format.FormatNarrative(messages))
	userMessage := buildUserMessage(req)

	metrics.GenerationCalls.Inc()
	answer, err := p.generator.Complete(ctx, systemPrompt, userMessage)
	if err != nil {
		p.log.WithError(err).Error("generation failed", map[string]interface{}{
			"workspace_id": req.WorkspaceID,
			"query_type":   string(analysis.Type),
		})
		return nil, apperrors.NewGenerationFailedError(err.Error())
	}

	count := len(messages)
	return &models.AssistantResponse{
		Message: answer,
		Metadata: models.ResponseMetadata{
			QueryType:    analysis.Type,
			MessageCount: &count,
			Analysis:     analysis,
		},
	}, nil
}

// buildUserMessage pairs the question with a short line about who is asking
// so the model can address them correctly. The message context travels in
// the system prompt, keeping the user turn to just the question.
func buildUserMessage(req models.AssistantRequest) string {
	asker := req.UserID
	if req.User != nil && req.User.Username != "" {
		asker = "@" + req.User.Username
		if req.User.FullName != "" {
			asker = fmt.Sprintf("%s (%s)", req.User.FullName, asker)
		}
	}
	return fmt.Sprintf("Asked by: %s\nQuestion: %s", asker, req.Message)
}
