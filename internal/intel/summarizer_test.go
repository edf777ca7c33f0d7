package intel

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/malhajar17/jim-and-dwight/internal/config"
	"github.com/malhajar17/jim-and-dwight/internal/model"
	"github.com/malhajar17/jim-and-dwight/pkg/anthropic"
)

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) Complete(ctx context.Context, req anthropic.CompletionRequest) (*anthropic.Completion, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.Completion), args.Error(1)
}

func newSummarizer(llmClient anthropic.Client, cfg config.IntelConfig) *Summarizer {
	return NewSummarizer(llmClient, config.AnthropicConfig{Model: "claude-haiku-4-5-20251001"}, cfg)
}

func TestSummarize_FillsMissingCategories(t *testing.T) {
	llmClient := &mockLLM{}
	llmClient.On("Complete", mock.Anything, mock.MatchedBy(func(req anthropic.CompletionRequest) bool {
		return req.JSONMode && strings.Contains(req.Prompt, "Jane Doe")
	})).Return(&anthropic.Completion{
		Text: `{"categories":{"current_activity":["speaking at FinTech Forward"]},"summary":"CTO at Acme.","quality":"high"}`,
	}, nil)

	intel := newSummarizer(llmClient, config.IntelConfig{}).
		Summarize(context.Background(), "Jane Doe", []string{"Jane Doe keynoted FinTech Forward."})

	require.NotNil(t, intel)
	assert.Empty(t, intel.Error)
	assert.Equal(t, model.QualityHigh, intel.Quality)
	assert.Equal(t, []string{"speaking at FinTech Forward"}, intel.Categories[model.CategoryCurrentActivity])
	for _, cat := range model.AllCategories() {
		require.NotEmpty(t, intel.Categories[cat], cat)
	}
	assert.Equal(t, []string{model.CategoryPlaceholder}, intel.Categories[model.CategoryOutreachAngles])
}

func TestSummarize_TruncatesToBudget(t *testing.T) {
	budget := 200
	var sent string
	llmClient := &mockLLM{}
	llmClient.On("Complete", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sent = args.Get(1).(anthropic.CompletionRequest).Prompt
		}).
		Return(&anthropic.Completion{Text: `{"summary":"ok","quality":"medium"}`}, nil)

	contents := []string{strings.Repeat("a", 300), strings.Repeat("b", 300)}
	intel := newSummarizer(llmClient, config.IntelConfig{ContextBudget: budget}).
		Summarize(context.Background(), "Jane", contents)

	require.NotNil(t, intel)
	assert.Empty(t, intel.Error)
	assert.Contains(t, sent, TruncationMarker)

	// Content portion never exceeds budget + marker.
	_, body, found := strings.Cut(sent, "Content:\n")
	require.True(t, found)
	assert.LessOrEqual(t, len(body), budget+len(TruncationMarker))
}

func TestSummarize_TruncationKeepsValidUTF8(t *testing.T) {
	budget := 101 // falls mid-rune with two-byte runes
	var sent string
	llmClient := &mockLLM{}
	llmClient.On("Complete", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sent = args.Get(1).(anthropic.CompletionRequest).Prompt
		}).
		Return(&anthropic.Completion{Text: `{"summary":"ok","quality":"medium"}`}, nil)

	intel := newSummarizer(llmClient, config.IntelConfig{ContextBudget: budget}).
		Summarize(context.Background(), "Jane", []string{strings.Repeat("é", 200)})

	require.NotNil(t, intel)
	_, body, found := strings.Cut(sent, "Content:\n")
	require.True(t, found)
	assert.True(t, utf8.ValidString(body))
	content := strings.TrimSuffix(body, TruncationMarker)
	assert.True(t, utf8.ValidString(content))
	assert.LessOrEqual(t, len(content), budget)
}

func TestSummarize_ShortContentNotTruncated(t *testing.T) {
	llmClient := &mockLLM{}
	llmClient.On("Complete", mock.Anything, mock.MatchedBy(func(req anthropic.CompletionRequest) bool {
		return !strings.Contains(req.Prompt, TruncationMarker)
	})).Return(&anthropic.Completion{Text: `{"summary":"ok","quality":"medium"}`}, nil)

	intel := newSummarizer(llmClient, config.IntelConfig{}).
		Summarize(context.Background(), "Jane", []string{"short bio"})

	require.NotNil(t, intel)
	llmClient.AssertExpectations(t)
}

func TestSummarize_ParseFailureDegrades(t *testing.T) {
	raw := "Sorry, I cannot produce JSON today. " + strings.Repeat("padding ", 100)
	llmClient := &mockLLM{}
	llmClient.On("Complete", mock.Anything, mock.Anything).
		Return(&anthropic.Completion{Text: raw}, nil)

	intel := newSummarizer(llmClient, config.IntelConfig{}).
		Summarize(context.Background(), "Jane", []string{"bio"})

	require.NotNil(t, intel)
	assert.Equal(t, model.QualityLow, intel.Quality)
	assert.NotEmpty(t, intel.Error)
	assert.LessOrEqual(t, len(intel.RawResponse), 500)
	assert.True(t, strings.HasPrefix(raw, intel.RawResponse))
	for _, cat := range model.AllCategories() {
		assert.Equal(t, []string{ParseFailurePlaceholder}, intel.Categories[cat], cat)
	}
}

func TestSummarize_ProviderErrorDegrades(t *testing.T) {
	llmClient := &mockLLM{}
	llmClient.On("Complete", mock.Anything, mock.Anything).
		Return(nil, eris.New("overloaded"))

	intel := newSummarizer(llmClient, config.IntelConfig{}).
		Summarize(context.Background(), "Jane", []string{"bio"})

	require.NotNil(t, intel)
	assert.Equal(t, model.QualityLow, intel.Quality)
	assert.Contains(t, intel.Error, "extraction call failed")
	assert.Empty(t, intel.RawResponse)
}

func TestSummarize_DefaultsQualityWhenOmitted(t *testing.T) {
	llmClient := &mockLLM{}
	llmClient.On("Complete", mock.Anything, mock.Anything).
		Return(&anthropic.Completion{Text: `{"summary":"ok"}`}, nil)

	intel := newSummarizer(llmClient, config.IntelConfig{}).
		Summarize(context.Background(), "Jane", []string{"bio"})

	require.NotNil(t, intel)
	assert.Equal(t, model.QualityMedium, intel.Quality)
}
