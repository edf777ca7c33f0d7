package enrich

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/malhajar17/jim-and-dwight/internal/model"
	"github.com/malhajar17/jim-and-dwight/internal/sources"
)

type mockCollector struct {
	mock.Mock
}

func (m *mockCollector) Collect(ctx context.Context, person string, queries []string) (*sources.Bundle, error) {
	args := m.Called(ctx, person, queries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sources.Bundle), args.Error(1)
}

type mockSummarizer struct {
	mock.Mock
}

func (m *mockSummarizer) Summarize(ctx context.Context, personName string, contents []string) *model.Intelligence {
	args := m.Called(ctx, personName, contents)
	return args.Get(0).(*model.Intelligence)
}

func goodIntel() *model.Intelligence {
	intel := &model.Intelligence{
		Summary: "Active in fintech.",
		Quality: model.QualityHigh,
	}
	intel.FillMissingCategories()
	return intel
}

func lowIntel(reason string) *model.Intelligence {
	intel := &model.Intelligence{
		Quality: model.QualityLow,
		Error:   reason,
	}
	intel.FillMissingCategories()
	return intel
}
