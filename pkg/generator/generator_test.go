package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dealsight/dealsight-engine/pkg/llm"
	"github.com/dealsight/dealsight-engine/pkg/schema"
	"github.com/dealsight/dealsight-engine/pkg/sqlsafe"
)

type staticSource struct{}

func (staticSource) Snapshot(ctx context.Context) *schema.Snapshot {
	return schema.Static()
}

func newTestGenerator(mock *llm.MockClient) *Generator {
	validator := sqlsafe.NewStrictValidator(schema.Static(), 0)
	return New(mock, staticSource{}, validator, zap.NewNop())
}

func TestGenerate_ValidModelOutput(t *testing.T) {
	mock := &llm.MockClient{
		GenerateResponseFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return "SELECT TOP 10 DealershipName, SUM(TRY_CAST(REPLACE(TotalGross, ',', '') AS DECIMAL(18,2))) AS TotalGross FROM DailySales WHERE IsDeleted = 0 GROUP BY DealershipName", nil
		},
	}

	res := newTestGenerator(mock).Generate(context.Background(), "total gross by dealership")
	require.NotNil(t, res)
	require.NotNil(t, res.Analysis)
	assert.Equal(t, "DailySales", res.Analysis.Table.Table)
	assert.False(t, res.FromFallback)
	assert.NoError(t, res.ModelErr)
	assert.Empty(t, res.RejectReason)
	assert.True(t, strings.HasPrefix(res.SQL, "SELECT"))
}

func TestGenerate_StripsFences(t *testing.T) {
	mock := &llm.MockClient{
		GenerateResponseFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return "```sql\nSELECT TOP 5 DealershipName FROM DailySales\n```", nil
		},
	}

	res := newTestGenerator(mock).Generate(context.Background(), "list dealerships")
	assert.False(t, res.FromFallback)
	assert.Equal(t, "SELECT TOP 5 DealershipName FROM DailySales", res.SQL)
}

func TestGenerate_ModelError(t *testing.T) {
	boom := errors.New("upstream down")
	mock := &llm.MockClient{
		GenerateResponseFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return "", boom
		},
	}

	res := newTestGenerator(mock).Generate(context.Background(), "total gross")
	assert.True(t, res.FromFallback)
	assert.Equal(t, sqlsafe.FallbackStatement, res.SQL)
	assert.ErrorIs(t, res.ModelErr, boom)
}

func TestGenerate_EmptyModelOutput(t *testing.T) {
	mock := &llm.MockClient{}

	res := newTestGenerator(mock).Generate(context.Background(), "total gross")
	assert.True(t, res.FromFallback)
	assert.Equal(t, sqlsafe.FallbackStatement, res.SQL)
	assert.NotEmpty(t, res.RejectReason)
}

func TestGenerate_UnsafeModelOutput(t *testing.T) {
	mock := &llm.MockClient{
		GenerateResponseFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return "DROP TABLE DailySales", nil
		},
	}

	res := newTestGenerator(mock).Generate(context.Background(), "total gross")
	assert.True(t, res.FromFallback)
	assert.Equal(t, sqlsafe.FallbackStatement, res.SQL)
	assert.Equal(t, "DROP TABLE DailySales", res.RawModelSQL)
	assert.NotEmpty(t, res.RejectReason)
}

func TestGenerate_SystemPromptCarriesSchemaAndHints(t *testing.T) {
	mock := &llm.MockClient{
		GenerateResponseFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return "SELECT TOP 1 ID FROM DailySales", nil
		},
	}

	g := newTestGenerator(mock)
	g.Generate(context.Background(), "total gross for Sunrise Motors in october 2025")

	require.Len(t, mock.Calls, 1)
	sys := mock.Calls[0].System
	assert.Contains(t, sys, "DailySales")
	assert.Contains(t, sys, "IsDeleted = 0 AND IsCarryOver = 0")
	assert.Contains(t, sys, "Most likely table: DailySales")
	assert.Contains(t, sys, "october")
	assert.Zero(t, mock.Calls[0].Temperature)
}

func TestGenerate_DropsInjectionLookingFilterValues(t *testing.T) {
	mock := &llm.MockClient{
		GenerateResponseFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return "SELECT TOP 1 ID FROM DailySales", nil
		},
	}

	g := newTestGenerator(mock)
	res := g.Generate(context.Background(), "sales for dealership \"x' OR '1'='1\"")

	for _, f := range res.Analysis.Filters {
		assert.NotContains(t, f.Value, "'1'='1")
	}
	require.Len(t, mock.Calls, 1)
	assert.NotContains(t, mock.Calls[0].System, "1'='1")
}
