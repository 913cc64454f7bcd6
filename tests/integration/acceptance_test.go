package integration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	filesource "github.com/iho/atmledger/internal/adapter/source/file"
	"github.com/iho/atmledger/internal/generator"
	"github.com/iho/atmledger/internal/usecase"
)

// TestDefaultDataSetBalances generates the full default data set and checks
// every final balance against the known values.
func TestDefaultDataSetBalances(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data_files")

	created, err := generator.EnsureDataFiles(ctx, dir, generator.DefaultConfig(), filesource.NewSink(dir, filesource.DefaultExt), zerolog.Nop())
	require.NoError(t, err)
	require.True(t, created)

	uc := usecase.NewRunUseCase(usecase.RunConfig{
		Provider: filesource.NewProvider(dir, filesource.DefaultExt),
	})
	result, err := uc.Run(ctx)
	require.NoError(t, err)

	require.Len(t, result.Sources, generator.DefaultSources)
	assert.Equal(t, int64(generator.DefaultSources*generator.DefaultTransactions), result.Totals.Applied())
	assert.Equal(t, int64(generator.DefaultSources*2), result.Totals.Ignored)
	assert.Zero(t, result.Totals.Malformed)
	assert.Zero(t, result.Totals.Failed)
	assert.Equal(t, int64(generator.DefaultAccounts), result.AccountsCreated())

	report := usecase.NewReconciliationUseCase().Reconcile(result, generator.ExpectedBalances())
	for _, d := range report.Discrepancies {
		t.Errorf("account %02d: expected %s, got %s", d.AccountID, d.ExpectedBalance, d.RecordedBalance)
	}
	assert.True(t, report.Consistent())
}
