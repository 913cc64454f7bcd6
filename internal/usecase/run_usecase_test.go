package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/atmledger/internal/domain"
	"github.com/iho/atmledger/internal/usecase"
	"github.com/iho/atmledger/internal/usecase/mocks"
	"github.com/iho/atmledger/tests/testutil"
)

func TestRunUseCase_PartitioningDoesNotChangeBalances(t *testing.T) {
	records := testutil.Records(20_000, 20)
	expected := testutil.ExpectedBalances(records)

	var reference []domain.AccountBalance
	for _, workers := range []int{1, 2, 3, 10} {
		provider := testutil.NewMemoryProvider(testutil.Partition(records, workers))
		uc := usecase.NewRunUseCase(usecase.RunConfig{Provider: provider})

		result, err := uc.Run(context.Background())
		require.NoError(t, err)
		require.Len(t, result.Sources, workers)
		assert.Equal(t, int64(len(records)), result.Totals.Applied())

		for id, want := range expected {
			assert.True(t, result.Balance(id).Equal(want), "workers=%d account=%d: expected %s, got %s",
				workers, id, want, result.Balance(id))
		}

		if reference == nil {
			reference = result.Balances()
			continue
		}
		assert.Equal(t, reference, result.Balances(), "workers=%d", workers)
	}
}

func TestRunUseCase_Run(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	provider := testutil.NewMemoryProvider(map[string][]string{
		"atm-01": {"# header", "1,d,10.00", "2,d,5.00"},
		"atm-02": {"1,w,2.50", "bad line"},
	})

	idGen := mocks.NewMockIDGenerator(ctrl)
	idGen.EXPECT().Generate().Return("run-1")

	metrics := mocks.NewMockMetricsRecorder(ctrl)
	metrics.EXPECT().AccountCreated().Times(2)
	metrics.EXPECT().SourceIngested(gomock.Any()).Times(2)
	metrics.EXPECT().RunCompleted(gomock.Any()).Times(1)

	var published *domain.RunCompletedEvent
	publisher := mocks.NewMockEventPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, event *domain.RunCompletedEvent) error {
			published = event
			return nil
		},
	)

	uc := usecase.NewRunUseCase(usecase.RunConfig{
		Provider:  provider,
		IDGen:     idGen,
		Metrics:   metrics,
		Publisher: publisher,
	})

	result, err := uc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, "7.50", result.Balance(1).String())
	assert.Equal(t, "5.00", result.Balance(2).String())
	assert.Equal(t, "0.00", result.Balance(3).String())
	assert.Equal(t, int64(2), result.AccountsCreated())
	assert.Equal(t, "atm-01", result.Sources[0].Source)
	assert.Equal(t, "atm-02", result.Sources[1].Source)
	assert.False(t, result.FinishedAt.Before(result.StartedAt))

	require.NotNil(t, published)
	assert.Equal(t, "run-1", published.RunID)
	assert.Equal(t, domain.EventTypeRunCompleted, published.EventType)
	assert.Equal(t, 2, published.Sources)
	assert.Equal(t, 2, published.Accounts)
	assert.Equal(t, int64(3), published.Applied)
	assert.Equal(t, int64(2), published.Skipped)
	assert.Equal(t, []domain.BalancePayload{
		{AccountID: 1, Balance: "7.50"},
		{AccountID: 2, Balance: "5.00"},
	}, published.Balances)
}

func TestRunUseCase_PublishFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	publisher := mocks.NewMockEventPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	uc := usecase.NewRunUseCase(usecase.RunConfig{
		Provider:  testutil.NewMemoryProvider(map[string][]string{"a": {"1,d,1"}}),
		Publisher: publisher,
	})

	result, err := uc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.00", result.Balance(1).String())
}

func TestRunUseCase_CancelledRunExposesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	lines := make([]string, 5000)
	for i := range lines {
		lines[i] = "1,d,1.00"
	}

	// No Publish expectation: a cancelled run must not announce completion.
	publisher := mocks.NewMockEventPublisher(ctrl)
	metrics := mocks.NewMockMetricsRecorder(ctrl)
	metrics.EXPECT().AccountCreated().AnyTimes()

	uc := usecase.NewRunUseCase(usecase.RunConfig{
		Provider:  testutil.NewMemoryProvider(map[string][]string{"atm-01": lines}),
		Metrics:   metrics,
		Publisher: publisher,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := uc.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestRunUseCase_ListError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	provider := mocks.NewMockSourceProvider(ctrl)
	provider.EXPECT().List(gomock.Any()).Return(nil, errors.New("permission denied"))

	uc := usecase.NewRunUseCase(usecase.RunConfig{Provider: provider})

	result, err := uc.Run(context.Background())
	assert.Nil(t, result)
	assert.ErrorContains(t, err, "permission denied")
}

func TestRunUseCase_UnavailableSourceCountsAsEmpty(t *testing.T) {
	provider := testutil.NewMemoryProvider(map[string][]string{"atm-01": {"1,d,3.00"}})
	uc := usecase.NewRunUseCase(usecase.RunConfig{Provider: provider})

	result, err := uc.RunSources(context.Background(), []string{"atm-01", "atm-missing"})
	require.NoError(t, err)

	require.Len(t, result.Sources, 2)
	assert.False(t, result.Sources[0].Unavailable)
	assert.True(t, result.Sources[1].Unavailable)
	assert.Equal(t, "3.00", result.Balance(1).String())
	assert.Equal(t, 1, result.Event().Unavailable)
}

func TestRunUseCase_NoSources(t *testing.T) {
	uc := usecase.NewRunUseCase(usecase.RunConfig{Provider: testutil.NewMemoryProvider(nil)})

	result, err := uc.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Sources)
	assert.Empty(t, result.Balances())
}
