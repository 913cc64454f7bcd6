package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/atmledger/internal/domain"
	"github.com/iho/atmledger/internal/generator"
	"github.com/iho/atmledger/internal/usecase"
)

var (
	_ usecase.SourceProvider = (*Provider)(nil)
	_ generator.Sink         = (*Sink)(nil)
)

func newTestRedisClient(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func TestProviderList(t *testing.T) {
	client, mr := newTestRedisClient(t)
	mr.RPush("atm:atm-02", "1,d,1.00")
	mr.RPush("atm:atm-01", "1,d,1.00")
	mr.RPush("other:atm-03", "1,d,1.00")

	sources, err := NewProvider(client, "atm:").List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"atm-01", "atm-02"}, sources)
}

func TestProviderOpenPagesThroughList(t *testing.T) {
	client, mr := newTestRedisClient(t)
	want := make([]string, pageSize*2+5)
	for i := range want {
		want[i] = fmt.Sprintf("%d,d,1.00", i%20+1)
		mr.RPush("atm:big", want[i])
	}

	sc, err := NewProvider(client, "").Open(context.Background(), "big")
	require.NoError(t, err)

	var got []string
	for sc.Scan() {
		got = append(got, sc.Text())
	}
	require.NoError(t, sc.Err())
	require.NoError(t, sc.Close())

	assert.Equal(t, want, got)
}

func TestProviderOpenExactPage(t *testing.T) {
	client, mr := newTestRedisClient(t)
	for i := 0; i < pageSize; i++ {
		mr.RPush("atm:page", "1,w,2.00")
	}

	sc, err := NewProvider(client, "").Open(context.Background(), "page")
	require.NoError(t, err)

	n := 0
	for sc.Scan() {
		n++
	}
	assert.Equal(t, pageSize, n)
	assert.NoError(t, sc.Err())
}

func TestProviderOpenMissing(t *testing.T) {
	client, _ := newTestRedisClient(t)

	_, err := NewProvider(client, "").Open(context.Background(), "atm-99")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSourceUnavailable))
}

func TestProviderOpenServerDown(t *testing.T) {
	client, mr := newTestRedisClient(t)
	mr.Close()

	_, err := NewProvider(client, "").Open(context.Background(), "atm-01")

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrSourceUnavailable))
}

func TestSinkRoundTrip(t *testing.T) {
	client, mr := newTestRedisClient(t)
	mr.RPush("atm:atm-01", "stale")
	cfg := generator.Config{Sources: 2, Accounts: 3, Transactions: 1500, Seed: generator.DefaultSeed, Mean: 100, StdDev: 50}

	_, err := generator.Generate(context.Background(), cfg, NewSink(client, ""), zerolog.Nop())
	require.NoError(t, err)

	lines, err := mr.List("atm:atm-01")
	require.NoError(t, err)
	require.Len(t, lines, 1502)
	assert.Equal(t, "# Atm transactions from machine 01", lines[0])
	assert.Equal(t, "1,w,118.92", lines[2])

	provider := NewProvider(client, "")
	sources, err := provider.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"atm-01", "atm-02"}, sources)
}
