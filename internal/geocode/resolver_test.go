package geocode

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hasancagrigungor/ravla/pkg/logger"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Lookup(ctx context.Context, region, subRegion, provider string) (*Entry, error) {
	args := m.Called(ctx, region, subRegion, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Entry), args.Error(1)
}

func (m *MockStore) Upsert(ctx context.Context, e Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Geocode(ctx context.Context, query string) (*Location, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Location), args.Error(1)
}

func newTestResolver(store Store, provider Provider) *Resolver {
	return NewResolver(store, provider, NewRateLimiter(0), logger.NewNop())
}

func TestResolver_CacheHitSkipsProvider(t *testing.T) {
	// Arrange
	store := new(MockStore)
	provider := new(MockProvider)
	cached := &Entry{Region: "İstanbul", SubRegion: "Kadıköy", Lat: 40.99, Lon: 29.02}
	store.On("Lookup", mock.Anything, "İstanbul", "Kadıköy", "mock").Return(cached, nil)
	resolver := newTestResolver(store, provider)

	// Act
	entry, hit, err := resolver.Resolve(context.Background(), "İstanbul", "Kadıköy")

	// Assert
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, cached, entry)
	provider.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
}

func TestResolver_MissCallsProviderOnceAndCaches(t *testing.T) {
	// Arrange
	store := new(MockStore)
	provider := new(MockProvider)
	store.On("Lookup", mock.Anything, "Ankara", "Çankaya", "mock").Return(nil, nil)
	provider.On("Geocode", mock.Anything, "Çankaya, Ankara, Türkiye").
		Return(&Location{Address: "Çankaya, Ankara", Lat: 39.92, Lon: 32.85}, nil)
	store.On("Upsert", mock.Anything, mock.MatchedBy(func(e Entry) bool {
		return e.Region == "Ankara" && e.SubRegion == "Çankaya" && e.Provider == "mock"
	})).Return(nil)
	resolver := newTestResolver(store, provider)

	// Act
	entry, hit, err := resolver.Resolve(context.Background(), "Ankara", "Çankaya")

	// Assert
	require.NoError(t, err)
	assert.False(t, hit)
	require.NotNil(t, entry)
	assert.InDelta(t, 39.92, entry.Lat, 1e-9)
	provider.AssertNumberOfCalls(t, "Geocode", 1)
	store.AssertNumberOfCalls(t, "Upsert", 1)
}

func TestResolver_ProviderFailureNotCached(t *testing.T) {
	store := new(MockStore)
	provider := new(MockProvider)
	store.On("Lookup", mock.Anything, "İzmir", "Konak", "mock").Return(nil, nil)
	provider.On("Geocode", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))
	resolver := newTestResolver(store, provider)

	_, _, err := resolver.Resolve(context.Background(), "İzmir", "Konak")

	require.Error(t, err)
	store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestResolver_NoMatchNotCached(t *testing.T) {
	store := new(MockStore)
	provider := new(MockProvider)
	store.On("Lookup", mock.Anything, "Yok", "", "mock").Return(nil, nil)
	provider.On("Geocode", mock.Anything, mock.Anything).Return(nil, nil)
	resolver := newTestResolver(store, provider)

	entry, hit, err := resolver.Resolve(context.Background(), "Yok", "")

	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.False(t, hit)
	store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestResolver_ResolveAllDedupesAndCounts(t *testing.T) {
	// Arrange
	store := new(MockStore)
	provider := new(MockProvider)
	store.On("Lookup", mock.Anything, "İstanbul", "Kadıköy", "mock").
		Return(&Entry{Region: "İstanbul", SubRegion: "Kadıköy"}, nil)
	store.On("Lookup", mock.Anything, "Ankara", "Çankaya", "mock").Return(nil, nil)
	provider.On("Geocode", mock.Anything, "Çankaya, Ankara, Türkiye").
		Return(&Location{Address: "Çankaya", Lat: 39.92, Lon: 32.85}, nil)
	store.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	resolver := newTestResolver(store, provider)

	pairs := []Pair{
		{Region: "İstanbul", SubRegion: "Kadıköy"},
		{Region: "Ankara", SubRegion: "Çankaya"},
		{Region: "İstanbul", SubRegion: "Kadıköy"}, // duplicate
	}

	// Act
	result, err := resolver.ResolveAll(context.Background(), pairs)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, result.CacheHit)
	assert.Equal(t, 1, result.Resolved)
	assert.Len(t, result.Entries, 2)
	provider.AssertNumberOfCalls(t, "Geocode", 1)
}

func TestResolver_ResolveAllStopsOnCanceledContext(t *testing.T) {
	store := new(MockStore)
	provider := new(MockProvider)
	resolver := newTestResolver(store, provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := resolver.ResolveAll(ctx, []Pair{{Region: "Ankara"}})

	assert.ErrorIs(t, err, context.Canceled)
	store.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRateLimiter_EnforcesDelay(t *testing.T) {
	limiter := NewRateLimiter(30 * time.Millisecond)

	require.NoError(t, limiter.Wait(context.Background()))
	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background()))

	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestRateLimiter_CanceledContext(t *testing.T) {
	limiter := NewRateLimiter(time.Minute)
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, limiter.Wait(ctx), context.DeadlineExceeded)
}

func TestQuery(t *testing.T) {
	assert.Equal(t, "Kadıköy, İstanbul, Türkiye", Query("İstanbul", "Kadıköy"))
	assert.Equal(t, "Ankara, Türkiye", Query("Ankara", ""))
	assert.Equal(t, "Türkiye", Query("", " "))
}
