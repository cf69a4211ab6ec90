package hotels

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/delonixservices/b2b-agent-sub001/internal/markups"
	"github.com/delonixservices/b2b-agent-sub001/internal/money"
	"github.com/delonixservices/b2b-agent-sub001/internal/supplier"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func futureInput(days int) SearchInput {
	in := time.Now().AddDate(0, 0, 7)
	return SearchInput{
		LocationID: "GOA",
		CheckIn:    in.Format(dateLayout),
		CheckOut:   in.AddDate(0, 0, days).Format(dateLayout),
		Rooms:      []supplier.Room{{Adults: 2, Children: 1, ChildAges: []int{5}}},
	}
}

func newTestService(kv KV) (*Service, *supplier.Fake, *markups.Service) {
	fake := supplier.NewFake()
	pricing := markups.NewService(markups.NewMemoryRepository(), "INR")
	svc := NewService(fake, pricing, kv, Options{Currency: "INR", CacheTTL: 5 * time.Minute, SessionTTL: 30 * time.Minute})
	return svc, fake, pricing
}

func TestNormalize(t *testing.T) {
	today := time.Now()

	in, err := futureInput(2).Normalize(today)
	require.NoError(t, err)
	require.Equal(t, "IN", in.Nationality)
	require.Equal(t, 2, in.Nights())

	cases := map[string]func(*SearchInput){
		"past checkIn":     func(s *SearchInput) { s.CheckIn = today.AddDate(0, 0, -1).Format(dateLayout) },
		"checkOut first":   func(s *SearchInput) { s.CheckOut = s.CheckIn },
		"bad date":         func(s *SearchInput) { s.CheckIn = "15/01/2030" },
		"too long":         func(s *SearchInput) { *s = futureInput(31) },
		"no rooms":         func(s *SearchInput) { s.Rooms = nil },
		"no adults":        func(s *SearchInput) { s.Rooms = []supplier.Room{{Adults: 0}} },
		"child ages":       func(s *SearchInput) { s.Rooms = []supplier.Room{{Adults: 1, Children: 2, ChildAges: []int{4}}} },
		"bad nationality":  func(s *SearchInput) { s.Nationality = "India" },
		"missing location": func(s *SearchInput) { s.LocationID = " " },
		"ten rooms":        func(s *SearchInput) { s.Rooms = make([]supplier.Room, 10) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := futureInput(2)
			mutate(&in)
			_, err := in.Normalize(today)
			require.ErrorIs(t, err, ErrInvalidSearch)
		})
	}

	_, err = futureInput(30).Normalize(today)
	require.NoError(t, err)
}

func TestSearchAppliesMarkupAndCaches(t *testing.T) {
	svc, fake, pricing := newTestService(NewMemoryKV())
	ctx := context.Background()
	_, err := pricing.Upsert(ctx, "H1", markups.Rule{Type: markups.TypePercentage, Value: money.Amount(1000)}, "admin")
	require.NoError(t, err)

	res, err := svc.Search(ctx, "c1", futureInput(2))
	require.NoError(t, err)
	require.False(t, res.Cached)
	require.NotEmpty(t, res.SearchID)
	require.Len(t, res.Hotels, 2)
	require.Equal(t, money.Amount(110000), res.Hotels[0].Price)
	require.Equal(t, money.Amount(200000), res.Hotels[1].Price)

	again, err := svc.Search(ctx, "c1", futureInput(2))
	require.NoError(t, err)
	require.True(t, again.Cached)
	require.NotEqual(t, res.SearchID, again.SearchID)
	require.Equal(t, 1, fake.CallCount("search"))
}

func TestSearchPropagatesSupplierErrors(t *testing.T) {
	svc, fake, _ := newTestService(NewMemoryKV())
	fake.SearchErr = &supplier.Error{Op: "search", StatusCode: 500, Message: "boom"}
	_, err := svc.Search(context.Background(), "c1", futureInput(2))
	require.ErrorIs(t, err, supplier.ErrUnavailable)
}

func TestPackagesRequiresLiveSession(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	kv := NewRedisKV(redis.NewClient(&redis.Options{Addr: m.Addr()}))

	svc, _, _ := newTestService(kv)
	ctx := context.Background()
	res, err := svc.Search(ctx, "c1", futureInput(1))
	require.NoError(t, err)

	pk, err := svc.Packages(ctx, "c1", res.SearchID, "H1")
	require.NoError(t, err)
	require.Len(t, pk.Packages, 1)
	require.Equal(t, money.Amount(100000), pk.Packages[0].Price)

	_, err = svc.Packages(ctx, "c2", res.SearchID, "H1")
	require.ErrorIs(t, err, ErrSearchExpired)
	_, err = svc.Packages(ctx, "c1", "unknown", "H1")
	require.ErrorIs(t, err, ErrSearchExpired)

	m.FastForward(31 * time.Minute)
	_, err = svc.Packages(ctx, "c1", res.SearchID, "H1")
	require.ErrorIs(t, err, ErrSearchExpired)
}
