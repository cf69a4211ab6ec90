package markups

import (
	"context"
	"testing"

	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/delonixservices/b2b-agent-sub001/internal/money"
	"github.com/stretchr/testify/require"
)

func rupees(n int64) money.Amount { return money.Amount(n * 100) }

func TestRuleApply(t *testing.T) {
	tenPct := Rule{Type: TypePercentage, Value: rupees(10)}
	q := tenPct.Apply(rupees(1000))
	require.Equal(t, rupees(100), q.Markup)
	require.Equal(t, rupees(1100), q.Total)

	fixed := Rule{Type: TypeFixed, Value: rupees(250)}
	require.Equal(t, rupees(1250), fixed.Apply(rupees(1000)).Total)

	// 12.5% of 99.99 = 12.49875, rounded to 12.50
	odd := Rule{Type: TypePercentage, Value: money.Amount(1250)}
	require.Equal(t, money.Amount(1250), odd.Amount(money.Amount(9999)))
}

func TestRuleValidate(t *testing.T) {
	require.NoError(t, Rule{Type: TypePercentage, Value: 0}.Validate())
	require.NoError(t, Rule{Type: TypePercentage, Value: rupees(100)}.Validate())
	require.ErrorIs(t, Rule{Type: TypePercentage, Value: rupees(100) + 1}.Validate(), ErrPercentageRange)
	require.ErrorIs(t, Rule{Type: TypePercentage, Value: -1}.Validate(), ErrPercentageRange)
	require.NoError(t, Rule{Type: TypeFixed, Value: 0}.Validate())
	require.ErrorIs(t, Rule{Type: TypeFixed, Value: -1}.Validate(), ErrNegativeFixed)
	require.ErrorIs(t, Rule{Type: "flat"}.Validate(), ErrInvalidType)
}

func TestUpsertKeepsOneMarkupPerHotel(t *testing.T) {
	svc := NewService(NewMemoryRepository(), "INR")
	ctx := context.Background()

	first, err := svc.Upsert(ctx, "H1", Rule{Type: TypePercentage, Value: rupees(10)}, "admin-1")
	require.NoError(t, err)
	second, err := svc.Upsert(ctx, "H1", Rule{Type: TypeFixed, Value: rupees(50)}, "admin-2")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, TypeFixed, second.Type)

	list, total, err := svc.List(ctx, models.Page{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, list, 1)

	_, err = svc.Upsert(ctx, "H2", Rule{Type: TypePercentage, Value: rupees(101)}, "admin-1")
	require.ErrorIs(t, err, ErrPercentageRange)

	require.NoError(t, svc.Delete(ctx, "H1"))
	require.ErrorIs(t, svc.Delete(ctx, "H1"), ErrNotFound)
}

func TestApplyFallsBackToDefault(t *testing.T) {
	svc := NewService(NewMemoryRepository(), "INR")
	ctx := context.Background()

	q, err := svc.Apply(ctx, "H1", rupees(1000))
	require.NoError(t, err)
	require.Equal(t, rupees(1000), q.Total)
	require.Equal(t, SourceDefault, q.Source)

	_, err = svc.UpdateConfig(ctx, Rule{Type: TypeFixed, Value: rupees(20)}, "inr", "admin-1")
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, "H1", Rule{Type: TypePercentage, Value: rupees(10)}, "admin-1")
	require.NoError(t, err)

	quotes, err := svc.ApplyMany(ctx, []Price{
		{HotelID: "H1", Base: rupees(1000)},
		{HotelID: "H2", Base: rupees(1000)},
		{HotelID: "H1", Base: rupees(500)},
	})
	require.NoError(t, err)
	require.Equal(t, rupees(1100), quotes[0].Total)
	require.Equal(t, SourceHotel, quotes[0].Source)
	require.Equal(t, rupees(1020), quotes[1].Total)
	require.Equal(t, SourceDefault, quotes[1].Source)
	require.Equal(t, rupees(550), quotes[2].Total)

	cfg, err := svc.Config(ctx)
	require.NoError(t, err)
	require.Equal(t, "INR", cfg.Currency)
}

func TestHotelIDIsTrimmedEverywhere(t *testing.T) {
	svc := NewService(NewMemoryRepository(), "INR")
	ctx := context.Background()

	_, err := svc.Upsert(ctx, "   ", Rule{Type: TypeFixed, Value: rupees(10)}, "a1")
	require.ErrorIs(t, err, ErrHotelRequired)

	m, err := svc.Upsert(ctx, " H9 ", Rule{Type: TypeFixed, Value: rupees(10)}, "a1")
	require.NoError(t, err)
	require.Equal(t, "H9", m.HotelID)

	got, err := svc.Get(ctx, "H9 ")
	require.NoError(t, err)
	require.Equal(t, m.ID, got.ID)

	q, err := svc.Apply(ctx, " H9", rupees(100))
	require.NoError(t, err)
	require.Equal(t, rupees(110), q.Total)
	require.Equal(t, SourceHotel, q.Source)

	require.NoError(t, svc.Delete(ctx, "\tH9"))
	_, err = svc.Get(ctx, "H9")
	require.ErrorIs(t, err, ErrNotFound)
}
