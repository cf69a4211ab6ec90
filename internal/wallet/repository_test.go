package wallet

import (
	"testing"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/money"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestDebitFilterGuardsBalance(t *testing.T) {
	f := debitFilter("c1", rupees(250))
	require.Equal(t, bson.M{"_id": "c1", "balance": bson.M{"$gte": money.Amount(25000)}}, f)

	raw, err := bson.Marshal(f)
	require.NoError(t, err)
	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	require.Equal(t, int64(25000), doc["balance"].(bson.M)["$gte"])
}

func TestDebitUpdateDecrementsByAmount(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	u := debitUpdate(rupees(250), now)
	require.Equal(t, money.Amount(-25000), u["$inc"].(bson.M)["balance"])
	require.Equal(t, now, u["$set"].(bson.M)["updatedAt"])
	require.NotContains(t, u, "$setOnInsert")
}

func TestDebitMissTellsMissingFromShort(t *testing.T) {
	require.ErrorIs(t, debitMiss(0), ErrNotFound)
	require.ErrorIs(t, debitMiss(1), ErrInsufficientFunds)
}
