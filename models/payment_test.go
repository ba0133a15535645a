package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestPayment_KeepsUnknownFields(t *testing.T) {
	body := `{
		"transactionId": "pi_9",
		"price": 50,
		"patient": "a@x.com",
		"appointment": {"treatment": "Cleaning", "slot": "10:00"},
		"last4": "4242"
	}`

	var p Payment
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	assert.Equal(t, "pi_9", p.TransactionID)
	assert.Equal(t, 50.0, p.Price)
	assert.Equal(t, "a@x.com", p.Patient)
	require.Len(t, p.Extra, 2)
	assert.Equal(t, "4242", p.Extra["last4"])
	assert.NotContains(t, p.Extra, "transactionId")

	raw, err := bson.Marshal(p)
	require.NoError(t, err)
	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, "pi_9", doc["transactionId"])
	assert.Equal(t, "4242", doc["last4"])
	assert.Contains(t, doc, "appointment")

	var back Payment
	require.NoError(t, bson.Unmarshal(raw, &back))
	assert.Equal(t, "pi_9", back.TransactionID)
	assert.Equal(t, "4242", back.Extra["last4"])
}

func TestPayment_NoExtras(t *testing.T) {
	var p Payment
	require.NoError(t, json.Unmarshal([]byte(`{"transactionId":"pi_1"}`), &p))
	assert.Nil(t, p.Extra)

	raw, err := bson.Marshal(p)
	require.NoError(t, err)
	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.NotContains(t, doc, "Extra")
}
