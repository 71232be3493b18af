package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfferStatusJSON(t *testing.T) {
	var offer TransferOffer
	err := json.Unmarshal([]byte(`{"id":3,"offer_status":"pending"}`), &offer)
	require.NoError(t, err)
	assert.Equal(t, OfferStatusPending, offer.OfferStatus)

	err = json.Unmarshal([]byte(`{"id":3,"offer_status":"maybe"}`), &offer)
	assert.Error(t, err)
}

func TestTransferStatusJSON(t *testing.T) {
	var profile PlayerProfile
	err := json.Unmarshal([]byte(`{"id":1,"transfer_status":"transferred"}`), &profile)
	require.NoError(t, err)
	assert.Equal(t, TransferStatusTransferred, profile.TransferStatus)

	err = json.Unmarshal([]byte(`{"id":1,"transfer_status":"loaned"}`), &profile)
	assert.Error(t, err)
}

func TestOfferStatusResolved(t *testing.T) {
	assert.False(t, OfferStatusPending.Resolved())
	assert.True(t, OfferStatusAccepted.Resolved())
	assert.True(t, OfferStatusRejected.Resolved())
	assert.False(t, OfferStatus("").Valid())
}
