package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenSignerRoundTrip(t *testing.T) {
	signer := NewTokenSigner("secret", time.Hour)

	token, expiresAt, err := signer.Generate("reg-1", "receipts/reg-1.pdf")
	require.NoError(t, err)
	require.True(t, expiresAt.After(time.Now()))

	regID, relPath, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "reg-1", regID)
	require.Equal(t, "receipts/reg-1.pdf", relPath)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestTokenSignerRejectsTampering(t *testing.T) {
	signer := NewTokenSigner("secret", time.Hour)

	token, _, err := signer.Generate("reg-1", "receipts/reg-1.pdf")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token+"x", false)
	require.Error(t, err)

	other := NewTokenSigner("different", time.Hour)
	_, _, _, err = other.Parse(token, false)
	require.Error(t, err)
}

func TestTokenSignerExpiry(t *testing.T) {
	signer := NewTokenSigner("secret", time.Nanosecond)

	token, _, err := signer.Generate("reg-1", "receipts/reg-1.pdf")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	_, relPath, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "receipts/reg-1.pdf", relPath)
}
