// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package otp_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"codeberg.org/oliverandrich/notes-backend/internal/services/otp"
	"codeberg.org/oliverandrich/notes-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	for range 100 {
		code, err := otp.GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestIssueAndVerify(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc := otp.NewService(repo, 10*time.Minute)
	ctx := context.Background()

	code, err := svc.Issue(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, code, 6)

	ok, err := svc.Verify(ctx, "a@x.com", code)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_SingleConsumption(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc := otp.NewService(repo, 10*time.Minute)
	ctx := context.Background()

	code, err := svc.Issue(ctx, "a@x.com")
	require.NoError(t, err)

	ok, err := svc.Verify(ctx, "a@x.com", code)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.Verify(ctx, "a@x.com", code)
	require.NoError(t, err)
	assert.False(t, ok, "replaying a consumed passcode must fail")
}

func TestIssue_InvalidatesPreviousCode(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc := otp.NewService(repo, 10*time.Minute)
	ctx := context.Background()

	first, err := svc.Issue(ctx, "a@x.com")
	require.NoError(t, err)

	second, err := svc.Issue(ctx, "a@x.com")
	require.NoError(t, err)

	if first != second {
		ok, err := svc.Verify(ctx, "a@x.com", first)
		require.NoError(t, err)
		assert.False(t, ok, "a superseded passcode must not verify")
	}

	ok, err := svc.Verify(ctx, "a@x.com", second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_Expired(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc := otp.NewService(repo, 10*time.Minute)
	ctx := context.Background()

	// Store a code whose expiry is already in the past.
	require.NoError(t, repo.ReplaceOTP(ctx, "a@x.com", "123456", time.Now().UTC().Add(-time.Second)))

	ok, err := svc.Verify(ctx, "a@x.com", "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_WrongEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc := otp.NewService(repo, 10*time.Minute)
	ctx := context.Background()

	code, err := svc.Issue(ctx, "a@x.com")
	require.NoError(t, err)

	ok, err := svc.Verify(ctx, "b@x.com", code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPurgeExpired(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc := otp.NewService(repo, 10*time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceOTP(ctx, "old@x.com", "111111", time.Now().UTC().Add(-time.Hour)))
	_, err := svc.Issue(ctx, "fresh@x.com")
	require.NoError(t, err)

	removed, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}
