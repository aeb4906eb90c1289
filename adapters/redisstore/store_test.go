package redisstore

import (
	"context"
	"testing"
	"time"

	"nuanswers/internal/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	s, err := Connect(ctx, "redis://"+mr.Addr())
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Save(ctx, "abc", []byte(`{"phase":"REGISTERED"}`), time.Hour))
	assert.True(t, mr.Exists(keyPrefix+"abc"))
	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+"abc"))

	got, err = s.Load(ctx, "abc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"phase":"REGISTERED"}`, string(got))

	mr.FastForward(2 * time.Hour)
	got, err = s.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got, "expired")

	require.NoError(t, s.Save(ctx, "abc", []byte("x"), 0))
	require.NoError(t, s.Delete(ctx, "abc"))
	assert.False(t, mr.Exists(keyPrefix+"abc"))
}

func TestConnectBadURL(t *testing.T) {
	_, err := Connect(context.Background(), "http://not-redis")
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoadServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := Connect(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer s.Close()

	mr.Close()
	_, err = s.Load(context.Background(), "abc")
	assert.Equal(t, errors.CodePersistence, errors.GetCode(err))
}
