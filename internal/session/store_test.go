package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medhub/patient-portal/internal/identity"
)

func patientToken(t *testing.T, patientID int64) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &identity.Claims{
		PatientID: patientID,
		Name:      "Test Patient",
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestSessionPatientID(t *testing.T) {
	sess := &Session{Token: patientToken(t, 42)}
	assert.Equal(t, int64(42), sess.PatientID())

	assert.Zero(t, (&Session{Token: "garbage"}).PatientID())

	var nilSess *Session
	assert.Zero(t, nilSess.PatientID())
}

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sess, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)

	require.NoError(t, store.Save(ctx, &Session{Token: "tok-1", PatientName: "Alice"}))
	sess, err = store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "tok-1", sess.Token)

	// Last write wins, no merge.
	require.NoError(t, store.Save(ctx, &Session{Token: "tok-2"}))
	sess, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", sess.Token)
	assert.Empty(t, sess.PatientName)

	require.NoError(t, store.Clear(ctx))
	sess, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, &Session{Token: "tok"}))

	sess, err := store.Load(ctx)
	require.NoError(t, err)
	sess.Token = "mutated"

	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", again.Token)
}

func newRedisStore(t *testing.T, ttl time.Duration) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "test:session", ttl)
}

func TestRedisStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(t, 0)

	sess, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)

	require.NoError(t, store.Save(ctx, &Session{Token: patientToken(t, 9), PatientName: "Bob"}))
	sess, err = store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "Bob", sess.PatientName)
	assert.Equal(t, int64(9), sess.PatientID())

	require.NoError(t, store.Clear(ctx))
	sess, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestRedisStoreSaveNilClears(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(t, time.Hour)

	require.NoError(t, store.Save(ctx, &Session{Token: "tok"}))
	require.NoError(t, store.Save(ctx, nil))

	sess, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)
}
