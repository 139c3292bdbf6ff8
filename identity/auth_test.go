package identity

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	event   AuthEvent
	session *Session
}

func TestAuthSignInNotifiesAndStores(t *testing.T) {
	p := newFakeProvider(t)
	store := NewMemoryStore()
	auth := NewAuth(p.client(), store)

	var events []recordedEvent
	unsubscribe := auth.OnAuthStateChange(func(event AuthEvent, session *Session) {
		events = append(events, recordedEvent{event, session})
	})

	_, err := auth.SignInWithPassword(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventSignedIn, events[0].event)
	assert.Equal(t, "access-1", events[0].session.AccessToken)

	token, err := auth.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-1", token)

	unsubscribe()
	unsubscribe()
	require.NoError(t, auth.SignOut(context.Background()))
	assert.Len(t, events, 1, "unsubscribed listener must not be called")

	session, err := auth.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestAuthFailedSignInKeepsState(t *testing.T) {
	p := newFakeProvider(t)
	auth := NewAuth(p.client(), nil)

	var called bool
	auth.OnAuthStateChange(func(AuthEvent, *Session) { called = true })

	_, err := auth.SignInWithPassword(context.Background(), "a@b.c", "wrong")
	require.Error(t, err)
	assert.False(t, called)

	_, err = auth.AccessToken(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestAuthRefreshesExpiredSession(t *testing.T) {
	p := newFakeProvider(t)
	store := NewMemoryStore()
	require.NoError(t, store.Save(&Session{
		AccessToken:  "access-1",
		RefreshToken: "refresh-access-1",
		ExpiresAt:    time.Now().Add(-time.Minute).Unix(),
	}))
	auth := NewAuth(p.client(), store)

	var events []AuthEvent
	auth.OnAuthStateChange(func(event AuthEvent, _ *Session) { events = append(events, event) })

	session, err := auth.GetSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "access-2", session.AccessToken)
	assert.Equal(t, []AuthEvent{EventTokenRefreshed}, events)

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "access-2", stored.AccessToken)
}

func TestAuthFailedRefreshSignsOut(t *testing.T) {
	p := newFakeProvider(t)
	store := NewMemoryStore()
	require.NoError(t, store.Save(&Session{
		AccessToken:  "stale",
		RefreshToken: "revoked",
		ExpiresAt:    time.Now().Add(-time.Minute).Unix(),
	}))
	auth := NewAuth(p.client(), store)

	var events []AuthEvent
	auth.OnAuthStateChange(func(event AuthEvent, _ *Session) { events = append(events, event) })

	session, err := auth.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
	assert.Equal(t, []AuthEvent{EventSignedOut}, events)
}

func TestAuthSignUpWithConfirmation(t *testing.T) {
	p := newFakeProvider(t)
	auth := NewAuth(p.client(), nil)

	var called bool
	auth.OnAuthStateChange(func(AuthEvent, *Session) { called = true })

	result, err := auth.SignUp(context.Background(), "confirm@b.c", "secret", "Ada")
	require.NoError(t, err)
	assert.Nil(t, result.Session)
	assert.False(t, called, "no session until the email is confirmed")
}

func TestAuthUpdatePassword(t *testing.T) {
	p := newFakeProvider(t)
	auth := NewAuth(p.client(), nil)
	ctx := context.Background()

	_, err := auth.UpdatePassword(ctx, "new-secret")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = auth.SignInWithPassword(ctx, "a@b.c", "secret")
	require.NoError(t, err)
	user, err := auth.UpdatePassword(ctx, "new-secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "new-secret", p.bodies[len(p.bodies)-1]["password"])
}

func TestAuthNotConfigured(t *testing.T) {
	auth := NewAuth(NewClient("", ""), nil)
	_, err := auth.GetSession(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = auth.SignInWithPassword(context.Background(), "a@b.c", "secret")
	assert.ErrorIs(t, err, ErrNotConfigured)

	// Sign-out never fails for lack of a provider.
	assert.NoError(t, auth.SignOut(context.Background()))
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	session, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, session)

	require.NoError(t, store.Save(&Session{AccessToken: "a", RefreshToken: "r", User: User{ID: "u"}}))
	session, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "a", session.AccessToken)
	assert.Equal(t, "u", session.User.ID)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	session, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestSessionExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	assert.False(t, (&Session{}).Expired(now))
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Hour).Unix()}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: now.Add(5 * time.Second).Unix()}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: now.Add(-time.Second).Unix()}).Expired(now))
}
