package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/apsnygame/rpsbot/internal/game"
	"github.com/apsnygame/rpsbot/internal/models"
	"github.com/apsnygame/rpsbot/internal/platform"
	"github.com/apsnygame/rpsbot/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	deadline = time.Date(2025, 4, 15, 17, 0, 0, 0, time.UTC)
	testNow  = deadline.Add(5 * time.Minute)
)

type fakeStore struct {
	games   []*models.Game
	users   map[string]*models.User
	applied []*storage.GameResult
}

func (f *fakeStore) DuePendingGames(_ context.Context, now time.Time) ([]*models.Game, error) {
	var due []*models.Game
	for _, g := range f.games {
		if g.Status == models.GameStatusPending && !g.Deadline.After(now) {
			due = append(due, g)
		}
	}
	return due, nil
}

func (f *fakeStore) GetUser(_ context.Context, userID string) (*models.User, error) {
	return f.users[userID], nil
}

func (f *fakeStore) ApplyGameResult(_ context.Context, res *storage.GameResult) error {
	f.applied = append(f.applied, res)
	return nil
}

type fakeClient struct {
	mentions []platform.Mention
	posts    []string
}

func (f *fakeClient) MentionsSince(context.Context, int64) ([]platform.Mention, error) {
	return f.mentions, nil
}

func (f *fakeClient) Post(_ context.Context, text string) error {
	f.posts = append(f.posts, text)
	return nil
}

func newTestResolver(store *fakeStore, client *fakeClient) *Resolver {
	r := New(store, client, game.Texts{BotHandle: "apsnygame", PinnedURL: "https://t.co/rules"})
	r.now = func() time.Time { return testNow }
	return r
}

func pendingGame() *models.Game {
	return &models.Game{
		GameID:   "g1",
		User1ID:  "1",
		User2ID:  "2",
		Deadline: deadline,
		Status:   models.GameStatusPending,
	}
}

func testUsers() map[string]*models.User {
	return map[string]*models.User{
		"1": {UserID: "1", Username: "ali"},
		"2": {UserID: "2", Username: "veli"},
	}
}

func reply(authorID, text string, at time.Time) platform.Mention {
	return platform.Mention{ID: 1, AuthorID: authorID, Text: text, CreatedAt: at}
}

func TestResolveSingleNoShow(t *testing.T) {
	store := &fakeStore{games: []*models.Game{pendingGame()}, users: testUsers()}
	client := &fakeClient{mentions: []platform.Mention{
		reply("1", "@apsnygame rock", deadline),
	}}
	r := newTestResolver(store, client)

	require.NoError(t, r.Resolve(context.Background()))
	require.Len(t, store.applied, 1)

	res := store.applied[0]
	require.NotNil(t, res.WinnerID)
	assert.Equal(t, "1", *res.WinnerID)
	assert.Equal(t, []string{"2"}, res.NoShowIDs)
	require.NotNil(t, res.User1Choice)
	assert.Equal(t, "rock", *res.User1Choice)
	assert.Nil(t, res.User2Choice)

	require.Len(t, client.posts, 1)
	assert.Contains(t, client.posts[0], "@veli katılmadı, @ali kazandı!")
}

func TestResolveBothNoShow(t *testing.T) {
	store := &fakeStore{games: []*models.Game{pendingGame()}, users: testUsers()}
	client := &fakeClient{}
	r := newTestResolver(store, client)

	require.NoError(t, r.Resolve(context.Background()))
	require.Len(t, store.applied, 1)

	res := store.applied[0]
	assert.Nil(t, res.WinnerID)
	assert.ElementsMatch(t, []string{"1", "2"}, res.NoShowIDs)
	assert.False(t, res.Draw)

	require.Len(t, client.posts, 1)
	assert.Contains(t, client.posts[0], "katılmadı!")
}

func TestResolveDraw(t *testing.T) {
	store := &fakeStore{games: []*models.Game{pendingGame()}, users: testUsers()}
	client := &fakeClient{mentions: []platform.Mention{
		reply("1", "paper", deadline),
		reply("2", "paper", deadline.Add(500*time.Millisecond)),
	}}
	r := newTestResolver(store, client)

	require.NoError(t, r.Resolve(context.Background()))
	require.Len(t, store.applied, 1)

	res := store.applied[0]
	assert.Nil(t, res.WinnerID)
	assert.True(t, res.Draw)
	assert.Empty(t, res.NoShowIDs)

	require.Len(t, client.posts, 1)
	assert.Contains(t, client.posts[0], "Berabere!")
}

func TestResolveCrossLanguageWin(t *testing.T) {
	store := &fakeStore{games: []*models.Game{pendingGame()}, users: testUsers()}
	client := &fakeClient{mentions: []platform.Mention{
		reply("1", "@apsnygame taş", deadline),
		reply("2", "@apsnygame scissors", deadline),
	}}
	r := newTestResolver(store, client)

	require.NoError(t, r.Resolve(context.Background()))
	require.Len(t, store.applied, 1)

	// taş is rock, rock beats scissors.
	res := store.applied[0]
	require.NotNil(t, res.WinnerID)
	assert.Equal(t, "1", *res.WinnerID)
	assert.Empty(t, res.NoShowIDs)

	require.Len(t, client.posts, 1)
	assert.Contains(t, client.posts[0], "@ali kazandı!")
}

func TestResolveIgnoresRepliesOutsideWindow(t *testing.T) {
	store := &fakeStore{games: []*models.Game{pendingGame()}, users: testUsers()}
	client := &fakeClient{mentions: []platform.Mention{
		reply("1", "rock", deadline.Add(-time.Minute)),
		reply("2", "paper", deadline.Add(2*time.Second)),
	}}
	r := newTestResolver(store, client)

	require.NoError(t, r.Resolve(context.Background()))
	require.Len(t, store.applied, 1)

	res := store.applied[0]
	assert.Nil(t, res.User1Choice)
	assert.Nil(t, res.User2Choice)
	assert.ElementsMatch(t, []string{"1", "2"}, res.NoShowIDs)
}

func TestResolveSkipsFutureGames(t *testing.T) {
	g := pendingGame()
	g.Deadline = testNow.Add(time.Hour)
	store := &fakeStore{games: []*models.Game{g}, users: testUsers()}
	client := &fakeClient{}
	r := newTestResolver(store, client)

	require.NoError(t, r.Resolve(context.Background()))
	assert.Empty(t, store.applied)
	assert.Empty(t, client.posts)
}
