package monitor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/apsnygame/rpsbot/internal/config"
	"github.com/apsnygame/rpsbot/internal/game"
	"github.com/apsnygame/rpsbot/internal/models"
	"github.com/apsnygame/rpsbot/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	watermark   int64
	languages   map[string]models.Language
	languageErr error
	waiting     map[string]bool
}

func newFakeStore(watermark int64) *fakeStore {
	return &fakeStore{
		watermark: watermark,
		languages: make(map[string]models.Language),
		waiting:   make(map[string]bool),
	}
}

func (f *fakeStore) GetWatermark(context.Context) (int64, error) {
	return f.watermark, nil
}

func (f *fakeStore) SetWatermark(_ context.Context, mentionID int64) error {
	if mentionID > f.watermark {
		f.watermark = mentionID
	}
	return nil
}

func (f *fakeStore) SetLanguage(_ context.Context, userID string, lang models.Language) error {
	if f.languageErr != nil {
		return f.languageErr
	}
	f.languages[userID] = lang
	return nil
}

func (f *fakeStore) SetWaiting(_ context.Context, userID string, waiting bool) error {
	f.waiting[userID] = waiting
	return nil
}

func (f *fakeStore) ClearWaiting(_ context.Context, userIDs ...string) error {
	for _, id := range userIDs {
		f.waiting[id] = false
	}
	return nil
}

func (f *fakeStore) FindWaitingExcept(_ context.Context, userID string) (*models.User, error) {
	for id, waiting := range f.waiting {
		if waiting && id != userID {
			return &models.User{UserID: id, Username: "user_" + id}, nil
		}
	}
	return nil, nil
}

type fakeClient struct {
	mentions []platform.Mention
	users    map[string]*platform.Profile
	replies  []string
	posts    []string
}

func (f *fakeClient) Me(context.Context) (*platform.Profile, error) {
	return &platform.Profile{ID: "bot", Username: "apsnygame"}, nil
}

func (f *fakeClient) MentionsSince(_ context.Context, sinceID int64) ([]platform.Mention, error) {
	var out []platform.Mention
	for _, m := range f.mentions {
		if m.ID > sinceID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeClient) UserByID(_ context.Context, id string) (*platform.Profile, error) {
	if p, ok := f.users[id]; ok {
		return p, nil
	}
	return nil, errors.New("user not found")
}

func (f *fakeClient) UserByHandle(_ context.Context, username string) (*platform.Profile, error) {
	for _, p := range f.users {
		if p.Username == username {
			return p, nil
		}
	}
	return nil, errors.New("user not found")
}

func (f *fakeClient) Post(_ context.Context, text string) error {
	f.posts = append(f.posts, text)
	return nil
}

func (f *fakeClient) Reply(_ context.Context, text string, _ int64) error {
	f.replies = append(f.replies, text)
	return nil
}

type fakeChecker struct {
	ineligible map[string]string
}

func (f *fakeChecker) Check(_ context.Context, userID, _ string) (bool, string) {
	if reason, ok := f.ineligible[userID]; ok {
		return false, reason
	}
	return true, ""
}

type staticDetector struct{}

func (staticDetector) Detect(context.Context, string, string) models.Language {
	return models.LanguageEnglish
}

type createdMatch struct {
	user1ID, user2ID string
}

type fakeCreator struct {
	created []createdMatch
}

func (f *fakeCreator) Create(_ context.Context, user1ID, _, user2ID, _ string) error {
	f.created = append(f.created, createdMatch{user1ID: user1ID, user2ID: user2ID})
	return nil
}

func newTestMonitor(store *fakeStore, client *fakeClient, checker *fakeChecker, creator *fakeCreator) *Monitor {
	cfg := &config.Config{BotHandle: "apsnygame"}
	texts := game.Texts{BotHandle: "apsnygame", PinnedURL: "https://t.co/rules"}
	return New(cfg, store, client, checker, staticDetector{}, creator, texts)
}

func mention(id int64, authorID, text string, tagged ...string) platform.Mention {
	return platform.Mention{
		ID:             id,
		AuthorID:       authorID,
		AuthorUsername: "user_" + authorID,
		Text:           text,
		Tagged:         append([]string{"apsnygame"}, tagged...),
	}
}

func TestProcessMentionsAdvancesWatermark(t *testing.T) {
	store := newFakeStore(100)
	client := &fakeClient{mentions: []platform.Mention{
		mention(101, "a", "hello bot"),
		mention(102, "b", "nice weather"),
		mention(103, "c", "hi"),
	}}
	mon := newTestMonitor(store, client, &fakeChecker{}, &fakeCreator{})

	require.NoError(t, mon.ProcessMentions(context.Background()))
	assert.Equal(t, int64(103), store.watermark)
	assert.Len(t, store.languages, 3)
}

func TestProcessMentionsRepliesToIneligible(t *testing.T) {
	store := newFakeStore(0)
	client := &fakeClient{mentions: []platform.Mention{
		mention(1, "a", "oyun"),
	}}
	checker := &fakeChecker{ineligible: map[string]string{"a": "günlük 10 oyun sınırı"}}
	creator := &fakeCreator{}
	mon := newTestMonitor(store, client, checker, creator)

	require.NoError(t, mon.ProcessMentions(context.Background()))
	require.Len(t, client.replies, 1)
	assert.Equal(t, "@user_a günlük 10 oyun sınırı", client.replies[0])
	assert.Empty(t, creator.created)
	assert.Equal(t, int64(1), store.watermark)
}

func TestProcessMentionsCreatesInvitedMatch(t *testing.T) {
	store := newFakeStore(0)
	client := &fakeClient{
		mentions: []platform.Mention{
			mention(1, "a", "oyun @user_b", "user_b"),
		},
		users: map[string]*platform.Profile{
			"b": {ID: "b", Username: "user_b"},
		},
	}
	creator := &fakeCreator{}
	mon := newTestMonitor(store, client, &fakeChecker{}, creator)

	require.NoError(t, mon.ProcessMentions(context.Background()))
	require.Len(t, creator.created, 1)
	assert.Equal(t, createdMatch{user1ID: "a", user2ID: "b"}, creator.created[0])
	assert.Empty(t, client.replies)
}

func TestProcessMentionsRejectsIneligibleInvitee(t *testing.T) {
	store := newFakeStore(0)
	client := &fakeClient{
		mentions: []platform.Mention{
			mention(1, "a", "game @user_b", "user_b"),
		},
		users: map[string]*platform.Profile{
			"b": {ID: "b", Username: "user_b"},
		},
	}
	checker := &fakeChecker{ineligible: map[string]string{"b": "2 kere katılmadın, 7 gün ban"}}
	creator := &fakeCreator{}
	mon := newTestMonitor(store, client, checker, creator)

	require.NoError(t, mon.ProcessMentions(context.Background()))
	assert.Empty(t, creator.created)
	require.Len(t, client.replies, 1)
	assert.Contains(t, client.replies[0], "@user_b")
}

func TestProcessMentionsUnknownInviteeGetsErrorReply(t *testing.T) {
	store := newFakeStore(0)
	client := &fakeClient{
		mentions: []platform.Mention{
			mention(1, "a", "game @ghost", "ghost"),
		},
	}
	creator := &fakeCreator{}
	mon := newTestMonitor(store, client, &fakeChecker{}, creator)

	require.NoError(t, mon.ProcessMentions(context.Background()))
	assert.Empty(t, creator.created)
	require.Len(t, client.replies, 1)
	assert.Contains(t, client.replies[0], "hata")
}

func TestProcessMentionsPairsWaitingUsers(t *testing.T) {
	store := newFakeStore(0)
	client := &fakeClient{mentions: []platform.Mention{
		mention(1, "a", "oyun istiyorum"),
	}}
	creator := &fakeCreator{}
	mon := newTestMonitor(store, client, &fakeChecker{}, creator)

	// First requester has nobody to play with and joins the pool.
	require.NoError(t, mon.ProcessMentions(context.Background()))
	assert.Empty(t, creator.created)
	assert.True(t, store.waiting["a"])

	// Second requester gets paired and both leave the pool.
	client.mentions = append(client.mentions, mention(2, "b", "game please"))
	require.NoError(t, mon.ProcessMentions(context.Background()))
	require.Len(t, creator.created, 1)
	assert.Equal(t, createdMatch{user1ID: "b", user2ID: "a"}, creator.created[0])
	assert.False(t, store.waiting["a"])
	assert.False(t, store.waiting["b"])
}

func TestProcessMentionsAdvancesWatermarkPastFailure(t *testing.T) {
	store := newFakeStore(0)
	store.languageErr = fmt.Errorf("connection reset")
	client := &fakeClient{mentions: []platform.Mention{
		mention(7, "a", "hello"),
	}}
	mon := newTestMonitor(store, client, &fakeChecker{}, &fakeCreator{})

	require.NoError(t, mon.ProcessMentions(context.Background()))
	assert.Equal(t, int64(7), store.watermark)
}
