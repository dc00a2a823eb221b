package platform

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const v2UserFields = "created_at,description,public_metrics"

type v2User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	CreatedAt     time.Time `json:"created_at"`
	Description   string    `json:"description"`
	PublicMetrics struct {
		TweetCount int `json:"tweet_count"`
	} `json:"public_metrics"`
}

type v2UserResponse struct {
	Data v2User `json:"data"`
}

type v2Tweet struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	Entities  struct {
		Mentions []struct {
			Username string `json:"username"`
		} `json:"mentions"`
	} `json:"entities"`
}

type v2MentionsResponse struct {
	Data     []v2Tweet `json:"data"`
	Includes struct {
		Users []v2User `json:"users"`
	} `json:"includes"`
}

// V2Client implements Client against the v2 API generation.
type V2Client struct {
	client *resty.Client

	mu    sync.Mutex
	botID string
}

func NewV2Client(baseURL, accessToken string) *V2Client {
	return &V2Client{
		client: resty.New().
			SetBaseURL(baseURL).
			SetAuthToken(accessToken),
	}
}

func (c *V2Client) Me(ctx context.Context) (*Profile, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("user.fields", v2UserFields).
		SetResult(&v2UserResponse{}).
		Get("/2/users/me")
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d %s", resp.StatusCode(), string(resp.Body()))
	}

	u := resp.Result().(*v2UserResponse).Data
	c.mu.Lock()
	c.botID = u.ID
	c.mu.Unlock()
	return v2Profile(u), nil
}

// me returns the cached bot user id, resolving it on first use. The v2
// mentions endpoint is keyed by user id rather than by the credentials.
func (c *V2Client) me(ctx context.Context) (string, error) {
	c.mu.Lock()
	id := c.botID
	c.mu.Unlock()
	if id != "" {
		return id, nil
	}
	if _, err := c.Me(ctx); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.botID, nil
}

func (c *V2Client) MentionsSince(ctx context.Context, sinceID int64) ([]Mention, error) {
	botID, err := c.me(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving bot id: %w", err)
	}

	req := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"tweet.fields": "created_at,entities,author_id",
			"expansions":   "author_id",
			"user.fields":  v2UserFields,
		}).
		SetResult(&v2MentionsResponse{})
	if sinceID > 0 {
		req.SetQueryParam("since_id", strconv.FormatInt(sinceID, 10))
	}

	resp, err := req.Get(fmt.Sprintf("/2/users/%s/mentions", botID))
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d %s", resp.StatusCode(), string(resp.Body()))
	}

	body := resp.Result().(*v2MentionsResponse)
	authors := make(map[string]string, len(body.Includes.Users))
	for _, u := range body.Includes.Users {
		authors[u.ID] = u.Username
	}

	mentions := make([]Mention, 0, len(body.Data))
	for _, t := range body.Data {
		id, err := strconv.ParseInt(t.ID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing tweet id %q: %w", t.ID, err)
		}
		m := Mention{
			ID:             id,
			AuthorID:       t.AuthorID,
			AuthorUsername: authors[t.AuthorID],
			Text:           t.Text,
			CreatedAt:      t.CreatedAt,
		}
		for _, um := range t.Entities.Mentions {
			m.Tagged = append(m.Tagged, um.Username)
		}
		mentions = append(mentions, m)
	}

	sort.Slice(mentions, func(i, j int) bool { return mentions[i].ID < mentions[j].ID })
	return mentions, nil
}

func (c *V2Client) UserByID(ctx context.Context, id string) (*Profile, error) {
	return c.user(ctx, fmt.Sprintf("/2/users/%s", id))
}

func (c *V2Client) UserByHandle(ctx context.Context, username string) (*Profile, error) {
	return c.user(ctx, fmt.Sprintf("/2/users/by/username/%s", username))
}

func (c *V2Client) user(ctx context.Context, path string) (*Profile, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("user.fields", v2UserFields).
		SetResult(&v2UserResponse{}).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d %s", resp.StatusCode(), string(resp.Body()))
	}
	return v2Profile(resp.Result().(*v2UserResponse).Data), nil
}

func (c *V2Client) Post(ctx context.Context, text string) error {
	return c.createTweet(ctx, map[string]any{"text": text})
}

func (c *V2Client) Reply(ctx context.Context, text string, inReplyTo int64) error {
	return c.createTweet(ctx, map[string]any{
		"text": text,
		"reply": map[string]string{
			"in_reply_to_tweet_id": strconv.FormatInt(inReplyTo, 10),
		},
	})
}

func (c *V2Client) createTweet(ctx context.Context, body map[string]any) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/2/tweets")
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated && resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d %s", resp.StatusCode(), string(resp.Body()))
	}
	return nil
}

func v2Profile(u v2User) *Profile {
	return &Profile{
		ID:          u.ID,
		Username:    u.Username,
		CreatedAt:   u.CreatedAt,
		TweetCount:  u.PublicMetrics.TweetCount,
		Description: u.Description,
	}
}
