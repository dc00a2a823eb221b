package platform

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// v1 timestamps use the legacy ruby-style format.
const v1TimeLayout = "Mon Jan 02 15:04:05 -0700 2006"

type v1User struct {
	IDStr         string `json:"id_str"`
	ScreenName    string `json:"screen_name"`
	CreatedAt     string `json:"created_at"`
	StatusesCount int    `json:"statuses_count"`
	Description   string `json:"description"`
}

type v1Tweet struct {
	IDStr     string `json:"id_str"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
	User      v1User `json:"user"`
	Entities  struct {
		UserMentions []struct {
			ScreenName string `json:"screen_name"`
		} `json:"user_mentions"`
	} `json:"entities"`
}

// V1Client implements Client against the 1.1 REST API generation.
type V1Client struct {
	client *resty.Client
}

func NewV1Client(baseURL, accessToken string) *V1Client {
	return &V1Client{
		client: resty.New().
			SetBaseURL(baseURL).
			SetAuthToken(accessToken),
	}
}

func (c *V1Client) Me(ctx context.Context) (*Profile, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&v1User{}).
		Get("/1.1/account/verify_credentials.json")
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d %s", resp.StatusCode(), string(resp.Body()))
	}
	return v1Profile(resp.Result().(*v1User))
}

func (c *V1Client) MentionsSince(ctx context.Context, sinceID int64) ([]Mention, error) {
	req := c.client.R().
		SetContext(ctx).
		SetResult(&[]v1Tweet{})
	if sinceID > 0 {
		req.SetQueryParam("since_id", strconv.FormatInt(sinceID, 10))
	}

	resp, err := req.Get("/1.1/statuses/mentions_timeline.json")
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d %s", resp.StatusCode(), string(resp.Body()))
	}

	tweets := *resp.Result().(*[]v1Tweet)
	mentions := make([]Mention, 0, len(tweets))
	for _, t := range tweets {
		id, err := strconv.ParseInt(t.IDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing tweet id %q: %w", t.IDStr, err)
		}
		createdAt, err := time.Parse(v1TimeLayout, t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing tweet timestamp %q: %w", t.CreatedAt, err)
		}
		m := Mention{
			ID:             id,
			AuthorID:       t.User.IDStr,
			AuthorUsername: t.User.ScreenName,
			Text:           t.Text,
			CreatedAt:      createdAt,
		}
		for _, um := range t.Entities.UserMentions {
			m.Tagged = append(m.Tagged, um.ScreenName)
		}
		mentions = append(mentions, m)
	}

	// The timeline arrives newest first; callers want chronological order.
	sort.Slice(mentions, func(i, j int) bool { return mentions[i].ID < mentions[j].ID })
	return mentions, nil
}

func (c *V1Client) UserByID(ctx context.Context, id string) (*Profile, error) {
	return c.user(ctx, "user_id", id)
}

func (c *V1Client) UserByHandle(ctx context.Context, username string) (*Profile, error) {
	return c.user(ctx, "screen_name", username)
}

func (c *V1Client) user(ctx context.Context, param, value string) (*Profile, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam(param, value).
		SetResult(&v1User{}).
		Get("/1.1/users/show.json")
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d %s", resp.StatusCode(), string(resp.Body()))
	}
	return v1Profile(resp.Result().(*v1User))
}

func (c *V1Client) Post(ctx context.Context, text string) error {
	return c.post(ctx, text, 0)
}

func (c *V1Client) Reply(ctx context.Context, text string, inReplyTo int64) error {
	return c.post(ctx, text, inReplyTo)
}

func (c *V1Client) post(ctx context.Context, text string, inReplyTo int64) error {
	req := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{"status": text})
	if inReplyTo > 0 {
		req.SetFormData(map[string]string{"in_reply_to_status_id": strconv.FormatInt(inReplyTo, 10)})
	}

	resp, err := req.Post("/1.1/statuses/update.json")
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d %s", resp.StatusCode(), string(resp.Body()))
	}
	return nil
}

func v1Profile(u *v1User) (*Profile, error) {
	createdAt, err := time.Parse(v1TimeLayout, u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing account timestamp %q: %w", u.CreatedAt, err)
	}
	return &Profile{
		ID:          u.IDStr,
		Username:    u.ScreenName,
		CreatedAt:   createdAt,
		TweetCount:  u.StatusesCount,
		Description: u.Description,
	}, nil
}
