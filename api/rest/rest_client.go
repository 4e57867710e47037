package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/okvist/localspot/api"
	"github.com/okvist/localspot/models"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL string, token string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: http.DefaultClient,
	}
}

func (c *Client) do(ctx context.Context, method string, path string, body any, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(bodyBytes)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", api.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s %s", api.ErrItemNotFound, method, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s returned %d", api.ErrRequestFailed, method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: malformed response for %s %s: %v", api.ErrRequestFailed, method, path, err)
		}
	}
	return nil
}

type helpfulResponse struct {
	Helpful bool `json:"helpful"`
}

func (c *Client) GetHelpful(ctx context.Context, reviewId string) (bool, error) {
	var resp helpfulResponse
	if err := c.do(ctx, http.MethodGet, "/api/reviews/"+reviewId+"/helpful", nil, &resp); err != nil {
		return false, err
	}
	return resp.Helpful, nil
}

type helpfulCountResponse struct {
	Count *int `json:"count"`
}

func (c *Client) GetHelpfulCount(ctx context.Context, reviewId string) (int, error) {
	var resp helpfulCountResponse
	if err := c.do(ctx, http.MethodGet, "/api/reviews/"+reviewId+"/helpful/count", nil, &resp); err != nil {
		return 0, err
	}
	if resp.Count == nil {
		return 0, fmt.Errorf("%w: count missing in response", api.ErrRequestFailed)
	}
	return *resp.Count, nil
}

func (c *Client) MarkHelpful(ctx context.Context, reviewId string) error {
	var resp helpfulResponse
	return c.do(ctx, http.MethodPost, "/api/reviews/"+reviewId+"/helpful", nil, &resp)
}

func (c *Client) UnmarkHelpful(ctx context.Context, reviewId string) error {
	var resp helpfulResponse
	return c.do(ctx, http.MethodDelete, "/api/reviews/"+reviewId+"/helpful", nil, &resp)
}

// replyDTO covers both revisions of the replies endpoints: newer responses
// carry authorId/createdAt, older ones user_id or a nested user object and
// a snake_case timestamp. Normalization happens once, here.
type replyDTO struct {
	Id       string `json:"id"`
	Content  string `json:"content"`
	AuthorId string `json:"authorId"`
	UserId   string `json:"user_id"`
	User     *struct {
		Id string `json:"id"`
	} `json:"user"`
	CreatedAt       int64 `json:"createdAt"`
	CreatedAtLegacy int64 `json:"created_at"`
}

func (d replyDTO) normalize() models.Reply {
	r := models.Reply{
		Id:        d.Id,
		Content:   d.Content,
		AuthorId:  d.AuthorId,
		CreatedAt: d.CreatedAt,
	}
	if r.AuthorId == "" {
		r.AuthorId = d.UserId
	}
	if r.AuthorId == "" && d.User != nil {
		r.AuthorId = d.User.Id
	}
	if r.CreatedAt == 0 {
		r.CreatedAt = d.CreatedAtLegacy
	}
	return r
}

type repliesResponse struct {
	Replies []replyDTO `json:"replies"`
}

func (c *Client) GetReplies(ctx context.Context, reviewId string) ([]models.Reply, error) {
	var resp repliesResponse
	if err := c.do(ctx, http.MethodGet, "/api/reviews/"+reviewId+"/replies", nil, &resp); err != nil {
		return nil, err
	}
	replies := make([]models.Reply, 0, len(resp.Replies))
	for _, d := range resp.Replies {
		replies = append(replies, d.normalize())
	}
	return replies, nil
}

type addReplyRequest struct {
	Content string `json:"content"`
}

type replyResponse struct {
	Reply replyDTO `json:"reply"`
}

func (c *Client) PostReply(ctx context.Context, reviewId string, content string) (models.Reply, error) {
	req := addReplyRequest{Content: strings.TrimSpace(content)}
	var resp replyResponse
	if err := c.do(ctx, http.MethodPost, "/api/reviews/"+reviewId+"/replies", req, &resp); err != nil {
		return models.Reply{}, err
	}
	return resp.Reply.normalize(), nil
}

type updateReplyRequest struct {
	ReplyId string `json:"replyId"`
	Content string `json:"content"`
}

func (c *Client) PutReply(ctx context.Context, reviewId string, replyId string, content string) (models.Reply, error) {
	req := updateReplyRequest{ReplyId: replyId, Content: strings.TrimSpace(content)}
	var resp replyResponse
	if err := c.do(ctx, http.MethodPut, "/api/reviews/"+reviewId+"/replies", req, &resp); err != nil {
		return models.Reply{}, err
	}
	return resp.Reply.normalize(), nil
}

type deleteReplyRequest struct {
	ReplyId string `json:"replyId"`
}

func (c *Client) DeleteReply(ctx context.Context, reviewId string, replyId string) error {
	req := deleteReplyRequest{ReplyId: replyId}
	return c.do(ctx, http.MethodDelete, "/api/reviews/"+reviewId+"/replies", req, nil)
}

type previewsRequest struct {
	BusinessIds []string `json:"businessIds"`
}

type previewDTO struct {
	Content   string   `json:"content"`
	Rating    *float64 `json:"rating"`
	CreatedAt *string  `json:"createdAt"`
}

type previewsResponse struct {
	Previews map[string]*previewDTO `json:"previews"`
}

func (c *Client) FetchPreviews(ctx context.Context, businessIds []string) (map[string]*models.ReviewPreview, error) {
	if len(businessIds) > api.MaxPreviewBatch {
		return nil, fmt.Errorf("%w: preview batch of %d exceeds limit of %d", api.ErrRequestFailed, len(businessIds), api.MaxPreviewBatch)
	}

	req := previewsRequest{BusinessIds: businessIds}
	var resp previewsResponse
	if err := c.do(ctx, http.MethodPost, "/api/reviews/previews", req, &resp); err != nil {
		return nil, err
	}

	previews := make(map[string]*models.ReviewPreview, len(resp.Previews))
	for businessId, d := range resp.Previews {
		if d == nil {
			continue
		}
		preview := &models.ReviewPreview{Content: d.Content}
		if d.Rating != nil {
			preview.Rating = *d.Rating
			preview.HasRating = true
		}
		if d.CreatedAt != nil {
			preview.CreatedAt = *d.CreatedAt
		}
		previews[businessId] = preview
	}
	return previews, nil
}
