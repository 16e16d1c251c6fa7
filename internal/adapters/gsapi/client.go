package gsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"photo-vote-bot/internal/domain"
	"photo-vote-bot/internal/infra/metrics"
)

const (
	epChallenges = "/rest_mobile/get_member_challenges"
	epVoteImages = "/rest_mobile/get_vote_images"
	epSubmitVote = "/rest_mobile/submit_vote"
	epBoostPhoto = "/rest_mobile/boost_photo"

	// Таймауты платформы: данные — 3s, авторизация — 5s.
	dataTimeout = 3 * time.Second
	AuthTimeout = 5 * time.Second

	voteLayout  = "scroll"
	contentType = "application/x-www-form-urlencoded; charset=utf-8"
)

// Device — неизменяемый набор идентификационных заголовков устройства.
// Платформа требует его в каждом запросе, значения передаются как есть.
type Device struct {
	Env        string
	APIVersion string
	Brand      string
	Model      string
	OSVersion  string
	AppVersion string
}

// Client ходит в REST API платформы от имени авторизованного участника.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	token      string
	device     Device
	poolLimit  int
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithPoolLimit(limit int) Option {
	return func(c *Client) {
		if limit > 0 {
			c.poolLimit = limit
		}
	}
}

// New создаёт клиент. Токен обязателен: без него запросы не выполняются.
func New(baseURL, token string, device Device, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, domain.ErrMissingToken
	}
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme == "" {
		parsed.Scheme = "https"
	}
	client := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{},
		token:      token,
		device:     device,
		poolLimit:  100,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type wireBoost struct {
	State   string `json:"state"`
	Timeout int64  `json:"timeout"`
}

type wireExposure struct {
	ExposureFactor float64 `json:"exposure_factor"`
}

type wireEntry struct {
	ID    string `json:"id"`
	Turbo bool   `json:"turbo"`
}

type wireChallenge struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	StartTime int64  `json:"start_time"`
	Member    struct {
		Boost   wireBoost `json:"boost"`
		Ranking struct {
			Exposure wireExposure `json:"exposure"`
			Entries  []wireEntry  `json:"entries"`
		} `json:"ranking"`
	} `json:"member"`
}

type challengesResponse struct {
	Success    bool            `json:"success"`
	Challenges []wireChallenge `json:"challenges"`
}

type wireImage struct {
	ID    string  `json:"id"`
	Ratio float64 `json:"ratio"`
	Turbo bool    `json:"turbo"`
}

type votingResponse struct {
	Success bool `json:"success"`
	Voting  struct {
		Exposure wireExposure `json:"exposure"`
		Images   []wireImage  `json:"images"`
	} `json:"voting"`
}

type submitResponse struct {
	Success bool `json:"success"`
	Voting  struct {
		Exposure wireExposure `json:"exposure"`
	} `json:"voting"`
}

type boostResponse struct {
	Success bool `json:"success"`
}

// ActiveChallenges возвращает активные челленджи участника.
func (c *Client) ActiveChallenges(ctx context.Context) ([]domain.Challenge, error) {
	var resp challengesResponse
	if err := c.post(ctx, "get_member_challenges", epChallenges, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("get_member_challenges: %w", domain.ErrAPIFailure)
	}
	challenges := make([]domain.Challenge, 0, len(resp.Challenges))
	for _, wc := range resp.Challenges {
		challenges = append(challenges, mapChallenge(wc))
	}
	return challenges, nil
}

// VoteImages возвращает пул кандидатов и текущую экспозицию по челленджу.
func (c *Client) VoteImages(ctx context.Context, challenge domain.Challenge) (domain.VotePool, error) {
	form := url.Values{}
	form.Set("limit", strconv.Itoa(c.poolLimit))
	form.Set("url", challenge.URL)
	var resp votingResponse
	if err := c.post(ctx, "get_vote_images", epVoteImages, form, &resp); err != nil {
		return domain.VotePool{}, err
	}
	if !resp.Success {
		return domain.VotePool{}, fmt.Errorf("get_vote_images: %w", domain.ErrAPIFailure)
	}
	pool := domain.VotePool{Exposure: resp.Voting.Exposure.ExposureFactor}
	for _, img := range resp.Voting.Images {
		pool.Images = append(pool.Images, domain.CandidateImage{ID: img.ID, Ratio: img.Ratio, Turbo: img.Turbo})
	}
	return pool, nil
}

// SubmitVote отправляет выбранные и просмотренные изображения одним запросом.
func (c *Client) SubmitVote(ctx context.Context, selection domain.VoteSelection) (domain.SubmissionResult, error) {
	form := url.Values{}
	form.Set("c_id", strconv.FormatInt(selection.ChallengeID, 10))
	form.Set("layout", voteLayout)
	for _, id := range selection.ImageIDs {
		form.Add("image_ids[]", id)
	}
	for _, id := range selection.ViewedIDs {
		form.Add("viewed_image_ids[]", id)
	}
	var resp submitResponse
	if err := c.post(ctx, "submit_vote", epSubmitVote, form, &resp); err != nil {
		return domain.SubmissionResult{}, err
	}
	if !resp.Success {
		return domain.SubmissionResult{}, fmt.Errorf("submit_vote: %w", domain.ErrAPIFailure)
	}
	return domain.SubmissionResult{
		ChallengeID: selection.ChallengeID,
		Exposure:    resp.Voting.Exposure.ExposureFactor,
	}, nil
}

// BoostPhoto применяет буст к изображению.
func (c *Client) BoostPhoto(ctx context.Context, challengeID int64, imageID string) error {
	form := url.Values{}
	form.Set("c_id", strconv.FormatInt(challengeID, 10))
	form.Set("image_id", imageID)
	var resp boostResponse
	if err := c.post(ctx, "boost_photo", epBoostPhoto, form, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("boost_photo: %w", domain.ErrAPIFailure)
	}
	return nil
}

func mapChallenge(wc wireChallenge) domain.Challenge {
	entries := make([]domain.RankEntry, 0, len(wc.Member.Ranking.Entries))
	for _, e := range wc.Member.Ranking.Entries {
		entries = append(entries, domain.RankEntry{ImageID: e.ID, Turbo: e.Turbo})
	}
	return domain.Challenge{
		ID:        wc.ID,
		Title:     wc.Title,
		URL:       wc.URL,
		StartTime: wc.StartTime,
		Member: domain.MemberState{
			Exposure: domain.ExposureState{Factor: wc.Member.Ranking.Exposure.ExposureFactor},
			Boost:    domain.BoostState{State: domain.BoostStateValue(wc.Member.Boost.State), Timeout: wc.Member.Boost.Timeout},
			Entries:  entries,
		},
	}
}

func (c *Client) post(ctx context.Context, operation, endpoint string, form url.Values, out any) error {
	start := time.Now()
	err := c.doPost(ctx, endpoint, form, out)
	metrics.ObserveNetworkRequest(operation, start, err)
	return err
}

func (c *Client) doPost(ctx context.Context, endpoint string, form url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, dataTimeout)
	defer cancel()

	resolved := *c.baseURL
	basePath := strings.TrimSuffix(c.baseURL.Path, "/")
	resolved.Path = path.Clean(basePath + endpoint)

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resolved.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-token", c.token)
	req.Header.Set("x-env", c.device.Env)
	req.Header.Set("x-api-version", c.device.APIVersion)
	req.Header.Set("x-brand", c.device.Brand)
	req.Header.Set("x-model", c.device.Model)
	req.Header.Set("x-os-version", c.device.OSVersion)
	req.Header.Set("x-app-version", c.device.AppVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("platform api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("platform api status=%d body=%s: %w", resp.StatusCode, strings.TrimSpace(string(data)), domain.ErrAPIFailure)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var _ domain.ChallengeFetcher = (*Client)(nil)
var _ domain.VoteImageFetcher = (*Client)(nil)
var _ domain.VoteSubmitter = (*Client)(nil)
var _ domain.Booster = (*Client)(nil)
