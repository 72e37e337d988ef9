package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	DefaultBaseURL   = "https://api.github.com"
	DefaultUserAgent = "Portfolio-App/1.0"
	acceptHeader     = "application/vnd.github.v3+json"
	maxBodyBytes     = 5 << 20
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// ValidateUsername rejects anything but ASCII letters, digits and hyphens.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return newError(KindValidation, "validate username", errors.New("invalid username format"))
	}
	return nil
}

type RepoQuery struct {
	Sort    string
	PerPage int
}

type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

func NewClient(baseURL, userAgent string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

func (c *Client) FetchUser(ctx context.Context, username string, timeout time.Duration) (gjson.Result, error) {
	const op = "fetch user"

	if err := ValidateUsername(username); err != nil {
		return gjson.Result{}, err
	}

	body, err := c.get(ctx, op, "/users/"+url.PathEscape(username), nil, timeout)
	if err != nil {
		return gjson.Result{}, err
	}

	user := gjson.ParseBytes(body)
	if !user.IsObject() {
		return gjson.Result{}, newError(KindShape, op, errors.New("invalid user data received"))
	}

	return user, nil
}

func (c *Client) FetchRepos(ctx context.Context, username string, query RepoQuery, timeout time.Duration) ([]gjson.Result, error) {
	const op = "fetch repos"

	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	params := url.Values{}
	if query.Sort != "" {
		params.Set("sort", query.Sort)
	}
	if query.PerPage > 0 {
		params.Set("per_page", strconv.Itoa(query.PerPage))
	}

	body, err := c.get(ctx, op, "/users/"+url.PathEscape(username)+"/repos", params, timeout)
	if err != nil {
		return nil, err
	}

	repos := gjson.ParseBytes(body)
	if !repos.IsArray() {
		return nil, newError(KindShape, op, errors.New("invalid repositories data received"))
	}

	return repos.Array(), nil
}

func (c *Client) get(ctx context.Context, op, path string, params url.Values, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, newError(KindHTTP, op, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Debug("GitHub API returned non-success status", "op", op, "status", resp.StatusCode, "path", path)
		return nil, &FetchError{Kind: KindHTTP, Op: op, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, transportError(op, fmt.Errorf("failed to read response body: %w", err))
	}
	if len(body) > maxBodyBytes {
		return nil, newError(KindShape, op, fmt.Errorf("response body exceeds %d bytes", maxBodyBytes))
	}
	if !gjson.ValidBytes(body) {
		return nil, newError(KindShape, op, errors.New("response body is not valid JSON"))
	}

	return body, nil
}
