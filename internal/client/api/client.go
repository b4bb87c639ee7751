// Package api is a thin HTTP client for the character builder API that echoes each
// request and response for debugging.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"charforge/internal/client/display"
)

// pollTimeout must outlast the server's long-poll wait
const pollTimeout = 60 * time.Second

type Client struct {
	BaseURL    string
	AuthToken  string
	HTTPClient *http.Client
	Verbose    bool
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: pollTimeout,
		},
	}
}

func (c *Client) SetVerbose(v bool) {
	c.Verbose = v
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(url string) {
	c.BaseURL = strings.TrimRight(url, "/")
}

func (c *Client) SetToken(token string) {
	c.AuthToken = token
}

// APIError is returned for any response with status >= 400
type APIError struct {
	Status   int
	Response ErrorResponse
}

func (e *APIError) Error() string {
	if e.Response.Code != "" {
		return fmt.Sprintf("request failed with status %d (%s)", e.Status, e.Response.Code)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func (c *Client) doRequest(method, path string, body any, result any) error {
	var (
		bodyReader io.Reader
		bodyJSON   []byte
	)
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyJSON = data
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AuthToken)
	}

	fmt.Printf("\n%s[API] %s %s%s\n", display.Blue, method, path, display.Reset)
	if len(bodyJSON) > 0 {
		if c.Verbose {
			fmt.Printf("%sRequest Body:%s\n%s\n", display.Cyan, display.Reset, display.Indent(bodyJSON))
		} else {
			fmt.Printf("%s%s%s\n", display.Blue, bodyJSON, display.Reset)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		fmt.Printf("%s[ERROR] %s%s\n", display.Red, err.Error(), display.Reset)
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	statusColor := display.Green
	if resp.StatusCode >= 400 {
		statusColor = display.Red
	}
	fmt.Printf("%s[%d %s]%s\n", statusColor, resp.StatusCode, http.StatusText(resp.StatusCode), display.Reset)

	if c.Verbose && len(respBody) > 0 {
		fmt.Printf("%sResponse Body:%s\n%s\n", display.Cyan, display.Reset, display.Indent(respBody))
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, &apiErr.Response); err != nil {
			apiErr.Response.Error = string(respBody)
		}
		if !c.Verbose {
			display.PrintError(apiErr.Response.Error, apiErr.Response.Code, apiErr.Response.Details)
			for _, f := range apiErr.Response.Fields {
				fmt.Printf("%s  %s: %s%s\n", display.Red, f.Field, f.Message, display.Reset)
			}
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			fmt.Printf("%sResponse parse error: %s%s\n", display.Red, err.Error(), display.Reset)
			fmt.Printf("%sRaw response: %s%s\n", display.Green, string(respBody), display.Reset)
			return err
		}
	}
	return nil
}

// API Methods

func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	err := c.doRequest(http.MethodGet, "/health", nil, &resp)
	return &resp, err
}

func (c *Client) Register(username, password, email string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.doRequest(http.MethodPost, "/api/v1/auth/register",
		&RegisterRequest{Username: username, Password: password, Email: email}, &resp)
	return &resp, err
}

func (c *Client) Login(identifier, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.doRequest(http.MethodPost, "/api/v1/auth/login",
		&LoginRequest{Identifier: identifier, Password: password}, &resp)
	return &resp, err
}

func (c *Client) Logout() error {
	return c.doRequest(http.MethodPost, "/api/v1/auth/logout", nil, nil)
}

func (c *Client) GetCurrentUser() (*UserResponse, error) {
	var resp UserResponse
	err := c.doRequest(http.MethodGet, "/api/v1/auth/me", nil, &resp)
	return &resp, err
}

func (c *Client) TraitOptions(assigned []int) (*TraitOptionsResponse, error) {
	parts := make([]string, len(assigned))
	for i, v := range assigned {
		parts[i] = strconv.Itoa(v)
	}
	var resp TraitOptionsResponse
	err := c.doRequest(http.MethodGet, "/api/v1/traits/options?assigned="+url.QueryEscape(strings.Join(parts, ",")), nil, &resp)
	return &resp, err
}

func (c *Client) SubmitBuild(payload BuildPayload) (*BuildResponse, error) {
	var resp BuildResponse
	err := c.doRequest(http.MethodPost, "/api/v1/characters", payload, &resp)
	return &resp, err
}

func (c *Client) ListCharacters() (*CharacterListResponse, error) {
	var resp CharacterListResponse
	err := c.doRequest(http.MethodGet, "/api/v1/characters", nil, &resp)
	return &resp, err
}

func (c *Client) GetSheet(characterID string) (*SheetResponse, error) {
	var resp SheetResponse
	err := c.doRequest(http.MethodGet, "/api/v1/characters/"+characterID, nil, &resp)
	return &resp, err
}

func (c *Client) SetTracker(characterID, tracker string, value int, deferred bool) (*Tracker, error) {
	path := fmt.Sprintf("/api/v1/characters/%s/trackers/%s", characterID, tracker)
	if deferred {
		path += "?defer=true"
	}
	var resp Tracker
	err := c.doRequest(http.MethodPut, path, &TrackerSetRequest{Value: value}, &resp)
	return &resp, err
}

func (c *Client) ClickTracker(characterID, tracker string, index int) (*Tracker, error) {
	var resp Tracker
	err := c.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/characters/%s/trackers/%s/click", characterID, tracker),
		&TrackerClickRequest{Index: index}, &resp)
	return &resp, err
}

func (c *Client) RollDuality(characterID string, req *DualityRollRequest) (*RollResponse, error) {
	var resp RollResponse
	err := c.doRequest(http.MethodPost, "/api/v1/characters/"+characterID+"/rolls/duality", req, &resp)
	return &resp, err
}

func (c *Client) RollStandard(characterID string, req *StandardRollRequest) (*RollResponse, error) {
	var resp RollResponse
	err := c.doRequest(http.MethodPost, "/api/v1/characters/"+characterID+"/rolls/standard", req, &resp)
	return &resp, err
}

func (c *Client) RecentRolls(characterID string, limit int) (*RollHistoryResponse, error) {
	q := url.Values{}
	if characterID != "" {
		q.Set("characterId", characterID)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/v1/rolls"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var resp RollHistoryResponse
	err := c.doRequest(http.MethodGet, path, nil, &resp)
	return &resp, err
}

// PollRolls long-polls a moderated player's rolls newer than afterID
func (c *Client) PollRolls(playerID string, afterID int64, wait bool) (*RollHistoryResponse, error) {
	path := fmt.Sprintf("/api/v1/moderator/players/%s/rolls?after=%d&wait=%t", playerID, afterID, wait)
	var resp RollHistoryResponse
	err := c.doRequest(http.MethodGet, path, nil, &resp)
	return &resp, err
}

func (c *Client) ModeratorSheet(characterID string) (*SheetResponse, error) {
	var resp SheetResponse
	err := c.doRequest(http.MethodGet, "/api/v1/moderator/characters/"+characterID, nil, &resp)
	return &resp, err
}

// RawRequest performs a raw HTTP request for debugging purposes
func (c *Client) RawRequest(method, path string, body string) error {
	var bodyData any
	if body != "" {
		if json.Valid([]byte(body)) {
			bodyData = json.RawMessage(body)
		} else {
			bodyData = body
		}
	}
	return c.doRequest(method, path, bodyData, nil)
}
