package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

const maxAPIResponseSize = 1 << 20

type apiResponse struct {
	Header http.Header
	Body   []byte
}

// apiStatusError is a non 2xx answer from the platform API
type apiStatusError struct {
	Status int
	Body   string
}

func (e *apiStatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Status)
}

func isTransientAPIError(err error) bool {
	var statusErr *apiStatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status >= http.StatusInternalServerError
	}
	return isNetworkError(err)
}

type apiRequest struct {
	Method      string
	Path        string
	AccessToken string
	Body        []byte
	Headers     map[string]string
}

type apiClient struct {
	baseURL    string
	httpClient *http.Client
	retry      RetryPolicy
}

func newAPIClient(baseURL string, httpClient *http.Client, retry RetryPolicy) *apiClient {
	return &apiClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		retry:      retry,
	}
}

func (c *apiClient) do(ctx context.Context, request apiRequest) (apiResponse, error) {
	return retryTransient(ctx, c.retry, func() (apiResponse, error) {
		return c.doOnce(ctx, request)
	}, isTransientAPIError)
}

func (c *apiClient) doOnce(ctx context.Context, request apiRequest) (apiResponse, error) {
	var body io.Reader
	if request.Body != nil {
		body = bytes.NewReader(request.Body)
	}

	req, err := http.NewRequestWithContext(ctx, request.Method, c.baseURL+request.Path, body)
	if err != nil {
		return apiResponse{}, err
	}

	token := &oauth2.Token{AccessToken: request.AccessToken, TokenType: "Bearer"}
	token.SetAuthHeader(req)

	req.Header.Set("Accept", "application/json")
	if request.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range request.Headers {
		req.Header.Set(key, value)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return apiResponse{}, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxAPIResponseSize))
	if err != nil {
		return apiResponse{}, err
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return apiResponse{}, &apiStatusError{Status: res.StatusCode, Body: string(data)}
	}

	return apiResponse{Header: res.Header, Body: data}, nil
}
