package uploadpost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/fbuehler/autopost-api/internal/transfer"
)

// ErrTransport marks dispatch calls that never produced a usable response
// (network failure, unreadable body). Callers treat it as a total failure.
var ErrTransport = errors.New("upload-post request failed")

type UploadRequest struct {
	Video         io.Reader
	FileName      string
	Title         string
	User          string
	Platforms     []string
	ScheduledDate string
	Params        map[string]string
}

type Client interface {
	UploadVideo(ctx context.Context, req UploadRequest) (*transfer.UploadResponse, error)
	FetchHistory(ctx context.Context, limit int) ([]transfer.HistoryItem, error)
	FetchStatus(ctx context.Context, requestID string) (*transfer.StatusResponse, error)
}

type client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) Client {
	return &client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{},
	}
}

func (c *client) UploadVideo(ctx context.Context, req UploadRequest) (*transfer.UploadResponse, error) {
	body, contentType, err := buildUploadForm(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	httpReq.Header.Set("Authorization", "Apikey "+c.apiKey)
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		slog.Error("upload-post dispatch failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	// The API reports per-platform failures inside the JSON body, so
	// non-2xx statuses are still decoded and left to the normalizer.
	var parsed transfer.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		slog.Error("upload-post response not decodable", "status", resp.StatusCode, "error", err)
		return nil, fmt.Errorf("%w: decode response: %v", ErrTransport, err)
	}

	return &parsed, nil
}

func buildUploadForm(req UploadRequest) (io.Reader, string, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		err := writeUploadForm(writer, req)
		if cerr := writer.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	return pr, writer.FormDataContentType(), nil
}

func writeUploadForm(writer *multipart.Writer, req UploadRequest) error {
	part, err := writer.CreateFormFile("video", req.FileName)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, req.Video); err != nil {
		return err
	}

	if err := writer.WriteField("title", req.Title); err != nil {
		return err
	}
	if err := writer.WriteField("user", req.User); err != nil {
		return err
	}
	for _, platform := range req.Platforms {
		if err := writer.WriteField("platform[]", platform); err != nil {
			return err
		}
	}
	if req.ScheduledDate != "" {
		if err := writer.WriteField("scheduled_date", req.ScheduledDate); err != nil {
			return err
		}
	}
	for k, v := range req.Params {
		if err := writer.WriteField(k, v); err != nil {
			return err
		}
	}
	return nil
}

func (c *client) FetchHistory(ctx context.Context, limit int) ([]transfer.HistoryItem, error) {
	endpoint := fmt.Sprintf("%s/history?limit=%d", c.baseURL, limit)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Apikey "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetch history: status %d: %s", resp.StatusCode, body)
	}

	var parsed transfer.HistoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("fetch history: decode: %w", err)
	}
	return parsed.History, nil
}

func (c *client) FetchStatus(ctx context.Context, requestID string) (*transfer.StatusResponse, error) {
	endpoint := c.baseURL + "/status?request_id=" + url.QueryEscape(requestID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Apikey "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch status for %s: status %d", requestID, resp.StatusCode)
	}

	var parsed transfer.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("fetch status: decode: %w", err)
	}
	return &parsed, nil
}
