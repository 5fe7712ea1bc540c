package cloudapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"avconverter/internal/services"
)

const (
	defaultRequestTimeout = 60 * time.Second
	defaultWaitBudget     = 5 * time.Minute
)

// Config describes the cloud conversion client configuration.
type Config struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
	WaitBudget     time.Duration
	Wait           WaitStrategy
	HTTPClient     *http.Client
}

// Client drives remote conversion jobs over the service's REST API.
type Client struct {
	apiKey     string
	baseURL    *url.URL
	api        *http.Client
	transfer   *http.Client
	wait       WaitStrategy
	waitBudget time.Duration
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("cloudapi: api key is required")
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, errors.New("cloudapi: base url is required")
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("cloudapi: parse base url: %w", err)
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	budget := cfg.WaitBudget
	if budget <= 0 {
		budget = defaultWaitBudget
	}
	wait := cfg.Wait
	if wait == nil {
		wait = FixedDelay{}
	}

	// Uploads and downloads move whole media files, so the transfer client
	// is bounded by ctx rather than the request timeout.
	api := cfg.HTTPClient
	transfer := cfg.HTTPClient
	if api == nil {
		api = &http.Client{Timeout: timeout}
		transfer = &http.Client{}
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		api:        api,
		transfer:   transfer,
		wait:       wait,
		waitBudget: budget,
	}, nil
}

// JobDocument is the service's job resource schema. The same shape comes
// back from the upload endpoint and the status resource.
type JobDocument struct {
	ID        string  `json:"id"`
	Job       string  `json:"job"`
	Operation string  `json:"operation"`
	Status    string  `json:"status"`
	Error     string  `json:"error,omitempty"`
	Result    *Result `json:"result,omitempty"`
}

// Result carries optional per-job payload details.
type Result struct {
	URL  string `json:"url,omitempty"`
	Form *Form  `json:"form,omitempty"`
}

// Form describes the service's form-based upload variant.
type Form struct {
	URL        string            `json:"url"`
	Parameters map[string]string `json:"parameters"`
}

// JobID returns the job handle from whichever field the service populated.
func (d JobDocument) JobID() string {
	if id := strings.TrimSpace(d.ID); id != "" {
		return id
	}
	return strings.TrimSpace(d.Job)
}

// Failed reports whether the document describes a failed job.
func (d JobDocument) Failed() bool {
	if strings.TrimSpace(d.Error) != "" {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(d.Status)) {
	case "error", "failed":
		return true
	}
	return false
}

// ReadyForDownload reports whether the remote job finished converting.
func (d JobDocument) ReadyForDownload() bool {
	switch strings.ToLower(strings.TrimSpace(d.Status)) {
	case "finished", "completed", "ready":
		return true
	}
	return false
}

// DownloadLink returns the explicit download URL when the service provided
// one.
func (d JobDocument) DownloadLink() string {
	if d.Result == nil {
		return ""
	}
	return strings.TrimSpace(d.Result.URL)
}

// Upload submits the file to the service's import endpoint and returns the
// job document. The upload is accepted only when the service reports the job
// as created or processing.
func (c *Client) Upload(ctx context.Context, filePath string) (JobDocument, error) {
	if c == nil {
		return JobDocument{}, errors.New("cloudapi: client is nil")
	}
	f, err := os.Open(filePath)
	if err != nil {
		return JobDocument{}, services.Wrap(services.ErrTransport, "cloud", "upload", "open source file", err)
	}
	defer f.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return JobDocument{}, services.Wrap(services.ErrTransport, "cloud", "upload", "create multipart file", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return JobDocument{}, services.Wrap(services.ErrTransport, "cloud", "upload", "read source file", err)
	}
	if err := writer.Close(); err != nil {
		return JobDocument{}, services.Wrap(services.ErrTransport, "cloud", "upload", "close multipart writer", err)
	}

	endpoint := c.baseURL.JoinPath("v1", "process", "import", "upload")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), body)
	if err != nil {
		return JobDocument{}, services.Wrap(services.ErrTransport, "cloud", "upload", "build request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.applyHeaders(req)

	resp, err := c.transfer.Do(req)
	if err != nil {
		return JobDocument{}, services.Wrap(services.ErrTransport, "cloud", "upload", "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return JobDocument{}, services.Wrap(services.ErrUploadRejected, "cloud", "upload",
			fmt.Sprintf("%s: %s", resp.Status, readErrorText(resp.Body)), nil)
	}

	var doc JobDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return JobDocument{}, services.Wrap(services.ErrDecode, "cloud", "upload", "response not in expected schema", err)
	}

	switch strings.ToLower(strings.TrimSpace(doc.Status)) {
	case "created", "processing":
	default:
		message := strings.TrimSpace(doc.Error)
		if message == "" {
			message = fmt.Sprintf("unexpected status %q", doc.Status)
		}
		return doc, services.Wrap(services.ErrUploadRejected, "cloud", "upload", message, nil)
	}
	if doc.JobID() == "" {
		return doc, services.Wrap(services.ErrDecode, "cloud", "upload", "response missing job identifier", nil)
	}
	return doc, nil
}

// AwaitCompletion waits for the job to become downloadable and returns the
// download URL. The configured wait strategy decides whether that means a
// fixed optimistic delay or polling the status resource; either way the
// configured wait budget bounds the whole wait.
func (c *Client) AwaitCompletion(ctx context.Context, jobID string) (string, error) {
	if c == nil {
		return "", errors.New("cloudapi: client is nil")
	}
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return "", services.Wrap(services.ErrValidation, "cloud", "await", "job id is required", nil)
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.waitBudget)
	defer cancel()

	doc, err := c.wait.Await(waitCtx, func(ctx context.Context) (JobDocument, error) {
		return c.jobStatus(ctx, jobID)
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", services.Wrap(services.ErrTimeout, "cloud", "await",
				fmt.Sprintf("job %s not ready within %s", jobID, c.waitBudget), err)
		}
		return "", err
	}

	if link := doc.DownloadLink(); link != "" {
		return link, nil
	}
	return c.baseURL.JoinPath("v1", "process", "download", jobID).String(), nil
}

// Download performs an authenticated GET of the converted file and streams
// it to a uniquely named file under destDir.
func (c *Client) Download(ctx context.Context, downloadURL, destDir string) (string, error) {
	if c == nil {
		return "", errors.New("cloudapi: client is nil")
	}
	if strings.TrimSpace(downloadURL) == "" {
		return "", services.Wrap(services.ErrValidation, "cloud", "download", "download url is required", nil)
	}
	if strings.TrimSpace(destDir) == "" {
		return "", services.Wrap(services.ErrValidation, "cloud", "download", "destination directory is required", nil)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrDownloadFailed, "cloud", "download", "create destination directory", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return "", services.Wrap(services.ErrDownloadFailed, "cloud", "download", "build request", err)
	}
	c.applyHeaders(req)

	resp, err := c.transfer.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrDownloadFailed, "cloud", "download", "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", services.Wrap(services.ErrDownloadFailed, "cloud", "download",
			fmt.Sprintf("%s: %s", resp.Status, readErrorText(resp.Body)), nil)
	}

	out, err := os.CreateTemp(destDir, "download-*")
	if err != nil {
		return "", services.Wrap(services.ErrDownloadFailed, "cloud", "download", "create output file", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", services.Wrap(services.ErrDownloadFailed, "cloud", "download", "stream body", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", services.Wrap(services.ErrDownloadFailed, "cloud", "download", "close output file", err)
	}
	return out.Name(), nil
}

// jobStatus fetches the job resource. A non-2xx response still yields a
// document when the body decodes as the job schema, so a remote-reported
// failure is visible to the poll strategy.
func (c *Client) jobStatus(ctx context.Context, jobID string) (JobDocument, error) {
	endpoint := c.baseURL.JoinPath("v1", "process", jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return JobDocument{}, services.Wrap(services.ErrTransport, "cloud", "status", "build request", err)
	}
	c.applyHeaders(req)

	resp, err := c.api.Do(req)
	if err != nil {
		return JobDocument{}, services.Wrap(services.ErrTransport, "cloud", "status", "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var doc JobDocument
		if json.Unmarshal(body, &doc) == nil && (doc.Error != "" || doc.Status != "") {
			return doc, nil
		}
		return JobDocument{}, services.Wrap(services.ErrTransport, "cloud", "status",
			fmt.Sprintf("%s: %s", resp.Status, strings.TrimSpace(string(body))), nil)
	}

	var doc JobDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return JobDocument{}, services.Wrap(services.ErrDecode, "cloud", "status", "response not in expected schema", err)
	}
	return doc, nil
}

func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
}

func readErrorText(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, 4096))
	trimmed := strings.TrimSpace(string(body))
	var doc JobDocument
	if json.Unmarshal(body, &doc) == nil && strings.TrimSpace(doc.Error) != "" {
		return strings.TrimSpace(doc.Error)
	}
	return trimmed
}
