package preset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client talks to the preset service REST API.
type Client struct {
	apiBase string
	http    *http.Client
}

func NewClient(apiBase string) *Client {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	return &Client{
		apiBase: apiBase,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// APIBase is the service root, also used to resolve sample URLs.
func (c *Client) APIBase() string { return c.apiBase }

// Query filters List. Zero fields are not sent.
type Query struct {
	Q       string
	Type    string
	Factory *bool
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.Q != "" {
		v.Set("q", q.Q)
	}
	if q.Type != "" {
		v.Set("type", q.Type)
	}
	if q.Factory != nil {
		v.Set("factory", strconv.FormatBool(*q.Factory))
	}
	return v
}

type apiError struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors"`
}

// statusError maps a non-2xx response to a sentinel where one applies.
func statusError(resp *http.Response) error {
	var body apiError
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body)
	msg := body.Error
	if msg == "" && len(body.Errors) > 0 {
		msg = fmt.Sprint(body.Errors)
	}
	if msg == "" {
		msg = resp.Status
	}
	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, msg)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrInvalid, msg)
	}
	return fmt.Errorf("preset service: %s", msg)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Health pings the service.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, nil)
}

func (c *Client) List(ctx context.Context, q Query) ([]Preset, error) {
	u := c.apiBase + "/api/presets"
	if v := q.values(); len(v) > 0 {
		u += "?" + v.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	var out []Preset
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get looks a preset up by name or slug.
func (c *Client) Get(ctx context.Context, name string) (Preset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/api/presets/"+url.PathEscape(name), nil)
	if err != nil {
		return Preset{}, fmt.Errorf("create request: %w", err)
	}
	var out Preset
	if err := c.do(req, &out); err != nil {
		return Preset{}, err
	}
	return out, nil
}

// Create stores a new preset. The service assigns id and slug.
func (c *Client) Create(ctx context.Context, p Preset) (Preset, error) {
	if err := Validate(p); err != nil {
		return Preset{}, err
	}
	body, err := json.Marshal(p)
	if err != nil {
		return Preset{}, fmt.Errorf("marshal preset: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/api/presets", bytes.NewReader(body))
	if err != nil {
		return Preset{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	var out Preset
	if err := c.do(req, &out); err != nil {
		return Preset{}, err
	}
	return out, nil
}

// Delete removes a preset by name or slug.
func (c *Client) Delete(ctx context.Context, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.apiBase+"/api/presets/"+url.PathEscape(name), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, nil)
}

// UploadFile is one audio file sent to the service.
type UploadFile struct {
	Name string
	Data []byte
	// SampleName labels the pad. Empty means the file name without
	// extension.
	SampleName string
}

// UploadRequest stores files under Folder. With PresetName set the
// service also creates that preset, or appends to it when it exists.
type UploadRequest struct {
	Folder     string
	Files      []UploadFile
	PresetName string
	PresetType string
	URLSamples []Sample
	Overwrite  bool
}

type UploadedFile struct {
	OriginalName string `json:"originalName"`
	StoredName   string `json:"storedName"`
	Size         int64  `json:"size"`
	URL          string `json:"url"`
}

type UploadResult struct {
	Uploaded int            `json:"uploaded"`
	Files    []UploadedFile `json:"files"`
	Preset   *Preset        `json:"preset,omitempty"`
}

func (r UploadRequest) encode(w *multipart.Writer) error {
	names := make([]string, 0, len(r.Files))
	for _, f := range r.Files {
		part, err := w.CreateFormFile("files", f.Name)
		if err != nil {
			return err
		}
		if _, err := part.Write(f.Data); err != nil {
			return err
		}
		names = append(names, f.SampleName)
	}
	if r.PresetName == "" {
		return nil
	}

	fields := map[string]string{"presetName": r.PresetName}
	if r.PresetType != "" {
		fields["presetType"] = r.PresetType
	}
	if r.Overwrite {
		fields["overwrite"] = "true"
	}
	b, err := json.Marshal(names)
	if err != nil {
		return err
	}
	fields["sampleNames"] = string(b)
	if len(r.URLSamples) > 0 {
		b, err := json.Marshal(r.URLSamples)
		if err != nil {
			return err
		}
		fields["urlSamples"] = string(b)
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) Upload(ctx context.Context, r UploadRequest) (UploadResult, error) {
	if len(r.Files) == 0 {
		return UploadResult{}, fmt.Errorf("%w: no files to upload", ErrInvalid)
	}
	if len(r.Files) > MaxSamples {
		return UploadResult{}, fmt.Errorf("%w: %d files, at most %d allowed", ErrInvalid, len(r.Files), MaxSamples)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := r.encode(mw); err != nil {
		return UploadResult{}, fmt.Errorf("encode upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("encode upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/api/upload/"+url.PathEscape(r.Folder), &body)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var out UploadResult
	if err := c.do(req, &out); err != nil {
		return UploadResult{}, err
	}
	return out, nil
}
