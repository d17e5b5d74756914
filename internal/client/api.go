package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"gitdocsync/internal/clientconfig"
	"gitdocsync/internal/model"
)

const clientDataField = "client_data"

// APIClient talks to one target's action-code endpoint with basic auth.
type APIClient struct {
	baseURL  *url.URL
	tranxNum string
	username string
	password string
	http     *http.Client
}

type UploadFile struct {
	DocID   string
	Name    string
	Content []byte
}

// VersionInfo is the per-document confirmation a push returns.
type VersionInfo struct {
	DocVerID     string `json:"_doc_ver_id"`
	VersionLabel string `json:"_version_label"`
	EditDate     int64  `json:"_edit_date"`
}

type ShowRecord struct {
	DocVerID         string `json:"doc_ver_id"`
	VersionLabel     string `json:"version_label"`
	EditDate         int64  `json:"edit_date"`
	CheckedInBy      string `json:"checked_in_by"`
	CheckedInComment string `json:"checked_in_comment"`
	ContentURL       string `json:"content_url"`
}

type PullRecord struct {
	DocVerID     string `json:"doc_ver_id"`
	VersionLabel string `json:"version_label"`
	FileName     string `json:"file_name"`
	Content      string `json:"content"`
}

func NewAPIClient(target clientconfig.Target, username, password string) (*APIClient, error) {
	if err := clientconfig.ValidateTargetURL(target.URL); err != nil {
		return nil, err
	}
	base, err := url.Parse(strings.TrimSuffix(target.URL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse target url: %w", err)
	}
	return &APIClient{
		baseURL:  base,
		tranxNum: target.TranxNum,
		username: username,
		password: password,
		http:     &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (a *APIClient) URL() string {
	return a.baseURL.String()
}

// PushFiles uploads one multipart body: a part per mapped file plus the
// client_data JSON part.
func (a *APIClient) PushFiles(ctx context.Context, files []UploadFile, data model.ClientData) (map[string]VersionInfo, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, f := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, f.DocID, f.Name))
		header.Set("Content-Type", "text/plain")
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, err
		}
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q`, clientDataField))
	header.Set("Content-Type", "application/json")
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if err := json.NewEncoder(part).Encode(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint("push"), &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	out := map[string]VersionInfo{}
	if err := a.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Show fetches current version records for the given doc ids.
func (a *APIClient) Show(ctx context.Context, docIDs []string) (map[string]ShowRecord, error) {
	endpoint, err := url.Parse(a.endpoint("show"))
	if err != nil {
		return nil, err
	}
	query := endpoint.Query()
	for _, id := range docIDs {
		query.Add("doc_id", id)
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	out := map[string]ShowRecord{}
	if err := a.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Pull fetches current content for the given doc ids.
func (a *APIClient) Pull(ctx context.Context, docIDs []string) (map[string]PullRecord, error) {
	payload, err := json.Marshal(map[string][]string{"doc_ids": docIDs})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint("pull"), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	out := map[string]PullRecord{}
	if err := a.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *APIClient) endpoint(route string) string {
	ref := &url.URL{Path: "actioncode"}
	endpoint := a.baseURL.ResolveReference(ref)
	query := endpoint.Query()
	query.Set("tranxNum", a.tranxNum)
	query.Set("route", route)
	endpoint.RawQuery = query.Encode()
	return endpoint.String()
}

func (a *APIClient) do(req *http.Request, out interface{}) error {
	req.SetBasicAuth(a.username, a.password)
	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		if len(bytes.TrimSpace(body)) == 0 {
			return fmt.Errorf("empty response from server (unknown route or transaction number?)")
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("unexpected response body: %s", strings.TrimSpace(string(body)))
		}
		return nil
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("bad request: %s", errorText(body))
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("invalid auth: %s", errorText(body))
	default:
		return fmt.Errorf("response error: status code %d: %s", resp.StatusCode, errorText(body))
	}
}

func errorText(body []byte) string {
	var parsed struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return strings.TrimSpace(string(body))
}
