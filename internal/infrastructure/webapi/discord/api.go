package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/pkg/errors"

	"clip2gif/internal/domain"
)

const (
	defaultTimeout = time.Minute * 2
	maxErrorBody   = 1 << 10
)

func New(webhookURL, username string) *API {
	client := &http.Client{Timeout: defaultTimeout}

	return &API{
		webhookURL: webhookURL,
		username:   username,
		client:     client,
	}
}

// API posts messages to a single Discord webhook.
type API struct {
	webhookURL string
	username   string
	client     *http.Client
}

type payload struct {
	Content  string `json:"content"`
	Username string `json:"username,omitempty"`
}

// SendFile posts file with content as its caption. The body is built in memory without a size cap.
func (a *API) SendFile(ctx context.Context, file domain.File, content string) error {
	const errMsg = "DiscordAPI.SendFile"

	body, contentType, err := a.buildBody(file, content)
	if err != nil {
		return errors.Wrap(domain.NewError(domain.ErrDelivery, err), errMsg)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.webhookURL, body)
	if err != nil {
		return errors.Wrap(domain.NewError(domain.ErrDelivery, err), errMsg)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := a.client.Do(req)
	if err != nil {
		return errors.Wrap(domain.NewError(domain.ErrDelivery, err), errMsg)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err = errors.Errorf("response status code %s: %s", resp.Status, strings.TrimSpace(string(respBody)))

		return errors.Wrap(domain.NewError(domain.ErrDelivery, err), errMsg)
	}

	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

func (a *API) buildBody(file domain.File, content string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	meta, err := json.Marshal(payload{Content: content, Username: a.username})
	if err != nil {
		return nil, "", errors.Wrap(err, "encode payload_json")
	}

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Disposition", `form-data; name="payload_json"`)
	metaHeader.Set("Content-Type", "application/json")

	part, err := w.CreatePart(metaHeader)
	if err != nil {
		return nil, "", errors.Wrap(err, "create payload_json part")
	}

	_, err = part.Write(meta)
	if err != nil {
		return nil, "", errors.Wrap(err, "write payload_json part")
	}

	fileHeader := textproto.MIMEHeader{}
	fileHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	fileHeader.Set("Content-Type", file.ContentType)

	part, err = w.CreatePart(fileHeader)
	if err != nil {
		return nil, "", errors.Wrap(err, "create file part")
	}

	_, err = part.Write(file.Data)
	if err != nil {
		return nil, "", errors.Wrap(err, "write file part")
	}

	err = w.Close()
	if err != nil {
		return nil, "", errors.Wrap(err, "close multipart body")
	}

	return body, w.FormDataContentType(), nil
}
