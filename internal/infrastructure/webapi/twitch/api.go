package twitch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"

	"clip2gif/internal/domain"
)

const (
	defaultTimeout  = time.Second * 10
	maxErrorBody    = 1 << 10
	mediaExtension  = ".mp4"
	clipsEndpoint   = "/clips"
	grantTypeClient = "client_credentials"
)

// previewPattern matches the thumbnail suffix the clip CDN appends to the media file name.
var previewPattern = regexp.MustCompile(`-preview-.+?\.jpg`)

func New(clientID, clientSecret, authURL, apiBaseURL string) *API {
	client := &http.Client{Timeout: defaultTimeout}

	return &API{
		clientID:     clientID,
		clientSecret: clientSecret,
		authURL:      authURL,
		apiBaseURL:   strings.TrimRight(apiBaseURL, "/"),
		client:       client,
	}
}

type API struct {
	clientID     string
	clientSecret string
	authURL      string
	apiBaseURL   string
	client       *http.Client
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type clipsResponse struct {
	Data []domain.Clip `json:"data"`
}

// GetAccessToken performs a client-credentials grant and returns the app access token.
func (a *API) GetAccessToken(ctx context.Context) (string, error) {
	const errMsg = "TwitchAPI.GetAccessToken"

	form := url.Values{
		"client_id":     {a.clientID},
		"client_secret": {a.clientSecret},
		"grant_type":    {grantTypeClient},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Wrap(domain.NewError(domain.ErrUpstream, err), errMsg)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token tokenResponse

	err = a.doJSON(req, &token)
	if err != nil {
		return "", errors.Wrap(err, errMsg)
	}

	if token.AccessToken == "" {
		err = errors.New("token response has no access_token")

		return "", errors.Wrap(domain.NewError(domain.ErrUpstream, err), errMsg)
	}

	return token.AccessToken, nil
}

// GetClipByID returns the clip with the given id, or nil when the platform knows no such clip.
func (a *API) GetClipByID(ctx context.Context, clipID, token string) (*domain.Clip, error) {
	const errMsg = "TwitchAPI.GetClipByID"

	query := url.Values{"id": {clipID}}
	endpoint := a.apiBaseURL + clipsEndpoint + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(domain.NewError(domain.ErrUpstream, err), errMsg)
	}
	req.Header.Set("Client-ID", a.clientID)
	req.Header.Set("Authorization", "Bearer "+token)

	var clips clipsResponse

	err = a.doJSON(req, &clips)
	if err != nil {
		return nil, errors.Wrap(err, errMsg)
	}

	if len(clips.Data) == 0 {
		return nil, nil
	}

	return &clips.Data[0], nil
}

// ClipDownloadURL derives the clip's mp4 location from its thumbnail URL.
// The CDN naming scheme is undocumented, so this is best effort.
func (a *API) ClipDownloadURL(clip *domain.Clip) (string, error) {
	return DownloadURL(clip)
}

func DownloadURL(clip *domain.Clip) (string, error) {
	const errMsg = "TwitchAPI.DownloadURL"

	if clip == nil || clip.ThumbnailURL == "" {
		err := errors.New("clip has no thumbnail url to derive the download link from")

		return "", errors.Wrap(domain.NewError(domain.ErrDerivation, err), errMsg)
	}

	thumbnail := clip.ThumbnailURL
	downloadURL := thumbnail

	loc := previewPattern.FindStringIndex(thumbnail)
	if loc != nil {
		downloadURL = thumbnail[:loc[0]] + mediaExtension + thumbnail[loc[1]:]
	}

	if !strings.HasSuffix(downloadURL, mediaExtension) {
		err := errors.Errorf("unable to derive clip download url from thumbnail %s", thumbnail)

		return "", errors.Wrap(domain.NewError(domain.ErrDerivation, err), errMsg)
	}

	return downloadURL, nil
}

func (a *API) doJSON(req *http.Request, out any) error {
	resp, err := a.client.Do(req)
	if err != nil {
		return domain.NewError(domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err = errors.Errorf("response status code %s: %s", resp.Status, strings.TrimSpace(string(body)))

		return domain.NewError(domain.ErrUpstream, err)
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return domain.NewError(domain.ErrUpstream, errors.Wrap(err, "decode response"))
	}

	return nil
}
