package media

import (
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"clip2gif/internal/domain"
)

const clipPageHost = "clips.twitch.tv"

var clipIDPattern = regexp.MustCompile(`[a-zA-Z0-9_-]+`)

// extractClipID accepts a bare clip slug, a clips.twitch.tv link or a
// channel link of the form .../<channel>/clip/<slug> and returns the slug.
func extractClipID(input string) (string, error) {
	const errMsg = "extractClipID"

	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		err := errors.New("cannot extract clip id from an empty value")

		return "", errors.Wrap(domain.NewError(domain.ErrInvalidIdentifier, err), errMsg)
	}

	candidate := trimmed
	if fromURL, ok := clipIDFromURL(trimmed); ok {
		candidate = fromURL
	}

	id := clipIDPattern.FindString(candidate)
	if id == "" {
		err := errors.Errorf("unable to parse clip identifier from input %q", candidate)

		return "", errors.Wrap(domain.NewError(domain.ErrInvalidIdentifier, err), errMsg)
	}

	return id, nil
}

// clipIDFromURL reports false for anything that is not an absolute URL with a recognized clip path.
func clipIDFromURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}

	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	if strings.Contains(strings.ToLower(u.Hostname()), clipPageHost) && len(segments) > 0 {
		last := segments[len(segments)-1]

		// Embed player links carry the slug in the query: clips.twitch.tv/embed?clip=<slug>.
		if strings.EqualFold(last, "embed") {
			if embedded := u.Query().Get("clip"); embedded != "" {
				return embedded, true
			}
		}

		return last, true
	}

	i := slices.IndexFunc(segments, func(s string) bool { return strings.EqualFold(s, "clip") })
	if i >= 0 && i+1 < len(segments) {
		return segments[i+1], true
	}

	return "", false
}
