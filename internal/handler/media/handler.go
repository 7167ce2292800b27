package media

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"clip2gif/internal/config"
	"clip2gif/internal/domain"
)

const gifContentType = "image/gif"

type (
	platformAPI interface {
		GetAccessToken(ctx context.Context) (string, error)
		GetClipByID(ctx context.Context, clipID, token string) (*domain.Clip, error)
		ClipDownloadURL(clip *domain.Clip) (string, error)
	}

	mediaConverter interface {
		ConvertToGIF(ctx context.Context, sourceURL string, opts domain.GIFOptions) ([]byte, error)
	}

	// Notifier delivers the finished GIF somewhere.
	Notifier interface {
		SendFile(ctx context.Context, file domain.File, content string) error
	}

	InitParams struct {
		Config    *config.Config
		Platform  platformAPI
		Converter mediaConverter
		// Notifiers are called in order; the first one is the Discord webhook.
		Notifiers []Notifier
		Logger    *slog.Logger
	}

	Handler struct {
		cfg       *config.Config
		platform  platformAPI
		converter mediaConverter
		notifiers []Notifier
		logger    *slog.Logger
	}
)

func New(p *InitParams) *Handler {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		cfg:       p.Config,
		platform:  p.Platform,
		converter: p.Converter,
		notifiers: p.Notifiers,
		logger:    logger,
	}
}

// ProcessClip runs the whole pipeline for one clip. input overrides the
// identifier from the configuration when non-empty. Stages run strictly in
// order and the first failure aborts the run.
func (h *Handler) ProcessClip(ctx context.Context, input string) error {
	const errMsg = "MediaHandler.ProcessClip"

	log := h.logger.With(slog.String("runID", uuid.NewString()))

	fail := func(stage Stage, err error) error {
		return errors.Wrapf(err, "%s: %s", errMsg, stage)
	}

	clipID, err := h.resolveIdentifier(input)
	if err != nil {
		return fail(StageResolveIdentifier, err)
	}

	log = log.With(slog.String("clipID", clipID))
	log.Info("Fetching Twitch clip")

	token, err := h.platform.GetAccessToken(ctx)
	if err != nil {
		return fail(StageAuthenticate, err)
	}

	clip, err := h.fetchMetadata(ctx, clipID, token)
	if err != nil {
		return fail(StageFetchMetadata, err)
	}

	downloadURL, err := h.platform.ClipDownloadURL(clip)
	if err != nil {
		return fail(StageDeriveDownloadURL, err)
	}

	log.Debug("Derived download url", slog.String("url", downloadURL))

	duration, capped := effectiveDuration(clip.Duration, h.cfg.GIF.MaxDurationSeconds)

	log.Info(
		"Clip duration",
		slog.String("stage", StageComputeEffectiveDuration.String()),
		slog.String("duration", fmt.Sprintf("%.2fs", clip.Duration)),
	)

	if capped {
		log.Warn(
			"Clip duration exceeds GIF_MAX_DURATION_SECONDS, only the beginning will be included",
			slog.Float64("maxDurationSeconds", h.cfg.GIF.MaxDurationSeconds),
			slog.String("effectiveDuration", fmt.Sprintf("%.2fs", duration)),
		)
	}

	log.Info("Converting clip to GIF in memory")

	started := time.Now()

	gif, err := h.converter.ConvertToGIF(ctx, downloadURL, domain.GIFOptions{
		FPS:             h.cfg.GIF.FPS,
		Width:           h.cfg.GIF.Width,
		Loop:            h.cfg.GIF.Loop,
		DurationSeconds: duration,
	})
	if err != nil {
		return fail(StageConvert, err)
	}

	log.Info(
		"GIF ready",
		slog.String("size", humanize.Bytes(uint64(len(gif)))),
		slog.String("took", time.Since(started).Round(time.Millisecond).String()),
	)

	file := domain.File{
		Name:        clipID + ".gif",
		ContentType: gifContentType,
		Data:        gif,
	}

	err = h.notify(ctx, log, file, h.caption(clip))
	if err != nil {
		return fail(StageNotify, err)
	}

	log.Info("GIF delivered", slog.String("stage", StageDone.String()))

	return nil
}

func (h *Handler) resolveIdentifier(input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		input = h.cfg.ClipIdentifier
	}

	if strings.TrimSpace(input) == "" {
		err := errors.New("provide a Twitch clip ID or URL as an argument or via TWITCH_CLIP_ID/TWITCH_CLIP_URL")

		return "", domain.NewError(domain.ErrInvalidIdentifier, err)
	}

	return extractClipID(input)
}

func (h *Handler) fetchMetadata(ctx context.Context, clipID, token string) (*domain.Clip, error) {
	clip, err := h.platform.GetClipByID(ctx, clipID, token)
	if err != nil {
		return nil, err
	}

	if clip == nil {
		err = errors.Errorf("no clip found for id %s", clipID)

		return nil, domain.NewError(domain.ErrNotFound, err)
	}

	if math.IsNaN(clip.Duration) || math.IsInf(clip.Duration, 0) || clip.Duration <= 0 {
		err = errors.Errorf("clip %s returned an invalid duration: %v", clipID, clip.Duration)

		return nil, domain.NewError(domain.ErrUpstream, err)
	}

	return clip, nil
}

func (h *Handler) notify(ctx context.Context, log *slog.Logger, file domain.File, content string) error {
	for i, n := range h.notifiers {
		log.Info("Sending GIF", slog.Int("target", i), slog.String("file", file.Name))

		err := n.SendFile(ctx, file, content)
		if err != nil {
			return err
		}
	}

	return nil
}

// caption expands {title}, {creator}, {broadcaster}, {url} and {id} in the
// configured template, or builds the default message when none is set.
func (h *Handler) caption(clip *domain.Clip) string {
	if h.cfg.Discord.Message == "" {
		return fmt.Sprintf("🎬 **%s** by %s — %s", clip.Title, clip.CreatorName, clip.URL)
	}

	r := strings.NewReplacer(
		"{title}", clip.Title,
		"{creator}", clip.CreatorName,
		"{broadcaster}", clip.BroadcasterName,
		"{url}", clip.URL,
		"{id}", clip.ID,
	)

	return r.Replace(h.cfg.Discord.Message)
}

// effectiveDuration caps clipSeconds at maxSeconds when a cap is set.
// capped reports whether the clip is longer than the cap.
func effectiveDuration(clipSeconds, maxSeconds float64) (seconds float64, capped bool) {
	if maxSeconds <= 0 {
		return clipSeconds, false
	}

	return math.Min(clipSeconds, maxSeconds), clipSeconds > maxSeconds
}
