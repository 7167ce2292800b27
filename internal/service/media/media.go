package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"golang.org/x/sync/errgroup"

	"clip2gif/internal/domain"
)

const (
	outputFormat  = "gif"
	outputTarget  = "pipe:"
	maxStderrSize = 16 << 10
)

func NewMediaConverter(ffmpegPath string) *Converter {
	return &Converter{
		ffmpegPath: ffmpegPath,
	}
}

type Converter struct {
	ffmpegPath string
}

// ConvertToGIF hands sourceURL to ffmpeg, which fetches it itself, and returns
// the encoded GIF read from ffmpeg's stdout. Nothing is staged on disk.
func (m *Converter) ConvertToGIF(ctx context.Context, sourceURL string, opts domain.GIFOptions) ([]byte, error) {
	const errMsg = "Converter.ConvertToGIF"

	cmd := exec.CommandContext(ctx, m.ffmpegPath, buildArgs(sourceURL, opts)...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(domain.NewError(domain.ErrConversion, err), errMsg)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.Wrap(domain.NewError(domain.ErrConversion, err), errMsg)
	}

	err = cmd.Start()
	if err != nil {
		return nil, errors.Wrap(domain.NewError(domain.ErrConversion, err), errMsg)
	}

	var out bytes.Buffer
	diag := &tailBuffer{limit: maxStderrSize}

	// Both pipes must reach EOF before Wait; a failed drain kills ffmpeg so the other one ends too.
	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(&out, stdout)
		if err != nil {
			_ = cmd.Process.Kill()

			return errors.Wrap(err, "read stdout")
		}

		return nil
	})
	g.Go(func() error {
		_, err := io.Copy(diag, stderr)
		if err != nil {
			_ = cmd.Process.Kill()

			return errors.Wrap(err, "read stderr")
		}

		return nil
	})

	drainErr := g.Wait()
	waitErr := cmd.Wait()

	switch {
	case drainErr != nil:
		return nil, errors.Wrap(domain.NewError(domain.ErrConversion, drainErr), errMsg)
	case waitErr != nil:
		err = errors.Wrap(waitErr, "ffmpeg")
		if msg := strings.TrimSpace(diag.String()); msg != "" {
			err = errors.Wrapf(waitErr, "ffmpeg: %s", msg)
		}

		return nil, errors.Wrap(domain.NewError(domain.ErrConversion, err), errMsg)
	case out.Len() == 0:
		err = errors.New("ffmpeg produced no output")

		return nil, errors.Wrap(domain.NewError(domain.ErrConversion, err), errMsg)
	}

	return out.Bytes(), nil
}

func buildArgs(sourceURL string, opts domain.GIFOptions) []string {
	kwargs := ffmpeg.KwArgs{
		"vf":   filterChain(opts),
		"loop": strconv.Itoa(opts.Loop),
		"f":    outputFormat,
	}

	if opts.DurationSeconds > 0 {
		kwargs["t"] = strconv.FormatFloat(opts.DurationSeconds, 'f', 3, 64)
	}

	args := ffmpeg.Input(sourceURL).
		Output(outputTarget, kwargs).
		GetArgs()

	return append([]string{"-hide_banner", "-loglevel", "error"}, args...)
}

func filterChain(opts domain.GIFOptions) string {
	return fmt.Sprintf("fps=%d,scale=%d:-1:flags=lanczos", opts.FPS, opts.Width)
}

// tailBuffer keeps the last limit bytes written, where ffmpeg puts the fatal error.
type tailBuffer struct {
	buf   []byte
	limit int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}

	return len(p), nil
}

func (b *tailBuffer) String() string {
	return string(b.buf)
}
