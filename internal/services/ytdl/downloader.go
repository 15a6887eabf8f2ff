package ytdl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	youtube "github.com/kkdai/youtube/v2"

	"clipper/internal/fileutil"
	"clipper/internal/library"
	"clipper/internal/services"
	"clipper/internal/stage"
)

const copyBufferSize = 32 * 1024

// Downloader implements the acquisition stage. It resolves a job source
// into a local media file under the daemon's upload directory.
type Downloader struct {
	client *youtube.Client
	logger *slog.Logger
}

// NewDownloader constructs a Downloader.
func NewDownloader(logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{
		client: &youtube.Client{},
		logger: logger,
	}
}

// IsRemote reports whether source should be fetched over the network
// rather than read from the local filesystem.
func IsRemote(source string) bool {
	parsed, err := url.Parse(strings.TrimSpace(source))
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

// Acquire places the source media into destDir and returns its local
// description. Remote sources are streamed down with byte-level progress;
// local sources outside destDir are copied in, and files already inside
// destDir are used as-is.
func (d *Downloader) Acquire(ctx context.Context, source, destDir string, progress stage.ProgressFunc) (stage.Media, error) {
	if IsRemote(source) {
		return d.fetchRemote(ctx, source, destDir, progress)
	}
	return d.importLocal(ctx, source, destDir, progress)
}

func (d *Downloader) fetchRemote(ctx context.Context, source, destDir string, progress stage.ProgressFunc) (stage.Media, error) {
	video, err := d.client.GetVideoContext(ctx, source)
	if err != nil {
		return stage.Media{}, services.Wrap(classify(err), "download", "resolve", source, err)
	}

	format, err := pickFormat(video.Formats)
	if err != nil {
		return stage.Media{}, services.Wrap(services.ErrAcquisition, "download", "select format", video.ID, err)
	}

	reader, size, err := d.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return stage.Media{}, services.Wrap(classify(err), "download", "open stream", video.ID, err)
	}
	defer reader.Close()
	if size <= 0 {
		size = format.ContentLength
	}

	// Stream into a .part file first so an interrupted download never
	// looks like finished media.
	destPath := filepath.Join(destDir, uuid.NewString()+".mp4")
	partPath := destPath + ".part"
	out, err := os.Create(partPath)
	if err != nil {
		return stage.Media{}, services.Wrap(services.ErrAcquisition, "download", "create file", partPath, err)
	}

	written, err := copyWithProgress(ctx, out, reader, size, progress)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(partPath)
		return stage.Media{}, services.Wrap(classify(err), "download", "stream", video.ID, err)
	}
	if err := fileutil.MoveFile(partPath, destPath); err != nil {
		os.Remove(partPath)
		return stage.Media{}, services.Wrap(services.ErrAcquisition, "download", "finalize file", destPath, err)
	}

	d.logger.Info("download complete",
		"video_id", video.ID,
		"title", video.Title,
		"bytes", written,
		"path", destPath)

	return stage.Media{
		Path:            destPath,
		Title:           video.Title,
		DurationSeconds: video.Duration.Seconds(),
		SizeBytes:       written,
	}, nil
}

func (d *Downloader) importLocal(ctx context.Context, source, destDir string, progress stage.ProgressFunc) (stage.Media, error) {
	info, err := os.Stat(source)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return stage.Media{}, services.Wrap(services.ErrNotFound, "upload", "stat", source, err)
		}
		return stage.Media{}, services.Wrap(services.ErrAcquisition, "upload", "stat", source, err)
	}
	if info.IsDir() {
		return stage.Media{}, services.Wrap(services.ErrAcquisition, "upload", "stat", source, fmt.Errorf("is a directory"))
	}

	media := stage.Media{
		Title:     library.DeriveTitle(filepath.Base(source)),
		SizeBytes: info.Size(),
	}

	// Files placed by the upload endpoint are already in destDir.
	if filepath.Dir(filepath.Clean(source)) == filepath.Clean(destDir) {
		media.Path = filepath.Clean(source)
		if progress != nil {
			progress(100)
		}
		return media, nil
	}

	in, err := os.Open(source)
	if err != nil {
		return stage.Media{}, services.Wrap(services.ErrAcquisition, "upload", "open", source, err)
	}
	defer in.Close()

	destPath := filepath.Join(destDir, library.StoredNameFor(uuid.NewString(), source))
	out, err := os.Create(destPath)
	if err != nil {
		return stage.Media{}, services.Wrap(services.ErrAcquisition, "upload", "create file", destPath, err)
	}

	written, err := copyWithProgress(ctx, out, in, info.Size(), progress)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(destPath)
		return stage.Media{}, services.Wrap(services.ErrAcquisition, "upload", "copy", source, err)
	}
	if written != info.Size() {
		os.Remove(destPath)
		return stage.Media{}, services.Wrap(services.ErrAcquisition, "upload", "copy", source,
			fmt.Errorf("short copy: %d of %d bytes", written, info.Size()))
	}

	media.Path = destPath
	return media, nil
}

// HealthCheck reports acquisition readiness. There is no remote
// dependency to probe without a concrete source, so readiness is
// constant.
func (d *Downloader) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy("download")
}

// pickFormat chooses the highest-bitrate progressive mp4, falling back to
// any muxed format when no mp4 carries both streams.
func pickFormat(formats youtube.FormatList) (*youtube.Format, error) {
	candidates := make([]*youtube.Format, 0, len(formats))
	for i := range formats {
		f := &formats[i]
		if f.AudioChannels <= 0 {
			continue
		}
		candidates = append(candidates, f)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no muxed formats available")
	}

	sort.Slice(candidates, func(i, j int) bool {
		iMP4 := strings.HasPrefix(candidates[i].MimeType, "video/mp4")
		jMP4 := strings.HasPrefix(candidates[j].MimeType, "video/mp4")
		if iMP4 != jMP4 {
			return iMP4
		}
		return candidates[i].Bitrate > candidates[j].Bitrate
	})
	return candidates[0], nil
}

func copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, total int64, progress stage.ProgressFunc) (int64, error) {
	if progress != nil {
		progress(0)
	}

	buf := make([]byte, copyBufferSize)
	var written int64
	lastPercent := 0

	for {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			wn, writeErr := dst.Write(buf[:n])
			written += int64(wn)
			if writeErr != nil {
				return written, writeErr
			}
			if wn < n {
				return written, io.ErrShortWrite
			}
			if progress != nil && total > 0 {
				percent := int(written * 100 / total)
				if percent > 100 {
					percent = 100
				}
				if percent > lastPercent {
					lastPercent = percent
					progress(percent)
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return written, readErr
		}
	}

	if progress != nil && lastPercent < 100 {
		progress(100)
	}
	return written, nil
}

func classify(err error) error {
	var netErr net.Error
	var urlErr *url.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return services.ErrTimeout
	case errors.As(err, &netErr), errors.As(err, &urlErr):
		return services.ErrTransient
	default:
		return services.ErrAcquisition
	}
}
