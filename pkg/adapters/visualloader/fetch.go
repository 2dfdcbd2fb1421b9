package visualloader

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// readRef returns the bytes behind ref along with its media type when known.
// Supported forms are data: URLs, http(s) URLs, file: URLs and plain paths.
func (l *Loader) readRef(ctx context.Context, ref string) ([]byte, string, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		return parseDataURL(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return l.fetch(ctx, ref)
	default:
		data, err := l.fs.ReadFile(localPath(ref))
		if err != nil {
			return nil, "", err
		}
		return data, "", nil
	}
}

func (l *Loader) fetch(ctx context.Context, ref string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "image/*")

	resp, err := l.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("fetch: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.opts.MaxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("fetch: %w", err)
	}
	if int64(len(data)) > l.opts.MaxImageBytes {
		return nil, "", fmt.Errorf("fetch: body exceeds %d bytes", l.opts.MaxImageBytes)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// parseDataURL decodes an RFC 2397 data URL.
func parseDataURL(ref string) ([]byte, string, error) {
	rest := strings.TrimPrefix(ref, "data:")
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("data URL: missing comma")
	}

	mediaType := meta
	isBase64 := false
	if strings.HasSuffix(meta, ";base64") {
		mediaType = strings.TrimSuffix(meta, ";base64")
		isBase64 = true
	}
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}

	if !isBase64 {
		decoded, err := url.PathUnescape(payload)
		if err != nil {
			return nil, "", fmt.Errorf("data URL: %w", err)
		}
		return []byte(decoded), mediaType, nil
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some producers strip padding.
		if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); rawErr == nil {
			return raw, mediaType, nil
		}
		return nil, "", fmt.Errorf("data URL: %w", err)
	}
	return data, mediaType, nil
}

func localPath(ref string) string {
	if u, err := url.Parse(ref); err == nil && u.Scheme == "file" {
		return u.Path
	}
	return ref
}

// describeRef shortens data URLs for error messages and logs.
func describeRef(ref string) string {
	if strings.HasPrefix(ref, "data:") {
		meta, _, _ := strings.Cut(ref, ",")
		return meta + ",..."
	}
	return ref
}

// extensionFor maps a clip media type to a file extension ffmpeg can sniff.
func extensionFor(mediaType string) string {
	switch mediaType {
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	case "video/x-msvideo", "video/avi":
		return ".avi"
	case "image/gif":
		return ".gif"
	default:
		return ".mp4"
	}
}
