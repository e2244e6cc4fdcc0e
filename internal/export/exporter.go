package export

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/san-kum/plasmagen/internal/render"
)

// Exporter encodes animations as GIFs and hands them to a Sink.
type Exporter struct {
	Sink Sink
}

func New(sink Sink) *Exporter {
	return &Exporter{Sink: sink}
}

// Export stores a as name.gif and returns its location.
func (e *Exporter) Export(ctx context.Context, a *render.Animation, name string) (string, error) {
	body, err := gifBytes(a)
	if err != nil {
		return "", err
	}
	return e.Sink.Put(ctx, name+".gif", body)
}

// ErrNoObjectName means a Save destination has no file or object name.
var ErrNoObjectName = errors.New("export: destination has no object name")

// Save writes a to a single destination, either a file path or s3://bucket/key.
func Save(ctx context.Context, dest, region string, a *render.Animation) (string, int, error) {
	bucket, key, isS3 := ParseS3(dest)
	switch {
	case isS3 && (key == "" || strings.HasSuffix(key, "/")):
		return "", 0, fmt.Errorf("%w: %s", ErrNoObjectName, dest)
	case !isS3 && (dest == "" || strings.HasSuffix(dest, "/") || strings.HasSuffix(dest, string(filepath.Separator))):
		return "", 0, fmt.Errorf("%w: %q", ErrNoObjectName, dest)
	}

	body, err := gifBytes(a)
	if err != nil {
		return "", 0, err
	}
	var sink Sink
	name := filepath.Base(dest)
	if isS3 {
		s, err := NewS3Sink(ctx, bucket, path.Dir(key), region)
		if err != nil {
			return "", 0, err
		}
		sink, name = s, path.Base(key)
	} else {
		sink = FileSink{Dir: filepath.Dir(dest)}
	}
	loc, err := sink.Put(ctx, name, body)
	return loc, len(body), err
}
