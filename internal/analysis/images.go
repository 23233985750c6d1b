package analysis

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

var mimeByExt = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

// LoadImages reads the files concurrently. Order of the result follows paths.
func LoadImages(ctx context.Context, paths []string) ([]Image, error) {
	images := make([]Image, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read image %s: %w", path, err)
			}
			images[i] = NewImage(filepath.Base(path), data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

// NewImage wraps raw bytes, deriving the MIME type from the file extension
// or, failing that, from the content.
func NewImage(name string, data []byte) Image {
	mime, ok := mimeByExt[strings.ToLower(filepath.Ext(name))]
	if !ok {
		mime = http.DetectContentType(data)
	}
	return Image{Name: name, MIMEType: mime, Data: data}
}
