package fetch

import (
	"context"
	"fmt"
	"os"

	"medals/internal"
	"medals/internal/util"
)

// Changed reports whether the page differs from the last processed revision.
// A matching ETag wins; otherwise a matching Last-Modified also counts as unchanged.
func Changed(meta internal.RunMetadata, etag, lastModified string) bool {
	if etag != "" && util.Deref(meta.LastETag) == etag {
		return false
	}
	if lastModified != "" && util.Deref(meta.LastModified) == lastModified {
		return false
	}
	return true
}

func (c *Client) CheckChanged(ctx context.Context, url string, meta internal.RunMetadata) (bool, error) {
	headers, err := c.Headers(ctx, url)
	if err != nil {
		return false, err
	}
	return Changed(meta, headers.Get("ETag"), headers.Get("Last-Modified")), nil
}

// WriteCIOutput appends changed=<bool> to a GitHub Actions style output file.
// An empty path is a no-op.
func WriteCIOutput(path string, changed bool) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f, "changed=%t\n", changed); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
