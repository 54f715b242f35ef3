package ingest

import (
	"context"
	"time"

	"github.com/angelcm/adspend-elt-go/internal/utils"
)

// GetTextWithRetry fetches the raw delimited text, retrying transport errors
// and non-2xx responses with exponential backoff plus jitter.
func GetTextWithRetry(ctx context.Context, c HTTPClient, url string) (string, error) {
	var body string
	err := utils.NewBackoff(100*time.Millisecond, 2).Do(ctx, func(int) error {
		var err error
		body, err = getText(ctx, c, url)
		return err
	})
	if err != nil {
		return "", err
	}
	return body, nil
}
