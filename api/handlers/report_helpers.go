package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/matching"
)

// Page holds the default page number for paginated list handlers
var Page int

// maxPhotoBytes caps how much of an uploaded photo we read back for feature
// extraction
const maxPhotoBytes = 10 << 20

var photoClient = &http.Client{Timeout: 15 * time.Second}

func getPage(Page int, r *http.Request) int {
	if r.URL.Query().Get("page") == "" {
		zap.S().Warnf("page not set, using default of %v", Page)
	} else {
		var err error
		Page, err = strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil {
			zap.S().Errorf(fmt.Sprintf("error parsing page number: %v", err))
		}
		if Page < 0 {
			zap.S().Warnf(fmt.Sprintf("cannot process page number less than 1. Got: %v", Page))
			return 0
		}
	}
	return Page
}

// extractFromFirstPhoto fetches the report's first photo and runs the feature
// extractor over it. Extraction is best-effort enrichment: any failure logs a
// warning and the report is saved without image features, so submission is
// never blocked by the embedding model being down or a bad photo.
func extractFromFirstPhoto(ctx context.Context, extractor matching.Extractor, photoURL string) []float64 {
	if extractor == nil || photoURL == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, photoURL, nil)
	if err != nil {
		zap.S().Warnw("failed to build photo fetch request", "url", photoURL, "error", err)
		return nil
	}
	resp, err := photoClient.Do(req)
	if err != nil {
		zap.S().Warnw("failed to fetch photo for feature extraction", "url", photoURL, "error", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		zap.S().Warnw("photo fetch returned non-200", "url", photoURL, "status", resp.StatusCode)
		return nil
	}

	img, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
	if err != nil {
		zap.S().Warnw("failed to read photo body", "url", photoURL, "error", err)
		return nil
	}

	features, err := extractor.ExtractFeatures(ctx, img)
	if err != nil {
		if errors.Is(err, matching.ErrModelLoad) {
			zap.S().Warnw("feature extraction unavailable, saving report without image features", "error", err)
		} else {
			zap.S().Warnw("failed to extract image features", "url", photoURL, "error", err)
		}
		return nil
	}
	return features
}
