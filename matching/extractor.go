package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"sync"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/sync/singleflight"
)

// Sentinel errors for the two extraction failure modes. Callers treat
// ErrModelLoad as "matching temporarily unavailable" and ErrImageDecode as a
// rejected photo; neither blocks report submission.
var (
	ErrImageDecode = errors.New("failed to decode image")
	ErrModelLoad   = errors.New("embedding model unavailable")
)

// DefaultTimeout bounds model loading and inference calls
const DefaultTimeout = 30 * time.Second

const defaultInputSize = 224

// Extractor produces a fixed-length feature vector for an uploaded photo
type Extractor interface {
	ExtractFeatures(ctx context.Context, img []byte) ([]float64, error)
}

// ModelInfo describes the embedding model served by the inference endpoint
type ModelInfo struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	InputSize int    `json:"inputSize"`
}

// RemoteExtractor preprocesses images locally and runs inference against an
// embedding-model server. The model metadata is fetched lazily on first use;
// concurrent cold-start callers share one in-flight load.
type RemoteExtractor struct {
	baseURL string
	client  *http.Client
	timeout time.Duration

	group singleflight.Group
	mu    sync.RWMutex
	model *ModelInfo
}

// NewRemoteExtractor returns an extractor backed by the embedding server at baseURL
func NewRemoteExtractor(baseURL string) *RemoteExtractor {
	return &RemoteExtractor{
		baseURL: baseURL,
		client:  &http.Client{},
		timeout: DefaultTimeout,
	}
}

// Model returns the loaded model metadata, fetching it on first call.
// Failures are not cached, so a later call retries the load.
func (e *RemoteExtractor) Model(ctx context.Context) (*ModelInfo, error) {
	e.mu.RLock()
	m := e.model
	e.mu.RUnlock()
	if m != nil {
		return m, nil
	}

	v, err, _ := e.group.Do("model", func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(loadCtx, http.MethodGet, e.baseURL+"/model", nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
		}
		resp, err := e.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: model endpoint returned %v", ErrModelLoad, resp.StatusCode)
		}

		var info ModelInfo
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
		}
		if info.Dimension <= 0 {
			return nil, fmt.Errorf("%w: model reported dimension %v", ErrModelLoad, info.Dimension)
		}
		if info.InputSize <= 0 {
			info.InputSize = defaultInputSize
		}

		e.mu.Lock()
		e.model = &info
		e.mu.Unlock()
		return &info, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ModelInfo), nil
}

// ExtractFeatures decodes img, resizes it to the model's square input,
// normalises pixels to [0,1] and returns the embedding the model produces.
// The vector length always equals the model's reported dimension.
func (e *RemoteExtractor) ExtractFeatures(ctx context.Context, img []byte) ([]float64, error) {
	model, err := e.Model(ctx)
	if err != nil {
		return nil, err
	}

	decoded, _, err := image.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}

	pixels := preprocess(decoded, model.InputSize)

	inferCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	payload := struct {
		Inputs [][]float64 `json:"inputs"`
	}{Inputs: [][]float64{pixels}}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(inferCtx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference endpoint returned %v", resp.StatusCode)
	}

	var result struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode inference response: %w", err)
	}
	if len(result.Embedding) != model.Dimension {
		return nil, fmt.Errorf("embedding has length %v, model dimension is %v", len(result.Embedding), model.Dimension)
	}
	return result.Embedding, nil
}

// preprocess resizes src to a size x size square with nearest-neighbour
// resampling and flattens it to RGB values scaled into [0,1], matching the
// tensor layout the embedding model was trained on (one batch entry).
func preprocess(src image.Image, size int) []float64 {
	scaled := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), src, src.Bounds(), draw.Src, nil)

	pixels := make([]float64, 0, size*size*3)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := scaled.At(x, y).RGBA()
			// RGBA returns 16-bit channels
			pixels = append(pixels,
				float64(r>>8)/255.0,
				float64(g>>8)/255.0,
				float64(b>>8)/255.0,
			)
		}
	}
	return pixels
}
