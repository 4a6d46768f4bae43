package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func embedderServer(t *testing.T, dimension int, modelCalls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/model":
			if modelCalls != nil {
				atomic.AddInt32(modelCalls, 1)
			}
			json.NewEncoder(w).Encode(ModelInfo{Name: "mobilenet", Dimension: dimension, InputSize: 8})
		case "/embeddings":
			var payload struct {
				Inputs [][]float64 `json:"inputs"`
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if len(payload.Inputs) != 1 || len(payload.Inputs[0]) != 8*8*3 {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			// deterministic embedding derived from the first pixels
			embedding := make([]float64, dimension)
			for i := range embedding {
				embedding[i] = payload.Inputs[0][i%len(payload.Inputs[0])]
			}
			json.NewEncoder(w).Encode(map[string][]float64{"embedding": embedding})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestRemoteExtractorExtractFeatures(t *testing.T) {
	srv := embedderServer(t, 4, nil)
	defer srv.Close()

	e := NewRemoteExtractor(srv.URL)
	vec, err := e.ExtractFeatures(context.Background(), testImage(t, 100, 60))

	assert.NoError(t, err)
	assert.Len(t, vec, 4)
	for _, v := range vec {
		assert.True(t, v >= 0 && v <= 1)
	}
}

func TestRemoteExtractorDeterminism(t *testing.T) {
	srv := embedderServer(t, 6, nil)
	defer srv.Close()

	e := NewRemoteExtractor(srv.URL)
	img := testImage(t, 64, 64)

	first, err := e.ExtractFeatures(context.Background(), img)
	assert.NoError(t, err)
	second, err := e.ExtractFeatures(context.Background(), img)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRemoteExtractorImageDecodeError(t *testing.T) {
	srv := embedderServer(t, 4, nil)
	defer srv.Close()

	e := NewRemoteExtractor(srv.URL)
	_, err := e.ExtractFeatures(context.Background(), []byte("not an image"))

	assert.ErrorIs(t, err, ErrImageDecode)
}

func TestRemoteExtractorModelLoadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewRemoteExtractor(srv.URL)
	_, err := e.ExtractFeatures(context.Background(), testImage(t, 10, 10))

	assert.ErrorIs(t, err, ErrModelLoad)
}

func TestRemoteExtractorModelLoadedOnce(t *testing.T) {
	var modelCalls int32
	srv := embedderServer(t, 4, &modelCalls)
	defer srv.Close()

	e := NewRemoteExtractor(srv.URL)
	img := testImage(t, 20, 20)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.ExtractFeatures(context.Background(), img)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&modelCalls), int32(2))

	// warm path never refetches
	_, err := e.ExtractFeatures(context.Background(), img)
	assert.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&modelCalls), int32(2))
}

func TestRemoteExtractorDimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/model":
			json.NewEncoder(w).Encode(ModelInfo{Dimension: 16, InputSize: 8})
		case "/embeddings":
			json.NewEncoder(w).Encode(map[string][]float64{"embedding": {1, 2, 3}})
		}
	}))
	defer srv.Close()

	e := NewRemoteExtractor(srv.URL)
	_, err := e.ExtractFeatures(context.Background(), testImage(t, 10, 10))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "dimension")
}

func TestPreprocessShapeAndRange(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 17, 31))
	pixels := preprocess(img, 224)

	assert.Len(t, pixels, 224*224*3)
	for _, p := range pixels {
		assert.True(t, p >= 0 && p <= 1)
	}
}
