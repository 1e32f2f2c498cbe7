package asset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Resource is an opened model stream.
type Resource struct {
	Body io.ReadCloser
	// Size is the stream length in bytes, or -1 when unknown.
	Size int64
	// Dir resolves URIs relative to the model, nil when the source cannot.
	Dir fs.FS
}

// Source opens model files by path.
type Source interface {
	Open(ctx context.Context, path string) (*Resource, error)
}

// FileSource reads models from the local filesystem, relative to Root when
// the path is not absolute.
type FileSource struct {
	Root string
}

func (s FileSource) Open(_ context.Context, name string) (*Resource, error) {
	p := name
	if s.Root != "" && !filepath.IsAbs(p) {
		p = filepath.Join(s.Root, p)
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	size := int64(-1)
	if st, err := f.Stat(); err == nil {
		size = st.Size()
	}
	return &Resource{Body: f, Size: size, Dir: os.DirFS(filepath.Dir(p))}, nil
}

// HTTPSource fetches models over http(s).
type HTTPSource struct {
	Client *http.Client
}

func (s HTTPSource) Open(ctx context.Context, url string) (*Resource, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}
	return &Resource{Body: resp.Body, Size: resp.ContentLength}, nil
}

// MemorySource serves self-contained models (GLB or embedded glTF) from
// memory. It is safe for concurrent use.
type MemorySource struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemorySource returns an empty MemorySource.
func NewMemorySource() *MemorySource {
	return &MemorySource{files: make(map[string][]byte)}
}

// Put stores data under name.
func (s *MemorySource) Put(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = data
}

func (s *MemorySource) Open(_ context.Context, name string) (*Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return &Resource{Body: io.NopCloser(bytes.NewReader(b)), Size: int64(len(b))}, nil
}

// AutoSource dispatches http(s) URLs to HTTP and everything else to Files.
type AutoSource struct {
	Files FileSource
	HTTP  HTTPSource
}

func (s AutoSource) Open(ctx context.Context, name string) (*Resource, error) {
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		return s.HTTP.Open(ctx, name)
	}
	return s.Files.Open(ctx, name)
}

// readAll reads a resource completely, reporting progress in percent as
// bytes arrive. Paths ending in .zst are decompressed; progress then counts
// compressed bytes.
func readAll(name string, res *Resource, progress func(float64)) ([]byte, error) {
	defer res.Body.Close()

	var r io.Reader = &countingReader{r: res.Body, total: res.Size, report: progress}
	if strings.HasSuffix(name, ".zst") {
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(0))
		if err != nil {
			return nil, fmt.Errorf("opening zstd stream: %w", err)
		}
		defer zr.Close()
		r = zr
	}
	return io.ReadAll(r)
}

type countingReader struct {
	r      io.Reader
	n      int64
	total  int64
	report func(float64)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	if c.report != nil && c.total > 0 && n > 0 {
		c.report(min(float64(c.n)/float64(c.total)*100, 100))
	}
	return n, err
}
