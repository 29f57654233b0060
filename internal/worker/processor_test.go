package worker

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"parupload/internal/metrics"
	"parupload/internal/progress"
	"parupload/internal/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
)

type putCall struct {
	url         string
	contentType string
	size        int64
	body        []byte
}

// fakeClient records every Put and answers with configurable statuses.
type fakeClient struct {
	mu       sync.Mutex
	calls    []putCall
	statusAt map[int]int   // per call index, default 200
	errAt    map[int]error // per call index
}

func (f *fakeClient) Put(ctx context.Context, url string, body io.Reader, size int64, contentType string) (transport.Result, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return transport.Result{}, err
	}

	f.mu.Lock()
	index := len(f.calls)
	f.calls = append(f.calls, putCall{url: url, contentType: contentType, size: size, body: data})
	f.mu.Unlock()

	if err, ok := f.errAt[index]; ok {
		return transport.Result{}, err
	}

	status := 200
	if s, ok := f.statusAt[index]; ok {
		status = s
	}

	result := transport.Result{StatusCode: status}
	if !result.OK() {
		result.Body = "denied"
	}
	return result, nil
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestProcessor(t *testing.T, client transport.Client, chunkSize int64, dryRun bool) *Processor {
	t.Helper()

	urls, err := transport.NewPARBuilder("https://objectstorage.example.com/p/tok/n/ns/b/bkt/o/")
	require.NoError(t, err)

	return &Processor{
		config:  Config{ChunkSize: chunkSize, DryRun: dryRun},
		client:  client,
		urls:    urls,
		tracker: progress.NewTracker(),
		metrics: metrics.New(),
		logger:  zap.NewNop(),
	}
}

func newTestFile(t *testing.T, name string, size int) Task {
	t.Helper()

	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	return Task{LocalPath: path, Key: name, Size: int64(size)}
}

func partNumOf(t *testing.T, rawURL string) string {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u.Query().Get("partNum")
}

func TestProcessSingleAtThreshold(t *testing.T) {
	client := &fakeClient{}
	processor := newTestProcessor(t, client, 10, false)
	task := newTestFile(t, "exact", 10)

	result := processor.Process(context.Background(), task)

	assert.True(t, result.Succeeded)
	require.Equal(t, 1, client.callCount())
	assert.Empty(t, partNumOf(t, client.calls[0].url))
	assert.Equal(t, int64(10), client.calls[0].size)
	assert.Len(t, client.calls[0].body, 10)
	assert.Equal(t, "application/octet-stream", client.calls[0].contentType)
}

func TestProcessSingleContentType(t *testing.T) {
	client := &fakeClient{}
	processor := newTestProcessor(t, client, 100, false)
	task := newTestFile(t, "note.txt", 4)

	result := processor.Process(context.Background(), task)

	assert.True(t, result.Succeeded)
	require.Equal(t, 1, client.callCount())
	assert.True(t, strings.HasPrefix(client.calls[0].contentType, "text/plain"))
}

func TestProcessChunkedJustOverThreshold(t *testing.T) {
	client := &fakeClient{}
	processor := newTestProcessor(t, client, 10, false)
	task := newTestFile(t, "over", 11)

	result := processor.Process(context.Background(), task)

	assert.True(t, result.Succeeded)
	require.Equal(t, 2, client.callCount())
	assert.Equal(t, "1", partNumOf(t, client.calls[0].url))
	assert.Equal(t, "2", partNumOf(t, client.calls[1].url))
	assert.Equal(t, int64(10), client.calls[0].size)
	assert.Equal(t, int64(1), client.calls[1].size)
}

func TestProcessChunkedPartSequence(t *testing.T) {
	client := &fakeClient{}
	processor := newTestProcessor(t, client, 10, false)
	task := newTestFile(t, "big.iso", 25)

	result := processor.Process(context.Background(), task)

	assert.True(t, result.Succeeded)
	require.Equal(t, 3, client.callCount())

	var reassembled []byte
	for i, call := range client.calls {
		assert.Equal(t, fmt.Sprint(i+1), partNumOf(t, call.url))
		assert.Equal(t, "application/octet-stream", call.contentType)
		reassembled = append(reassembled, call.body...)
	}
	assert.Equal(t, int64(10), client.calls[0].size)
	assert.Equal(t, int64(10), client.calls[1].size)
	assert.Equal(t, int64(5), client.calls[2].size)

	original, err := os.ReadFile(task.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, original, reassembled)
}

func TestProcessChunkedAbortsOnPartFailure(t *testing.T) {
	client := &fakeClient{statusAt: map[int]int{1: 500}}
	processor := newTestProcessor(t, client, 10, false)
	task := newTestFile(t, "big.iso", 30)

	result := processor.Process(context.Background(), task)

	assert.False(t, result.Succeeded)
	assert.Contains(t, result.Detail, "part 2")
	// Parts after the failed one are never attempted.
	assert.Equal(t, 2, client.callCount())
}

func TestProcessSingleNon2xx(t *testing.T) {
	client := &fakeClient{statusAt: map[int]int{0: 403}}
	processor := newTestProcessor(t, client, 100, false)
	task := newTestFile(t, "small", 4)

	result := processor.Process(context.Background(), task)

	assert.False(t, result.Succeeded)
	assert.Contains(t, result.Detail, "403")
	assert.Contains(t, result.Detail, "denied")
}

func TestProcessTransportError(t *testing.T) {
	client := &fakeClient{errAt: map[int]error{0: fmt.Errorf("connection refused")}}
	processor := newTestProcessor(t, client, 100, false)
	task := newTestFile(t, "small", 4)

	result := processor.Process(context.Background(), task)

	assert.False(t, result.Succeeded)
	assert.Contains(t, result.Detail, "connection refused")
}

func TestProcessMissingFile(t *testing.T) {
	client := &fakeClient{}
	processor := newTestProcessor(t, client, 100, false)
	task := Task{LocalPath: filepath.Join(t.TempDir(), "gone"), Key: "gone", Size: 4}

	result := processor.Process(context.Background(), task)

	assert.False(t, result.Succeeded)
	assert.NotEmpty(t, result.Detail)
	assert.Zero(t, client.callCount())
}

func TestProcessZeroByteFile(t *testing.T) {
	client := &fakeClient{}
	processor := newTestProcessor(t, client, 10, false)
	task := newTestFile(t, "empty", 0)

	result := processor.Process(context.Background(), task)

	assert.True(t, result.Succeeded)
	require.Equal(t, 1, client.callCount())
	assert.Empty(t, partNumOf(t, client.calls[0].url))
	assert.Equal(t, int64(0), client.calls[0].size)
}

func TestProcessDryRun(t *testing.T) {
	client := &fakeClient{}
	processor := newTestProcessor(t, client, 10, true)
	// Size above the threshold still performs no I/O in a dry run.
	task := newTestFile(t, "big.iso", 100)

	result := processor.Process(context.Background(), task)

	assert.True(t, result.Succeeded)
	assert.Zero(t, client.callCount())
}
