package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/marketdev/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRenderFilePublishedAndPreview(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricing.html")
	require.NoError(t, os.WriteFile(path, []byte(`<PageTitle></PageTitle><Tiers></Tiers>`), 0o644))
	pipeline := render.NewPipeline(nil)

	published, err := renderFile(path, renderFlags{}, nil, pipeline)
	require.NoError(t, err)
	assert.Contains(t, published, "pricing")
	assert.NotContains(t, published, "Community")

	preview, err := renderFile(path, renderFlags{preview: true, width: 800}, nil, pipeline)
	require.NoError(t, err)
	assert.Contains(t, preview, "preview-frame")
	assert.Contains(t, preview, "Community")
}

func TestRenderToWritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "home.html")
	out := filepath.Join(dir, "out.html")
	require.NoError(t, os.WriteFile(path, []byte(`<p>hello</p>`), 0o644))

	var stdout bytes.Buffer
	require.NoError(t, renderTo(&stdout, path, renderFlags{out: out}, nil, render.NewPipeline(nil)))
	assert.Empty(t, stdout.String())

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(written), "<p>hello</p>")
}

func TestWatchFileDebouncesWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>0</p>"), 0o644))

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, 100*time.Millisecond, func() error {
			calls.Add(1)
			return nil
		}, zap.NewNop())
	}()
	// 等待 watcher 就绪
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("<p>edit</p>"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	cancel()
	assert.NoError(t, <-done)
}
