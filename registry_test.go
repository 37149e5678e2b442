package main

import (
	"context"
	"hash/crc32"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Pushpachoudary/Qurey-Stream/docstore"
	"github.com/Pushpachoudary/Qurey-Stream/readers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIngester struct {
	mu    sync.Mutex
	store *fakeStore
	calls []string
}

func (f *fakeIngester) IngestFile(ctx context.Context, path string, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	docName := normalizeDocName(name)
	chunks := NewRecursiveSplitter(400, 100).SplitPages(
		[]readers.Page{{Number: 1, Text: string(buf)}}, docName, crcOf(buf))

	if err := f.store.Forget(ctx, docName); err != nil {
		return err
	}
	if err := f.store.Upsert(ctx, chunks); err != nil {
		return err
	}

	f.calls = append(f.calls, name)
	return nil
}

func (f *fakeIngester) ingestCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.calls...)
}

func crcOf(data []byte) uint32 {
	return crc32.Checksum(data, crc32.IEEETable)
}

func newTestRegistry(t *testing.T, root string, store *fakeStore, ingester *fakeIngester) *DocRegistry {
	t.Helper()

	return &DocRegistry{
		log:              slog.New(slog.NewTextHandler(io.Discard, nil)),
		root:             root,
		mergeEventsDelay: 50 * time.Millisecond,
		store:            store,
		ingester:         ingester,
		readers:          []PageReader{&readers.TxtFileReader{}},
	}
}

func Test_Sync(t *testing.T) {
	tmp := t.TempDir()

	createFile := func(name string, content string) uint32 {
		buf := []byte(content)
		require.NoError(t, os.WriteFile(filepath.Join(tmp, name), buf, 0o644))
		return crcOf(buf)
	}

	createFile("f1.txt", "f1")
	createFile("f3.txt", "f3")
	f2crc := createFile("f2.txt", "f2")

	store := newFakeStore()
	// f2 unchanged, f3 changed on disk, f4 no longer on disk
	store.records["f2txt_0"] = docstore.Chunk{ID: "f2txt_0", Doc: "f2txt", Crc: f2crc}
	store.records["f3txt_0"] = docstore.Chunk{ID: "f3txt_0", Doc: "f3txt", Crc: 0}
	store.records["f4txt_0"] = docstore.Chunk{ID: "f4txt_0", Doc: "f4txt", Crc: 4}

	ingester := &fakeIngester{store: store}
	reg := newTestRegistry(t, tmp, store, ingester)

	require.NoError(t, reg.Sync(context.Background()))

	assert.ElementsMatch(t, []string{"f1.txt", "f3.txt"}, ingester.ingestCalls())

	_, f4Alive := store.records["f4txt_0"]
	assert.False(t, f4Alive, "removed document must be forgotten")
	_, f2Alive := store.records["f2txt_0"]
	assert.True(t, f2Alive, "unchanged document must be left alone")
}

func Test_Sync_SkipsUnsupportedFiles(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "blob.bin"), []byte{0x01}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "f1.txt"), []byte("f1"), 0o644))

	store := newFakeStore()
	ingester := &fakeIngester{store: store}
	reg := newTestRegistry(t, tmp, store, ingester)

	require.NoError(t, reg.Sync(context.Background()))
	assert.Equal(t, []string{"f1.txt"}, ingester.ingestCalls())
}

func Test_Watch(t *testing.T) {
	tmp := t.TempDir()

	store := newFakeStore()
	ingester := &fakeIngester{store: store}
	reg := newTestRegistry(t, tmp, store, ingester)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, reg.Watch(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(tmp, "f1.txt"), []byte("f1"), 0o644))

	assert.Eventually(t, func() bool {
		return store.has("f1txt_0")
	}, 3*time.Second, 20*time.Millisecond, "created file should be ingested")

	require.NoError(t, os.Remove(filepath.Join(tmp, "f1.txt")))

	assert.Eventually(t, func() bool {
		return !store.has("f1txt_0")
	}, 3*time.Second, 20*time.Millisecond, "removed file should be forgotten")
}
