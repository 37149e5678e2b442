package main

import (
	"context"
	"fmt"
	"hash/crc32"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Pushpachoudary/Qurey-Stream/docstore"
	"github.com/fsnotify/fsnotify"
)

type DocIngester interface {
	IngestFile(ctx context.Context, path string, name string) error
}

// DocRegistry keeps the vector index in step with a documents folder: on Sync
// it ingests new or changed files and forgets removed ones, and Watch repeats
// that whenever the folder changes.
type DocRegistry struct {
	log              *slog.Logger
	root             string
	mergeEventsDelay time.Duration
	store            VectorStore
	ingester         DocIngester
	readers          []PageReader
}

type DiskDoc struct {
	File string
	Crc  uint32
}

type diskDocs map[string]DiskDoc
type dbDocs map[string]docstore.IngestedDoc

func (dr *DocRegistry) Sync(ctx context.Context) error {
	disk, err := dr.collectDocs()
	if err != nil {
		return err
	}

	diskMap := make(diskDocs)
	for _, d := range disk {
		diskMap[normalizeDocName(filepath.Base(d.File))] = d
	}

	db, err := dr.store.Ingested(ctx)
	if err != nil {
		return err
	}

	dbMap := make(dbDocs)
	for _, d := range db {
		dbMap[d.Doc] = d
	}

	err = dr.ingestNewDocuments(ctx, diskMap, dbMap)
	if err != nil {
		return err
	}

	err = dr.forgetRemovedDocuments(ctx, diskMap, dbMap)
	if err != nil {
		return err
	}

	return nil
}

// Watch re-syncs the folder after every burst of filesystem events. Events
// are merged for mergeEventsDelay so that editors writing in several steps
// trigger one sync.
func (dr *DocRegistry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(dr.root); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dr.root, err)
	}

	go func() {
		defer watcher.Close()

		var timer *time.Timer
		var pending <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				dr.log.Debug("fs event", "op", event.Op.String(), "file", event.Name)
				if timer == nil {
					timer = time.NewTimer(dr.mergeEventsDelay)
				} else {
					timer.Reset(dr.mergeEventsDelay)
				}
				pending = timer.C
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				dr.log.Warn("watcher error", "error", err)
			case <-pending:
				pending = nil
				if err := dr.Sync(ctx); err != nil {
					dr.log.Error("sync failed", "error", err)
				}
			}
		}
	}()

	return nil
}

func (dr *DocRegistry) collectDocs() (docs []DiskDoc, err error) {
	err = filepath.Walk(dr.root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		reader, e := findReader(dr.readers, path)
		if e != nil {
			dr.log.Warn("unsupported file", "file", path)
			return nil
		}

		pages, e := reader.ReadPages(path)
		if e != nil {
			return e
		}

		var crc uint32
		for _, page := range pages {
			crc = crc32.Update(crc, crc32.IEEETable, []byte(page.Text))
		}

		docs = append(docs, DiskDoc{
			File: path,
			Crc:  crc,
		})

		return nil
	})
	if err != nil {
		return
	}

	return
}

func (dr *DocRegistry) ingestNewDocuments(ctx context.Context, disk diskDocs, db dbDocs) error {
	for name, diskDoc := range disk {
		dbDoc, ok := db[name]
		if ok && dbDoc.Crc == diskDoc.Crc {
			continue
		}

		err := dr.ingester.IngestFile(ctx, diskDoc.File, filepath.Base(diskDoc.File))
		if err != nil {
			return fmt.Errorf("failed to ingest document %s: %w", diskDoc.File, err)
		}
	}

	return nil
}

func (dr *DocRegistry) forgetRemovedDocuments(ctx context.Context, disk diskDocs, db dbDocs) error {
	for name, dbDoc := range db {
		if _, ok := disk[name]; ok {
			continue
		}

		err := dr.store.Forget(ctx, dbDoc.Doc)
		if err != nil {
			return fmt.Errorf("failed to remove document %s from store: %w", dbDoc.Doc, err)
		}
	}

	return nil
}
