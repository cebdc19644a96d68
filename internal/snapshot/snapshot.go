// Package snapshot exports the proposal catalog to object storage and reads it back.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"go.uber.org/zap"

	"fundvote/internal/catalog"
	"fundvote/internal/model"
	"fundvote/internal/storage"
)

const (
	contentType = "application/json"
	keyLayout   = "20060102T150405Z"

	// URLExpiry is the lifetime of the presigned download link returned by Export.
	URLExpiry = 15 * time.Minute
)

// Source lists the proposals to export. Every proposal repository satisfies it.
type Source interface {
	List(ctx context.Context) ([]model.Proposal, error)
}

// Document is the JSON body of a snapshot object.
type Document struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	Proposals   []model.Proposal `json:"proposals"`
}

// Result describes a written snapshot.
type Result struct {
	Object storage.ObjectInfo `json:"object"`
	Count  int                `json:"count"`
	URL    string             `json:"url,omitempty"`
}

// Exporter writes the current catalog to storage as one JSON object per run.
type Exporter struct {
	src    Source
	store  storage.Storage
	prefix string
	log    *zap.Logger
	now    func() time.Time
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the exporter logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Exporter) { e.log = l }
}

// WithClock overrides the time source used for GeneratedAt and object keys.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// NewExporter creates an Exporter writing objects under prefix.
func NewExporter(src Source, store storage.Storage, prefix string, opts ...Option) *Exporter {
	e := &Exporter{
		src:    src,
		store:  store,
		prefix: prefix,
		log:    zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Key returns the object key for a snapshot taken at ts.
func (e *Exporter) Key(ts time.Time) string {
	return path.Join(e.prefix, fmt.Sprintf("proposals-%s.json", ts.UTC().Format(keyLayout)))
}

// Export writes a snapshot of every proposal. A failed presign is logged and
// leaves URL empty; the object itself is still reported.
func (e *Exporter) Export(ctx context.Context) (*Result, error) {
	proposals, err := e.src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot list: %w", err)
	}

	now := e.now().UTC()
	body, err := json.Marshal(Document{GeneratedAt: now, Proposals: proposals})
	if err != nil {
		return nil, fmt.Errorf("snapshot encode: %w", err)
	}

	key := e.Key(now)
	info, err := e.store.Put(ctx, key, bytes.NewReader(body), storage.PutObjectOptions{
		Size:        int64(len(body)),
		ContentType: contentType,
		Metadata:    map[string]string{"proposal-count": fmt.Sprint(len(proposals))},
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot put: %w", err)
	}

	res := &Result{Object: info, Count: len(proposals)}
	if url, err := e.store.PresignGet(ctx, key, URLExpiry); err != nil {
		e.log.Warn("snapshot_presign_failed", zap.String("key", key), zap.Error(err))
	} else {
		res.URL = url
	}

	e.log.Info("snapshot_exported",
		zap.String("key", key),
		zap.Int("proposals", len(proposals)),
		zap.Int64("bytes", info.Size),
	)
	return res, nil
}

// Load reads the snapshot stored under key and returns its proposals after validation.
func Load(ctx context.Context, store storage.Storage, key string) ([]model.Proposal, error) {
	rc, _, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("snapshot get: %w", err)
	}
	defer rc.Close()

	var doc Document
	if err := json.NewDecoder(rc).Decode(&doc); err != nil {
		return nil, fmt.Errorf("snapshot decode %s: %w", key, err)
	}
	if err := catalog.Validate(doc.Proposals); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", key, err)
	}
	return doc.Proposals, nil
}
