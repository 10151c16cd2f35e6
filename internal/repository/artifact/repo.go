package artifact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexdex/internal/domain"
	"github.com/kailas-cloud/lexdex/internal/lexical"
)

// Backend stores raw artifact bytes. Read returns domain.ErrNotFound when
// nothing has been written yet.
type Backend interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Name() string
}

// Repo persists fitted indexes through a Backend.
type Repo struct {
	backend     Backend
	compression Compression
	now         func() time.Time
	logger      *zap.Logger
}

// New creates an artifact repository.
func New(backend Backend, compression Compression, logger *zap.Logger) *Repo {
	return &Repo{backend: backend, compression: compression, now: time.Now, logger: logger}
}

// Save encodes ix and writes it to the backend.
func (r *Repo) Save(ctx context.Context, ix *lexical.Index) (Manifest, error) {
	data, m, err := Encode(ix, r.now(), r.compression)
	if err != nil {
		return Manifest{}, fmt.Errorf("encode artifact: %w", err)
	}
	if err := r.backend.Write(ctx, data); err != nil {
		return Manifest{}, fmt.Errorf("write artifact %s: %w", r.backend.Name(), err)
	}
	r.logger.Info("Index artifact saved",
		zap.String("artifact", r.backend.Name()),
		zap.String("compression", r.compression.String()),
		zap.Int("bytes", len(data)),
		zap.Int("documents", m.Documents),
		zap.Int("vocabulary", m.Vocabulary),
		zap.Int("title_weight", m.TitleWeight),
	)
	return m, nil
}

// Load reads and verifies the artifact. Every failure is a domain.ErrLoad.
func (r *Repo) Load(ctx context.Context) (*lexical.Index, Manifest, error) {
	data, err := r.backend.Read(ctx)
	if err != nil {
		return nil, Manifest{}, domain.NewLoadError(r.backend.Name(), err)
	}
	ix, m, err := Decode(data)
	if err != nil {
		return nil, Manifest{}, domain.NewLoadError(r.backend.Name(), err)
	}
	r.logger.Debug("Index artifact loaded",
		zap.String("artifact", r.backend.Name()),
		zap.Time("built_at", m.BuiltAt),
		zap.Int("documents", m.Documents),
		zap.String("fingerprint", m.Fingerprint),
	)
	return ix, m, nil
}

// IsCorrupt reports whether err came from undecodable artifact bytes.
func IsCorrupt(err error) bool {
	return errors.Is(err, errCorrupt)
}
