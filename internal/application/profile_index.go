package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-api/internal/domain/entity"
	"github.com/oksasatya/go-social-api/internal/domain/repository"
	"github.com/oksasatya/go-social-api/pkg/helpers"
)

// ErrIndexStale is returned by ProfileIndex.Search while the index may be
// missing profiles. Callers answer from the store instead.
var ErrIndexStale = errors.New("user index is stale")

const (
	reindexPageSize = 500
	reindexCooldown = 5 * time.Minute
)

// ProfileIndex fronts a secondary user index with the store it mirrors. It
// starts untrusted, becomes trusted after a full Reindex, and drops back to
// untrusted on any failed write. Searches against an untrusted index return
// ErrIndexStale and schedule a background rebuild.
type ProfileIndex struct {
	index  repository.UserIndex
	users  repository.UserRepository
	logger logrus.FieldLogger

	trusted  atomic.Bool
	failures atomic.Uint64
	lastTry  atomic.Int64
	running  sync.Mutex
	now      func() time.Time
}

func NewProfileIndex(index repository.UserIndex, users repository.UserRepository, logger logrus.FieldLogger) *ProfileIndex {
	return &ProfileIndex{index: index, users: users, logger: logger, now: time.Now}
}

// Trusted reports whether the index currently holds every profile.
func (p *ProfileIndex) Trusted() bool { return p.trusted.Load() }

func (p *ProfileIndex) Index(ctx context.Context, u *entity.User) error {
	if err := p.index.Index(ctx, u); err != nil {
		p.failures.Add(1)
		p.trusted.Store(false)
		return err
	}
	return nil
}

func (p *ProfileIndex) Search(ctx context.Context, query string, limit int) ([]*entity.User, error) {
	if !p.trusted.Load() {
		p.scheduleReindex()
		return nil, ErrIndexStale
	}
	return p.index.Search(ctx, query, limit)
}

// Reindex copies every stored profile into the index and returns how many
// were written. The index is trusted afterwards only if no write failed while
// it ran.
func (p *ProfileIndex) Reindex(ctx context.Context) (int, error) {
	p.running.Lock()
	defer p.running.Unlock()
	p.lastTry.Store(p.now().UnixNano())

	start := p.failures.Load()
	n := 0
	for offset := 0; ; offset += reindexPageSize {
		page, err := p.users.List(ctx, offset, reindexPageSize)
		if err != nil {
			return n, err
		}
		for _, u := range page {
			if err := p.index.Index(ctx, u); err != nil {
				p.failures.Add(1)
				p.trusted.Store(false)
				return n, err
			}
			n++
		}
		if len(page) < reindexPageSize {
			break
		}
	}
	if p.failures.Load() == start {
		p.trusted.Store(true)
	}
	return n, nil
}

// scheduleReindex starts at most one background rebuild per cooldown.
func (p *ProfileIndex) scheduleReindex() {
	last := p.lastTry.Load()
	now := p.now()
	if now.Sub(time.Unix(0, last)) < reindexCooldown || !p.lastTry.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), reindexCooldown)
		defer cancel()
		n, err := p.Reindex(ctx)
		if err != nil {
			helpers.LogWarn(p.logger, "user reindex failed", err, logrus.Fields{"indexed": n})
			return
		}
		if p.logger != nil {
			p.logger.WithField("indexed", n).Info("user index rebuilt")
		}
	}()
}

var _ repository.UserIndex = (*ProfileIndex)(nil)
