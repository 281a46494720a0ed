package application

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/oksasatya/go-ddd-postboard/internal/domain/entity"
	"github.com/oksasatya/go-ddd-postboard/internal/domain/event"
	repo "github.com/oksasatya/go-ddd-postboard/internal/domain/repository"
)

// ViewCache stores rendered read models per collection and version. A change affecting a
// collection moves it to a new version; Set must drop values written for an older one.
type ViewCache interface {
	Version(ctx context.Context, col event.Collection) (int64, error)
	Get(ctx context.Context, col event.Collection, version int64, key string, dst any) (bool, error)
	Set(ctx context.Context, col event.Collection, version int64, key string, value any) error
}

// PostIndex is the full-text index over posts.
type PostIndex interface {
	Index(ctx context.Context, p entity.Post) error
	Remove(ctx context.Context, ids ...string) error
	Search(ctx context.Context, q string, size int) ([]entity.PostHit, error)
}

// SnapshotStore persists exported documents and returns where they can be fetched.
type SnapshotStore interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// Deps are the collaborators shared by the services. Repositories and Tx are required;
// Cache, Notifier and Search may be nil.
type Deps struct {
	Users    repo.UserRepository
	Posts    repo.PostRepository
	Comments repo.CommentRepository
	Tx       repo.Transactor
	Cache    ViewCache
	Notifier event.Notifier
	Search   PostIndex
	Logger   *logrus.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = logrus.StandardLogger()
	}
	return d
}

// cached reads the version before loading so a load that races a change is never stored.
func cached[T any](ctx context.Context, d *Deps, col event.Collection, key string, load func(context.Context) (T, error)) (T, error) {
	if d.Cache == nil {
		return load(ctx)
	}
	log := d.Logger.WithFields(logrus.Fields{"collection": col, "key": key})

	version, err := d.Cache.Version(ctx, col)
	if err != nil {
		log.WithError(err).Warn("view cache version read failed")
		return load(ctx)
	}
	var hit T
	ok, err := d.Cache.Get(ctx, col, version, key, &hit)
	if err != nil {
		log.WithError(err).Warn("view cache read failed")
	}
	if ok && err == nil {
		return hit, nil
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if err := d.Cache.Set(ctx, col, version, key, v); err != nil {
		log.WithError(err).Warn("view cache write failed")
	}
	return v, nil
}

// afterCommit publishes changes and runs the extra side effects concurrently.
// It waits for all of them; failures are logged and never returned.
func (d *Deps) afterCommit(ctx context.Context, changes []event.Change, effects ...func(context.Context)) {
	ctx = context.WithoutCancel(ctx)

	var g errgroup.Group
	if d.Notifier != nil && len(changes) > 0 {
		g.Go(func() error {
			if err := d.Notifier.Notify(ctx, changes...); err != nil {
				d.Logger.WithError(err).WithField("changes", len(changes)).Warn("change notification failed")
			}
			return nil
		})
	}
	for _, fn := range effects {
		g.Go(func() error {
			fn(ctx)
			return nil
		})
	}
	_ = g.Wait()
}

func (d *Deps) indexPost(p entity.Post) func(context.Context) {
	return func(ctx context.Context) {
		if d.Search == nil {
			return
		}
		if err := d.Search.Index(ctx, p); err != nil {
			d.Logger.WithError(err).WithField("post_id", p.ID).Warn("post index failed")
		}
	}
}

func (d *Deps) unindexPosts(ids ...string) func(context.Context) {
	return func(ctx context.Context) {
		if d.Search == nil || len(ids) == 0 {
			return
		}
		if err := d.Search.Remove(ctx, ids...); err != nil {
			d.Logger.WithError(err).WithField("post_ids", ids).Warn("post de-index failed")
		}
	}
}

func deleted(col event.Collection, id string, data map[string]any) event.Change {
	return event.Change{Collection: col, Action: event.Deleted, ID: id, At: time.Now().UTC(), Data: data}
}

func created(col event.Collection, id string, at time.Time, data map[string]any) event.Change {
	return event.Change{Collection: col, Action: event.Created, ID: id, At: at, Data: data}
}
