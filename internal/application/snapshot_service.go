package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/oksasatya/go-ddd-postboard/internal/domain/entity"
)

// Snapshot is the exported document: every user with counts and every post with comments.
type Snapshot struct {
	TakenAt time.Time     `json:"taken_at"`
	Users   []entity.User `json:"users"`
	Posts   []entity.Post `json:"posts"`
}

type SnapshotService struct {
	Deps
	Store SnapshotStore
}

func NewSnapshotService(d Deps, store SnapshotStore) *SnapshotService {
	return &SnapshotService{Deps: d.withDefaults(), Store: store}
}

// ExportSnapshot uploads the snapshot and returns its URL.
func (s *SnapshotService) ExportSnapshot(ctx context.Context) (string, error) {
	if s.Store == nil {
		return "", ErrSnapshotUnavailable
	}
	log := s.Logger.WithField("op", "ExportSnapshot")

	snap := Snapshot{TakenAt: time.Now().UTC()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Users, err = s.Users.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Posts, err = s.Posts.List(gctx, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("snapshot read failed")
		return "", failure(msgExportSnapshot, err)
	}

	b, err := json.Marshal(snap)
	if err != nil {
		log.WithError(err).Error("snapshot encode failed")
		return "", failure(msgExportSnapshot, err)
	}
	name := fmt.Sprintf("snapshots/%s-%s.json", snap.TakenAt.Format("20060102T150405Z"), uuid.NewString())
	url, err := s.Store.Put(ctx, name, "application/json", bytes.NewReader(b))
	if err != nil {
		log.WithError(err).WithField("object", name).Error("snapshot upload failed")
		return "", failure(msgExportSnapshot, err)
	}

	log.WithFields(logrus.Fields{
		"object": name,
		"users":  len(snap.Users),
		"posts":  len(snap.Posts),
	}).Info("snapshot exported")
	return url, nil
}
