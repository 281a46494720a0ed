package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/oksasatya/go-ddd-postboard/internal/domain/event"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(ctx context.Context, routingKey string, body any) error {
	return m.Called(ctx, routingKey, body).Error(0)
}

func TestChangePublisher_RoutesByCollectionAndAction(t *testing.T) {
	pub := &mockPublisher{}
	created := event.Change{Collection: event.Posts, Action: event.Created, ID: "p1"}
	removed := event.Change{Collection: event.Comments, Action: event.Deleted, ID: "c1"}
	pub.On("PublishJSON", mock.Anything, "posts.created", created).Return(nil)
	pub.On("PublishJSON", mock.Anything, "comments.deleted", removed).Return(nil)

	err := NewChangePublisher(pub).Notify(context.Background(), created, removed)
	assert.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestChangePublisher_KeepsGoingAfterAFailure(t *testing.T) {
	pub := &mockPublisher{}
	boom := errors.New("channel closed")
	pub.On("PublishJSON", mock.Anything, "users.deleted", mock.Anything).Return(boom)
	pub.On("PublishJSON", mock.Anything, "posts.deleted", mock.Anything).Return(nil)

	err := NewChangePublisher(pub).Notify(context.Background(),
		event.Change{Collection: event.Users, Action: event.Deleted, ID: "u1"},
		event.Change{Collection: event.Posts, Action: event.Deleted, ID: "p1"},
	)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "users.deleted u1")
	pub.AssertNumberOfCalls(t, "PublishJSON", 2)
}
