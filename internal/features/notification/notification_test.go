package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type mockNotificationRepo struct {
	created []*Notification
	err     error
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *Notification) error {
	if m.err != nil {
		return m.err
	}
	n.ID = primitive.NewObjectID()
	m.created = append(m.created, n)
	return nil
}

func (m *mockNotificationRepo) GetByUserID(ctx context.Context, userID string, page, limit int64) ([]Notification, int64, error) {
	return nil, 0, nil
}

func (m *mockNotificationRepo) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	return int64(len(m.created)), nil
}

func (m *mockNotificationRepo) MarkAsRead(ctx context.Context, id primitive.ObjectID, userID string) error {
	return nil
}

func (m *mockNotificationRepo) MarkAllAsRead(ctx context.Context, userID string) error { return nil }

type fakeConn struct {
	messages [][]byte
	fail     bool
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	if f.fail {
		return errors.New("broken pipe")
	}
	f.messages = append(f.messages, data)
	return nil
}

func TestMessageUserStoresAndPushes(t *testing.T) {
	repo := &mockNotificationRepo{}
	hub := NewHub(zap.NewNop())
	conn := &fakeConn{}
	other := &fakeConn{}
	hub.Register("u1", conn)
	hub.Register("u2", other)

	svc := NewNotificationService(repo, hub, zap.NewNop())
	n, err := svc.MessageUser(context.Background(), Message{UserID: "u1", Text: "<em>done</em>", Safe: true})
	require.NoError(t, err)

	assert.Equal(t, NotificationTypeInfo, n.Type)
	require.Len(t, repo.created, 1)
	require.Len(t, conn.messages, 1)
	assert.Empty(t, other.messages)

	var pushed Notification
	require.NoError(t, json.Unmarshal(conn.messages[0], &pushed))
	assert.Equal(t, "<em>done</em>", pushed.Message)
	assert.True(t, pushed.Safe)
}

func TestMessageUserPropagatesStoreError(t *testing.T) {
	svc := NewNotificationService(&mockNotificationRepo{err: errors.New("down")}, nil, zap.NewNop())
	_, err := svc.MessageUser(context.Background(), Message{UserID: "u1", Text: "x"})
	assert.Error(t, err)
}

func TestHubDropsFailedConnections(t *testing.T) {
	hub := NewHub(zap.NewNop())
	bad := &fakeConn{fail: true}
	hub.Register("u1", bad)

	hub.Push(&Notification{UserID: "u1", Message: "x"})
	hub.Push(&Notification{UserID: "u1", Message: "y"})

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	assert.NotContains(t, hub.conns, "u1")
}
