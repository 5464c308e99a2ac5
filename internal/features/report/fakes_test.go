package report

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"crm-reports/internal/features/notification"
	"crm-reports/internal/features/record"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeSelection struct {
	query   record.Query
	records []record.Record
	err     error
}

func (s *fakeSelection) Query() record.Query { return s.query }

func (s *fakeSelection) Count(ctx context.Context) (int64, error) {
	return int64(len(s.records)), s.err
}

func (s *fakeSelection) IDs(ctx context.Context) ([]string, error) {
	ids := make([]string, len(s.records))
	for i, rec := range s.records {
		ids[i] = rec.ID()
	}
	return ids, s.err
}

func (s *fakeSelection) Records(ctx context.Context) ([]record.Record, error) {
	return s.records, s.err
}

// fakeSelector serves records of one module. Filters match record values
// exactly and an explicit id list, even an empty one, narrows the result.
type fakeSelector struct {
	records []record.Record
	queries []record.Query
}

func (s *fakeSelector) Select(ctx context.Context, q record.Query) (record.Selection, error) {
	s.queries = append(s.queries, q)
	var out []record.Record
	for _, rec := range s.records {
		if matches(rec, q) {
			out = append(out, rec)
		}
	}
	return &fakeSelection{query: q, records: out}, nil
}

func matches(rec record.Record, q record.Query) bool {
	for k, v := range q.Filter {
		if rec[k] != v {
			return false
		}
	}
	if !q.Explicit() {
		return true
	}
	for _, id := range q.IDs {
		if rec.ID() == id {
			return true
		}
	}
	return false
}

// recountedSelection reports a stale count, as when records are added
// between counting a filter and listing its ids.
type recountedSelection struct {
	*fakeSelection
	count int64
}

func (s *recountedSelection) Count(ctx context.Context) (int64, error) {
	return s.count, nil
}

type fakeFields map[string][]string

func (f fakeFields) FieldNames(ctx context.Context, module string) ([]string, error) {
	names, ok := f[module]
	if !ok {
		return nil, fmt.Errorf("module %s not found", module)
	}
	return names, nil
}

type fakeStore struct {
	mu    sync.Mutex
	saved []*SavedReport
	data  map[string][]byte
	err   error
}

func (s *fakeStore) Save(ctx context.Context, req SaveRequest) (*SavedReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = make(map[string][]byte)
	}
	saved := &SavedReport{
		ID:          primitive.NewObjectID(),
		TenantID:    req.TenantID,
		Report:      req.Report,
		Module:      req.Module,
		RunBy:       req.UserID,
		FileName:    req.FileName,
		FileKey:     "reports/" + req.FileName,
		URL:         "/fs/uploads/reports/" + req.FileName,
		ContentType: req.ContentType,
		SizeBytes:   int64(len(req.Data)),
		RowCount:    req.RowCount,
		SkippedRows: req.SkippedRows,
	}
	s.data[saved.FileKey] = req.Data
	s.saved = append(s.saved, saved)
	return saved, nil
}

func (s *fakeStore) Open(ctx context.Context, saved *SavedReport) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.data[saved.FileKey]
	if !ok {
		return nil, errors.New("missing file")
	}
	return data, nil
}

func (s *fakeStore) Remove(ctx context.Context, saved *SavedReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, saved.FileKey)
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []notification.Message
}

func (n *fakeNotifier) MessageUser(ctx context.Context, msg notification.Message) (*notification.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return &notification.Notification{UserID: msg.UserID, Message: msg.Text}, nil
}

func (n *fakeNotifier) GetUserNotifications(ctx context.Context, userID string, page, limit int64) ([]notification.Notification, int64, error) {
	return nil, 0, nil
}

func (n *fakeNotifier) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

func (n *fakeNotifier) MarkAsRead(ctx context.Context, id string, userID string) error { return nil }

func (n *fakeNotifier) MarkAllAsRead(ctx context.Context, userID string) error { return nil }

type fakeIdentity struct{}

func (fakeIdentity) Emails(ctx context.Context, userID string) []string {
	return []string{userID + "@example.com"}
}

type fakeQueue struct {
	tasks []*Task
}

func (q *fakeQueue) Enqueue(ctx context.Context, task *Task) error {
	q.tasks = append(q.tasks, task)
	return nil
}

func leads(n int) []record.Record {
	out := make([]record.Record, n)
	for i := range out {
		out[i] = record.Record{
			"id":   fmt.Sprintf("lead-%d", i+1),
			"name": fmt.Sprintf("Lead %d", i+1),
		}
	}
	return out
}
