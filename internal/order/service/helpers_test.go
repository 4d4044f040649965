package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bitfantasy/joinery/internal/order/entity"
	"github.com/bitfantasy/joinery/internal/order/repository"
	"github.com/bitfantasy/joinery/internal/order/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sentNotification struct {
	UserIDs []string
	Event   NotificationEvent
}

// recordingNotifier captures events and can be told to fail.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, userIDs []string, event NotificationEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{UserIDs: append([]string(nil), userIDs...), Event: event})
	return n.err
}

func (n *recordingNotifier) ofType(typ string) []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentNotification
	for _, s := range n.sent {
		if s.Event.Type == typ {
			out = append(out, s)
		}
	}
	return out
}

type testEnv struct {
	db       *gorm.DB
	repos    *repository.Repositories
	svc      *Services
	notifier *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.SeedStaff(t, db)
	repos := repository.NewRepositories(db)
	notifier := &recordingNotifier{}
	svc := NewServices(repos, nil, Options{
		DepositRate: decimal.RequireFromString("0.30"),
		Notifier:    notifier,
	}, nil)
	return &testEnv{db: db, repos: repos, svc: svc, notifier: notifier}
}

func (e *testEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

func (e *testEnv) item(t *testing.T, id string) *entity.ProjectItem {
	t.Helper()
	item, err := e.repos.Item.FindByID(context.Background(), id)
	require.NoError(t, err)
	return item
}

func (e *testEnv) project(t *testing.T, id string) *entity.Project {
	t.Helper()
	project, err := e.repos.Project.FindByID(context.Background(), id)
	require.NoError(t, err)
	return project
}

var errNotifierDown = errors.New("notifier down")
