package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fitpack_admin/internal/dashboard"
)

type memCache struct {
	data      map[string][]byte
	ttls      map[string]time.Duration
	published []string
	pubErr    error
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = b
	m.ttls[key] = expiration
	return nil
}

func (m *memCache) Get(ctx context.Context, key string, dest interface{}) error {
	b, ok := m.data[key]
	if !ok {
		return redis.Nil
	}
	return json.Unmarshal(b, dest)
}

func (m *memCache) GetDel(ctx context.Context, key string, dest interface{}) error {
	if err := m.Get(ctx, key, dest); err != nil {
		return err
	}
	delete(m.data, key)
	return nil
}

func (m *memCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memCache) Publish(ctx context.Context, channel, message string) error {
	if m.pubErr != nil {
		return m.pubErr
	}
	m.published = append(m.published, channel+" "+message)
	return nil
}

func TestStatesRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := newMemCache()
	states := NewStates(cache, time.Hour)

	st, err := states.Load(ctx, "uid-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st.ActiveTab != dashboard.TabPackages || st.NewPackage != dashboard.DefaultPackageForm() {
		t.Fatalf("fresh state = %+v", st)
	}

	st.ActiveTab = dashboard.TabOrders
	st.Search = "yoga"
	st.ShowCreateUserModal = true
	st.NewUser.Email = "new@example.com"
	st.NewUser.Password = "hunter22hunter"
	if err := states.Save(ctx, "uid-1", st); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if cache.ttls["dashboard:state:uid-1"] != time.Hour {
		t.Errorf("ttl = %v", cache.ttls["dashboard:state:uid-1"])
	}

	got, err := states.Load(ctx, "uid-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ActiveTab != dashboard.TabOrders || got.Search != "yoga" || !got.ShowCreateUserModal {
		t.Errorf("loaded state = %+v", got)
	}
	if got.NewUser.Email != "new@example.com" {
		t.Errorf("form email = %q", got.NewUser.Email)
	}
	if got.NewUser.Password != "" {
		t.Error("password must not be persisted")
	}

	other, _ := states.Load(ctx, "uid-2")
	if other.ActiveTab != dashboard.TabPackages {
		t.Error("sessions share state")
	}

	if err := states.Forget(ctx, "uid-1"); err != nil {
		t.Fatal(err)
	}
	if fresh, _ := states.Load(ctx, "uid-1"); fresh.Search != "" {
		t.Error("state survived Forget")
	}
}

func TestFlashesPopOnce(t *testing.T) {
	ctx := context.Background()
	flashes := NewFlashes(newMemCache())

	if n, err := flashes.Pop(ctx, "uid"); n != nil || err != nil {
		t.Fatalf("empty Pop = %v, %v", n, err)
	}

	_ = flashes.Put(ctx, "uid", &dashboard.Notice{Kind: dashboard.NoticeError, Text: "first"})
	_ = flashes.Put(ctx, "uid", &dashboard.Notice{Kind: dashboard.NoticeSuccess, Text: "second"})

	n, err := flashes.Pop(ctx, "uid")
	if err != nil || n == nil {
		t.Fatalf("Pop = %v, %v", n, err)
	}
	if n.Kind != dashboard.NoticeSuccess || n.Text != "second" {
		t.Errorf("notice = %+v", n)
	}
	if again, _ := flashes.Pop(ctx, "uid"); again != nil {
		t.Errorf("notice shown twice: %+v", again)
	}
}

func TestSignalBus(t *testing.T) {
	cache := newMemCache()
	bus := NewSignalBus(cache, zap.NewNop())

	bus.Publish(context.Background(), "uid-9", []string{dashboard.SignalPackageCreated, dashboard.SignalUserDeleted})

	want := []string{
		`dashboard:signals {"signal":"package-created","actor":"uid-9"}`,
		`dashboard:signals {"signal":"userDeleted","actor":"uid-9"}`,
	}
	if len(cache.published) != len(want) {
		t.Fatalf("published = %v", cache.published)
	}
	for i := range want {
		if cache.published[i] != want[i] {
			t.Errorf("published[%d] = %s; want %s", i, cache.published[i], want[i])
		}
	}

	m, err := DecodeMessage(`{"signal":"order-deleted"}`)
	if err != nil || m.Signal != dashboard.SignalOrderDeleted {
		t.Errorf("DecodeMessage = %+v, %v", m, err)
	}
}

func TestSignalBusSwallowsPublishErrors(t *testing.T) {
	cache := newMemCache()
	cache.pubErr = errors.New("redis gone")
	NewSignalBus(cache, zap.NewNop()).Publish(context.Background(), "", []string{"x"})
	if len(cache.published) != 0 {
		t.Error("nothing should be recorded")
	}
}

func TestHXTrigger(t *testing.T) {
	if got := HXTrigger([]string{"package-created", "user-updated"}); got != "package-created, user-updated" {
		t.Errorf("HXTrigger = %q", got)
	}
	if got := HXTrigger(nil); got != "" {
		t.Errorf("HXTrigger(nil) = %q", got)
	}
}
