package store

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nasdf/entity"
	"github.com/nasdf/entity/selector"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	ID   string
	Name string
}

func (u user) Key() string {
	return u.ID
}

func TestStoreApply(t *testing.T) {
	s := New("users", entity.MustNew[string, user]())
	initial := s.State()

	change := s.AddMany([]user{{ID: "a"}, {ID: "b"}})
	assert.Equal(t, entity.Both, change)
	assert.Equal(t, []string{"a", "b"}, s.State().IDs())
	assert.Equal(t, 0, initial.Len())
	assert.Equal(t, 2, s.Len())
}

func TestStoreNoChangeKeepsState(t *testing.T) {
	s := New("users", entity.MustNew[string, user]())
	s.AddOne(user{ID: "a"})
	before := s.State()

	var calls int
	unsubscribe := s.Subscribe(func(*entity.State[string, user], entity.Change) { calls++ })
	defer unsubscribe()

	assert.Equal(t, entity.NoChange, s.AddOne(user{ID: "a", Name: "ignored"}))
	assert.Equal(t, entity.NoChange, s.RemoveOne("missing"))
	assert.Same(t, before, s.State())
	assert.Equal(t, 0, calls)
}

func TestStoreSubscribe(t *testing.T) {
	s := New("users", entity.MustNew[string, user]())

	var changes []entity.Change
	unsubscribe := s.Subscribe(func(st *entity.State[string, user], change entity.Change) {
		changes = append(changes, change)
	})

	s.AddOne(user{ID: "a"})
	s.SetOne(user{ID: "a", Name: "alice"})
	s.UpdateOne(entity.Update[string, user]{ID: "a", Changes: func(u user) user {
		u.ID = "b"
		return u
	}})
	unsubscribe()
	s.RemoveAll()

	assert.Equal(t, []entity.Change{entity.Both, entity.EntitiesOnly, entity.Both}, changes)
	assert.Equal(t, 0, s.Len())
}

func TestStoreListenerUnsubscribesItself(t *testing.T) {
	s := New("users", entity.MustNew[string, user]())

	var calls int
	var unsubscribe func()
	unsubscribe = s.Subscribe(func(*entity.State[string, user], entity.Change) {
		calls++
		unsubscribe()
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.AddOne(user{ID: "a"})
		s.AddOne(user{ID: "b"})
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("store blocked while a listener unsubscribed")
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, s.Len())
}

func TestStoreListenersRunInSubscriptionOrder(t *testing.T) {
	s := New("users", entity.MustNew[string, user]())

	var calls []int
	for i := 0; i < 5; i++ {
		s.Subscribe(func(*entity.State[string, user], entity.Change) {
			calls = append(calls, i)
		})
	}
	s.AddOne(user{ID: "a"})
	s.AddOne(user{ID: "b"})

	assert.Equal(t, []int{0, 1, 2, 3, 4, 0, 1, 2, 3, 4}, calls)
}

func TestStoreListenersSeePublishOrder(t *testing.T) {
	s := New("users", entity.MustNew[string, user]())

	var mu sync.Mutex
	var totals []int
	s.Subscribe(func(st *entity.State[string, user], _ entity.Change) {
		mu.Lock()
		defer mu.Unlock()
		totals = append(totals, st.Len())
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.AddOne(user{ID: string(rune('a' + i))})
		}(i)
	}
	wg.Wait()

	require.Len(t, totals, 16)
	for i, total := range totals {
		assert.Equal(t, i+1, total)
	}
}

func TestStoreMutations(t *testing.T) {
	a := entity.MustNew(entity.WithEqual[string, user](func(x, y user) bool { return x == y }))
	s := New("users", a)

	s.SetAll([]user{{ID: "a"}, {ID: "b"}, {ID: "c"}})
	s.SetMany([]user{{ID: "d"}})
	s.UpsertOne(user{ID: "a", Name: "alice"})
	s.UpsertMany([]user{{ID: "e"}})
	s.UpdateMany([]entity.Update[string, user]{{ID: "b", Changes: entity.Replace(user{ID: "b", Name: "bob"})}})
	s.RemoveMany([]string{"c"})
	s.RemoveManyFunc(func(u user) bool { return u.ID == "e" })
	s.Map(func(u user) user {
		u.Name = strings.ToUpper(u.Name)
		return u
	})

	assert.Equal(t, []user{{ID: "a", Name: "ALICE"}, {ID: "b", Name: "BOB"}, {ID: "d"}}, s.State().Values())

	assert.Equal(t, entity.Both, s.AddAll([]user{{ID: "z"}}))
	assert.Equal(t, entity.Both, s.Reset())
	assert.Equal(t, entity.NoChange, s.Reset())
}

func TestStoreConcurrentWriters(t *testing.T) {
	s := New("users", entity.MustNew[string, user]())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.AddOne(user{ID: string(rune('a' + i))})
			_ = s.State().Len()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 16, s.Len())
}

func TestStoreLogsPublishedState(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	s := New("users", entity.MustNew[string, user](), WithLogger(logger))

	s.AddOne(user{ID: "a"})
	s.AddOne(user{ID: "a"})

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "state published"))
	assert.Contains(t, out, `"feature":"users"`)
	assert.Contains(t, out, `"change":"Both"`)
	assert.Contains(t, out, `"total":1`)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	s := New("users", entity.MustNew[string, user](), WithMetrics(metrics))
	s.AddMany([]user{{ID: "a"}, {ID: "b"}})
	s.AddOne(user{ID: "a"})
	s.SetOne(user{ID: "a", Name: "alice"})

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.mutations.WithLabelValues("users", "Both")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.mutations.WithLabelValues("users", "NoChange")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.mutations.WithLabelValues("users", "EntitiesOnly")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.records.WithLabelValues("users")))

	sel := selector.ForState[string, user](selector.WithName("users"), selector.WithObserver(metrics))
	sel.SelectTotal.Select(s.State())
	sel.SelectTotal.Select(s.State())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.selectors.WithLabelValues("users.total", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.selectors.WithLabelValues("users.total", "miss")))
}

func TestMetricsRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	assert.Error(t, err)
}
