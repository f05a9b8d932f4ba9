package flow

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/chatledger/internal/model"
	"github.com/Veraticus/chatledger/internal/service"
	"github.com/Veraticus/chatledger/internal/session"
	"github.com/Veraticus/chatledger/internal/sheets"
	"github.com/Veraticus/chatledger/internal/state"
)

// memClassStore is an in-memory ClassificationStore for engine tests.
type memClassStore struct {
	mu     sync.Mutex
	byUser map[string][]model.Classification
	nextID int64
}

func newMemClassStore() *memClassStore {
	return &memClassStore{byUser: make(map[string][]model.Classification)}
}

func (m *memClassStore) GetClassifications(_ context.Context, userID string) ([]model.Classification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Classification(nil), m.byUser[userID]...), nil
}

func (m *memClassStore) GetClassificationByName(_ context.Context, userID, name string) (*model.Classification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byUser[userID] {
		if strings.EqualFold(c.Name, name) {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memClassStore) CreateClassification(_ context.Context, userID, name, glyph string, keywords []string) (*model.Classification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = model.NormalizeClassificationName(name)
	for _, c := range m.byUser[userID] {
		if strings.EqualFold(c.Name, name) {
			found := c
			return &found, nil
		}
	}

	if glyph == "" {
		glyph = model.DefaultGlyph
	}
	m.nextID++
	created := model.Classification{
		ID:        m.nextID,
		UserID:    userID,
		Name:      name,
		Glyph:     glyph,
		Keywords:  keywords,
		CreatedAt: time.Now(),
	}
	m.byUser[userID] = append(m.byUser[userID], created)
	return &created, nil
}

func (m *memClassStore) DeleteClassification(_ context.Context, userID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.byUser[userID][:0]
	for _, c := range m.byUser[userID] {
		if !strings.EqualFold(c.Name, name) {
			kept = append(kept, c)
		}
	}
	m.byUser[userID] = kept
	return nil
}

func (m *memClassStore) MatchKeyword(_ context.Context, userID, text string) (*model.Classification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lowered := strings.ToLower(text)
	for _, c := range m.byUser[userID] {
		for _, kw := range c.Keywords {
			if kw != "" && strings.Contains(lowered, kw) {
				found := c
				return &found, nil
			}
		}
	}
	return nil, nil
}

func (m *memClassStore) EnsureDefaults(_ context.Context, _ string) error {
	return nil
}

// stubSuggester returns a scripted reply and counts invocations.
type stubSuggester struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (s *stubSuggester) Suggest(_ context.Context, _ string, _ []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.reply, s.err
}

func (s *stubSuggester) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testEnv wires an engine with inspectable stores and collaborators.
type testEnv struct {
	engine     *Engine
	drafts     *session.DraftStore
	sessions   *session.Store
	registry   *state.Registry
	classStore *memClassStore
	suggester  *stubSuggester
	persister  *sheets.MockPersister
	clock      *fakeClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		drafts:     session.NewDraftStore(),
		registry:   state.NewRegistry(),
		classStore: newMemClassStore(),
		suggester:  &stubSuggester{},
		persister:  sheets.NewMockPersister(),
		clock:      newFakeClock(),
	}
	env.sessions = session.NewStore(session.WithClock(env.clock.Now), session.WithTimeout(30*time.Minute))
	env.engine = New(env.drafts, env.sessions, env.registry, env.classStore, env.suggester, env.persister, nil)
	return env
}

// seedDraft registers a draft and seeds a couple of classifications.
func (env *testEnv) seedDraft(t *testing.T, userID string) *model.Draft {
	t.Helper()

	ctx := context.Background()
	if _, err := env.classStore.CreateClassification(ctx, userID, "groceries", "🥕", []string{"grocery"}); err != nil {
		t.Fatalf("failed to seed classification: %v", err)
	}
	if _, err := env.classStore.CreateClassification(ctx, userID, "transport", "🚗", []string{"uber"}); err != nil {
		t.Fatalf("failed to seed classification: %v", err)
	}

	return env.engine.RegisterDraft(userID, model.Attributes{
		Amount:   500,
		Category: "miscellaneous",
		Merchant: "Unknown Store",
	})
}

// startEditFlow walks a user into the edit flow.
func (env *testEnv) startEditFlow(t *testing.T, userID string) *model.Draft {
	t.Helper()

	draft := env.seedDraft(t, userID)
	ctx := context.Background()
	if _, err := env.engine.HandleAction(ctx, userID, model.Action{Kind: model.ActionEdit, DraftID: draft.ID}); err != nil {
		t.Fatalf("failed to start edit flow: %v", err)
	}
	return draft
}

func (env *testEnv) assertNoTrace(t *testing.T, userID string, draftID string) {
	t.Helper()

	if got := env.drafts.Get(draftID); got != nil {
		t.Errorf("draft %s still present after teardown", draftID)
	}
	if got := env.sessions.Get(userID); got != nil {
		t.Errorf("session for %s still present after teardown", userID)
	}
	if got := env.registry.Peek(userID); got != nil {
		t.Errorf("registry entry for %s still present after teardown", userID)
	}
}

var _ service.ClassificationStore = (*memClassStore)(nil)
var _ service.CategorySuggester = (*stubSuggester)(nil)
