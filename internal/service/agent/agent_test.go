package agent

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/sazed/internal/config"
	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/internal/providers/gateway"
	"github.com/sandevgo/sazed/internal/providers/tools"
	"github.com/sandevgo/sazed/internal/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedModel struct {
	mu        sync.Mutex
	responses []core.ModelResponse
	requests  []core.ModelRequest
	err       error
}

func (m *scriptedModel) next(req core.ModelRequest) (core.ModelResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return core.ModelResponse{}, m.err
	}
	if len(m.responses) == 0 {
		return core.ModelResponse{}, errors.New("script exhausted")
	}
	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return resp, nil
}

func (m *scriptedModel) Invoke(ctx context.Context, req core.ModelRequest) (core.ModelResponse, error) {
	return m.next(req)
}

func (m *scriptedModel) Stream(ctx context.Context, req core.ModelRequest, onText func(string)) (core.ModelResponse, error) {
	resp, err := m.next(req)
	if err != nil {
		return resp, err
	}
	for _, b := range resp.Content {
		if b.Type == core.BlockText {
			for _, word := range strings.SplitAfter(b.Text, " ") {
				onText(word)
			}
		}
	}
	return resp, nil
}

type fakeTools struct {
	calls []string
}

func (f *fakeTools) Schemas() []core.Tool {
	return []core.Tool{{Name: "get_events", InputSchema: []byte(`{"type":"object"}`)}}
}

func (f *fakeTools) Dispatch(ctx context.Context, name string, args map[string]any) string {
	f.calls = append(f.calls, name)
	if name == "broken" {
		return "Request timed out."
	}
	return `{"events": []}`
}

type staticPrompt struct{ facts []core.Fact }

func (p *staticPrompt) Build(facts []core.Fact) string {
	p.facts = facts
	return "system"
}

func endTurn(text string) core.ModelResponse {
	return core.ModelResponse{StopReason: core.StopEndTurn, Content: []core.Block{core.TextBlock(text)}}
}

func toolUse(id, name string) core.ModelResponse {
	return core.ModelResponse{StopReason: core.StopToolUse, Content: []core.Block{core.ToolUseBlock(id, name, nil)}}
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{MaxTurns: 5, MaxOutputTokens: 1024, TierLengthThreshold: 500, TierTurnThreshold: 2}
}

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestAgent(t *testing.T, model core.ModelProvider, dispatcher core.ToolDispatcher) (*Agent, *sqlite.Store) {
	store := newStore(t)
	return NewAgent(testConfig(), store.Sessions(), store.Memory(), model, dispatcher, &staticPrompt{}), store
}

func TestSelectTier(t *testing.T) {
	tests := []struct {
		name    string
		message string
		turn    int
		want    core.ModelTier
	}{
		{name: "short first turn", message: strings.Repeat("a", 10), turn: 0, want: core.TierFast},
		{name: "long first turn", message: strings.Repeat("a", 600), turn: 0, want: core.TierSlow},
		{name: "short late turn", message: strings.Repeat("a", 10), turn: 3, want: core.TierSlow},
		{name: "at threshold", message: strings.Repeat("a", 500), turn: 2, want: core.TierFast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectTier(tt.message, tt.turn, 500, 2))
		})
	}
}

func TestRun_Validation(t *testing.T) {
	a, _ := newTestAgent(t, &scriptedModel{}, &fakeTools{})
	ctx := context.Background()

	_, err := a.Run(ctx, "", "   ")
	assert.ErrorIs(t, err, core.ErrEmptyMessage)

	_, err = a.Run(ctx, "not-a-uuid", "hello")
	assert.ErrorIs(t, err, core.ErrInvalidSessionID)
}

func TestRun_SingleAnswer(t *testing.T) {
	model := &scriptedModel{responses: []core.ModelResponse{endTurn("Hi there")}}
	a, store := newTestAgent(t, model, &fakeTools{})
	ctx := context.Background()

	res, err := a.Run(ctx, "", "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi there", res.Text)
	assert.False(t, res.Truncated)

	s, err := store.Sessions().GetSession(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, s.MessageCount)

	require.Len(t, model.requests, 1)
	assert.Equal(t, core.TierFast, model.requests[0].Tier)
	assert.Equal(t, "system", model.requests[0].System)
	assert.Equal(t, 1024, model.requests[0].MaxTokens)
	assert.Len(t, model.requests[0].Tools, 1)
}

func TestRun_ContinuesExistingSession(t *testing.T) {
	model := &scriptedModel{responses: []core.ModelResponse{endTurn("first"), endTurn("second")}}
	a, store := newTestAgent(t, model, &fakeTools{})
	ctx := context.Background()

	first, err := a.Run(ctx, "", "one")
	require.NoError(t, err)
	second, err := a.Run(ctx, first.SessionID, "two")
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)

	require.Len(t, model.requests, 2)
	assert.Len(t, model.requests[1].Messages, 3)

	msgs, err := store.Sessions().Messages(ctx, first.SessionID)
	require.NoError(t, err)
	assert.Len(t, msgs, 4)
}

func TestRun_TurnCap(t *testing.T) {
	model := &scriptedModel{responses: []core.ModelResponse{toolUse("t1", "get_events")}}
	dispatcher := &fakeTools{}
	a, store := newTestAgent(t, model, dispatcher)
	ctx := context.Background()

	res, err := a.Run(ctx, "", "keep going")
	require.NoError(t, err)

	assert.Len(t, model.requests, 5)
	assert.Len(t, dispatcher.calls, 5)
	assert.True(t, res.Truncated)
	assert.Equal(t, FallbackText, res.Text)

	msgs, err := store.Sessions().Messages(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Len(t, msgs, 11)
	assert.NoError(t, core.ValidatePairing(msgs, false))
}

func TestRun_LongMessageUsesSlowTier(t *testing.T) {
	model := &scriptedModel{responses: []core.ModelResponse{endTurn("ok")}}
	a, _ := newTestAgent(t, model, &fakeTools{})

	_, err := a.Run(context.Background(), "", strings.Repeat("x", 600))
	require.NoError(t, err)
	assert.Equal(t, core.TierSlow, model.requests[0].Tier)
}

func TestRun_UnexpectedStopReason(t *testing.T) {
	model := &scriptedModel{responses: []core.ModelResponse{{
		StopReason: "max_tokens",
		Content:    []core.Block{core.TextBlock("Partial answ")},
	}}}
	a, _ := newTestAgent(t, model, &fakeTools{})

	res, err := a.Run(context.Background(), "", "tell me everything")
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Equal(t, "Partial answ", res.Text)
	assert.Len(t, model.requests, 1)
}

func TestRun_ToolFailureContinues(t *testing.T) {
	model := &scriptedModel{responses: []core.ModelResponse{
		toolUse("t1", "broken"),
		endTurn("The calendar service timed out."),
	}}
	a, store := newTestAgent(t, model, &fakeTools{})
	ctx := context.Background()

	res, err := a.Run(ctx, "", "what's next?")
	require.NoError(t, err)
	assert.Equal(t, "The calendar service timed out.", res.Text)

	msgs, err := store.Sessions().Messages(ctx, res.SessionID)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	results := msgs[2].Content.ToolResults()
	require.Len(t, results, 1)
	assert.Equal(t, "t1", results[0].ToolUseID)
	assert.Equal(t, "Request timed out.", results[0].Content)
}

func TestRun_ModelErrorPropagates(t *testing.T) {
	model := &scriptedModel{err: errors.New("overloaded")}
	a, store := newTestAgent(t, model, &fakeTools{})
	ctx := context.Background()

	res, err := a.Run(ctx, "", "hello")
	require.Error(t, err)
	assert.ErrorContains(t, err, "overloaded")

	// the user message is already durable
	msgs, err := store.Sessions().Messages(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestRun_ClosesInterruptedToolCalls(t *testing.T) {
	model := &scriptedModel{responses: []core.ModelResponse{endTurn("done")}}
	a, store := newTestAgent(t, model, &fakeTools{})
	ctx := context.Background()
	sessionID := "2f1e9a8c-6a63-4d55-b0a4-96a3b6b0a0e1"

	require.NoError(t, store.Sessions().EnsureSession(ctx, sessionID))
	require.NoError(t, store.Sessions().AppendMessage(ctx, sessionID, core.Message{Role: core.RoleUser, Content: core.PlainText("hi")}))
	require.NoError(t, store.Sessions().AppendMessage(ctx, sessionID, core.Message{
		Role:    core.RoleAssistant,
		Content: core.Blocks(core.ToolUseBlock("t9", "get_events", nil)),
	}))

	_, err := a.Run(ctx, sessionID, "again")
	require.NoError(t, err)

	require.Len(t, model.requests, 1)
	assert.NoError(t, core.ValidatePairing(model.requests[0].Messages, false))

	msgs, err := store.Sessions().Messages(ctx, sessionID)
	require.NoError(t, err)
	assert.NoError(t, core.ValidatePairing(msgs, false))
}

func TestRunStream_Events(t *testing.T) {
	model := &scriptedModel{responses: []core.ModelResponse{
		toolUse("t1", "get_events"),
		endTurn("You are free all day."),
	}}
	a, _ := newTestAgent(t, model, &fakeTools{})

	var events []Event
	res, err := a.RunStream(context.Background(), "", "calendar?", func(e Event) {
		events = append(events, e)
	})
	require.NoError(t, err)

	var names []string
	var text strings.Builder
	for _, e := range events {
		if e.Name == EventTextDelta {
			text.WriteString(e.Data["text"].(string))
			continue
		}
		names = append(names, e.Name)
	}

	assert.Equal(t, []string{EventSession, EventToolStart, EventToolDone, EventDone}, names)
	assert.Equal(t, res.SessionID, events[0].Data["session_id"])
	assert.Equal(t, "get_events", events[1].Data["name"])
	assert.Equal(t, false, events[len(events)-1].Data["truncated"])
	assert.Equal(t, "You are free all day.", text.String())
	assert.Equal(t, res.Text, text.String())
}

func TestRun_CalendarEndToEnd(t *testing.T) {
	var gatewayHits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gatewayHits++
		assert.Equal(t, "/calendar/events", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("days"))
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"events":[{"title":"Standup","start":"09:30"}]}`))
	}))
	defer srv.Close()

	store := newStore(t)
	registry, err := tools.NewRegistry(tools.DefaultCatalog(), gateway.NewClient(srv.URL, "secret", 5*time.Second), store.Memory(), 5*time.Second)
	require.NoError(t, err)

	model := &scriptedModel{responses: []core.ModelResponse{
		{StopReason: core.StopToolUse, Content: []core.Block{
			core.TextBlock("Checking."),
			core.ToolUseBlock("toolu_1", "get_events", map[string]any{"days": float64(1)}),
		}},
		endTurn("You have Standup at 09:30."),
	}}
	a := NewAgent(testConfig(), store.Sessions(), store.Memory(), model, registry, &staticPrompt{})
	ctx := context.Background()

	res, err := a.Run(ctx, "", "What's on my calendar today?")
	require.NoError(t, err)
	assert.Equal(t, "You have Standup at 09:30.", res.Text)
	assert.Equal(t, 1, gatewayHits)

	s, err := store.Sessions().GetSession(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 4, s.MessageCount)

	msgs, err := store.Sessions().Messages(ctx, res.SessionID)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.True(t, msgs[0].Content.IsPlain())
	assert.Equal(t, core.RoleAssistant, msgs[1].Role)
	assert.Equal(t, core.RoleUser, msgs[2].Role)
	assert.Contains(t, msgs[2].Content.ToolResults()[0].Content, "Standup")
	assert.NoError(t, core.ValidatePairing(msgs, false))
}

func TestRun_LoadsFactsIntoPrompt(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	_, err := store.Memory().Upsert(ctx, core.FactInput{FactType: "personal", Key: "name", Value: "Ana", Confidence: 1, Source: "api"})
	require.NoError(t, err)

	prompt := &staticPrompt{}
	model := &scriptedModel{responses: []core.ModelResponse{endTurn("Hi Ana")}}
	a := NewAgent(testConfig(), store.Sessions(), store.Memory(), model, &fakeTools{}, prompt)

	_, err = a.Run(ctx, "", "hello")
	require.NoError(t, err)
	require.Len(t, prompt.facts, 1)
	assert.Equal(t, "Ana", prompt.facts[0].Value)
}
