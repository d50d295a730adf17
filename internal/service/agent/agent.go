package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/sazed/internal/config"
	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/pkg/log"
)

const FallbackText = "I wasn't able to complete that."

const (
	EventSession   = "session"
	EventToolStart = "tool_start"
	EventToolDone  = "tool_done"
	EventTextDelta = "text_delta"
	EventDone      = "done"
)

// Event is one streaming notification. Data is a small JSON-encodable payload.
type Event struct {
	Name string
	Data map[string]any
}

type Result struct {
	SessionID string `json:"session_id"`
	Text      string `json:"response"`
	Truncated bool   `json:"truncated"`
}

// PromptBuilder renders the system prompt from the known facts.
type PromptBuilder interface {
	Build(facts []core.Fact) string
}

type Agent struct {
	sessions core.SessionRepository
	memory   core.MemoryRepository
	model    core.ModelProvider
	tools    core.ToolDispatcher
	prompt   PromptBuilder

	maxTurns        int
	maxOutputTokens int
	tierLength      int
	tierTurn        int

	now func() time.Time
}

func NewAgent(
	cfg *config.AppConfig,
	sessions core.SessionRepository,
	memory core.MemoryRepository,
	model core.ModelProvider,
	tools core.ToolDispatcher,
	prompt PromptBuilder,
) *Agent {
	return &Agent{
		sessions:        sessions,
		memory:          memory,
		model:           model,
		tools:           tools,
		prompt:          prompt,
		maxTurns:        cfg.MaxTurns,
		maxOutputTokens: cfg.MaxOutputTokens,
		tierLength:      cfg.TierLengthThreshold,
		tierTurn:        cfg.TierTurnThreshold,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// Run executes one user turn and returns the final answer.
// An empty sessionID starts a new session.
func (a *Agent) Run(ctx context.Context, sessionID, text string) (Result, error) {
	return a.run(ctx, sessionID, text, nil)
}

// RunStream executes the same turn as Run and reports progress through emit.
// emit is called from the calling goroutine only.
func (a *Agent) RunStream(ctx context.Context, sessionID, text string, emit func(Event)) (Result, error) {
	if emit == nil {
		emit = func(Event) {}
	}
	return a.run(ctx, sessionID, text, emit)
}

// SelectTier picks the slow model for long messages and for late turns.
func (a *Agent) SelectTier(message string, turn int) core.ModelTier {
	return SelectTier(message, turn, a.tierLength, a.tierTurn)
}

func SelectTier(message string, turn, lengthThreshold, turnThreshold int) core.ModelTier {
	if turn > turnThreshold || len([]rune(message)) > lengthThreshold {
		return core.TierSlow
	}
	return core.TierFast
}

func (a *Agent) run(ctx context.Context, sessionID, text string, emit func(Event)) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, core.ErrEmptyMessage
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	} else if _, err := uuid.Parse(sessionID); err != nil {
		return Result{}, core.ErrInvalidSessionID
	}

	ctx = log.WithFields(ctx, "session_id", sessionID)
	logger := log.FromCtx(ctx)
	started := time.Now()

	if err := a.sessions.EnsureSession(ctx, sessionID); err != nil {
		return Result{}, fmt.Errorf("ensure session: %w", err)
	}

	history, err := a.sessions.Messages(ctx, sessionID)
	if err != nil {
		return Result{}, fmt.Errorf("load history: %w", err)
	}

	history, err = a.closePendingToolUses(ctx, sessionID, history)
	if err != nil {
		return Result{}, err
	}

	history, err = a.appendMessage(ctx, sessionID, history, core.RoleUser, core.PlainText(text))
	if err != nil {
		return Result{}, err
	}

	facts, err := a.memory.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load facts: %w", err)
	}
	system := a.prompt.Build(facts)
	tier := a.SelectTier(text, 0)

	if emit != nil {
		emit(Event{Name: EventSession, Data: map[string]any{"session_id": sessionID}})
	}

	var (
		last      core.Message
		truncated = true
		turns     int
	)

loop:
	for turns < a.maxTurns {
		turns++

		req := core.ModelRequest{
			Tier:      tier,
			System:    system,
			Messages:  history,
			Tools:     a.tools.Schemas(),
			MaxTokens: a.maxOutputTokens,
		}

		resp, err := a.invoke(ctx, req, emit)
		if err != nil {
			return Result{SessionID: sessionID}, fmt.Errorf("model invocation: %w", err)
		}

		logger.Debug().
			Int("turn", turns).
			Str("tier", string(tier)).
			Str("stop_reason", string(resp.StopReason)).
			Int("blocks", len(resp.Content)).
			Msg("model responded")

		history, err = a.appendMessage(ctx, sessionID, history, core.RoleAssistant, core.Blocks(resp.Content...))
		if err != nil {
			return Result{SessionID: sessionID}, err
		}
		last = history[len(history)-1]

		switch resp.StopReason {
		case core.StopEndTurn:
			truncated = false
			break loop
		case core.StopToolUse:
			uses := last.Content.ToolUses()
			if len(uses) == 0 {
				logger.Warn().Int("turn", turns).Msg("tool_use stop without tool calls")
				break loop
			}
			results := a.dispatch(ctx, uses, emit)
			history, err = a.appendMessage(ctx, sessionID, history, core.RoleUser, core.Blocks(results...))
			if err != nil {
				return Result{SessionID: sessionID}, err
			}
		default:
			logger.Warn().Int("turn", turns).Str("stop_reason", string(resp.StopReason)).Msg("unexpected stop reason, ending turn")
			break loop
		}
	}

	if err := a.sessions.Touch(ctx, sessionID); err != nil {
		return Result{SessionID: sessionID}, fmt.Errorf("touch session: %w", err)
	}

	answer, ok := last.Content.FirstText()
	if !ok || answer == "" {
		answer = FallbackText
	}

	if emit != nil {
		emit(Event{Name: EventDone, Data: map[string]any{"truncated": truncated}})
	}

	logger.Info().
		Int("turns", turns).
		Bool("truncated", truncated).
		Dur("elapsed", time.Since(started)).
		Msg("turn completed")

	return Result{SessionID: sessionID, Text: answer, Truncated: truncated}, nil
}

func (a *Agent) invoke(ctx context.Context, req core.ModelRequest, emit func(Event)) (core.ModelResponse, error) {
	if emit == nil {
		return a.model.Invoke(ctx, req)
	}
	return a.model.Stream(ctx, req, func(delta string) {
		emit(Event{Name: EventTextDelta, Data: map[string]any{"text": delta}})
	})
}

// dispatch runs every requested tool in order and returns one tool_result per
// tool_use, keyed by the original id.
func (a *Agent) dispatch(ctx context.Context, uses []core.ToolUse, emit func(Event)) []core.Block {
	logger := log.FromCtx(ctx)
	results := make([]core.Block, 0, len(uses))

	for _, use := range uses {
		if emit != nil {
			emit(Event{Name: EventToolStart, Data: map[string]any{"name": use.Name}})
		}

		started := time.Now()
		out := a.tools.Dispatch(ctx, use.Name, use.Input)
		logger.Info().Str("tool", use.Name).Dur("elapsed", time.Since(started)).Msg("tool dispatched")

		if emit != nil {
			emit(Event{Name: EventToolDone, Data: map[string]any{"name": use.Name}})
		}
		results = append(results, core.ToolResultBlock(use.ID, out))
	}
	return results
}

func (a *Agent) appendMessage(ctx context.Context, sessionID string, history []core.Message, role core.Role, content core.Content) ([]core.Message, error) {
	msg := core.Message{Role: role, Content: content, Timestamp: a.now()}
	if err := a.sessions.AppendMessage(ctx, sessionID, msg); err != nil {
		return history, fmt.Errorf("persist %s message: %w", role, err)
	}
	return append(history, msg), nil
}

// closePendingToolUses answers tool calls left without results by an
// interrupted turn, so the history sent to the model stays well paired.
func (a *Agent) closePendingToolUses(ctx context.Context, sessionID string, history []core.Message) ([]core.Message, error) {
	if len(history) == 0 {
		return history, nil
	}
	tail := history[len(history)-1]
	if tail.Role != core.RoleAssistant {
		return history, nil
	}
	uses := tail.Content.ToolUses()
	if len(uses) == 0 {
		return history, nil
	}

	log.FromCtx(ctx).Warn().Int("pending", len(uses)).Msg("closing tool calls from an interrupted turn")

	results := make([]core.Block, 0, len(uses))
	for _, use := range uses {
		results = append(results, core.ToolResultBlock(use.ID, "Tool call was interrupted."))
	}
	return a.appendMessage(ctx, sessionID, history, core.RoleUser, core.Blocks(results...))
}
