package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/sazed/internal/config"
	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/pkg/log"
	"github.com/sourcegraph/conc"
)

const (
	extractionMaxTokens = 1024
	summaryMaxTokens    = 512
	kbEntryMaxTokens    = 2048
	kbMimeType          = "text/markdown"
)

const extractionPrompt = `Extract personal facts about the user from this conversation.
Only extract facts that are explicitly stated or clearly implied.
Do not duplicate facts already in the existing list unless the value has changed.
Skip transient details that only matter for this conversation.

Return a JSON array of objects with these fields:
  fact_type: one of "personal", "preference", "project", "instruction", "relationship"
  key: short identifier, e.g. "primary_language"
  value: the fact value, e.g. "Python"
  confidence: 1.0 if explicitly stated, 0.7 if clearly implied

Return [] if no new or updated facts are found.
Return only the JSON array, no other text.

Existing facts:
%s

Conversation:
%s`

const summaryPrompt = `Summarize this conversation in 1-3 paragraphs.
Focus on: key topics discussed, decisions made, action items, and important information shared.
Be concise and factual.

Conversation:
%s`

const kbEntryPrompt = `Write a knowledge-base entry for this conversation in Markdown.
Use these sections, in this order, and leave out any section that would be empty:

## Topics
## Summary
## Decisions
## Follow-ups
## Entities

Use short bullet points except in Summary. Do not invent details.

Conversation:
%s`

// Result reports what one distillation run produced.
type Result struct {
	SessionID      string  `json:"session_id"`
	FactsExtracted int     `json:"facts_extracted"`
	Summary        string  `json:"summary"`
	SummaryRef     *string `json:"summary_ref,omitempty"`
}

// Distiller turns finished conversations into facts, a summary and an
// optional knowledge-base entry.
type Distiller struct {
	sessions core.SessionRepository
	memory   core.MemoryRepository
	model    core.ModelProvider
	docs     core.DocumentStore
	cfg      config.DistillConfig

	countTokens func(string) int
	now         func() time.Time
}

// NewDistiller wires the pipeline. docs may be nil, which disables the
// knowledge-base entry regardless of KBFolderID.
func NewDistiller(
	sessions core.SessionRepository,
	memory core.MemoryRepository,
	model core.ModelProvider,
	docs core.DocumentStore,
	cfg config.DistillConfig,
) *Distiller {
	return &Distiller{
		sessions:    sessions,
		memory:      memory,
		model:       model,
		docs:        docs,
		cfg:         cfg,
		countTokens: countTokens,
		now:         time.Now,
	}
}

// Process distills a stored session and marks it processed.
func (d *Distiller) Process(ctx context.Context, sessionID string) (Result, error) {
	if _, err := d.sessions.GetSession(ctx, sessionID); err != nil {
		return Result{}, err
	}

	messages, err := d.sessions.Messages(ctx, sessionID)
	if err != nil {
		return Result{}, fmt.Errorf("load messages: %w", err)
	}
	if len(messages) == 0 {
		return Result{SessionID: sessionID}, nil
	}

	res, err := d.ProcessMessages(ctx, sessionID, messages)
	if err != nil {
		return res, err
	}

	if err := d.sessions.MarkProcessed(ctx, sessionID, res.SummaryRef); err != nil {
		return res, fmt.Errorf("mark processed: %w", err)
	}
	return res, nil
}

// ProcessMessages runs extraction, summary and the knowledge-base entry in
// parallel, then applies the extracted facts through the confidence gate.
func (d *Distiller) ProcessMessages(ctx context.Context, sessionID string, messages []core.Message) (Result, error) {
	res := Result{SessionID: sessionID}
	if len(messages) == 0 {
		return res, nil
	}

	logger := log.FromCtx(ctx).With().Str("session_id", sessionID).Logger()
	started := time.Now()

	transcript, trimmed := budgetTranscript(transcriptLines(messages), d.cfg.MaxTranscriptTokens, d.countTokens)
	if trimmed {
		logger.Warn().Int("max_tokens", d.cfg.MaxTranscriptTokens).Msg("transcript trimmed to newest lines")
	}

	existing, err := d.memory.Load(ctx)
	if err != nil {
		return res, fmt.Errorf("load facts: %w", err)
	}

	var (
		facts      []core.FactInput
		extractErr error
		summary    string
		summaryErr error
		ref        *string
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		facts, extractErr = d.extract(ctx, sessionID, transcript, existing)
	})
	if d.cfg.SummaryEnabled {
		wg.Go(func() {
			summary, summaryErr = d.summarize(ctx, transcript)
		})
	}
	if d.docs != nil && d.cfg.KBFolderID != "" {
		wg.Go(func() {
			id, err := d.writeEntry(ctx, sessionID, transcript)
			if err != nil {
				logger.Warn().Err(err).Msg("knowledge-base entry failed")
				return
			}
			ref = &id
		})
	}
	wg.Wait()

	if extractErr != nil {
		return res, fmt.Errorf("extract facts: %w", extractErr)
	}
	if summaryErr != nil {
		return res, fmt.Errorf("summarize: %w", summaryErr)
	}

	for _, f := range facts {
		if _, err := d.memory.Upsert(ctx, f); err != nil {
			return res, fmt.Errorf("upsert fact %s/%s: %w", f.FactType, f.Key, err)
		}
	}

	res.FactsExtracted = len(facts)
	res.Summary = summary
	res.SummaryRef = ref

	logger.Info().
		Int("facts", res.FactsExtracted).
		Bool("summary", summary != "").
		Bool("kb_entry", ref != nil).
		Dur("elapsed", time.Since(started)).
		Msg("session distilled")

	return res, nil
}

func (d *Distiller) extract(ctx context.Context, sessionID, transcript string, existing []core.Fact) ([]core.FactInput, error) {
	text, err := d.ask(ctx, fmt.Sprintf(extractionPrompt, formatExistingFacts(existing), transcript), extractionMaxTokens)
	if err != nil {
		return nil, err
	}

	items := parseJSONList(text)
	if items == nil {
		log.FromCtx(ctx).Debug().Str("session_id", sessionID).Msg("fact extraction returned no usable list")
		return nil, nil
	}
	return parseFacts(items, sessionID), nil
}

func (d *Distiller) summarize(ctx context.Context, transcript string) (string, error) {
	text, err := d.ask(ctx, fmt.Sprintf(summaryPrompt, transcript), summaryMaxTokens)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (d *Distiller) writeEntry(ctx context.Context, sessionID, transcript string) (string, error) {
	text, err := d.ask(ctx, fmt.Sprintf(kbEntryPrompt, transcript), kbEntryMaxTokens)
	if err != nil {
		return "", fmt.Errorf("generate entry: %w", err)
	}
	body := strings.TrimSpace(text)
	if body == "" {
		return "", errors.New("generate entry: empty response")
	}

	now := d.now().UTC()
	short := sessionID
	if len(short) > 8 {
		short = short[:8]
	}

	doc := core.Document{
		Name:     fmt.Sprintf("session-%s-%s.md", now.Format("2006-01-02"), short),
		Content:  fmt.Sprintf("# Conversation %s\n\n_Recorded %s_\n\n%s\n", short, now.Format(time.RFC3339), body),
		FolderID: d.cfg.KBFolderID,
		MimeType: kbMimeType,
	}

	id, err := d.docs.Write(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	if err := d.docs.Reindex(ctx); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("session_id", sessionID).Msg("knowledge-base reindex failed")
	}
	return id, nil
}

func (d *Distiller) ask(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := d.model.Invoke(ctx, core.ModelRequest{
		Tier:      core.TierFast,
		Messages:  []core.Message{{Role: core.RoleUser, Content: core.PlainText(prompt)}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", err
	}

	var parts []string
	for _, b := range resp.Content {
		if b.Type == core.BlockText {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, ""), nil
}
