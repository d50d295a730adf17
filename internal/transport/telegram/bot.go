package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/sazed/internal/config"
	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/internal/service/agent"
	"github.com/sandevgo/sazed/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

type Chatter interface {
	RunStream(ctx context.Context, sessionID, text string, emit func(agent.Event)) (agent.Result, error)
}

type Bot struct {
	bot      *tele.Bot
	agent    Chatter
	router   core.CmdRouter
	sessions *ChatSessions
	sender   *sender
	ownerID  int64
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	chatter Chatter,
	router core.CmdRouter,
	sessions *ChatSessions,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:      b,
		agent:    chatter,
		router:   router,
		sessions: sessions,
		sender:   newSender(b),
		ownerID:  cfg.OwnerID,
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Only the owner may talk to the bot
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender() == nil || c.Sender().ID != bot.ownerID {
				return nil
			}
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleMessage(c tele.Context) error {
	base := c.Get(baseContextKey).(context.Context)
	sessionID := b.sessions.Current(c.Chat().ID)
	unlock := b.sessions.Lock(sessionID)
	defer unlock()

	ctx := log.WithFields(base, "session_id", sessionID)
	logger := log.FromCtx(ctx)

	if reply, ok := b.router.Execute(ctx, sessionID, c.Text()); ok {
		return b.sender.sendMarkdown(ctx, c.Chat(), reply)
	}

	_ = c.Notify(tele.Typing)

	res, err := b.agent.RunStream(ctx, sessionID, c.Text(), func(e agent.Event) {
		if e.Name != agent.EventToolStart {
			return
		}
		if name, ok := e.Data["name"].(string); ok {
			if err := c.Send(fmt.Sprintf("🛠 %s", name), tele.Silent); err != nil {
				logger.Debug().Err(err).Msg("failed to send tool notice")
			}
		}
		_ = c.Notify(tele.Typing)
	})
	if err != nil {
		logger.Error().Err(err).Msg("agent run failed")
		return c.Send("Sorry, something went wrong. Please try again.")
	}

	text := res.Text
	if res.Truncated {
		text += "\n\n_(stopped early)_"
	}
	return b.sender.sendMarkdown(ctx, c.Chat(), text)
}
