package discordbot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/mlbb-squad-tracker/internal/interfaces/chat"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/platform/logging"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/usecase"
)

const (
	defaultWorkerPoolSize = 16
	defaultSweepInterval  = 5 * time.Second
	defaultHandleTimeout  = 30 * time.Second
	releaseTimeout        = 5 * time.Second
)

type Config struct {
	Token          string
	Presence       string
	WorkerPoolSize int
	SweepInterval  time.Duration
	HandleTimeout  time.Duration
}

// Dispatcher turns one chat message into responses.
type Dispatcher interface {
	Handle(ctx context.Context, msg chat.Message) []chat.Response
	TimeoutNotice(userID string) chat.Response
}

// SessionExpirer drops wizard sessions whose deadline has passed.
type SessionExpirer interface {
	ExpireSessions(now time.Time) []usecase.ExpiredWizard
}

// Bot connects the dispatcher to a Discord gateway session.
type Bot struct {
	cfg        Config
	session    *discordgo.Session
	dispatcher Dispatcher
	wizard     SessionExpirer
	pool       *ants.Pool
	logger     *logging.Logger
	now        func() time.Time
	send       func(channelID string, msg *discordgo.MessageSend) error

	mu      sync.RWMutex
	baseCtx context.Context

	lanesMu sync.Mutex
	lanes   map[string]*lane
}

// lane holds the pending messages of one channel. At most one pool task
// drains a lane, so a channel's messages are handled in arrival order.
type lane struct {
	queue []chat.Message
}

// NewSession creates a bot session with the intents the commands need.
func NewSession(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("discord bot token is required")
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentGuildMembers |
		discordgo.IntentMessageContent
	session.StateEnabled = true
	return session, nil
}

func New(cfg Config, session *discordgo.Session, dispatcher Dispatcher, wizard SessionExpirer, logger *logging.Logger) (*Bot, error) {
	if session == nil {
		return nil, fmt.Errorf("discord session is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}
	if cfg.HandleTimeout <= 0 {
		cfg.HandleTimeout = defaultHandleTimeout
	}

	logger = logger.Named("discord")
	pool, err := ants.NewPool(cfg.WorkerPoolSize, ants.WithPanicHandler(func(p any) {
		logger.Error("message handler panicked", "panic", fmt.Sprint(p))
	}))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	b := &Bot{
		cfg:        cfg,
		session:    session,
		dispatcher: dispatcher,
		wizard:     wizard,
		pool:       pool,
		logger:     logger,
		now:        time.Now,
		baseCtx:    context.Background(),
	}
	b.send = func(channelID string, msg *discordgo.MessageSend) error {
		_, err := session.ChannelMessageSendComplex(channelID, msg)
		return err
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessageCreate)
	return b, nil
}

// Run opens the gateway, sweeps expired wizard sessions until ctx is done,
// then drains in-flight handlers and closes the session.
func (b *Bot) Run(ctx context.Context) error {
	b.mu.Lock()
	b.baseCtx = ctx
	b.mu.Unlock()

	if err := b.session.Open(); err != nil {
		b.pool.Release()
		return fmt.Errorf("open discord session: %w", err)
	}
	b.logger.InfoContext(ctx, "discord session opened", "workers", b.cfg.WorkerPoolSize)

	ticker := time.NewTicker(b.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return b.shutdown()
		case <-ticker.C:
			b.sweep(ctx)
		}
	}
}

func (b *Bot) shutdown() error {
	if err := b.pool.ReleaseTimeout(releaseTimeout); err != nil {
		b.logger.Warn("worker pool release timed out", "error", err)
	}
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("close discord session: %w", err)
	}
	b.logger.Info("discord session closed")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	if r.User != nil {
		b.logger.Info("discord bot ready", "user", r.User.Username, "user_id", r.User.ID, "guilds", len(r.Guilds))
	}
	if b.cfg.Presence == "" {
		return
	}
	if err := s.UpdateGameStatus(0, b.cfg.Presence); err != nil {
		b.logger.Warn("update presence failed", "error", err)
	}
}

func (b *Bot) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Message == nil || m.Author == nil || m.Author.Bot {
		return
	}

	b.enqueue(toMessage(m.Message))
}

func laneKey(msg chat.Message) string {
	return msg.GuildID + "/" + msg.ChannelID
}

func (b *Bot) enqueue(msg chat.Message) {
	key := laneKey(msg)

	b.lanesMu.Lock()
	if b.lanes == nil {
		b.lanes = make(map[string]*lane)
	}
	if l, ok := b.lanes[key]; ok {
		l.queue = append(l.queue, msg)
		b.lanesMu.Unlock()
		return
	}
	b.lanes[key] = &lane{queue: []chat.Message{msg}}
	b.lanesMu.Unlock()

	if err := b.pool.Submit(func() { b.drain(key) }); err != nil {
		b.lanesMu.Lock()
		dropped := 0
		if l := b.lanes[key]; l != nil {
			dropped = len(l.queue)
		}
		delete(b.lanes, key)
		b.lanesMu.Unlock()
		b.logger.Error("submit message handler", "channel_id", msg.ChannelID, "user_id", msg.AuthorID, "dropped", dropped, "error", err)
	}
}

// drain handles queued messages for key until the lane is empty.
func (b *Bot) drain(key string) {
	for {
		b.lanesMu.Lock()
		l := b.lanes[key]
		if l == nil || len(l.queue) == 0 {
			delete(b.lanes, key)
			b.lanesMu.Unlock()
			return
		}
		msg := l.queue[0]
		l.queue[0] = chat.Message{}
		l.queue = l.queue[1:]
		b.lanesMu.Unlock()

		b.handleSafely(msg)
	}
}

func (b *Bot) handleSafely(msg chat.Message) {
	defer func() {
		if p := recover(); p != nil {
			b.logger.Error("message handler panicked", "channel_id", msg.ChannelID, "user_id", msg.AuthorID, "panic", fmt.Sprint(p))
		}
	}()
	b.handle(msg)
}

func (b *Bot) handle(msg chat.Message) {
	b.mu.RLock()
	base := b.baseCtx
	b.mu.RUnlock()

	ctx, cancel := context.WithTimeout(base, b.cfg.HandleTimeout)
	defer cancel()

	for _, resp := range b.dispatcher.Handle(ctx, msg) {
		b.reply(ctx, msg.ChannelID, resp)
	}
}

// sweep notifies users whose wizard step timed out without a reply.
func (b *Bot) sweep(ctx context.Context) {
	if b.wizard == nil {
		return
	}
	for _, expired := range b.wizard.ExpireSessions(b.now()) {
		b.logger.InfoContext(ctx, "wizard session expired", "user_id", expired.UserID, "state", expired.State)
		b.reply(ctx, expired.ChannelID, b.dispatcher.TimeoutNotice(expired.UserID))
	}
}

func (b *Bot) reply(ctx context.Context, channelID string, resp chat.Response) {
	if resp.Content == "" && resp.Embed == nil {
		return
	}
	if err := b.send(channelID, toMessageSend(resp)); err != nil {
		b.logger.ErrorContext(ctx, "send message failed", "channel_id", channelID, "error", err)
	}
}
