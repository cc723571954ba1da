package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ilyadubrovsky/redis-admin/internal/config"
	"github.com/ilyadubrovsky/redis-admin/internal/config/answers"
	"github.com/ilyadubrovsky/redis-admin/internal/service"
	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/middleware"
)

const (
	deleteConfirmUnique = "del_confirm"
	deleteCancelUnique  = "del_cancel"
)

var _ service.Telegram = (*svc)(nil)

// messenger is the part of *tele.Bot the handlers talk through.
type messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
}

type pendingDelete struct {
	keys      []string
	chatID    int64
	messageID int
}

type svc struct {
	redisAdminSvc  service.RedisAdmin
	bot            *tele.Bot
	messenger      messenger
	cfg            config.Telegram
	pendingDeletes *ttlcache.Cache[string, pendingDelete]
	// pendingMu makes taking a pending deletion out of the cache atomic.
	pendingMu sync.Mutex
	pendingID atomic.Uint64
}

func NewService(
	redisAdminSvc service.RedisAdmin,
	cfg config.Telegram,
) (*svc, error) {
	bot, err := createBot(cfg)
	if err != nil {
		return nil, fmt.Errorf("createBot: %w", err)
	}

	s := newService(redisAdminSvc, bot, cfg)
	s.bot = bot
	s.setBotSettings()

	return s, nil
}

func newService(redisAdminSvc service.RedisAdmin, messenger messenger, cfg config.Telegram) *svc {
	s := &svc{
		redisAdminSvc: redisAdminSvc,
		messenger:     messenger,
		cfg:           cfg,
		pendingDeletes: ttlcache.New[string, pendingDelete](
			ttlcache.WithTTL[string, pendingDelete](cfg.DeleteConfirmTTL),
			ttlcache.WithDisableTouchOnHit[string, pendingDelete](),
		),
	}

	s.pendingDeletes.OnEviction(s.onPendingDeleteEviction)

	return s
}

func createBot(cfg config.Telegram) (*tele.Bot, error) {
	pref := tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: cfg.LongPollerDelay},
		OnError: func(err error, c tele.Context) {
			log.Error().Fields(extractTelebotFields(c)).
				Msgf("bot.OnError: %v", err.Error())
		},
	}

	abot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("tele.NewBot: %w", err)
	}

	return abot, nil
}

func (s *svc) setBotSettings() {
	adminGroup := s.bot.Group()
	adminGroup.Use(
		middleware.Whitelist(
			s.cfg.AdminID,
		),
	)

	adminGroup.Handle("/start", s.handleStartCommand)

	adminGroup.Handle("/help", s.handleHelpCommand)

	adminGroup.Handle("/info", s.handleInfoCommand)

	adminGroup.Handle("/memory", s.handleMemoryCommand)

	adminGroup.Handle("/dbsize", s.handleDBSizeCommand)

	adminGroup.Handle("/keys", s.handleKeysCommand)

	adminGroup.Handle("/get", s.handleGetCommand)

	adminGroup.Handle("/set", s.handleSetCommand)

	adminGroup.Handle("/del", s.handleDelCommand)

	adminGroup.Handle("/exists", s.handleExistsCommand)

	adminGroup.Handle("/pttl", s.handlePTTLCommand)

	adminGroup.Handle("/pexpire", s.handlePExpireCommand)

	adminGroup.Handle(&tele.Btn{Unique: deleteConfirmUnique}, s.handleDeleteConfirmCallback)

	adminGroup.Handle(&tele.Btn{Unique: deleteCancelUnique}, s.handleDeleteCancelCallback)

	adminGroup.Handle(tele.OnText, s.handleText)
}

func (s *svc) SendMessageWithOpts(id int64, message string, opts ...interface{}) error {
	_, err := s.sendMessage(id, message, opts...)
	return err
}

func (s *svc) sendMessage(id int64, message string, opts ...interface{}) (*tele.Message, error) {
	chat := tele.ChatID(id)

	msg, err := s.messenger.Send(chat, message, opts...)

	return msg, s.middlewareError(id, err)
}

func (s *svc) EditMessageWithOpts(id int64, messageID int, msg string, opts ...interface{}) error {
	_, err := s.messenger.Edit(
		&editableMessage{
			messageID: messageID,
			chatID:    id,
		},
		msg,
		opts...,
	)

	if errors.Is(err, tele.ErrTrueResult) {
		err = nil
	}

	return s.middlewareError(id, err)
}

func (s *svc) middlewareError(targetUserID int64, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, tele.ErrBlockedByUser) ||
		errors.Is(err, tele.ErrNotStartedByUser) {
		log.Warn().Int64("user", targetUserID).Msgf("admin chat is unreachable: %v", err)
	}

	return err
}

// onPendingDeleteEviction marks the confirmation message as stale once nobody answered it.
func (s *svc) onPendingDeleteEviction(
	_ context.Context,
	reason ttlcache.EvictionReason,
	item *ttlcache.Item[string, pendingDelete],
) {
	if reason != ttlcache.EvictionReasonExpired {
		return
	}

	pending := item.Value()
	if err := s.EditMessageWithOpts(pending.chatID, pending.messageID, answers.DeleteExpired); err != nil {
		log.Error().Int64("user", pending.chatID).
			Msgf("EditMessageWithOpts(deleteExpired): %v", err)
	}
}

// takePendingDelete removes the pending deletion id and returns it, so that a
// double click can not delete twice.
func (s *svc) takePendingDelete(id string) (pendingDelete, bool) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	item := s.pendingDeletes.Get(id)
	if item == nil || item.IsExpired() {
		return pendingDelete{}, false
	}
	s.pendingDeletes.Delete(id)

	return item.Value(), true
}

func extractTelebotFields(c tele.Context) map[string]interface{} {
	fields := make(map[string]interface{})
	if c == nil {
		return fields
	}
	if sender := c.Sender(); sender != nil {
		fields["user"] = sender.ID
	}
	if msg := c.Message(); msg != nil {
		fields["text"] = msg.Text
	}
	if cb := c.Callback(); cb != nil {
		fields["callback"] = cb.Unique
	}

	return fields
}

// Start blocks until Stop is called.
func (s *svc) Start() {
	go s.pendingDeletes.Start()
	s.bot.Start()
}

func (s *svc) Stop() {
	s.bot.Stop()
	s.pendingDeletes.Stop()
}
