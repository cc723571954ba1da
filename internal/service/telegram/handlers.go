package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ilyadubrovsky/redis-admin/internal/config/answers"
	"github.com/ilyadubrovsky/redis-admin/internal/domain"
	ierrors "github.com/ilyadubrovsky/redis-admin/internal/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"
)

// telegram refuses messages longer than this many characters.
const maxMessageLength = 4096

func (s *svc) handleStartCommand(c tele.Context) error {
	return s.SendMessageWithOpts(c.Sender().ID, answers.Start)
}

func (s *svc) handleHelpCommand(c tele.Context) error {
	return s.SendMessageWithOpts(c.Sender().ID, answers.Help)
}

func (s *svc) handleInfoCommand(c tele.Context) error {
	res := s.redisAdminSvc.ServerInfoResult(context.Background())
	switch res.Status() {
	case domain.StatusFailed:
		return s.SendMessageWithOpts(c.Sender().ID, failureAnswer(res.Err()))
	case domain.StatusNotFound:
		return s.SendMessageWithOpts(c.Sender().ID, answers.NothingFound)
	}

	entries, _ := res.Get()
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.Key+":"+e.Value)
	}

	return s.SendMessageWithOpts(c.Sender().ID, truncate(strings.Join(lines, "\n"), maxMessageLength))
}

func (s *svc) handleMemoryCommand(c tele.Context) error {
	snapshot, err := s.redisAdminSvc.MemoryUsage(context.Background())
	if err != nil {
		return s.SendMessageWithOpts(c.Sender().ID, failureAnswer(err))
	}

	return s.SendMessageWithOpts(c.Sender().ID, fmt.Sprintf(answers.MemoryUsage, snapshot.Value))
}

func (s *svc) handleDBSizeCommand(c tele.Context) error {
	snapshot, err := s.redisAdminSvc.KeyCount(context.Background())
	if err != nil {
		return s.SendMessageWithOpts(c.Sender().ID, failureAnswer(err))
	}

	return s.SendMessageWithOpts(c.Sender().ID, fmt.Sprintf(answers.DBSize, snapshot.Value))
}

func (s *svc) handleKeysCommand(c tele.Context) error {
	pattern := strings.TrimSpace(c.Message().Payload)
	if pattern == "" {
		pattern = "*"
	}

	res := s.redisAdminSvc.FindKeysResult(context.Background(), pattern)
	switch res.Status() {
	case domain.StatusFailed:
		return s.SendMessageWithOpts(c.Sender().ID, failureAnswer(res.Err()))
	case domain.StatusNotFound:
		return s.SendMessageWithOpts(c.Sender().ID, answers.NothingFound)
	}

	keys, _ := res.Get()
	return s.SendMessageWithOpts(c.Sender().ID, truncate(strings.Join(keys, "\n"), maxMessageLength))
}

func (s *svc) handleGetCommand(c tele.Context) error {
	args := strings.Fields(c.Message().Payload)
	if len(args) != 1 {
		return s.SendMessageWithOpts(c.Sender().ID, fmt.Sprintf(answers.ArgsMissing, "/get key"))
	}
	key := args[0]

	res := s.redisAdminSvc.ValueResult(context.Background(), key)
	switch res.Status() {
	case domain.StatusFailed:
		return s.SendMessageWithOpts(c.Sender().ID, failureAnswer(res.Err()))
	case domain.StatusNotFound:
		return s.SendMessageWithOpts(c.Sender().ID, fmt.Sprintf(answers.KeyNotFound, key))
	}

	value, _ := res.Get()
	return s.SendMessageWithOpts(c.Sender().ID, truncate(fmt.Sprintf(answers.KeyValue, key, value), maxMessageLength))
}

func (s *svc) handleSetCommand(c tele.Context) error {
	key, value, ok := splitKeyValue(c.Message().Payload)
	if !ok {
		return s.SendMessageWithOpts(c.Sender().ID, fmt.Sprintf(answers.ArgsMissing, "/set key value"))
	}

	stored, err := s.redisAdminSvc.SetValue(context.Background(), key, value)
	if err != nil {
		return s.SendMessageWithOpts(c.Sender().ID, failureAnswer(err))
	}
	if !stored {
		return s.SendMessageWithOpts(c.Sender().ID, fmt.Sprintf(answers.SetNotApplied, key))
	}

	return s.SendMessageWithOpts(c.Sender().ID, fmt.Sprintf(answers.SetOK, key))
}

func (s *svc) handleDelCommand(c tele.Context) error {
	keys := strings.Fields(c.Message().Payload)
	if len(keys) == 0 {
		return s.SendMessageWithOpts(c.Sender().ID, fmt.Sprintf(answers.ArgsMissing, "/del key..."))
	}

	id := strconv.FormatUint(s.pendingID.Add(1), 36)
	text := truncate(fmt.Sprintf(answers.DeleteConfirm, len(keys), strings.Join(keys, "\n")), maxMessageLength)

	msg, err := s.sendMessage(c.Sender().ID, text, deleteMarkup(id))
	if err != nil {
		return err
	}

	pending := pendingDelete{keys: keys, chatID: c.Sender().ID}
	if msg != nil {
		pending.messageID = msg.ID
	}
	s.pendingDeletes.Set(id, pending, s.cfg.DeleteConfirmTTL)

	return nil
}

func (s *svc) handleDeleteConfirmCallback(c tele.Context) error {
	if err := c.Respond(); err != nil {
		log.Warn().Fields(extractTelebotFields(c)).Msgf("c.Respond: %v", err)
	}

	pending, ok := s.takePendingDelete(c.Callback().Data)
	if !ok {
		return s.EditMessageWithOpts(c.Sender().ID, c.Message().ID, answers.DeleteExpired)
	}

	deleted, err := s.redisAdminSvc.DeleteKeys(context.Background(), pending.keys...)
	if err != nil {
		return s.EditMessageWithOpts(c.Sender().ID, c.Message().ID, failureAnswer(err))
	}

	return s.EditMessageWithOpts(c.Sender().ID, c.Message().ID, fmt.Sprintf(answers.DeleteConfirmed, deleted))
}

func (s *svc) handleDeleteCancelCallback(c tele.Context) error {
	if err := c.Respond(); err != nil {
		log.Warn().Fields(extractTelebotFields(c)).Msgf("c.Respond: %v", err)
	}

	s.takePendingDelete(c.Callback().Data)

	return s.EditMessageWithOpts(c.Sender().ID, c.Message().ID, answers.DeleteCanceled)
}

func (s *svc) handleExistsCommand(c tele.Context) error {
	keys := strings.Fields(c.Message().Payload)
	if len(keys) == 0 {
		return s.SendMessageWithOpts(c.Sender().ID, fmt.Sprintf(answers.ArgsMissing, "/exists key..."))
	}

	count, err := s.redisAdminSvc.ExistsCount(context.Background(), keys...)
	if err != nil {
		return s.SendMessageWithOpts(c.Sender().ID, failureAnswer(err))
	}

	return s.SendMessageWithOpts(c.Sender().ID, fmt.Sprintf(answers.ExistsCount, count, len(keys)))
}

func (s *svc) handlePTTLCommand(c tele.Context) error {
	args := strings.Fields(c.Message().Payload)
	if len(args) != 1 {
		return s.SendMessageWithOpts(c.Sender().ID, fmt.Sprintf(answers.ArgsMissing, "/pttl key"))
	}
	key := args[0]

	ttl, err := s.redisAdminSvc.RemainingTTL(context.Background(), key)
	if err != nil {
		return s.SendMessageWithOpts(c.Sender().ID, failureAnswer(err))
	}

	switch ttl {
	case domain.TTLNoExpiry:
		return s.SendMessageWithOpts(c.Sender().ID, fmt.Sprintf(answers.TTLNoExpiry, key))
	case domain.TTLKeyAbsent:
		return s.SendMessageWithOpts(c.Sender().ID, fmt.Sprintf(answers.TTLKeyAbsent, key))
	default:
		return s.SendMessageWithOpts(c.Sender().ID, fmt.Sprintf(answers.TTLRemaining, key, ttl))
	}
}

func (s *svc) handlePExpireCommand(c tele.Context) error {
	args := strings.Fields(c.Message().Payload)
	if len(args) != 2 {
		return s.SendMessageWithOpts(c.Sender().ID, fmt.Sprintf(answers.ArgsMissing, "/pexpire key ms"))
	}
	key := args[0]

	ms, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return s.SendMessageWithOpts(c.Sender().ID, fmt.Sprintf(answers.InvalidNumber, args[1]))
	}

	applied, err := s.redisAdminSvc.SetExpiry(context.Background(), key, ms)
	if errors.Is(err, ierrors.ErrBadRequest) {
		return s.SendMessageWithOpts(c.Sender().ID, fmt.Sprintf(answers.ExpiryTooLarge, ms))
	}
	if err != nil {
		return s.SendMessageWithOpts(c.Sender().ID, failureAnswer(err))
	}
	if applied == 0 {
		return s.SendMessageWithOpts(c.Sender().ID, fmt.Sprintf(answers.ExpiryNotSet, key))
	}

	return s.SendMessageWithOpts(c.Sender().ID, fmt.Sprintf(answers.ExpiryApplied, key, ms))
}

func (s *svc) handleText(c tele.Context) error {
	return s.SendMessageWithOpts(c.Sender().ID, answers.Default)
}

func deleteMarkup(id string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(
		markup.Data(answers.ButtonConfirm, deleteConfirmUnique, id),
		markup.Data(answers.ButtonCancel, deleteCancelUnique, id),
	))

	return markup
}

// splitKeyValue splits "key some value" into the key and the rest, the value keeps its inner spaces.
func splitKeyValue(payload string) (string, string, bool) {
	payload = strings.TrimSpace(payload)
	key, value, ok := strings.Cut(payload, " ")
	if !ok || key == "" {
		return "", "", false
	}

	return key, strings.TrimSpace(value), true
}

func failureAnswer(err error) string {
	var redisErr redis.Error
	switch ierrors.KindOf(err) {
	case ierrors.KindConnection:
		return answers.RedisDown
	case ierrors.KindDecode:
		return answers.RedisBadReply
	case ierrors.KindCommand:
		if errors.As(err, &redisErr) {
			return fmt.Sprintf(answers.RedisRejected, redisErr.Error())
		}
		return fmt.Sprintf(answers.RedisRejected, err.Error())
	}

	log.Error().Msgf("telegram: unexpected failure: %v", err)
	return answers.BotError
}

func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}

	keep := limit - utf8.RuneCountInString(answers.Truncated)
	runes := []rune(text)

	return string(runes[:keep]) + answers.Truncated
}
