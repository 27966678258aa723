package telegram

import (
	"context"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/xp-team/cryptopoker/server/engine"
	"github.com/xp-team/cryptopoker/server/game"
)

// MessageSender is the slice of the bot API the handler needs; tests fake it.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Handler turns chat commands into game service calls. It runs on the
// poller's single-flight tick only, so the active-match map needs no lock.
type Handler struct {
	bot   MessageSender
	games *game.Service

	active map[int64]string // chat -> match currently played in it
}

func NewHandler(bot MessageSender, games *game.Service) *Handler {
	return &Handler{bot: bot, games: games, active: make(map[int64]string)}
}

func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || !msg.IsCommand() || msg.From == nil {
		return
	}
	chatID := msg.Chat.ID
	playerID := msg.From.ID
	arg := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start", "help":
		h.reply(chatID, helpText)
	case "new":
		h.handleNew(ctx, chatID, playerID)
	case "games":
		h.handleGames(ctx, chatID)
	case "join":
		h.handleJoin(ctx, chatID, playerID, arg)
	case "fold", "check", "call", "bet", "raise":
		h.handleAction(ctx, chatID, playerID, msg.Command(), arg)
	case "leave":
		h.handleLeave(ctx, chatID, playerID)
	}
}

func (h *Handler) handleNew(ctx context.Context, chatID, playerID int64) {
	m, err := h.games.CreateMatch(ctx, playerID, chatID)
	if err != nil {
		h.replyErr(chatID, err)
		return
	}
	h.active[chatID] = m.ID
	h.reply(chatID, "Match "+m.ID+" opened. Waiting for an opponent (/games to advertise it).")
}

func (h *Handler) handleGames(ctx context.Context, chatID int64) {
	matches, err := h.games.ListOpenMatches(ctx)
	if err != nil {
		h.replyErr(chatID, err)
		return
	}
	h.reply(chatID, renderOpenMatches(matches))
}

func (h *Handler) handleJoin(ctx context.Context, chatID, playerID int64, arg string) {
	if arg == "" {
		h.reply(chatID, "Usage: /join <match id>")
		return
	}
	m, deal, err := h.games.ConnectMatch(ctx, arg, playerID, chatID)
	if err != nil {
		h.replyErr(chatID, err)
		return
	}
	h.active[chatID] = m.ID
	h.active[m.ChatA] = m.ID
	h.reply(chatID, "You're in!\n"+renderDeal(deal, 1))
	h.reply(m.ChatA, "An opponent joined. Your move.\n"+renderDeal(deal, 0))
}

func (h *Handler) handleAction(ctx context.Context, chatID, playerID int64, command, arg string) {
	matchID, ok := h.active[chatID]
	if !ok {
		h.reply(chatID, "No active match in this chat. /new or /join first.")
		return
	}
	kind, _ := engine.ParseAction(command)
	amount := 0
	if kind == engine.Bet || kind == engine.Raise {
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			h.reply(chatID, "Usage: /"+command+" <amount>")
			return
		}
		amount = n
	}

	deal, err := h.games.TakeAction(ctx, matchID, playerID, kind, amount)
	if err != nil {
		h.replyErr(chatID, err)
		return
	}
	m, err := h.games.FindMatch(ctx, matchID)
	if err != nil {
		h.replyErr(chatID, err)
		return
	}

	oppChat := m.ChatA
	if m.ChatFor(playerID) == m.ChatA && m.ChatB != nil {
		oppChat = *m.ChatB
	}
	if deal.Settled() {
		h.reply(chatID, renderOutcome(m, deal, playerID))
		h.reply(oppChat, renderOutcome(m, deal, m.Opponent(playerID)))
		return
	}
	h.reply(chatID, renderDeal(deal, m.SeatOf(playerID)))
	h.reply(oppChat, "Your move.\n"+renderDeal(deal, m.SeatOf(m.Opponent(playerID))))
}

func (h *Handler) handleLeave(ctx context.Context, chatID, playerID int64) {
	matchID, ok := h.active[chatID]
	if !ok {
		h.reply(chatID, "No active match in this chat.")
		return
	}
	if err := h.games.CloseMatch(ctx, matchID, playerID); err != nil {
		h.replyErr(chatID, err)
		return
	}
	delete(h.active, chatID)
	h.reply(chatID, "Match closed.")
}

func (h *Handler) reply(chatID int64, text string) {
	if _, err := h.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("telegram send to %d: %v", chatID, err)
	}
}

// replyErr keeps engine and store internals out of user-visible text.
func (h *Handler) replyErr(chatID int64, err error) {
	switch game.KindOf(err) {
	case game.NotFound, game.Forbidden, game.NotAcceptable:
		h.reply(chatID, err.Error())
	default:
		log.Printf("telegram handler: %v", err)
		h.reply(chatID, "Something went wrong, try again.")
	}
}
