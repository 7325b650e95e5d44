// Package bot runs the Telegram admin bot that reports dashboard state
package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pocketbase/pocketbase/tools/routine"
	"go.uber.org/zap"

	"epol-dashboard/internal/models"
	"epol-dashboard/internal/services"
)

const maxListed = 10

// StatsSource exposes the latest dashboard snapshot
type StatsSource interface {
	Snapshot() *models.DashboardStats
}

// Deps are the read models the bot answers from
type Deps struct {
	Stats     StatsSource
	Inventory services.InventorySource
	Incidents services.IncidentSource
	Refresh   func(ctx context.Context)
	Now       func() time.Time
}

type Bot struct {
	api    *tgbotapi.BotAPI
	chatID int64 // admin chat; 0 leaves data commands open
	deps   Deps
	log    *zap.SugaredLogger
}

// New authorizes against Telegram
func New(token, authorizedChatID string, deps Deps, log *zap.SugaredLogger) (*Bot, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize telegram bot: %w", err)
	}
	api.Debug = false
	log.Infow("telegram bot authorized", "account", api.Self.UserName)

	b := &Bot{api: api, deps: deps, log: log.With("component", "bot")}
	if authorizedChatID != "" {
		id, err := strconv.ParseInt(authorizedChatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid AUTHORIZED_CHAT_ID %q: %w", authorizedChatID, err)
		}
		b.chatID = id
	}
	if b.deps.Now == nil {
		b.deps.Now = time.Now
	}
	return b, nil
}

// Start consumes updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	go func() {
		for update := range updates {
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
			msg.ParseMode = "Markdown"
			msg.Text = b.reply(ctx, update.Message.Chat.ID, update.Message.Command())

			if _, err := b.api.Send(msg); err != nil {
				b.log.Warnw("bot send failed", "chat", update.Message.Chat.ID, "error", err)
			}
		}
	}()
}

func (b *Bot) authorized(chatID int64) bool {
	return b.chatID == 0 || b.chatID == chatID
}

func (b *Bot) reply(ctx context.Context, chatID int64, command string) string {
	switch command {
	case "start":
		return "📊 *EPOL Dashboard*\n\n" +
			"*Commands:*\n" +
			"/stats - dashboard summary\n" +
			"/lowstock - items to restock\n" +
			"/incidents - open incident reports\n" +
			"/refresh - reload from the backend\n" +
			"/getid - show this chat's ID"

	case "getid":
		return fmt.Sprintf("Chat ID: `%d`", chatID)
	}

	if !b.authorized(chatID) {
		return "⛔ This chat is not authorized"
	}

	switch command {
	case "stats":
		return RenderStats(b.deps.Stats.Snapshot())

	case "lowstock":
		return RenderLowStock(services.StockAlerts(b.deps.Inventory.Items()))

	case "incidents":
		return RenderIncidents(b.deps.Incidents.Items())

	case "refresh":
		if b.deps.Refresh == nil {
			return "Refresh is not available"
		}
		routine.FireAndForget(func() { b.deps.Refresh(ctx) })
		return "🔄 Refresh started"

	default:
		return "Unknown command, use /start"
	}
}

// RenderStats formats a snapshot for Telegram
func RenderStats(s *models.DashboardStats) string {
	if s == nil {
		return "⏳ Statistics are not ready yet"
	}

	var sb strings.Builder
	sb.WriteString("📊 *Dashboard*\n\n")
	fmt.Fprintf(&sb, "👥 Employees: `%d` (active users `%d`/`%d`)\n",
		s.Employees.Employees, s.Employees.ActiveUsers, s.Employees.TotalUsers)

	fmt.Fprintf(&sb, "🕐 Attendance today: `%d`\n", s.Attendance.Today)
	for _, status := range []models.AttendanceStatus{
		models.AttendancePresent,
		models.AttendanceLate,
		models.AttendanceUndertime,
		models.AttendanceOnDuty,
		models.AttendanceStillWorking,
		models.AttendanceAbsent,
	} {
		if n := s.Attendance.ByStatus[status]; n > 0 {
			fmt.Fprintf(&sb, "   %s: `%d`\n", status, n)
		}
	}

	fmt.Fprintf(&sb, "📦 Inventory: `%d` items, `%d` low, `%d` out\n",
		s.Inventory.Total, s.Inventory.LowStock, s.Inventory.OutOfStock)
	fmt.Fprintf(&sb, "🚨 Incidents: `%d` pending, `%d` ongoing, `%d` resolved, `%d` this week\n",
		s.Incidents.Pending, s.Incidents.Ongoing, s.Incidents.Resolved, s.Incidents.ThisWeek)
	fmt.Fprintf(&sb, "📝 Pending requests: `%d`\n", s.PendingRequests)
	fmt.Fprintf(&sb, "\n_Updated %s_", s.ComputedAt.Format("02/01 15:04"))
	return sb.String()
}

// RenderLowStock lists alerts as produced by services.StockAlerts
func RenderLowStock(alerts []models.InventoryItem) string {
	if len(alerts) == 0 {
		return "✅ Everything is in stock"
	}

	text := "📦 *Restock needed*\n\n"
	for i, it := range alerts {
		if i == maxListed {
			text += fmt.Sprintf("…and %d more\n", len(alerts)-maxListed)
			break
		}
		icon := "🟠"
		if services.ClassifyStock(it) == models.StockOut {
			icon = "🔴"
		}
		text += fmt.Sprintf("%s %s: `%d`/`%d`\n", icon, it.Name, it.Quantity, it.Threshold)
	}
	return text
}

// RenderIncidents lists unresolved reports, newest first
func RenderIncidents(reports []models.IncidentReport) string {
	var open []models.IncidentReport
	for _, r := range reports {
		if r.Status != models.IncidentResolved {
			open = append(open, r)
		}
	}
	if len(open) == 0 {
		return "✅ No open incidents"
	}
	sort.Slice(open, func(i, j int) bool { return open[i].Date.After(open[j].Date.Time) })

	text := "🚨 *Open incidents*\n\n"
	for i, r := range open {
		if i == maxListed {
			text += fmt.Sprintf("…and %d more\n", len(open)-maxListed)
			break
		}
		text += fmt.Sprintf("• %s (%s) %s, %s\n", r.Title, r.Status, r.Location, r.Date.Format("02/01 15:04"))
	}
	return text
}

// SendNotification sends message to the admin chat
func (b *Bot) SendNotification(message string) {
	if b == nil || b.chatID == 0 {
		return
	}
	b.SendPersonalNotification(b.chatID, message)
}

// SendPersonalNotification sends to a specific chat
func (b *Bot) SendPersonalNotification(chatID int64, message string) {
	if b == nil || b.api == nil {
		return
	}
	msg := tgbotapi.NewMessage(chatID, message)
	msg.ParseMode = "Markdown"
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warnw("failed to send notification", "chat", chatID, "error", err)
	}
}
