package bot

import "epol-dashboard/internal/services"

// Notifier adapts an optional *Bot to services.AlertNotifier. With no bot
// configured notifications are dropped.
type Notifier struct {
	bot *Bot
}

// NewNotifier creates a new bot notifier; b may be nil
func NewNotifier(b *Bot) *Notifier {
	return &Notifier{bot: b}
}

// SendNotification sends a notification to the admin chat
func (n *Notifier) SendNotification(message string) {
	n.bot.SendNotification(message)
}

// SendPersonalNotification sends a notification to a specific chat
func (n *Notifier) SendPersonalNotification(chatID int64, message string) {
	n.bot.SendPersonalNotification(chatID, message)
}

// Ensure Notifier implements the AlertNotifier interface
var _ services.AlertNotifier = (*Notifier)(nil)
