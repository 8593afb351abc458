package telegram

import (
	"fmt"

	"coworking_compliance/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// AdminAlerter forwards a one-line summary of each compliance pass to the
// configured admin chat. It implements app.Alerter.
type AdminAlerter struct {
	bot         *telebot.Bot
	adminChatID int64
	logger      *logrus.Entry
}

func NewAdminAlerter(token string, adminChatID int64, logger *logrus.Entry) (*AdminAlerter, error) {
	bot, err := telebot.NewBot(telebot.Settings{Token: token})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &AdminAlerter{bot: bot, adminChatID: adminChatID, logger: logger}, nil
}

// PassCompleted sends the pass summary. Delivery failures are logged only;
// the pass result is already persisted and reported elsewhere.
func (a *AdminAlerter) PassCompleted(report *app.Report) {
	text := fmt.Sprintf(
		"Compliance pass %s: %d overdue, %d fines, %d spawned, %d locked, %d unlocked, %d notified, %d errors",
		report.FinishedAt.Format("2006-01-02 15:04"),
		report.Tasks.TasksOverdued,
		report.Tasks.FinesApplied,
		report.Tasks.TasksSpawned,
		report.Accounts.AccountsLocked,
		report.Accounts.AccountsUnlocked,
		report.Accounts.NotificationsSent,
		report.Tasks.Errors+report.Accounts.Errors,
	)
	if _, err := a.bot.Send(&telebot.User{ID: a.adminChatID}, text); err != nil {
		a.logger.WithError(err).Warn("Failed to deliver admin alert")
	}
}
