package notifier

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Notifier is a best-effort "send text to this user" sink. Sends that fail
// are logged and dropped; nothing in the scheduling core waits on them.
type Notifier interface {
	NotifyCompletion(userID, account, platform, postURL, videoID string)
	NotifyAsyncCompletion(userID, account string, platforms []string, postURLs map[string]string)
	NotifyFailure(userID, account, videoID string)
}

type telegramNotifier struct {
	bot *tele.Bot
}

// NewTelegram builds a Telegram-backed notifier. The bot is used purely as
// an outbound message client; no update polling is started.
func NewTelegram(token string) (Notifier, error) {
	bot, err := tele.NewBot(tele.Settings{Token: token})
	if err != nil {
		return nil, err
	}
	return &telegramNotifier{bot: bot}, nil
}

func (n *telegramNotifier) send(userID, text string) {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		slog.Error("notification skipped: user id is not a chat id", "user_id", userID)
		return
	}
	if _, err := n.bot.Send(tele.ChatID(chatID), text); err != nil {
		slog.Error("sending notification failed", "user_id", userID, "error", err)
	}
}

func (n *telegramNotifier) NotifyCompletion(userID, account, platform, postURL, videoID string) {
	message := fmt.Sprintf(
		"✅ Video Posted!\n\nAccount: %s\nPlatform: %s\nVideo ID: %s...\n\n🔗 %s",
		account, strings.ToUpper(platform), truncate(videoID, 20), postURL)
	n.send(userID, message)
}

func (n *telegramNotifier) NotifyAsyncCompletion(userID, account string, platforms []string, postURLs map[string]string) {
	upper := make([]string, 0, len(platforms))
	for _, p := range platforms {
		upper = append(upper, strings.ToUpper(p))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Async Upload Completed!\n\nAccount: %s\nPlatforms: %s\n", account, strings.Join(upper, ", "))

	if len(postURLs) > 0 {
		b.WriteString("\n🔗 Links:\n")
		keys := make([]string, 0, len(postURLs))
		for p := range postURLs {
			keys = append(keys, p)
		}
		sort.Strings(keys)
		for _, p := range keys {
			fmt.Fprintf(&b, "  • %s: %s\n", strings.ToUpper(p), postURLs[p])
		}
	}

	n.send(userID, b.String())
}

func (n *telegramNotifier) NotifyFailure(userID, account, videoID string) {
	message := fmt.Sprintf(
		"❌ Scheduled Upload Failed\n\nAccount: %s\nVideo ID: %s...\n\nPlease check your account settings and try again.",
		account, truncate(videoID, 20))
	n.send(userID, message)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// logNotifier stands in when no bot token is configured (local runs,
// tests). Notifications land in the log instead of a chat.
type logNotifier struct{}

func NewLog() Notifier {
	return logNotifier{}
}

func (logNotifier) NotifyCompletion(userID, account, platform, postURL, videoID string) {
	slog.Info("notify completion", "user_id", userID, "account", account, "platform", platform, "post_url", postURL)
}

func (logNotifier) NotifyAsyncCompletion(userID, account string, platforms []string, postURLs map[string]string) {
	slog.Info("notify async completion", "user_id", userID, "account", account, "platforms", strings.Join(platforms, ","))
}

func (logNotifier) NotifyFailure(userID, account, videoID string) {
	slog.Info("notify failure", "user_id", userID, "account", account, "video_id", videoID)
}
