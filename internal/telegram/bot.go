package telegram

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ssq-board/internal/api"
	"ssq-board/internal/cache"
	"ssq-board/internal/config"
	"ssq-board/internal/dashboard"
	"ssq-board/internal/logger"
	"ssq-board/internal/lottery"
)

// sender 发送消息的最小接口，*tgbotapi.BotAPI 满足该接口
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot Telegram机器人
type Bot struct {
	api           *tgbotapi.BotAPI
	sender        sender
	store         *cache.Manager
	updateChannel tgbotapi.UpdatesChannel
	stopChannel   chan struct{}
	now           func() time.Time
}

// NewBot 创建新的Telegram机器人
func NewBot(cfg *config.Telegram, store *cache.Manager) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot.Debug = false
	logger.Infof("Telegram bot authorized on account: %s", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(cfg.Timeout.Seconds())

	b := newBot(bot, store)
	b.api = bot
	b.updateChannel = bot.GetUpdatesChan(u)
	return b, nil
}

func newBot(s sender, store *cache.Manager) *Bot {
	return &Bot{
		sender:      s,
		store:       store,
		stopChannel: make(chan struct{}),
		now:         time.Now,
	}
}

// Start 启动机器人
func (b *Bot) Start() {
	logger.Info("Starting Telegram bot...")
	go b.handleUpdates()
	logger.Info("Telegram bot started successfully")
}

// Stop 停止机器人
func (b *Bot) Stop() {
	logger.Info("Stopping Telegram bot...")
	close(b.stopChannel)
	if b.api != nil {
		b.api.StopReceivingUpdates()
	}
	logger.Info("Telegram bot stopped")
}

// handleUpdates 处理更新，只响应私聊
func (b *Bot) handleUpdates() {
	for {
		select {
		case update, ok := <-b.updateChannel:
			if !ok {
				return
			}
			if update.Message != nil && update.Message.Chat.IsPrivate() {
				go b.handleMessage(update.Message)
			}
		case <-b.stopChannel:
			return
		}
	}
}

// handleMessage 处理消息
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	if message.Chat == nil || !message.Chat.IsPrivate() {
		return
	}

	if message.IsCommand() {
		b.handleCommand(message)
	} else {
		b.handleTextMessage(message)
	}
}

// handleCommand 处理命令
func (b *Bot) handleCommand(message *tgbotapi.Message) {
	command := message.Command()
	chatID := message.Chat.ID

	logger.Debugf("Received private command: %s from user: %d", command, chatID)

	switch command {
	case "start":
		b.sendMessage(chatID, welcomeText)
	case "help":
		b.sendMessage(chatID, helpText)
	case "latest":
		b.handleLatestCommand(chatID)
	case "predictions":
		b.handlePredictionsCommand(chatID, strings.TrimSpace(message.CommandArguments()))
	case "history":
		b.handleHistoryCommand(chatID)
	case "compare":
		b.handleCompareCommand(chatID)
	case "stats":
		b.handleStatsCommand(chatID)
	case "subscribe":
		b.handleSubscribeCommand(chatID)
	case "unsubscribe":
		b.handleUnsubscribeCommand(chatID)
	default:
		b.sendMessage(chatID, "未知命令，输入 /help 查看可用命令。")
	}
}

// handleTextMessage 处理关键词
func (b *Bot) handleTextMessage(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	switch strings.TrimSpace(message.Text) {
	case "最新", "开奖":
		b.handleLatestCommand(chatID)
	case "预测":
		b.handlePredictionsCommand(chatID, "")
	case "历史", "历史记录":
		b.handleHistoryCommand(chatID)
	case "对比":
		b.handleCompareCommand(chatID)
	case "统计", "准确率":
		b.handleStatsCommand(chatID)
	default:
		b.sendMessage(chatID, "请使用命令或关键词，输入 /help 查看帮助。")
	}
}

// snapshot 获取当前快照，未加载时回复提示
func (b *Bot) snapshot(chatID int64) *api.Snapshot {
	snap := b.store.Snapshot()
	if snap == nil {
		b.sendMessage(chatID, "❌ 数据尚未加载，请稍后再试。")
	}
	return snap
}

func (b *Bot) handleLatestCommand(chatID int64) {
	snap := b.snapshot(chatID)
	if snap == nil {
		return
	}
	b.sendMessage(chatID, b.formatLatestMessage(snap))
}

func (b *Bot) handlePredictionsCommand(chatID int64, modelID string) {
	snap := b.snapshot(chatID)
	if snap == nil {
		return
	}

	view := dashboard.ViewState{SelectedModel: modelID}
	if modelID != "" {
		if err := view.SelectModel(modelID, &snap.Predictions); err != nil {
			b.sendMessage(chatID, b.formatUnknownModelMessage(modelID, snap.Predictions.Models))
			return
		}
	}

	page, err := dashboard.Build(snap, view, b.now())
	if err != nil {
		logger.Errorf("Failed to build prediction page: %v", err)
		b.sendMessage(chatID, "❌ 获取预测数据失败，请稍后再试。")
		return
	}
	b.sendMessage(chatID, b.formatPredictionsMessage(page))
}

func (b *Bot) handleHistoryCommand(chatID int64) {
	snap := b.snapshot(chatID)
	if snap == nil {
		return
	}
	b.sendMessage(chatID, b.formatHistoryMessage(snap.History.Data, historyLimit))
}

func (b *Bot) handleCompareCommand(chatID int64) {
	snap := b.snapshot(chatID)
	if snap == nil {
		return
	}

	page, err := dashboard.Build(snap, dashboard.ViewState{}, b.now())
	if err != nil {
		logger.Errorf("Failed to build comparison page: %v", err)
		b.sendMessage(chatID, "❌ 获取对比数据失败，请稍后再试。")
		return
	}
	if len(page.Comparisons) == 0 {
		b.sendMessage(chatID, "暂无历史预测对比数据")
		return
	}
	b.sendMessage(chatID, b.formatComparisonMessage(page.Comparisons[0]))
}

func (b *Bot) handleStatsCommand(chatID int64) {
	snap := b.snapshot(chatID)
	if snap == nil {
		return
	}
	stats := lottery.CalculateModelStats(snap.Archive.PredictionsHistory)
	b.sendMessage(chatID, b.formatStatsMessage(stats))
}

func (b *Bot) handleSubscribeCommand(chatID int64) {
	added, err := b.store.Subscribe(chatID)
	switch {
	case err != nil:
		logger.Errorf("Failed to subscribe chat %d: %v", chatID, err)
		b.sendMessage(chatID, "❌ 订阅失败，请稍后再试。")
	case added:
		b.sendMessage(chatID, "🔔 已订阅开奖通知，预测期号开奖后将自动推送对比结果。")
	default:
		b.sendMessage(chatID, "🔔 你已经订阅过开奖通知。")
	}
}

func (b *Bot) handleUnsubscribeCommand(chatID int64) {
	if b.store.Unsubscribe(chatID) {
		b.sendMessage(chatID, "🔕 已取消订阅。")
		return
	}
	b.sendMessage(chatID, "你还没有订阅开奖通知。")
}

// sendMessage 发送消息（仅发送给私聊）
func (b *Bot) sendMessage(chatID int64, text string) {
	if chatID < 0 {
		logger.Debugf("Skipping message to group chat %d", chatID)
		return
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := b.sender.Send(msg); err != nil {
		logger.Errorf("Failed to send message to user %d: %v", chatID, err)
	}
}

// BroadcastDrawResult 向订阅用户推送预测期号的开奖对比结果
func (b *Bot) BroadcastDrawResult(snap *api.Snapshot, res lottery.Resolution) int {
	if !res.Comparable() {
		return 0
	}

	message := b.formatDrawBroadcast(snap.Predictions, res)
	sent := 0
	for _, chatID := range b.store.Subscribers() {
		if chatID > 0 {
			b.sendMessage(chatID, message)
			sent++
		}
	}

	logger.Infof("Broadcasted draw result for period %s to %d private users", res.TargetPeriod, sent)
	return sent
}
