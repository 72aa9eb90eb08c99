package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ssq-board/internal/api"
	"ssq-board/internal/dashboard"
	"ssq-board/internal/lottery"
)

const historyLimit = 10

const welcomeText = `🎱 欢迎使用双色球 AI 预测机器人！

我可以为你提供：
• 📊 最新开奖结果与下期开奖时间
• 🔮 各模型的 AI 预测号码
• 📈 历史预测与实际开奖的对比
• 🏆 各模型命中统计

输入 /help 查看全部命令。
⚠️ 本机器人仅在私聊中提供服务`

const helpText = `📖 命令说明：

/latest - 最新开奖与下期信息
/predictions [模型ID] - 当前预测（默认第一个模型）
/history - 最近10期开奖记录
/compare - 最近一期预测对比
/stats - 模型命中统计
/subscribe - 订阅开奖对比推送
/unsubscribe - 取消订阅
/help - 显示本帮助

💡 预测仅供参考，请理性购彩。`

// escape 转义 Markdown 特殊字符
func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// formatBalls 格式化号码，命中的号码加粗
func (b *Bot) formatBalls(balls []dashboard.Ball) string {
	var builder strings.Builder
	for i, ball := range balls {
		if i > 0 {
			builder.WriteString(" ")
		}
		if ball.Color == "blue" {
			builder.WriteString("+ ")
		}
		if ball.Hit {
			builder.WriteString("*" + ball.Number + "*")
		} else {
			builder.WriteString(ball.Number)
		}
	}
	return builder.String()
}

// formatLatestMessage 格式化最新开奖消息
func (b *Bot) formatLatestMessage(snap *api.Snapshot) string {
	var builder strings.Builder

	builder.WriteString("📊 *最新开奖*\n\n")

	latest, ok := snap.History.Data.Latest()
	if !ok {
		builder.WriteString("暂无开奖数据")
		return builder.String()
	}

	builder.WriteString(fmt.Sprintf("期号: 第 %s 期\n", latest.Period))
	builder.WriteString(fmt.Sprintf("日期: %s\n", latest.Date))
	builder.WriteString(fmt.Sprintf("号码: %s\n", b.formatBalls(dashboard.Balls(latest.RedBalls, latest.BlueBall, nil))))

	next := snap.History.NextDraw
	if next == nil {
		next, _ = lottery.ComputeNextDraw(latest.Period, latest.Date)
	}
	if next != nil {
		builder.WriteString(fmt.Sprintf("\n⏰ *下期开奖*\n第 %s 期 %s %s %s\n",
			next.NextPeriod, next.NextDateDisplay, next.Weekday, next.DrawTime))
		if snap.Predictions.TargetPeriod == next.NextPeriod {
			builder.WriteString("✓ 已有AI预测，输入 /predictions 查看\n")
		} else {
			builder.WriteString("⚠ 暂无AI预测\n")
		}
	}

	return builder.String()
}

// formatPredictionsMessage 格式化当前预测消息
func (b *Bot) formatPredictionsMessage(page *dashboard.Page) string {
	var builder strings.Builder

	if len(page.Cards) == 0 {
		return "暂无预测数据"
	}

	builder.WriteString(fmt.Sprintf("🔮 *%s*\n", escape(page.ModelTitle)))
	builder.WriteString(fmt.Sprintf("预测期号: %s\n", page.TargetPeriod))
	if page.Status.Visible {
		builder.WriteString(fmt.Sprintf("状态: %s %s\n", page.Status.Icon, page.Status.Text))
	}
	builder.WriteString("\n")

	for _, card := range page.Cards {
		builder.WriteString(fmt.Sprintf("*组 %d* %s", card.GroupID, escape(card.Strategy)))
		if card.Best {
			builder.WriteString(" ⭐")
		}
		builder.WriteString("\n")
		builder.WriteString(b.formatBalls(card.Balls))
		if card.HitBadge != "" {
			builder.WriteString(" | " + card.HitBadge)
		}
		builder.WriteString("\n\n")
	}

	if len(page.Models) > 1 {
		ids := make([]string, 0, len(page.Models))
		for _, m := range page.Models {
			ids = append(ids, "`"+m.ModelID+"`")
		}
		builder.WriteString("其他模型: " + strings.Join(ids, ", ") + "\n")
	}

	return builder.String()
}

// formatUnknownModelMessage 格式化未知模型提示
func (b *Bot) formatUnknownModelMessage(modelID string, models []lottery.PredictionSet) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("❌ 未找到模型 %s\n", escape(modelID)))
	if len(models) > 0 {
		builder.WriteString("\n可用模型:\n")
		for _, m := range models {
			builder.WriteString(fmt.Sprintf("• `%s` %s\n", m.ModelID, escape(m.ModelName)))
		}
	}
	return builder.String()
}

// formatHistoryMessage 格式化开奖历史消息
func (b *Bot) formatHistoryMessage(history lottery.DrawHistory, limit int) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("📈 *最近%d期开奖记录*\n\n", limit))

	if len(history) == 0 {
		builder.WriteString("暂无历史数据")
		return builder.String()
	}

	for i, draw := range history {
		if i >= limit {
			break
		}
		builder.WriteString(fmt.Sprintf("第 %s 期 %s\n", draw.Period, draw.Date))
		builder.WriteString(b.formatBalls(dashboard.Balls(draw.RedBalls, draw.BlueBall, nil)))
		builder.WriteString("\n")
	}

	return builder.String()
}

// formatComparisonMessage 格式化历史预测对比消息
func (b *Bot) formatComparisonMessage(card dashboard.ComparisonCard) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("🎯 *第 %s 期预测对比*\n", card.TargetPeriod))
	builder.WriteString(fmt.Sprintf("实际开奖: %s\n", b.formatBalls(card.Actual)))

	for _, model := range card.Models {
		builder.WriteString(fmt.Sprintf("\n*%s* 最佳预测: %s\n", escape(model.ModelName), model.BestBadge))
		for _, row := range model.Rows {
			builder.WriteString(fmt.Sprintf("组 %d %s %s\n", row.GroupID, row.Accuracy.Icon, row.Accuracy.Text))
		}
	}

	return builder.String()
}

// formatStatsMessage 格式化模型统计消息
func (b *Bot) formatStatsMessage(stats []lottery.ModelStats) string {
	var builder strings.Builder

	builder.WriteString("🏆 *模型命中统计*\n\n")

	if len(stats) == 0 {
		builder.WriteString("暂无历史预测对比数据")
		return builder.String()
	}

	for i, s := range stats {
		builder.WriteString(fmt.Sprintf("*%d.* %s\n", i+1, escape(s.ModelName)))
		builder.WriteString(fmt.Sprintf("   期数: %d | 组数: %d\n", s.Periods, s.Groups))
		builder.WriteString(fmt.Sprintf("   平均命中: %.2f | 蓝球命中率: %.1f%%\n", s.AverageHits, s.BlueHitRate))
		if s.BestPeriod != "" {
			builder.WriteString(fmt.Sprintf("   最佳: %d 个 (第 %s 期)\n", s.BestHitCount, s.BestPeriod))
		}
	}

	return builder.String()
}

// formatDrawBroadcast 格式化开奖对比推送
func (b *Bot) formatDrawBroadcast(predictions lottery.PredictionsFile, res lottery.Resolution) string {
	var builder strings.Builder

	actual := res.Actual
	builder.WriteString(fmt.Sprintf("🔔 *第 %s 期已开奖*\n", res.TargetPeriod))
	builder.WriteString(fmt.Sprintf("开奖号码: %s\n", b.formatBalls(dashboard.Balls(actual.RedBalls, actual.BlueBall, nil))))

	for _, model := range predictions.Models {
		evaluations := lottery.EvaluateModel(model, actual)
		best, err := lottery.SelectBest(evaluations)
		if err != nil {
			continue
		}
		e := evaluations[best]
		builder.WriteString(fmt.Sprintf("\n*%s* 最佳: 组 %d 命中 %d 个\n",
			escape(model.ModelName), e.Prediction.GroupID, e.Hits.TotalHits))
		builder.WriteString(b.formatBalls(dashboard.Balls(e.Prediction.RedBalls, e.Prediction.BlueBall, e.Hits)))
		builder.WriteString("\n")
	}

	return builder.String()
}
