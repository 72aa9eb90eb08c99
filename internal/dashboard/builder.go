package dashboard

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"ssq-board/internal/api"
	"ssq-board/internal/lottery"
)

// ErrNoSnapshot 数据尚未加载
var ErrNoSnapshot = errors.New("no data snapshot loaded")

const (
	lastUpdatedLayout = "2006-01-02T15:04:05Z"
	displayLayout     = "2006-01-02 15:04:05"
)

// ResolveSnapshot 判定快照中当前预测目标的状态
func ResolveSnapshot(snap *api.Snapshot) (lottery.Resolution, error) {
	if snap == nil {
		return lottery.Resolution{Status: lottery.StatusNoData}, nil
	}
	return lottery.Resolve(snap.Predictions.TargetPeriod, snap.History.Data)
}

// StatusChanged 判断一次刷新是否使当前预测目标进入已开奖且可对比状态
//
// 首次加载（prev 为 nil）不视为变化。
func StatusChanged(prev, cur *api.Snapshot) (lottery.Resolution, bool) {
	res, err := ResolveSnapshot(cur)
	if err != nil || !res.Comparable() || prev == nil {
		return res, false
	}

	before, err := ResolveSnapshot(prev)
	if err != nil {
		return res, true
	}
	return res, before.TargetPeriod != res.TargetPeriod || !before.Comparable()
}

// Build 根据数据快照与界面状态生成页面模型
func Build(snap *api.Snapshot, view ViewState, now time.Time) (*Page, error) {
	if snap == nil {
		return nil, ErrNoSnapshot
	}

	res, err := ResolveSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve prediction status: %w", err)
	}

	view.normalize()
	page := &Page{
		Resolution:  res,
		Status:      buildStatus(res),
		Models:      []ModelTab{},
		Cards:       []Card{},
		Comparisons: []ComparisonCard{},
		History:     []DrawCard{},
		Stats:       lottery.CalculateModelStats(snap.Archive.PredictionsHistory),
	}

	if latest, ok := snap.History.Data.Latest(); ok {
		page.Latest = &DrawCard{
			Period: latest.Period,
			Date:   latest.Date,
			Balls:  Balls(latest.RedBalls, latest.BlueBall, nil),
		}
	}

	page.NextDraw = buildNextDraw(snap)
	buildPredictions(page, snap, &view, res)

	for _, record := range snap.Archive.PredictionsHistory {
		page.Comparisons = append(page.Comparisons, buildComparison(record))
	}

	for _, draw := range snap.History.Data {
		page.History = append(page.History, DrawCard{
			Period: draw.Period,
			Date:   draw.Date,
			Balls:  Balls(draw.RedBalls, draw.BlueBall, nil),
		})
	}

	if updated, err := time.Parse(lastUpdatedLayout, snap.History.LastUpdated); err == nil {
		page.LastUpdated = updated.Format(displayLayout)
		page.LastUpdatedAgo = humanize.RelTime(updated, now, "ago", "from now")
	}

	page.View = view
	return page, nil
}

// buildStatus 生成状态卡片
func buildStatus(res lottery.Resolution) StatusCard {
	card := StatusCard{Status: res.Status, Visible: true}

	switch res.Status {
	case lottery.StatusAwaitingDraw:
		card.Icon = "🔮"
		card.Text = "等待开奖"
		card.Description = fmt.Sprintf("预测期号 %s 尚未开奖，当前最新期号为 %s。请等待开奖后查看预测结果。",
			res.TargetPeriod, res.LatestPeriod)
	case lottery.StatusDrawnButUnmatched:
		card.Icon = "⚠️"
		card.Text = "数据缺失"
		card.Description = fmt.Sprintf("预测期号 %s 已开奖，但开奖数据中缺少该期结果（当前最新期号为 %s），暂时无法对比。",
			res.TargetPeriod, res.LatestPeriod)
	case lottery.StatusDrawnAndMatched:
		card.Icon = "✅"
		card.Text = "已开奖"
		card.Description = fmt.Sprintf("预测期号 %s 已开奖，可以查看预测准确度。下方显示各策略的预测结果与实际开奖号码的对比。",
			res.TargetPeriod)
	default:
		card.Visible = false
	}

	return card
}

// buildNextDraw 生成下期开奖卡片，数据文件未提供时根据最新一期推算
func buildNextDraw(snap *api.Snapshot) *NextDrawCard {
	next := snap.History.NextDraw
	if next == nil {
		latest, ok := snap.History.Data.Latest()
		if !ok {
			return nil
		}
		computed, err := lottery.ComputeNextDraw(latest.Period, latest.Date)
		if err != nil {
			return nil
		}
		next = computed
	}

	card := &NextDrawCard{
		Period:        next.NextPeriod,
		DateText:      fmt.Sprintf("%s %s %s", next.NextDateDisplay, next.Weekday, next.DrawTime),
		HasPrediction: snap.Predictions.TargetPeriod == next.NextPeriod,
	}
	if card.HasPrediction {
		card.AvailabilityIcon, card.AvailabilityText = "✓", "已有AI预测"
	} else {
		card.AvailabilityIcon, card.AvailabilityText = "⚠", "暂无AI预测"
	}
	return card
}

// buildPredictions 生成模型选择与预测卡片
func buildPredictions(page *Page, snap *api.Snapshot, view *ViewState, res lottery.Resolution) {
	models := snap.Predictions.Models
	if len(models) == 0 {
		return
	}

	model, ok := snap.Predictions.Model(view.SelectedModel)
	if !ok {
		model = models[0]
		view.SelectedModel = model.ModelID
	}

	for _, m := range models {
		page.Models = append(page.Models, ModelTab{
			ModelID:   m.ModelID,
			ModelName: m.ModelName,
			Active:    m.ModelID == model.ModelID,
		})
	}

	page.ModelTitle = fmt.Sprintf("%s 的预测", model.ModelName)
	page.TargetPeriod = snap.Predictions.TargetPeriod

	evaluations := lottery.EvaluateModel(model, res.Actual)
	for _, e := range evaluations {
		card := Card{
			GroupID:     e.Prediction.GroupID,
			Strategy:    e.Prediction.Strategy,
			Description: e.Prediction.Description,
			Balls:       Balls(e.Prediction.RedBalls, e.Prediction.BlueBall, e.Hits),
			Hits:        e.Hits,
		}
		if e.Hits != nil && e.Hits.TotalHits > 0 {
			card.HitBadge = fmt.Sprintf("命中 %d 个号码", e.Hits.TotalHits)
		}
		page.Cards = append(page.Cards, card)
	}

	if res.Comparable() && len(evaluations) > 0 {
		if best, err := lottery.SelectBest(evaluations); err == nil {
			page.Cards[best].Best = true
		}
	}
}

// buildComparison 生成历史对比卡片，优先使用记录中的 hit_result
func buildComparison(record lottery.ArchivedRecord) ComparisonCard {
	card := ComparisonCard{
		TargetPeriod:   record.TargetPeriod,
		PredictionDate: record.PredictionDate,
		Actual:         Balls(record.ActualResult.RedBalls, record.ActualResult.BlueBall, nil),
		Models:         make([]ComparisonModel, 0, len(record.Models)),
	}

	for _, model := range record.Models {
		cm := ComparisonModel{
			ModelID:   model.ModelID,
			ModelName: model.ModelName,
			BestBadge: fmt.Sprintf("⭐ 组 %d (%d 个)", model.BestGroup, model.BestHitCount),
			Rows:      make([]ComparisonRow, 0, len(model.Predictions)),
		}

		for _, prediction := range model.Predictions {
			hits := prediction.HitResult
			if hits == nil {
				hits = lottery.Compare(prediction, &record.ActualResult)
			}
			cm.Rows = append(cm.Rows, ComparisonRow{
				GroupID:     prediction.GroupID,
				Strategy:    prediction.Strategy,
				Description: prediction.Description,
				Balls:       Balls(prediction.RedBalls, prediction.BlueBall, hits),
				Accuracy:    AccuracyFor(hits.TotalHits),
				Best:        prediction.GroupID == model.BestGroup,
			})
		}
		card.Models = append(card.Models, cm)
	}

	return card
}
