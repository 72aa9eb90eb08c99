package dashboard

import (
	"fmt"

	"ssq-board/internal/lottery"
)

// Ball 号码球
type Ball struct {
	Number string `json:"number"`
	Color  string `json:"color"`
	Hit    bool   `json:"hit"`
}

// Balls 生成号码球序列，hits 为 nil 时不标记任何命中
func Balls(redBalls []string, blueBall string, hits *lottery.HitInfo) []Ball {
	balls := make([]Ball, 0, len(redBalls)+1)
	for _, number := range redBalls {
		balls = append(balls, Ball{Number: number, Color: "red", Hit: hits.IsRedHit(number)})
	}
	balls = append(balls, Ball{Number: blueBall, Color: "blue", Hit: hits != nil && hits.BlueHit})
	return balls
}

// AccuracyLevel 准确度等级
type AccuracyLevel string

const (
	AccuracyExcellent AccuracyLevel = "excellent"
	AccuracyGood      AccuracyLevel = "good"
	AccuracyFair      AccuracyLevel = "fair"
	AccuracyPoor      AccuracyLevel = "poor"
)

// Accuracy 准确度徽章
type Accuracy struct {
	Level AccuracyLevel `json:"level"`
	Icon  string        `json:"icon"`
	Text  string        `json:"text"`
}

// AccuracyFor 根据命中数生成准确度徽章
func AccuracyFor(totalHits int) Accuracy {
	a := Accuracy{Text: fmt.Sprintf("命中 %d 个", totalHits)}
	switch {
	case totalHits >= 5:
		a.Level, a.Icon = AccuracyExcellent, "🎯"
	case totalHits >= 3:
		a.Level, a.Icon = AccuracyGood, "⭐"
	case totalHits >= 1:
		a.Level, a.Icon = AccuracyFair, "✓"
	default:
		a.Level, a.Icon = AccuracyPoor, "○"
	}
	return a
}

// StatusCard 预测状态卡片，NoData 时不显示
type StatusCard struct {
	Visible     bool           `json:"visible"`
	Status      lottery.Status `json:"status"`
	Icon        string         `json:"icon"`
	Text        string         `json:"text"`
	Description string         `json:"description"`
}

// DrawCard 开奖结果卡片
type DrawCard struct {
	Period string `json:"period"`
	Date   string `json:"date"`
	Balls  []Ball `json:"balls"`
}

// NextDrawCard 下期开奖卡片
type NextDrawCard struct {
	Period           string `json:"period"`
	DateText         string `json:"date_text"`
	HasPrediction    bool   `json:"has_prediction"`
	AvailabilityIcon string `json:"availability_icon"`
	AvailabilityText string `json:"availability_text"`
}

// ModelTab 模型选择按钮
type ModelTab struct {
	ModelID   string `json:"model_id"`
	ModelName string `json:"model_name"`
	Active    bool   `json:"active"`
}

// Card 预测卡片
type Card struct {
	GroupID     int              `json:"group_id"`
	Strategy    string           `json:"strategy"`
	Description string           `json:"description,omitempty"`
	Balls       []Ball           `json:"balls"`
	Hits        *lottery.HitInfo `json:"hits,omitempty"`
	HitBadge    string           `json:"hit_badge,omitempty"`
	Best        bool             `json:"best"`
}

// ComparisonRow 历史对比中的单组预测
type ComparisonRow struct {
	GroupID     int      `json:"group_id"`
	Strategy    string   `json:"strategy"`
	Description string   `json:"description,omitempty"`
	Balls       []Ball   `json:"balls"`
	Accuracy    Accuracy `json:"accuracy"`
	Best        bool     `json:"best"`
}

// ComparisonModel 历史对比中的单个模型
type ComparisonModel struct {
	ModelID   string          `json:"model_id"`
	ModelName string          `json:"model_name"`
	BestBadge string          `json:"best_badge"`
	Rows      []ComparisonRow `json:"rows"`
}

// ComparisonCard 单期历史预测对比
type ComparisonCard struct {
	TargetPeriod   string            `json:"target_period"`
	PredictionDate string            `json:"prediction_date"`
	Actual         []Ball            `json:"actual"`
	Models         []ComparisonModel `json:"models"`
}

// Page 仪表盘页面模型
type Page struct {
	View           ViewState            `json:"view"`
	Resolution     lottery.Resolution   `json:"resolution"`
	Status         StatusCard           `json:"status"`
	Latest         *DrawCard            `json:"latest,omitempty"`
	NextDraw       *NextDrawCard        `json:"next_draw,omitempty"`
	Models         []ModelTab           `json:"models"`
	ModelTitle     string               `json:"model_title,omitempty"`
	TargetPeriod   string               `json:"target_period,omitempty"`
	Cards          []Card               `json:"cards"`
	Comparisons    []ComparisonCard     `json:"comparisons"`
	History        []DrawCard           `json:"history"`
	LastUpdated    string               `json:"last_updated,omitempty"`
	LastUpdatedAgo string               `json:"last_updated_ago,omitempty"`
	Stats          []lottery.ModelStats `json:"stats"`
}

// Tabs 页面标签页，供模板使用
func (p *Page) Tabs() []Tab {
	return Tabs
}
