package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssq-board/internal/api"
	"ssq-board/internal/lottery"
)

var now = time.Date(2025, 10, 24, 8, 0, 0, 0, time.UTC)

func history() lottery.DrawHistory {
	return lottery.DrawHistory{
		{Period: "25123", Date: "2025-10-23", RedBalls: []string{"07", "09", "23", "24", "25", "26"}, BlueBall: "10"},
		{Period: "25122", Date: "2025-10-21", RedBalls: []string{"01", "05", "12", "18", "27", "33"}, BlueBall: "04"},
	}
}

func predictions(target string) lottery.PredictionsFile {
	return lottery.PredictionsFile{
		PredictionDate: "2025-10-22",
		TargetPeriod:   target,
		Models: []lottery.PredictionSet{
			{ModelID: "m1", ModelName: "Model One", Predictions: []lottery.Prediction{
				{GroupID: 1, Strategy: "热号", RedBalls: []string{"07", "09", "01", "02", "03", "04"}, BlueBall: "05"},
				{GroupID: 2, Strategy: "冷号", RedBalls: []string{"09", "16", "24", "25", "26", "31"}, BlueBall: "08"},
				{GroupID: 3, Strategy: "均衡", RedBalls: []string{"09", "23", "24", "25", "26", "30"}, BlueBall: "01"},
			}},
			{ModelID: "m2", ModelName: "Model Two", Predictions: []lottery.Prediction{
				{GroupID: 1, Strategy: "随机", RedBalls: []string{"11", "12", "13", "14", "15", "16"}, BlueBall: "10"},
			}},
		},
	}
}

func snapshot(target string) *api.Snapshot {
	return &api.Snapshot{
		History: lottery.HistoryFile{
			LastUpdated: "2025-10-24T06:00:00Z",
			Data:        history(),
		},
		Predictions: predictions(target),
	}
}

func TestBuildAwaitingDraw(t *testing.T) {
	page, err := Build(snapshot("25124"), NewViewState(), now)
	require.NoError(t, err)

	assert.Equal(t, lottery.StatusAwaitingDraw, page.Status.Status)
	assert.True(t, page.Status.Visible)
	assert.Equal(t, "等待开奖", page.Status.Text)
	assert.Contains(t, page.Status.Description, "预测期号 25124 尚未开奖，当前最新期号为 25123")

	require.Len(t, page.Cards, 3)
	for _, card := range page.Cards {
		assert.Nil(t, card.Hits)
		assert.Empty(t, card.HitBadge)
		assert.False(t, card.Best)
		for _, ball := range card.Balls {
			assert.False(t, ball.Hit)
		}
	}

	// 未提供 next_draw 时根据最新一期推算
	require.NotNil(t, page.NextDraw)
	assert.Equal(t, "25124", page.NextDraw.Period)
	assert.Equal(t, "2025年10月26日 周日 21:15", page.NextDraw.DateText)
	assert.True(t, page.NextDraw.HasPrediction)
	assert.Equal(t, "已有AI预测", page.NextDraw.AvailabilityText)
}

func TestBuildDrawnAndMatched(t *testing.T) {
	page, err := Build(snapshot("25123"), NewViewState(), now)
	require.NoError(t, err)

	assert.Equal(t, lottery.StatusDrawnAndMatched, page.Status.Status)
	assert.Equal(t, "✅", page.Status.Icon)
	require.Len(t, page.Cards, 3)

	assert.Equal(t, 2, page.Cards[0].Hits.TotalHits)
	assert.Equal(t, 4, page.Cards[1].Hits.TotalHits)
	assert.Equal(t, 5, page.Cards[2].Hits.TotalHits)
	assert.False(t, page.Cards[1].Best)
	assert.True(t, page.Cards[2].Best)
	assert.Equal(t, "命中 4 个号码", page.Cards[1].HitBadge)

	balls := page.Cards[1].Balls
	require.Len(t, balls, 7)
	assert.True(t, balls[0].Hit)
	assert.False(t, balls[1].Hit)
	assert.Equal(t, "blue", balls[6].Color)
	assert.False(t, balls[6].Hit)

	assert.False(t, page.NextDraw.HasPrediction)
	assert.Equal(t, "暂无AI预测", page.NextDraw.AvailabilityText)
}

func TestBuildBestTieKeepsFirst(t *testing.T) {
	snap := snapshot("25123")
	snap.Predictions.Models[0].Predictions = []lottery.Prediction{
		{GroupID: 1, RedBalls: []string{"07", "09", "23", "01", "02", "03"}, BlueBall: "01"},
		{GroupID: 2, RedBalls: []string{"24", "25", "26", "01", "02", "03"}, BlueBall: "02"},
	}

	page, err := Build(snap, NewViewState(), now)
	require.NoError(t, err)
	assert.True(t, page.Cards[0].Best)
	assert.False(t, page.Cards[1].Best)
}

func TestBuildDrawnButUnmatched(t *testing.T) {
	snap := snapshot("25121")
	page, err := Build(snap, NewViewState(), now)
	require.NoError(t, err)

	assert.Equal(t, lottery.StatusDrawnButUnmatched, page.Status.Status)
	assert.Equal(t, "数据缺失", page.Status.Text)
	for _, card := range page.Cards {
		assert.Nil(t, card.Hits)
		assert.False(t, card.Best)
	}
}

func TestBuildNoData(t *testing.T) {
	snap := &api.Snapshot{Predictions: predictions("25124")}
	page, err := Build(snap, NewViewState(), now)
	require.NoError(t, err)

	assert.False(t, page.Status.Visible)
	assert.Nil(t, page.Latest)
	assert.Nil(t, page.NextDraw)
	assert.Empty(t, page.History)
	assert.Empty(t, page.LastUpdated)

	_, err = Build(nil, NewViewState(), now)
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestBuildMalformedPeriod(t *testing.T) {
	_, err := Build(snapshot("25x24"), NewViewState(), now)
	assert.ErrorIs(t, err, lottery.ErrMalformedPeriod)
}

func TestBuildModelSelection(t *testing.T) {
	view := NewViewState()
	snap := snapshot("25123")

	page, err := Build(snap, view, now)
	require.NoError(t, err)
	assert.Equal(t, "m1", page.View.SelectedModel)
	assert.True(t, page.Models[0].Active)
	assert.Equal(t, "Model One 的预测", page.ModelTitle)

	require.NoError(t, view.SelectModel("m2", &snap.Predictions))
	page, err = Build(snap, view, now)
	require.NoError(t, err)
	assert.True(t, page.Models[1].Active)
	require.Len(t, page.Cards, 1)
	assert.True(t, page.Cards[0].Balls[6].Hit)
	assert.True(t, page.Cards[0].Best)

	assert.ErrorIs(t, view.SelectModel("m9", &snap.Predictions), ErrUnknownModel)
	assert.Equal(t, "m2", view.SelectedModel)

	// 数据刷新后模型消失，回退到第一个模型
	view.SelectedModel = "gone"
	page, err = Build(snap, view, now)
	require.NoError(t, err)
	assert.Equal(t, "m1", page.View.SelectedModel)
}

func TestBuildComparisons(t *testing.T) {
	snap := snapshot("25124")
	actual := history()[0]
	snap.Archive = lottery.ArchiveFile{PredictionsHistory: []lottery.ArchivedRecord{{
		PredictionDate: "2025-10-22",
		TargetPeriod:   "25123",
		ActualResult:   actual,
		Models: []lottery.ArchivedModel{{
			ModelID:      "m1",
			ModelName:    "Model One",
			BestGroup:    2,
			BestHitCount: 4,
			Predictions: []lottery.Prediction{
				{GroupID: 1, RedBalls: []string{"01", "02", "03", "04", "05", "06"}, BlueBall: "07"},
				{GroupID: 2, RedBalls: []string{"09", "16", "24", "25", "26", "31"}, BlueBall: "08",
					HitResult: &lottery.HitInfo{RedHits: []string{"09", "24", "25", "26"}, RedHitCount: 4, TotalHits: 4}},
			},
		}},
	}}}

	page, err := Build(snap, NewViewState(), now)
	require.NoError(t, err)
	require.Len(t, page.Comparisons, 1)

	cm := page.Comparisons[0].Models[0]
	assert.Equal(t, "⭐ 组 2 (4 个)", cm.BestBadge)
	require.Len(t, cm.Rows, 2)
	assert.Equal(t, AccuracyPoor, cm.Rows[0].Accuracy.Level)
	assert.False(t, cm.Rows[0].Best)
	assert.Equal(t, AccuracyGood, cm.Rows[1].Accuracy.Level)
	assert.Equal(t, "命中 4 个", cm.Rows[1].Accuracy.Text)
	assert.True(t, cm.Rows[1].Best)

	require.Len(t, page.Stats, 1)
	assert.Equal(t, 4, page.Stats[0].TotalHits)
}

func TestBuildLastUpdated(t *testing.T) {
	page, err := Build(snapshot("25124"), NewViewState(), now)
	require.NoError(t, err)
	assert.Equal(t, "2025-10-24 06:00:00", page.LastUpdated)
	assert.Equal(t, "2 hours ago", page.LastUpdatedAgo)
	require.Len(t, page.History, 2)
	assert.Equal(t, "25122", page.History[1].Period)
}

func TestAccuracyFor(t *testing.T) {
	tests := []struct {
		hits  int
		level AccuracyLevel
		icon  string
	}{
		{7, AccuracyExcellent, "🎯"},
		{5, AccuracyExcellent, "🎯"},
		{4, AccuracyGood, "⭐"},
		{3, AccuracyGood, "⭐"},
		{2, AccuracyFair, "✓"},
		{1, AccuracyFair, "✓"},
		{0, AccuracyPoor, "○"},
	}
	for _, tt := range tests {
		a := AccuracyFor(tt.hits)
		assert.Equal(t, tt.level, a.Level, tt.hits)
		assert.Equal(t, tt.icon, a.Icon, tt.hits)
	}
}

func TestViewState(t *testing.T) {
	v := NewViewState()
	assert.NotEmpty(t, v.SessionID)
	assert.Equal(t, ThemeLight, v.Theme)

	v.ToggleTheme()
	assert.Equal(t, ThemeDark, v.Theme)
	v.ToggleTheme()
	assert.Equal(t, ThemeLight, v.Theme)

	require.NoError(t, v.SwitchTab("history"))
	assert.Equal(t, TabHistory, v.ActiveTab)
	assert.ErrorIs(t, v.SwitchTab("settings"), ErrUnknownTab)
	assert.Equal(t, TabHistory, v.ActiveTab)

	assert.NotEqual(t, v.SessionID, NewViewState().SessionID)
}

func TestStatusChanged(t *testing.T) {
	awaiting := snapshot("25124")
	drawn := snapshot("25124")
	drawn.History.Data = append(lottery.DrawHistory{
		{Period: "25124", Date: "2025-10-26", RedBalls: []string{"01", "02", "03", "04", "05", "06"}, BlueBall: "07"},
	}, drawn.History.Data...)

	res, changed := StatusChanged(awaiting, drawn)
	assert.True(t, changed)
	assert.Equal(t, "25124", res.TargetPeriod)

	_, changed = StatusChanged(drawn, drawn)
	assert.False(t, changed)

	_, changed = StatusChanged(nil, drawn)
	assert.False(t, changed)

	_, changed = StatusChanged(awaiting, awaiting)
	assert.False(t, changed)
}
