package lottery

// DrawResult 单期开奖结果
type DrawResult struct {
	Period   string   `json:"period"`
	Date     string   `json:"date"`
	RedBalls []string `json:"red_balls"`
	BlueBall string   `json:"blue_ball"`
}

// DrawHistory 开奖历史，按期号倒序排列（下标0为最新一期）
type DrawHistory []DrawResult

// Latest 获取最新一期开奖结果
func (h DrawHistory) Latest() (DrawResult, bool) {
	if len(h) == 0 {
		return DrawResult{}, false
	}
	return h[0], true
}

// NextDraw 下一期开奖信息
type NextDraw struct {
	NextPeriod      string `json:"next_period"`
	NextDate        string `json:"next_date"`
	NextDateDisplay string `json:"next_date_display"`
	Weekday         string `json:"weekday"`
	DrawTime        string `json:"draw_time"`
}

// HistoryFile lottery_history.json 文件结构
type HistoryFile struct {
	LastUpdated string      `json:"last_updated"`
	Data        DrawHistory `json:"data"`
	NextDraw    *NextDraw   `json:"next_draw,omitempty"`
}

// Prediction 单组预测号码
type Prediction struct {
	GroupID     int      `json:"group_id"`
	Strategy    string   `json:"strategy"`
	RedBalls    []string `json:"red_balls"`
	BlueBall    string   `json:"blue_ball"`
	Description string   `json:"description,omitempty"`
	// HitResult 仅在归档记录中存在
	HitResult *HitInfo `json:"hit_result,omitempty"`
}

// PredictionSet 单个模型针对目标期号的全部预测组
type PredictionSet struct {
	PredictionDate string       `json:"prediction_date,omitempty"`
	TargetPeriod   string       `json:"target_period,omitempty"`
	ModelID        string       `json:"model_id"`
	ModelName      string       `json:"model_name"`
	Predictions    []Prediction `json:"predictions"`
}

// PredictionsFile ai_predictions.json 文件结构
type PredictionsFile struct {
	PredictionDate string          `json:"prediction_date"`
	TargetPeriod   string          `json:"target_period"`
	Models         []PredictionSet `json:"models"`
}

// Model 根据模型ID查找预测集合
func (f *PredictionsFile) Model(modelID string) (PredictionSet, bool) {
	for _, m := range f.Models {
		if m.ModelID == modelID {
			return m, true
		}
	}
	return PredictionSet{}, false
}

// HitInfo 命中信息
type HitInfo struct {
	RedHits     []string `json:"red_hits"`
	RedHitCount int      `json:"red_hit_count"`
	BlueHit     bool     `json:"blue_hit"`
	TotalHits   int      `json:"total_hits"`
}

// IsRedHit 判断红球是否命中
func (h *HitInfo) IsRedHit(ball string) bool {
	if h == nil {
		return false
	}
	for _, hit := range h.RedHits {
		if hit == ball {
			return true
		}
	}
	return false
}

// Equal 比较两个命中信息是否一致
func (h *HitInfo) Equal(other *HitInfo) bool {
	if h == nil || other == nil {
		return h == other
	}
	if h.BlueHit != other.BlueHit || h.TotalHits != other.TotalHits ||
		h.RedHitCount != other.RedHitCount || len(h.RedHits) != len(other.RedHits) {
		return false
	}
	for i := range h.RedHits {
		if h.RedHits[i] != other.RedHits[i] {
			return false
		}
	}
	return true
}

// ArchivedModel 归档记录中单个模型的结果
type ArchivedModel struct {
	ModelID      string       `json:"model_id"`
	ModelName    string       `json:"model_name"`
	Predictions  []Prediction `json:"predictions"`
	BestGroup    int          `json:"best_group"`
	BestHitCount int          `json:"best_hit_count"`
}

// ArchivedRecord 已开奖期号的预测对比记录
type ArchivedRecord struct {
	PredictionDate string          `json:"prediction_date"`
	TargetPeriod   string          `json:"target_period"`
	ActualResult   DrawResult      `json:"actual_result"`
	Models         []ArchivedModel `json:"models"`
}

// ArchiveFile predictions_history.json 文件结构
type ArchiveFile struct {
	PredictionsHistory []ArchivedRecord `json:"predictions_history"`
}

// Find 查找指定期号的归档记录
func (a *ArchiveFile) Find(period string) (ArchivedRecord, bool) {
	for _, r := range a.PredictionsHistory {
		if r.TargetPeriod == period {
			return r, true
		}
	}
	return ArchivedRecord{}, false
}
