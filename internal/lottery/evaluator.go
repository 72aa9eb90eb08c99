package lottery

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEvaluations 没有可供挑选的预测组
	ErrNoEvaluations = errors.New("no evaluations to select from")
	// ErrNotCompared 预测组尚未与开奖结果对比
	ErrNotCompared = errors.New("evaluation has no hit info")
)

// Evaluation 单组预测及其命中信息，Hits 为 nil 表示无可对比的开奖结果
type Evaluation struct {
	Prediction Prediction `json:"prediction"`
	Hits       *HitInfo   `json:"hits,omitempty"`
}

// EvaluateModel 使用同一开奖结果评估模型的全部预测组
func EvaluateModel(set PredictionSet, actual *DrawResult) []Evaluation {
	evaluations := make([]Evaluation, 0, len(set.Predictions))
	for _, prediction := range set.Predictions {
		evaluations = append(evaluations, Evaluation{
			Prediction: prediction,
			Hits:       Compare(prediction, actual),
		})
	}
	return evaluations
}

// SelectBest 返回命中数最高的预测组下标，命中数相同时取最先出现的一组
func SelectBest(evaluated []Evaluation) (int, error) {
	if len(evaluated) == 0 {
		return 0, ErrNoEvaluations
	}

	best := -1
	bestHits := 0
	for i, e := range evaluated {
		if e.Hits == nil {
			return 0, fmt.Errorf("%w: group %d", ErrNotCompared, e.Prediction.GroupID)
		}
		if best < 0 || e.Hits.TotalHits > bestHits {
			best = i
			bestHits = e.Hits.TotalHits
		}
	}
	return best, nil
}
