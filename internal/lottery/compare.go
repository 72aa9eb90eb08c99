package lottery

import (
	"errors"
	"fmt"
)

// ErrHitMismatch 预计算的命中结果与重新计算的结果不一致
var ErrHitMismatch = errors.New("recorded hit result mismatch")

// Compare 对比单组预测与实际开奖结果
//
// actual 为 nil 时返回 nil，表示不做任何命中高亮。
// RedHits 保持预测红球的原始顺序。
func Compare(prediction Prediction, actual *DrawResult) *HitInfo {
	if actual == nil {
		return nil
	}

	actualReds := make(map[string]struct{}, len(actual.RedBalls))
	for _, ball := range actual.RedBalls {
		actualReds[ball] = struct{}{}
	}

	hits := &HitInfo{RedHits: []string{}}
	for _, ball := range prediction.RedBalls {
		if _, ok := actualReds[ball]; ok {
			hits.RedHits = append(hits.RedHits, ball)
		}
	}

	hits.RedHitCount = len(hits.RedHits)
	hits.BlueHit = prediction.BlueBall == actual.BlueBall
	hits.TotalHits = hits.RedHitCount
	if hits.BlueHit {
		hits.TotalHits++
	}

	return hits
}

// VerifyRecorded 校验归档记录中预计算的 hit_result
func VerifyRecorded(prediction Prediction, actual DrawResult) error {
	if prediction.HitResult == nil {
		return fmt.Errorf("%w: group %d has no hit_result", ErrHitMismatch, prediction.GroupID)
	}

	expected := Compare(prediction, &actual)
	if !expected.Equal(prediction.HitResult) {
		return fmt.Errorf("%w: group %d recorded %d hits, computed %d",
			ErrHitMismatch, prediction.GroupID, prediction.HitResult.TotalHits, expected.TotalHits)
	}
	return nil
}
