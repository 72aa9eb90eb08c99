package lottery

import "sort"

// ModelStats 模型历史表现统计
type ModelStats struct {
	ModelID        string  `json:"model_id"`
	ModelName      string  `json:"model_name"`
	Periods        int     `json:"periods"`
	Groups         int     `json:"groups"`
	TotalHits      int     `json:"total_hits"`
	RedHits        int     `json:"red_hits"`
	BlueHits       int     `json:"blue_hits"`
	BestHitCount   int     `json:"best_hit_count"`
	BestPeriod     string  `json:"best_period,omitempty"`
	AverageHits    float64 `json:"average_hits"`
	BlueHitRate    float64 `json:"blue_hit_rate"`
	AverageBestHit float64 `json:"average_best_hit"`
}

// CalculateModelStats 根据归档记录计算各模型统计信息
//
// 命中数以开奖结果重新计算，不依赖记录中的 hit_result。
// 结果按平均命中数降序排列，相同则按模型ID排序。
func CalculateModelStats(records []ArchivedRecord) []ModelStats {
	byModel := make(map[string]*ModelStats)
	bestSums := make(map[string]int)

	for _, record := range records {
		actual := record.ActualResult
		for _, model := range record.Models {
			stats, ok := byModel[model.ModelID]
			if !ok {
				stats = &ModelStats{ModelID: model.ModelID, ModelName: model.ModelName}
				byModel[model.ModelID] = stats
			}
			stats.Periods++

			periodBest := 0
			for _, prediction := range model.Predictions {
				hits := Compare(prediction, &actual)
				stats.Groups++
				stats.TotalHits += hits.TotalHits
				stats.RedHits += hits.RedHitCount
				if hits.BlueHit {
					stats.BlueHits++
				}
				if hits.TotalHits > periodBest {
					periodBest = hits.TotalHits
				}
			}

			bestSums[model.ModelID] += periodBest
			if periodBest > stats.BestHitCount {
				stats.BestHitCount = periodBest
				stats.BestPeriod = record.TargetPeriod
			}
		}
	}

	result := make([]ModelStats, 0, len(byModel))
	for id, stats := range byModel {
		if stats.Groups > 0 {
			stats.AverageHits = float64(stats.TotalHits) / float64(stats.Groups)
			stats.BlueHitRate = float64(stats.BlueHits) / float64(stats.Groups) * 100
		}
		if stats.Periods > 0 {
			stats.AverageBestHit = float64(bestSums[id]) / float64(stats.Periods)
		}
		result = append(result, *stats)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].AverageHits != result[j].AverageHits {
			return result[i].AverageHits > result[j].AverageHits
		}
		return result[i].ModelID < result[j].ModelID
	})

	return result
}
