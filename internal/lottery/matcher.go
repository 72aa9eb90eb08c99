package lottery

// FindResult 按期号查找开奖结果
//
// 期号按字符串精确匹配，调用方需保证两侧格式一致（例如补零位数相同）。
// 若历史数据中存在重复期号，返回第一条。
func FindResult(targetPeriod string, history DrawHistory) (DrawResult, bool) {
	for _, draw := range history {
		if draw.Period == targetPeriod {
			return draw, true
		}
	}
	return DrawResult{}, false
}
