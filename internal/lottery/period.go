package lottery

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformedPeriod 期号包含非数字字符
var ErrMalformedPeriod = errors.New("malformed period")

// ParsePeriod 将期号解析为整数，非数字期号直接拒绝
func ParsePeriod(period string) (int, error) {
	if period == "" {
		return 0, fmt.Errorf("%w: empty period", ErrMalformedPeriod)
	}
	for _, r := range period {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q", ErrMalformedPeriod, period)
		}
	}

	n, err := strconv.Atoi(period)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrMalformedPeriod, period, err)
	}
	return n, nil
}

// HasOccurred 判断目标期号是否已经开奖（目标期号 <= 最新期号）
func HasOccurred(targetPeriod, latestPeriod string) (bool, error) {
	target, err := ParsePeriod(targetPeriod)
	if err != nil {
		return false, fmt.Errorf("failed to parse target period: %w", err)
	}
	latest, err := ParsePeriod(latestPeriod)
	if err != nil {
		return false, fmt.Errorf("failed to parse latest period: %w", err)
	}
	return target <= latest, nil
}

// NextPeriod 生成下一期期号，保持原期号位数
func NextPeriod(latestPeriod string) (string, error) {
	n, err := ParsePeriod(latestPeriod)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", len(latestPeriod), n+1), nil
}
