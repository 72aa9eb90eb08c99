package lottery

import (
	"fmt"
)

// Status 预测状态
type Status int

const (
	// StatusNoData 无开奖数据或无预测目标
	StatusNoData Status = iota
	// StatusAwaitingDraw 目标期号尚未开奖
	StatusAwaitingDraw
	// StatusDrawnButUnmatched 已开奖但本地数据中找不到该期
	StatusDrawnButUnmatched
	// StatusDrawnAndMatched 已开奖且找到开奖结果
	StatusDrawnAndMatched
)

var statusNames = map[Status]string{
	StatusNoData:            "no_data",
	StatusAwaitingDraw:      "awaiting_draw",
	StatusDrawnButUnmatched: "drawn_unmatched",
	StatusDrawnAndMatched:   "drawn_matched",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText 实现 encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	name, ok := statusNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown status %d", int(s))
	}
	return []byte(name), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (s *Status) UnmarshalText(text []byte) error {
	for status, name := range statusNames {
		if name == string(text) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// Resolution 状态判定结果
type Resolution struct {
	Status       Status      `json:"status"`
	TargetPeriod string      `json:"target_period"`
	LatestPeriod string      `json:"latest_period"`
	Actual       *DrawResult `json:"actual,omitempty"`
}

// Comparable 是否可以进行号码对比
func (r Resolution) Comparable() bool {
	return r.Status == StatusDrawnAndMatched && r.Actual != nil
}

// Resolve 根据开奖历史判定目标期号的预测状态
func Resolve(targetPeriod string, history DrawHistory) (Resolution, error) {
	res := Resolution{Status: StatusNoData, TargetPeriod: targetPeriod}

	latest, ok := history.Latest()
	if !ok || targetPeriod == "" {
		return res, nil
	}
	res.LatestPeriod = latest.Period

	occurred, err := HasOccurred(targetPeriod, latest.Period)
	if err != nil {
		return res, err
	}
	if !occurred {
		res.Status = StatusAwaitingDraw
		return res, nil
	}

	actual, found := FindResult(targetPeriod, history)
	if !found {
		res.Status = StatusDrawnButUnmatched
		return res, nil
	}

	res.Status = StatusDrawnAndMatched
	res.Actual = &actual
	return res, nil
}
