package lottery

import (
	"fmt"
	"time"
)

const (
	// DrawTime 开奖时间
	DrawTime = "21:15"

	dateLayout        = "2006-01-02"
	dateDisplayLayout = "2006年01月02日"
)

// 开奖日：周二、周四、周日
var drawWeekdays = map[time.Weekday]bool{
	time.Tuesday:  true,
	time.Thursday: true,
	time.Sunday:   true,
}

var weekdayNames = [...]string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"}

// WeekdayName 获取中文星期名称
func WeekdayName(d time.Weekday) string {
	return weekdayNames[d]
}

// IsDrawDay 判断是否为开奖日
func IsDrawDay(d time.Weekday) bool {
	return drawWeekdays[d]
}

// ComputeNextDraw 根据最新一期期号与开奖日期推算下一期开奖信息
func ComputeNextDraw(latestPeriod, latestDate string) (*NextDraw, error) {
	next, err := NextPeriod(latestPeriod)
	if err != nil {
		return nil, fmt.Errorf("failed to compute next period: %w", err)
	}

	last, err := time.Parse(dateLayout, latestDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse draw date %q: %w", latestDate, err)
	}

	date := last.AddDate(0, 0, 1)
	for !IsDrawDay(date.Weekday()) {
		date = date.AddDate(0, 0, 1)
	}

	return &NextDraw{
		NextPeriod:      next,
		NextDate:        date.Format(dateLayout),
		NextDateDisplay: date.Format(dateDisplayLayout),
		Weekday:         WeekdayName(date.Weekday()),
		DrawTime:        DrawTime,
	}, nil
}
