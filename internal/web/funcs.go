package web

import (
	"html/template"

	"ssq-board/internal/dashboard"
)

var templateFuncs = template.FuncMap{
	"ballClass": func(b dashboard.Ball) string {
		if b.Hit {
			return "ball " + b.Color + " hit"
		}
		return "ball " + b.Color
	},
	"isTab": func(active, tab dashboard.Tab) bool {
		return active == tab
	},
	"tabLabel": func(tab dashboard.Tab) string {
		switch tab {
		case dashboard.TabPredictions:
			return "AI 预测"
		case dashboard.TabComparison:
			return "历史对比"
		case dashboard.TabHistory:
			return "开奖历史"
		}
		return string(tab)
	},
}
