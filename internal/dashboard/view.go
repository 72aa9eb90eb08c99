package dashboard

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ssq-board/internal/lottery"
)

var (
	// ErrUnknownModel 预测数据中不存在该模型
	ErrUnknownModel = errors.New("unknown model")
	// ErrUnknownTab 不存在的标签页
	ErrUnknownTab = errors.New("unknown tab")
)

// Theme 页面主题
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle 切换主题
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Tab 标签页
type Tab string

const (
	TabPredictions Tab = "predictions"
	TabComparison  Tab = "comparison"
	TabHistory     Tab = "history"
)

// Tabs 全部标签页，按页面顺序排列
var Tabs = []Tab{TabPredictions, TabComparison, TabHistory}

// ParseTab 解析标签页名称
func ParseTab(name string) (Tab, error) {
	for _, tab := range Tabs {
		if string(tab) == name {
			return tab, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, name)
}

// ViewState 单个会话的界面状态，由调用方持有并传入 Build
type ViewState struct {
	SessionID     string `json:"session_id"`
	Theme         Theme  `json:"theme"`
	SelectedModel string `json:"selected_model"`
	ActiveTab     Tab    `json:"active_tab"`
}

// NewViewState 创建新会话的默认界面状态
func NewViewState() ViewState {
	return ViewState{
		SessionID: uuid.NewString(),
		Theme:     ThemeLight,
		ActiveTab: TabPredictions,
	}
}

// ToggleTheme 切换主题
func (v *ViewState) ToggleTheme() {
	v.Theme = v.Theme.Toggle()
}

// SelectModel 选择模型，模型必须存在于当前预测数据中
func (v *ViewState) SelectModel(modelID string, predictions *lottery.PredictionsFile) error {
	if _, ok := predictions.Model(modelID); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownModel, modelID)
	}
	v.SelectedModel = modelID
	return nil
}

// SwitchTab 切换标签页
func (v *ViewState) SwitchTab(name string) error {
	tab, err := ParseTab(name)
	if err != nil {
		return err
	}
	v.ActiveTab = tab
	return nil
}

// normalize 补全缺失字段
func (v *ViewState) normalize() {
	if v.Theme != ThemeDark {
		v.Theme = ThemeLight
	}
	if _, err := ParseTab(string(v.ActiveTab)); err != nil {
		v.ActiveTab = TabPredictions
	}
}
