package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"ssq-board/internal/logger"
	"ssq-board/internal/lottery"
)

// ErrNoTarget 预测文件缺少目标期号
var ErrNoTarget = errors.New("predictions have no target period")

// Outcome 归档结果
type Outcome int

const (
	// OutcomeArchived 已生成新的归档记录
	OutcomeArchived Outcome = iota
	// OutcomeAlreadyArchived 该期号已存在于归档中
	OutcomeAlreadyArchived
	// OutcomeAwaitingDraw 目标期号尚未开奖
	OutcomeAwaitingDraw
	// OutcomeMissingResult 已开奖但历史中缺少该期结果
	OutcomeMissingResult
	// OutcomeNoData 没有开奖历史
	OutcomeNoData
)

var outcomeNames = map[Outcome]string{
	OutcomeArchived:        "archived",
	OutcomeAlreadyArchived: "already_archived",
	OutcomeAwaitingDraw:    "awaiting_draw",
	OutcomeMissingResult:   "missing_result",
	OutcomeNoData:          "no_data",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// BuildRecord 将一组预测与开奖结果合成为归档记录
func BuildRecord(preds lottery.PredictionsFile, actual lottery.DrawResult) (lottery.ArchivedRecord, error) {
	record := lottery.ArchivedRecord{
		PredictionDate: preds.PredictionDate,
		TargetPeriod:   preds.TargetPeriod,
		ActualResult:   actual,
		Models:         make([]lottery.ArchivedModel, 0, len(preds.Models)),
	}

	for _, set := range preds.Models {
		evaluations := lottery.EvaluateModel(set, &actual)

		model := lottery.ArchivedModel{
			ModelID:     set.ModelID,
			ModelName:   set.ModelName,
			Predictions: make([]lottery.Prediction, 0, len(evaluations)),
		}
		for _, e := range evaluations {
			p := e.Prediction
			p.HitResult = e.Hits
			model.Predictions = append(model.Predictions, p)
		}

		best, err := lottery.SelectBest(evaluations)
		switch {
		case errors.Is(err, lottery.ErrNoEvaluations):
			logger.Warnf("Model %s has no prediction groups for period %s", set.ModelID, preds.TargetPeriod)
		case err != nil:
			return record, fmt.Errorf("failed to select best group for %s: %w", set.ModelID, err)
		default:
			model.BestGroup = evaluations[best].Prediction.GroupID
			model.BestHitCount = evaluations[best].Hits.TotalHits
		}

		record.Models = append(record.Models, model)
	}

	return record, nil
}

// Apply 若预测目标期已开奖且未归档，则将记录插入归档头部
func Apply(history lottery.DrawHistory, preds lottery.PredictionsFile, archive *lottery.ArchiveFile) (Outcome, error) {
	if preds.TargetPeriod == "" {
		return OutcomeNoData, ErrNoTarget
	}

	res, err := lottery.Resolve(preds.TargetPeriod, history)
	if err != nil {
		return OutcomeNoData, fmt.Errorf("failed to resolve period %s: %w", preds.TargetPeriod, err)
	}

	switch res.Status {
	case lottery.StatusNoData:
		return OutcomeNoData, nil
	case lottery.StatusAwaitingDraw:
		return OutcomeAwaitingDraw, nil
	case lottery.StatusDrawnButUnmatched:
		return OutcomeMissingResult, nil
	}

	if _, ok := archive.Find(preds.TargetPeriod); ok {
		return OutcomeAlreadyArchived, nil
	}

	record, err := BuildRecord(preds, *res.Actual)
	if err != nil {
		return OutcomeNoData, err
	}

	archive.PredictionsHistory = append([]lottery.ArchivedRecord{record}, archive.PredictionsHistory...)
	return OutcomeArchived, nil
}

// Archiver 基于本地数据目录的归档器
type Archiver struct {
	historyPath     string
	predictionsPath string
	archivePath     string
}

// NewArchiver 创建归档器
func NewArchiver(historyPath, predictionsPath, archivePath string) *Archiver {
	return &Archiver{
		historyPath:     historyPath,
		predictionsPath: predictionsPath,
		archivePath:     archivePath,
	}
}

// Run 读取数据文件并执行归档，仅在产生新记录时写回归档文件
func (a *Archiver) Run() (Outcome, string, error) {
	var history lottery.HistoryFile
	if err := readJSON(a.historyPath, &history, false); err != nil {
		return OutcomeNoData, "", err
	}

	var preds lottery.PredictionsFile
	if err := readJSON(a.predictionsPath, &preds, false); err != nil {
		return OutcomeNoData, "", err
	}

	var archive lottery.ArchiveFile
	if err := readJSON(a.archivePath, &archive, true); err != nil {
		return OutcomeNoData, "", err
	}
	if archive.PredictionsHistory == nil {
		archive.PredictionsHistory = []lottery.ArchivedRecord{}
	}

	outcome, err := Apply(history.Data, preds, &archive)
	if err != nil {
		return outcome, preds.TargetPeriod, err
	}

	if outcome != OutcomeArchived {
		logger.Infof("Period %s not archived: %s", preds.TargetPeriod, outcome)
		return outcome, preds.TargetPeriod, nil
	}

	data, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return outcome, preds.TargetPeriod, fmt.Errorf("failed to encode archive: %w", err)
	}
	if err := os.WriteFile(a.archivePath, append(data, '\n'), 0o644); err != nil {
		return outcome, preds.TargetPeriod, fmt.Errorf("failed to write archive: %w", err)
	}

	logger.Infof("Archived period %s with %d models", preds.TargetPeriod, len(archive.PredictionsHistory[0].Models))
	return outcome, preds.TargetPeriod, nil
}

func readJSON(path string, dest interface{}, optional bool) error {
	data, err := os.ReadFile(path)
	if optional && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
