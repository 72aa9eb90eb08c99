package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"ssq-board/internal/config"
	"ssq-board/internal/logger"
	"ssq-board/internal/lottery"
)

// ErrNoRows 页面中没有可解析的开奖数据
var ErrNoRows = errors.New("no draw rows found")

const (
	minColumns      = 9
	lastUpdatedForm = "2006-01-02T15:04:05Z"
	backupStamp     = "20060102_150405"
)

// Fetcher 开奖历史抓取器
type Fetcher struct {
	httpClient *http.Client
	cfg        *config.Scraper
	now        func() time.Time
}

// Result 一次抓取的结果
type Result struct {
	Fetched int    `json:"fetched"`
	Added   int    `json:"added"`
	Total   int    `json:"total"`
	Backup  string `json:"backup,omitempty"`
	Latest  string `json:"latest"`
}

// NewFetcher 创建抓取器
func NewFetcher(cfg *config.Scraper) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		now:        time.Now,
	}
}

// Fetch 获取并解析开奖历史页面，页面为GB2312/GBK编码
func (f *Fetcher) Fetch(ctx context.Context) (lottery.DrawHistory, error) {
	logger.Debugf("Fetching draw history from %s", f.cfg.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("history page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(decodeGBK(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse history page: %w", err)
	}

	history := ParseHistory(doc)
	if len(history) == 0 {
		return nil, ErrNoRows
	}

	logger.Infof("Parsed %d draws from history page", len(history))
	return history, nil
}

func decodeGBK(r io.Reader) io.Reader {
	return transform.NewReader(r, simplifiedchinese.GBK.NewDecoder())
}

// ParseHistory 解析开奖表格
//
// 每行至少9列：期号、6个红球、蓝球，最后一列为开奖日期。
// 期号不是数字的行（表头、汇总行）会被跳过。
func ParseHistory(doc *goquery.Document) lottery.DrawHistory {
	table := doc.Find("tbody").First()
	if table.Length() == 0 {
		table = doc.Find("table").First()
	}

	var history lottery.DrawHistory
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() < minColumns {
			return
		}

		period := strings.TrimSpace(cols.Eq(0).Text())
		if _, err := lottery.ParsePeriod(period); err != nil {
			logger.Debugf("Skipping row with period %q", period)
			return
		}

		reds := make([]string, 0, 6)
		for i := 1; i <= 6; i++ {
			reds = append(reds, strings.TrimSpace(cols.Eq(i).Text()))
		}

		history = append(history, lottery.DrawResult{
			Period:   period,
			Date:     strings.TrimSpace(cols.Last().Text()),
			RedBalls: reds,
			BlueBall: strings.TrimSpace(cols.Eq(7).Text()),
		})
	})

	return history
}

// Merge 按期号合并新旧数据，新数据覆盖同期号的旧数据，结果按期号数值降序排列
func Merge(existing, fresh lottery.DrawHistory) (lottery.DrawHistory, int) {
	byPeriod := make(map[string]lottery.DrawResult, len(existing)+len(fresh))
	for _, draw := range existing {
		byPeriod[draw.Period] = draw
	}

	added := 0
	for _, draw := range fresh {
		if _, ok := byPeriod[draw.Period]; !ok {
			added++
		}
		byPeriod[draw.Period] = draw
	}

	merged := make(lottery.DrawHistory, 0, len(byPeriod))
	for _, draw := range byPeriod {
		merged = append(merged, draw)
	}
	sort.Slice(merged, func(i, j int) bool {
		return periodAfter(merged[i].Period, merged[j].Period)
	})

	return merged, added
}

// periodAfter 按期号数值比较，无法解析的期号排在最后
func periodAfter(a, b string) bool {
	na, errA := lottery.ParsePeriod(a)
	nb, errB := lottery.ParsePeriod(b)
	switch {
	case errA != nil && errB != nil:
		return a > b
	case errA != nil:
		return false
	case errB != nil:
		return true
	case na != nb:
		return na > nb
	default:
		return a > b
	}
}

// FormatForWeb 生成 lottery_history.json 结构，并推算下一期开奖信息
func FormatForWeb(history lottery.DrawHistory, now time.Time) lottery.HistoryFile {
	file := lottery.HistoryFile{
		LastUpdated: now.UTC().Format(lastUpdatedForm),
		Data:        history,
	}

	if latest, ok := history.Latest(); ok {
		next, err := lottery.ComputeNextDraw(latest.Period, latest.Date)
		if err != nil {
			logger.Warnf("Failed to compute next draw: %v", err)
		} else {
			file.NextDraw = next
		}
	}
	return file
}

// Backup 以时间戳后缀备份现有文件，文件不存在时返回空路径
func Backup(path string, now time.Time) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	backup := strings.TrimSuffix(path, ".json") + "_backup_" + now.Format(backupStamp) + ".json"
	if err := os.WriteFile(backup, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return backup, nil
}

// LoadHistoryFile 读取现有历史文件，文件不存在时返回空结构
func LoadHistoryFile(path string) (lottery.HistoryFile, error) {
	var file lottery.HistoryFile
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return file, nil
	}
	if err != nil {
		return file, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return file, nil
}

// SaveJSON 以缩进格式写入JSON文件
func SaveJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Run 抓取、合并并写入历史文件
func (f *Fetcher) Run(ctx context.Context, historyPath string) (*Result, error) {
	fresh, err := f.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := LoadHistoryFile(historyPath)
	if err != nil {
		return nil, err
	}

	now := f.now()
	backup, err := Backup(historyPath, now)
	if err != nil {
		return nil, err
	}

	merged, added := Merge(existing.Data, fresh)
	if err := SaveJSON(historyPath, FormatForWeb(merged, now)); err != nil {
		return nil, err
	}

	result := &Result{Fetched: len(fresh), Added: added, Total: len(merged), Backup: backup}
	if latest, ok := merged.Latest(); ok {
		result.Latest = latest.Period
	}

	logger.Infof("History saved to %s: %d new, %d total", historyPath, added, len(merged))
	return result, nil
}
