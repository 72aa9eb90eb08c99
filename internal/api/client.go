package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"ssq-board/internal/config"
	"ssq-board/internal/logger"
	"ssq-board/internal/lottery"
)

// ErrDataUnavailable 数据源读取失败、返回非200或内容为空
var ErrDataUnavailable = errors.New("data unavailable")

// Source 数据源，按资源名读取原始内容
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	Describe() string
}

// Snapshot 一次完整加载得到的数据快照，加载后只读
type Snapshot struct {
	History     lottery.HistoryFile     `json:"history"`
	Predictions lottery.PredictionsFile `json:"predictions"`
	Archive     lottery.ArchiveFile     `json:"archive"`
	LoadedAt    time.Time               `json:"loaded_at"`
}

// Client 数据加载客户端
type Client struct {
	source Source
	cfg    *config.Data
}

// NewClient 根据配置创建数据加载客户端，BaseURL 非空时使用HTTP数据源
func NewClient(cfg *config.Data) *Client {
	var source Source
	if cfg.BaseURL != "" {
		source = &httpSource{
			httpClient: &http.Client{Timeout: cfg.Timeout},
			cfg:        cfg,
		}
	} else {
		source = &dirSource{cfg: cfg}
	}
	return NewClientWithSource(cfg, source)
}

// NewClientWithSource 使用指定数据源创建客户端
func NewClientWithSource(cfg *config.Data, source Source) *Client {
	return &Client{source: source, cfg: cfg}
}

// LoadAll 并行加载三个数据文件，任一失败则整体失败
func (c *Client) LoadAll(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.load(gctx, c.cfg.HistoryFile, &snap.History)
	})
	g.Go(func() error {
		return c.load(gctx, c.cfg.PredictionsFile, &snap.Predictions)
	})
	g.Go(func() error {
		return c.load(gctx, c.cfg.ArchiveFile, &snap.Archive)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.LoadedAt = time.Now()
	logger.Debugf("Loaded snapshot from %s: %d draws, %d models, %d archived periods",
		c.source.Describe(), len(snap.History.Data), len(snap.Predictions.Models), len(snap.Archive.PredictionsHistory))

	if mismatches := CheckArchive(snap.Archive); mismatches > 0 {
		logger.Warnf("Archive contains %d groups whose hit_result disagrees with the draw", mismatches)
	}

	return snap, nil
}

// load 读取并解码单个资源
func (c *Client) load(ctx context.Context, name string, dest interface{}) error {
	body, err := c.source.Fetch(ctx, name)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("%w: %s is empty", ErrDataUnavailable, name)
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

// HealthCheck 检查数据源可用性
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.source.Fetch(ctx, c.cfg.HistoryFile); err != nil {
		return fmt.Errorf("data source health check failed: %w", err)
	}
	return nil
}

// CheckArchive 用开奖结果重新计算归档中的命中信息，返回不一致的预测组数量
func CheckArchive(archive lottery.ArchiveFile) int {
	mismatches := 0
	for _, record := range archive.PredictionsHistory {
		for _, model := range record.Models {
			for _, prediction := range model.Predictions {
				if err := lottery.VerifyRecorded(prediction, record.ActualResult); err != nil {
					logger.WithFields(logger.Fields{
						"period": record.TargetPeriod,
						"model":  model.ModelID,
					}).Warnf("Archived hit result check failed: %v", err)
					mismatches++
				}
			}
		}
	}
	return mismatches
}

// dirSource 本地目录数据源
type dirSource struct {
	cfg *config.Data
}

func (s *dirSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.cfg.Path(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	return data, nil
}

func (s *dirSource) Describe() string {
	return s.cfg.Dir
}

// httpSource HTTP数据源
type httpSource struct {
	httpClient *http.Client
	cfg        *config.Data
}

func (s *httpSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	url := s.cfg.URL(name)
	logger.Debugf("Fetching data resource: %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrDataUnavailable, name, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrDataUnavailable, name, err)
	}
	return body, nil
}

func (s *httpSource) Describe() string {
	return s.cfg.BaseURL
}
