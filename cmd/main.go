package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ssq-board/internal/archive"
	"ssq-board/internal/config"
	"ssq-board/internal/logger"
	"ssq-board/internal/scraper"
)

var configPath string

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "ssq-board",
		Short:         "双色球 AI 预测对比面板",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "配置文件路径")

	root.AddCommand(newServeCommand(), newFetchCommand(), newArchiveCommand())
	return root
}

// loadConfig 加载配置并初始化日志
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.InitLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	return cfg, nil
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动Web面板与Telegram机器人",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			app, err := NewApp(cfg)
			if err != nil {
				return fmt.Errorf("应用初始化失败: %w", err)
			}

			if err := app.Start(); err != nil {
				return fmt.Errorf("应用启动失败: %w", err)
			}

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			var runErr error
			select {
			case <-sigChan:
			case runErr = <-app.Errors():
				logger.Errorf("Service failed: %v", runErr)
			}

			if err := app.Stop(); err != nil {
				return fmt.Errorf("关闭时出错: %w", err)
			}
			return runErr
		},
	}
}

func newFetchCommand() *cobra.Command {
	var withArchive bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "抓取开奖历史并写入数据目录",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Data.Dir == "" {
				return errors.New("fetch requires data.dir")
			}

			fmt.Println("📡 正在获取双色球历史数据...")
			result, err := scraper.NewFetcher(&cfg.Scraper).Run(cmd.Context(), cfg.Data.Path(cfg.Data.HistoryFile))
			if err != nil {
				return fmt.Errorf("抓取失败: %w", err)
			}

			if result.Backup != "" {
				fmt.Printf("✓ 已创建备份: %s\n", result.Backup)
			}
			fmt.Printf("✅ 获取 %d 期，新增 %d 期，共 %d 期，最新第 %s 期\n",
				result.Fetched, result.Added, result.Total, result.Latest)

			if withArchive {
				return runArchive(cfg)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withArchive, "archive", false, "抓取后归档已开奖的预测")
	return cmd
}

func newArchiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "将已开奖的预测归档到历史记录",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Data.Dir == "" {
				return errors.New("archive requires data.dir")
			}
			return runArchive(cfg)
		},
	}
}

func runArchive(cfg *config.Config) error {
	fmt.Println("📦 检查待归档的预测...")

	archiver := archive.NewArchiver(
		cfg.Data.Path(cfg.Data.HistoryFile),
		cfg.Data.Path(cfg.Data.PredictionsFile),
		cfg.Data.Path(cfg.Data.ArchiveFile),
	)

	outcome, period, err := archiver.Run()
	if err != nil {
		return fmt.Errorf("归档失败: %w", err)
	}

	switch outcome {
	case archive.OutcomeArchived:
		fmt.Printf("✅ 已将第 %s 期的预测归档到历史记录\n", period)
	case archive.OutcomeAlreadyArchived:
		fmt.Printf("ℹ️  第 %s 期已存在于历史记录中\n", period)
	case archive.OutcomeAwaitingDraw:
		fmt.Printf("ℹ️  第 %s 期尚未开奖，无需归档\n", period)
	case archive.OutcomeMissingResult:
		fmt.Printf("⚠️  找不到第 %s 期的开奖结果，跳过归档\n", period)
	default:
		fmt.Println("⚠️  没有开奖数据，跳过归档")
	}
	return nil
}
