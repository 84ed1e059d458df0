package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"isizulu-corpus/backend/internal/app"
	"isizulu-corpus/backend/internal/bootstrap"
	"isizulu-corpus/backend/internal/config"
	"isizulu-corpus/backend/internal/infra/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	appMode    string
	sqlitePath string
)

// main 是语料库管理工具入口：种子数据、导入导出、账号管理与清理。
func main() {
	rootCmd := &cobra.Command{
		Use:           "corpusctl",
		Short:         "Manage the isiZulu cultural corpus",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if appMode != "" {
				if err := os.Setenv("APP_MODE", strings.ToLower(strings.TrimSpace(appMode))); err != nil {
					return fmt.Errorf("set APP_MODE: %w", err)
				}
			}
			if sqlitePath != "" {
				if err := os.Setenv("LOCAL_SQLITE_PATH", strings.TrimSpace(sqlitePath)); err != nil {
					return fmt.Errorf("set LOCAL_SQLITE_PATH: %w", err)
				}
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&appMode, "mode", "", "运行模式 local|online，默认读取 APP_MODE")
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "sqlite", "", "本地模式的 SQLite 文件路径")

	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(purgeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// session 持有一次命令执行所需的资源与服务。
type session struct {
	resources *app.Resources
	services  *bootstrap.Services
	logger    *zap.SugaredLogger
}

// withSession 初始化日志、数据库与服务后执行 fn，结束时释放资源。
func withSession(fn func(ctx context.Context, s *session) error) error {
	zapLogger, err := logger.Init()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	sugar := zapLogger.Sugar().With("component", "corpusctl")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flags := config.LoadRuntimeFlags()
	serverCfg, err := config.LoadServerConfig(flags.Mode)
	if err != nil {
		return err
	}

	resources, err := app.InitResources(ctx)
	if err != nil {
		return fmt.Errorf("initialise resources: %w", err)
	}
	defer func() {
		if closeErr := resources.Close(); closeErr != nil {
			sugar.Warnw("close resources failed", "error", closeErr)
		}
	}()

	services, err := bootstrap.BuildServices(sugar, resources, serverCfg)
	if err != nil {
		return err
	}

	return fn(ctx, &session{resources: resources, services: services, logger: sugar})
}
