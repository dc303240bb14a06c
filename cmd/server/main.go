package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/cheese-thief/internal/config"
	"github.com/palemoky/cheese-thief/internal/logger"
	"github.com/palemoky/cheese-thief/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	envFile := flag.String("env", ".env", "环境变量文件")
	flag.Parse()

	// .env 需要在读取配置前加载，环境变量会覆盖配置文件
	if err := config.LoadDotEnv(*envFile); err != nil {
		log.Fatal().Err(err).Str("file", *envFile).Msg("加载环境变量文件失败")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("加载配置文件失败，使用默认配置")
		cfg = config.Default()
	}
	logger.Init(cfg.Log.Level, cfg.Log.Pretty)

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("创建服务器失败")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("🧀 奶酪大盗服务器启动中...")
	if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("服务器异常退出")
	}
}
