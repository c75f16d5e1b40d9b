package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"finance_linebot/internal/app/di"
	"finance_linebot/internal/app/router"
	"finance_linebot/internal/config"
	"finance_linebot/internal/feature/advisor/adapters/gemini"
	advisorusecase "finance_linebot/internal/feature/advisor/usecase"
	bothandler "finance_linebot/internal/feature/bot/transport/handler"
	botusecase "finance_linebot/internal/feature/bot/usecase"
	chartusecase "finance_linebot/internal/feature/chart/usecase"
	forexusecase "finance_linebot/internal/feature/forex/usecase"
	reporthandler "finance_linebot/internal/feature/report/transport/handler"
	reportusecase "finance_linebot/internal/feature/report/usecase"
	stocksusecase "finance_linebot/internal/feature/stocks/usecase"
	"finance_linebot/internal/platform/line"
	infraredis "finance_linebot/internal/platform/redis"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file, using process environment")
	}
	cfg := config.Load()

	// LINE channel
	lineClient, err := line.New(cfg.LineChannelToken, cfg.LineChannelSecret)
	if err != nil {
		log.Fatal("LINE client: ", err)
	}

	// The bot's own identity drives mention detection, so a failed lookup is
	// fatal rather than degraded.
	botInfo, err := lineClient.BotInfo()
	if err != nil {
		log.Fatal("bot identity lookup: ", err)
	}
	slog.Info("bot identity resolved", "displayName", botInfo.DisplayName, "basicId", botInfo.BasicID)

	// Redis
	var rdb *redisv9.Client
	if cfg.RedisHost != "" {
		if tmp, err := infraredis.NewRedisClient(cfg.RedisHost+":"+cfg.RedisPort, cfg.RedisPassword); err != nil {
			slog.Warn("Redis unavailable, caching in process memory")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}
	store := di.NewStore(rdb)

	// External clients
	yahooClient := di.NewYahooClient()
	fugleClient := di.NewFugleClient()
	twseClient := di.NewTWSEClient()
	rateScraper := di.NewRateScraper()
	renderer := di.NewChartRenderer()

	// Usecase
	forexUC := forexusecase.NewForexUsecase(rateScraper, yahooClient, store)
	stockUC := stocksusecase.NewStockUsecase(yahooClient, fugleClient, twseClient, store)
	chartUC := chartusecase.NewChartUsecase(yahooClient, renderer)
	reportUC := reportusecase.NewReportUsecase(forexUC, stockUC)

	var advisor botusecase.AdvisorService
	if cfg.GeminiAPIKey == "" {
		slog.Warn("GEMINI_API_KEY not set, AI analysis disabled")
	} else if analyzer, err := gemini.NewAnalyzer(context.Background(), cfg.GeminiAPIKey); err != nil {
		slog.Error("Gemini client failed, AI analysis disabled", "error", err)
	} else {
		advisor = advisorusecase.NewAdvisorUsecase(analyzer)
	}

	// Handler
	classifier := botusecase.NewClassifier(botInfo)
	dispatcher := botusecase.NewDispatcher(classifier, lineClient, forexUC, stockUC, chartUC, advisor)
	callbackH := bothandler.NewCallbackHandler(lineClient, dispatcher, botInfo)
	pushH := reporthandler.NewPushHandler(reportUC, lineClient, cfg.TargetID)

	r := router.NewRouter(callbackH, pushH)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
