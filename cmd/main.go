package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/davecgh/go-spew/spew"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	log "github.com/sirupsen/logrus"

	"reversal-alert-bot/config"
	"reversal-alert-bot/internal/database"
	"reversal-alert-bot/internal/dexscreener"
	"reversal-alert-bot/internal/engine"
	"reversal-alert-bot/internal/pushover"
	"reversal-alert-bot/internal/store"
	"reversal-alert-bot/internal/telegram"
	"reversal-alert-bot/internal/types"
	"reversal-alert-bot/lib/translation"
)

type BotMetrics struct {
	CommandsProcessed prometheus.Counter
	MessagesHandled   prometheus.Counter
	QuotesFetched     prometheus.Counter
	QuoteErrors       prometheus.Counter
	AlertsFired       prometheus.Counter
}

var (
	metrics = NewBotMetrics()
)

func init() {
	config.InitConfig()
	setupLogging()
}

func NewBotMetrics() *BotMetrics {
	metrics := &BotMetrics{
		CommandsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reversal",
			Subsystem: "telegram_bot",
			Name:      "commands_processed",
			Help:      "The total number of processed commands",
		}),
		MessagesHandled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reversal",
			Subsystem: "telegram_bot",
			Name:      "messages_handled",
			Help:      "The total number of handled messages",
		}),
		QuotesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reversal",
			Subsystem: "telegram_bot",
			Name:      "quotes_fetched",
			Help:      "The total number of successful quote lookups",
		}),
		QuoteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reversal",
			Subsystem: "telegram_bot",
			Name:      "quote_errors",
			Help:      "The total number of failed quote lookups",
		}),
		AlertsFired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reversal",
			Subsystem: "telegram_bot",
			Name:      "alerts_fired",
			Help:      "The total number of reversal alerts fired",
		}),
	}

	prometheus.MustRegister(metrics.CommandsProcessed)
	prometheus.MustRegister(metrics.MessagesHandled)
	prometheus.MustRegister(metrics.QuotesFetched)
	prometheus.MustRegister(metrics.QuoteErrors)
	prometheus.MustRegister(metrics.AlertsFired)

	return metrics
}

// meteredQuotes counts quote lookups without the engine or the bot knowing
// about prometheus.
type meteredQuotes struct {
	next engine.QuoteProvider
}

func (m *meteredQuotes) Quote(ctx context.Context, address string) (types.Quote, error) {
	quote, err := m.next.Quote(ctx, address)
	if err != nil {
		metrics.QuoteErrors.Inc()
		return quote, err
	}
	metrics.QuotesFetched.Inc()
	return quote, nil
}

func main() {
	translation.Init(config.GetString("lang"))

	err := database.InitDB(config.GetString("db_path"))
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDB()

	LoadMetricsFromDB()

	tokenStore := store.Open(config.GetString("data_file"))
	log.Debugf("Loaded token store state: %s", spew.Sdump(tokenStore.ListAll()))

	prometheus.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "reversal",
		Subsystem: "telegram_bot",
		Name:      "tracked_tokens",
		Help:      "The current number of tracked tokens",
	}, func() float64 {
		return float64(tokenStore.Len())
	}))

	checkInterval := time.Duration(config.GetInt("check_interval")) * time.Second
	quotes := &meteredQuotes{next: dexscreener.NewClient()}

	bot, err := telegram.NewBot(telegram.BotConfig{
		Token:          config.GetString("telegram_bot_token"),
		Debug:          config.GetBool("debug"),
		UpdatesTimeout: 60,
		AllowedUserID:  config.GetInt64("allowed_user_id"),
		CheckInterval:  checkInterval,
	}, tokenStore, quotes)

	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitor := engine.New(engine.Config{
		Store:    tokenStore,
		Quotes:   quotes,
		Alerts:   pushover.NewClient(config.GetString("pushover_api_token"), config.GetString("pushover_user_key")),
		Interval: checkInterval,
		OnFired: func(alert types.ReversalAlert) {
			metrics.AlertsFired.Inc()
			if err := database.InsertAlertHistory(alert); err != nil {
				log.Errorf("Failed to record alert history: %v", err)
			}
		},
	})
	go monitor.Run(ctx)

	updates, err := bot.GetUpdatesChannel()
	if err != nil {
		log.Fatalf("Failed to get updates channel: %v", err)
	}

	go handleUpdates(bot, updates)

	go func() {
		for {
			time.Sleep(5 * time.Minute)
			SaveMetricsToDB()
		}
	}()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		cancel()
		SaveMetricsToDB()
		log.Println("Metrics saved, shutting down...")
		os.Exit(0)
	}()

	if err := launchMetricsAndHealthServer(config.GetInt("metrics_port")); err != nil {
		log.Fatalf("Failed to start metrics and health server: %v", err)
	}
}

func setupLogging() {
	log.SetLevel(log.InfoLevel)
	if config.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	log.Debug("Starting reversal alert bot...")
}

func handleUpdates(bot *telegram.Bot, updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		if update.Message == nil {
			log.Debug("Received non-message update")
			continue
		}

		if !update.Message.IsCommand() {
			continue
		}

		metrics.MessagesHandled.Inc()

		handleCommand(bot, update)
	}
}

func handleCommand(bot *telegram.Bot, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			stackBuf := make([]byte, 1024)
			stackSize := runtime.Stack(stackBuf, false)
			stackTrace := bytes.TrimRight(stackBuf[:stackSize], "\x00")
			log.Errorf("Recovered from panic: %v\nStack trace: %s", r, stackTrace)
		}
	}()

	err := bot.SendMessage(telegram.Message{
		ChatID:    int(update.Message.Chat.ID),
		Text:      bot.HandleUpdate(update),
		MessageID: update.Message.MessageID,
	})

	if err != nil {
		log.Errorf("Failed to send message: %v", err)
	} else {
		metrics.CommandsProcessed.Inc()
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func launchMetricsAndHealthServer(port int) error {
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", healthCheckHandler)

	log.Infof("Launching metrics and health endpoint on :%d", port)
	return http.ListenAndServe(fmt.Sprintf(":%d", port), http.DefaultServeMux)
}

func LoadMetricsFromDB() {
	commandsProcessed, _ := database.GetMetric("commands_processed")
	messagesHandled, _ := database.GetMetric("messages_handled")
	quotesFetched, _ := database.GetMetric("quotes_fetched")
	quoteErrors, _ := database.GetMetric("quote_errors")
	alertsFired, _ := database.GetMetric("alerts_fired")

	metrics.CommandsProcessed.Add(commandsProcessed)
	metrics.MessagesHandled.Add(messagesHandled)
	metrics.QuotesFetched.Add(quotesFetched)
	metrics.QuoteErrors.Add(quoteErrors)
	metrics.AlertsFired.Add(alertsFired)

	log.Println("Metrics loaded from database.")
}

func SaveMetricsToDB() {
	database.SaveMetric("commands_processed", GetMetricValue(metrics.CommandsProcessed))
	database.SaveMetric("messages_handled", GetMetricValue(metrics.MessagesHandled))
	database.SaveMetric("quotes_fetched", GetMetricValue(metrics.QuotesFetched))
	database.SaveMetric("quote_errors", GetMetricValue(metrics.QuoteErrors))
	database.SaveMetric("alerts_fired", GetMetricValue(metrics.AlertsFired))

	log.Println("Metrics saved to database.")
}

func GetMetricValue(metric prometheus.Collector) float64 {
	var metricValue float64
	metricChan := make(chan prometheus.Metric, 1)
	metric.Collect(metricChan)
	close(metricChan)

	metricProto := &dto.Metric{}
	if err := (<-metricChan).Write(metricProto); err != nil {
		log.Printf("Failed to read metric value: %v", err)
		return 0
	}

	if metricProto.Counter != nil {
		metricValue = metricProto.Counter.GetValue()
	} else if metricProto.Gauge != nil {
		metricValue = metricProto.Gauge.GetValue()
	}
	return metricValue
}
