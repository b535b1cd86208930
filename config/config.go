package config

import (
	"github.com/spf13/viper"
	"sync"
)

var once sync.Once

func InitConfig() {
	once.Do(func() {
		viper.AutomaticEnv()

		viper.BindEnv("metrics_port", "METRICS_PORT")
		viper.BindEnv("telegram_bot_token", "TELEGRAM_BOT_TOKEN")
		viper.BindEnv("pushover_user_key", "PUSHOVER_USER_KEY")
		viper.BindEnv("pushover_api_token", "PUSHOVER_API_TOKEN")
		viper.BindEnv("allowed_user_id", "ALLOWED_USER_ID")
		viper.BindEnv("check_interval", "CHECK_INTERVAL")
		viper.BindEnv("data_file", "DATA_FILE")
		viper.BindEnv("db_path", "DB_PATH")
		viper.BindEnv("debug", "DEBUG")
		viper.BindEnv("lang", "LANG")

		viper.SetDefault("metrics_port", 9090)
		viper.SetDefault("check_interval", 10)
		viper.SetDefault("data_file", "tokens_data.json")
		viper.SetDefault("db_path", "bot.db")
		viper.SetDefault("allowed_user_id", 0)
		viper.SetDefault("debug", false)
		viper.SetDefault("lang", "en")
	})
}

func GetString(key string) string {
	InitConfig()
	return viper.GetString(key)
}

func GetInt(key string) int {
	InitConfig()
	return viper.GetInt(key)
}

func GetInt64(key string) int64 {
	InitConfig()
	return viper.GetInt64(key)
}

func GetBool(key string) bool {
	InitConfig()
	return viper.GetBool(key)
}
