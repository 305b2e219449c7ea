package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env    string `yaml:"env" env-default:"local" env-required:"true"`
	Listen struct {
		Enabled bool   `yaml:"enabled" env-default:"true"`
		BindIP  string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port    string `yaml:"port" env-default:"8080"`
		ApiKey  string `yaml:"api_key" env:"LISTEN_API_KEY" env-default:""`
		Timeout int    `yaml:"timeout" env-default:"45"`
	} `yaml:"listen"`
	SQL struct {
		Driver   string `yaml:"driver" env-default:"mysql"`
		HostName string `yaml:"hostname" env-default:"localhost"`
		UserName string `yaml:"username" env-default:"root"`
		Password string `yaml:"password" env:"SQL_PASSWORD" env-default:""`
		Database string `yaml:"database" env-default:""`
		Port     string `yaml:"port" env-default:"3306"`
		Path     string `yaml:"path" env-default:"parcels.db"`
	} `yaml:"sql"`
	Mongo struct {
		Enabled     bool   `yaml:"enabled" env-default:"false"`
		Host        string `yaml:"host" env-default:"localhost"`
		Port        string `yaml:"port" env-default:"27017"`
		User        string `yaml:"user" env-default:""`
		Password    string `yaml:"password" env:"MONGO_PASSWORD" env-default:""`
		Database    string `yaml:"database" env-default:"parcelsync"`
		ExpiredDays int    `yaml:"expired_days" env-default:"90"`
	} `yaml:"mongo"`
	Massar struct {
		Enabled   bool          `yaml:"enabled" env:"MASSAR_ENABLED" env-default:"true"`
		ApiUrl    string        `yaml:"api_url" env:"MASSAR_API_URL" env-default:"https://my.massar.tn/API/add"`
		Login     string        `yaml:"login" env:"MASSAR_LOGIN" env-default:""`
		Password  string        `yaml:"password" env:"MASSAR_PASSWORD" env-default:""`
		Timeout   time.Duration `yaml:"timeout" env-default:"30s"`
		RateLimit float64       `yaml:"rate_limit" env-default:"5"`
		Burst     int           `yaml:"burst" env-default:"10"`
	} `yaml:"massar"`
	Shop struct {
		Url            string `yaml:"url" env:"SHOP_URL" env-default:""`
		ConsumerKey    string `yaml:"consumer_key" env:"SHOP_CONSUMER_KEY" env-default:""`
		ConsumerSecret string `yaml:"consumer_secret" env:"SHOP_CONSUMER_SECRET" env-default:""`
	} `yaml:"shop"`
	Kafka struct {
		Enabled bool     `yaml:"enabled" env-default:"false"`
		Brokers []string `yaml:"brokers" env-default:"localhost:9092"`
		Topic   string   `yaml:"topic" env-default:"order-status"`
		GroupId string   `yaml:"group_id" env-default:"parcelsync"`
	} `yaml:"kafka"`
	Telegram struct {
		Enabled bool   `yaml:"enabled" env-default:"false"`
		BotName string `yaml:"bot_name" env-default:""`
		ApiKey  string `yaml:"api_key" env:"TELEGRAM_API_KEY" env-default:""`
		AdminId string `yaml:"admin_id" env-default:""`
	} `yaml:"telegram"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}
