package bootstrap

import (
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort     string `mapstructure:"SERVER_PORT"`
	RedisUrl       string `mapstructure:"REDIS_URL"`
	MongoUri       string `mapstructure:"MONGO_URI"`
	IsLocalCors    bool   `mapstructure:"LOCAL_CORS"`
	StockfishPath  string `mapstructure:"STOCKFISH_PATH"`
	EngineDepth    int    `mapstructure:"ENGINE_DEPTH"`
	EngineThreads  int    `mapstructure:"ENGINE_THREADS"`
	EngineHashMB   int    `mapstructure:"ENGINE_HASH_MB"`
	EngineSessions int    `mapstructure:"ENGINE_SESSIONS"`
	MaxPGNLength   int    `mapstructure:"MAX_PGN_LENGTH"`
	AccuracyK      int    `mapstructure:"ACCURACY_K"`
	MateGuard      bool   `mapstructure:"MATE_GUARD"`
	ResultTTLHours int    `mapstructure:"RESULT_TTL_HOURS"`
}

func Setup(cfgPath string) (*Config, error) {
	viper.SetConfigFile(cfgPath)

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	var cfg Config

	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
