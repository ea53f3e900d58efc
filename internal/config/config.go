package config

import (
	"fmt"
	"os"
	"strconv"

	"arena-archive/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	DBPath          string
	GameAPIBase     string
	NFTIndexAPIBase string
	NFTIndexAPIKey  string
	ContractAddress string
	PageSize        int
	Concurrency     int
	LogLevel        string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:          getEnv("DB_PATH", "arena.db"),
		GameAPIBase:     getEnv("GAME_API_BASE", "https://federation22.theredvillage.com/api/v2"),
		NFTIndexAPIBase: getEnv("NFT_INDEX_API_BASE", "https://polygon-mainnet.g.alchemy.com/nft/v2"),
		NFTIndexAPIKey:  getEnv("ALCHEMY_API_KEY", ""),
		ContractAddress: getEnv("CHAMPIONS_CONTRACT", "0x57f698d99d964aef66d974739b98ec694724b1b8"),
		PageSize:        getEnvInt("TOURNAMENT_PAGE_SIZE", constants.TournamentPageSize),
		Concurrency:     getEnvInt("CONCURRENT_REQUESTS", constants.ConcurrentRequests),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	if cfg.NFTIndexAPIKey == "" {
		return nil, fmt.Errorf("ALCHEMY_API_KEY is required")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("game_api_base", cfg.GameAPIBase).
		Str("contract", cfg.ContractAddress).
		Int("page_size", cfg.PageSize).
		Int("concurrency", cfg.Concurrency).
		Str("log_level", cfg.LogLevel).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
