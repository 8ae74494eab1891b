package config

import (
	"os"
	"strconv"
)

// CreditPackage describes a purchasable credit bundle. The package id is
// what checkout sessions carry in their metadata.
type CreditPackage struct {
	ID       string `json:"id"`
	Credits  int64  `json:"credits"`
	PriceNOK int64  `json:"price_nok"`
}

type CreditsConfig struct {
	SongCost int64
	Packages []CreditPackage
}

func LoadCreditsConfig() *CreditsConfig {
	return &CreditsConfig{
		SongCost: getEnvAsInt64("CREDITS_SONG_COST", 25),
		Packages: []CreditPackage{
			{ID: "starter", Credits: 50, PriceNOK: 4900},
			{ID: "standard", Credits: 150, PriceNOK: 9900},
			{ID: "studio", Credits: 500, PriceNOK: 24900},
		},
	}
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.ParseInt(val, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}
