package main

import (
	"fmt"
	"os"

	"github.com/echoremedy/echoremedy-bot/internal/config"
	"github.com/joho/godotenv"
)

func main() {
	fmt.Println("🔍 Checking configuration...")

	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  .env file not found: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Configuration is invalid:\n%v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Configuration is valid!")
	fmt.Println("📋 Details:")
	fmt.Printf("  - Telegram Token: %s\n", maskToken(cfg.TelegramToken))
	fmt.Printf("  - HTTP Address: %s\n", orUnset(cfg.HTTPAddr))
	fmt.Printf("  - Upload Dir: %s\n", cfg.UploadDir)
	fmt.Printf("  - Gemini API Key: %s\n", maskToken(cfg.GeminiAPIKey))
	fmt.Printf("  - OpenAI API Key: %s\n", maskToken(cfg.OpenAIAPIKey))
	fmt.Printf("  - DB: %s@%s:%s/%s\n", cfg.DB.User, cfg.DB.Host, cfg.DB.Port, cfg.DB.DBName)
	if cfg.Redis.Enabled() {
		fmt.Printf("  - Redis: %s (db %d)\n", cfg.Redis.Addr(), cfg.Redis.DB)
	} else {
		fmt.Println("  - Redis: <disabled, in-memory state>")
	}
	fmt.Printf("  - Analysis delays: photo %s, voice %s\n", cfg.Analysis.PhotoDelay, cfg.Analysis.VoiceDelay)
	fmt.Printf("  - Log Level: %s\n", cfg.Logger.Level)
	fmt.Printf("  - Log Output: %s\n", cfg.Logger.OutputPath)
	fmt.Printf("  - Log Format: %s\n", cfg.Logger.Format)
}

func orUnset(v string) string {
	if v == "" {
		return "<not set>"
	}
	return v
}

func maskToken(token string) string {
	if token == "" {
		return "<not set>"
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
