package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rodpaiva/mensageiro-fit/internal/config"
)

func main() {
	fmt.Println("🔍 Checando configuração...")

	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  .env não encontrado: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Falha ao carregar configuração:\n%v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("❌ Configuração inválida:\n%v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Configuração válida!")
	fmt.Printf("📋 Detalhes:\n")
	fmt.Printf("  - Telegram Token: %s\n", maskToken(cfg.TelegramToken))
	fmt.Printf("  - Google Client ID: %s\n", maskToken(cfg.Google.ClientID))
	fmt.Printf("  - Google Client Secret: %s\n", maskToken(cfg.Google.ClientSecret))
	fmt.Printf("  - User Email: %s\n", cfg.UserEmail)
	fmt.Printf("  - DB Host: %s\n", cfg.DB.Host)
	fmt.Printf("  - DB Port: %s\n", cfg.DB.Port)
	fmt.Printf("  - DB User: %s\n", cfg.DB.User)
	fmt.Printf("  - DB Name: %s\n", cfg.DB.DBName)
	fmt.Printf("  - Redis Addr: %s\n", orNone(cfg.Redis.Addr))
	fmt.Printf("  - Report Time: %02d:%02d\n", cfg.Report.Hour, cfg.Report.Minute)
	fmt.Printf("  - Log Level: %v\n", cfg.Logger.Level)
	fmt.Printf("  - Log Output: %s\n", cfg.Logger.OutputPath)
	fmt.Printf("  - Log Format: %s\n", cfg.Logger.Format)
}

func maskToken(token string) string {
	if token == "" {
		return "(não definido)"
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func orNone(s string) string {
	if s == "" {
		return "(em memória)"
	}
	return s
}
