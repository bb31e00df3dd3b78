// config/database.go

package config

import (
	"log/slog"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		// Sem banco de dados não há aplicação — encerra imediatamente.
		slog.Error("Erro crítico: a variável de ambiente DB_URL não está definida.")
		os.Exit(1)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		slog.Error("Erro ao conectar no banco de dados", "error", err)
		os.Exit(1)
	}

	DB = db
	slog.Info("Conexão com o banco de dados estabelecida!")
}
