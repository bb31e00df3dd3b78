// config/auth.go
package config

import (
	"log/slog"
	"os"
)

// JwtKey assina e valida os tokens de sessão.
var JwtKey []byte

func LoadJWTKey() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Error("Erro crítico: a variável de ambiente JWT_SECRET não está definida.")
		os.Exit(1)
	}
	JwtKey = []byte(secret)
}
