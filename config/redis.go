// config/redis.go
package config

import (
	"context"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client
var Ctx = context.Background()

func ConnectRedis() {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		slog.Warn("Variável de ambiente REDIS_ADDR não definida, o cache de sessão ficará desativado.")
		return
	}

	RDB = redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	// Verifica a conexão antes de confiar no cliente.
	if _, err := RDB.Ping(Ctx).Result(); err != nil {
		slog.Error("Não foi possível conectar ao Redis", "error", err)
		RDB = nil
		return
	}

	slog.Info("Conexão com o Redis estabelecida!")
}
