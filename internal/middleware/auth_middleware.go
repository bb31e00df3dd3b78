package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aboscolliaulas/Ensinoverso/config"
	"github.com/aboscolliaulas/Ensinoverso/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// CachedPrincipal reúne tudo que os handlers precisam saber sobre o usuário
// autenticado. É o que vai para o cache de sessão no Redis.
type CachedPrincipal struct {
	UserID         uint   `json:"user_id"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	Approved       bool   `json:"approved"`
	LinkedClassIDs []uint `json:"linked_class_ids"`
}

const principalCacheTTL = 10 * time.Minute

// PrincipalCacheKey é a chave Redis do principal de um usuário. Toda mutação
// de usuário precisa invalidá-la para o novo papel/aprovação valer na hora.
func PrincipalCacheKey(userID uint) string {
	return fmt.Sprintf("user:%d:principal", userID)
}

// AuthMiddleware valida o token JWT (cookie ou header Authorization) e
// resolve o principal — primeiro no cache, depois no banco.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie("auth_token")
		if err != nil || tokenStr == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				handleAuthError(c, "Authorization token not provided")
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				handleAuthError(c, "Invalid Authorization header format")
				return
			}
			tokenStr = parts[1]
		}

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return config.JwtKey, nil
		})

		if err != nil || !token.Valid {
			c.SetCookie("auth_token", "", -1, "/", "", false, true)
			handleAuthError(c, "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			handleAuthError(c, "Invalid token claims")
			return
		}

		userIDFloat, ok := claims["user_id"].(float64)
		if !ok {
			handleAuthError(c, "Invalid user ID format in token")
			return
		}
		userID := uint(userIDFloat)

		cacheKey := PrincipalCacheKey(userID)
		if config.RDB != nil {
			cachedData, err := config.RDB.Get(config.Ctx, cacheKey).Result()
			if err == nil {
				var principal CachedPrincipal
				if json.Unmarshal([]byte(cachedData), &principal) == nil {
					setContextAndProceed(c, &principal)
					return
				}
				slog.Warn("Falha ao desserializar principal do cache", "user_id", userID)
			} else if err != redis.Nil {
				slog.Error("Comando GET no Redis falhou", "error", err, "user_id", userID)
			}
		}

		var dbUser models.User
		if err := config.DB.Preload("LinkedClasses").First(&dbUser, userID).Error; err != nil {
			// Token válido sem perfil correspondente: conta recém-criada ou
			// removida. Degrada para "sem principal" em vez de quebrar.
			c.SetCookie("auth_token", "", -1, "/", "", false, true)
			handleAuthError(c, "User from token not found")
			return
		}

		var classIDs []uint
		for _, cls := range dbUser.LinkedClasses {
			classIDs = append(classIDs, cls.ID)
		}

		principal := CachedPrincipal{
			UserID:         dbUser.ID,
			Name:           dbUser.Name,
			Role:           dbUser.Role,
			Approved:       dbUser.Approved,
			LinkedClassIDs: classIDs,
		}

		if config.RDB != nil {
			jsonData, err := json.Marshal(principal)
			if err != nil {
				slog.Error("Falha ao serializar principal para cache", "error", err, "user_id", userID)
			} else if err := config.RDB.Set(config.Ctx, cacheKey, jsonData, principalCacheTTL).Err(); err != nil {
				slog.Error("Falha ao gravar principal no cache", "error", err, "user_id", userID)
			}
		}

		setContextAndProceed(c, &principal)
	}
}

func setContextAndProceed(c *gin.Context, principal *CachedPrincipal) {
	c.Set("user_id", principal.UserID)
	c.Set("userName", principal.Name)
	c.Set("role", principal.Role)
	c.Set("approved", principal.Approved)
	c.Set("linked_class_ids", principal.LinkedClassIDs)
	c.Next()
}

// RequireApproved bloqueia contas ainda não liberadas pelo administrador.
// Uma conta pendente só consegue consultar o próprio perfil e sair.
func RequireApproved() gin.HandlerFunc {
	return func(c *gin.Context) {
		if approved, exists := c.Get("approved"); !exists || !approved.(bool) {
			c.JSON(http.StatusForbidden, gin.H{"error": "pending_approval"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole restringe o grupo de rotas a um único papel.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if current, exists := c.Get("role"); exists && current.(string) == role {
			c.Next()
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
		c.Abort()
	}
}

// RequireAnyRole aceita qualquer um dos papéis informados.
func RequireAnyRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if current, exists := c.Get("role"); exists {
			for _, role := range roles {
				if current.(string) == role {
					c.Next()
					return
				}
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
		c.Abort()
	}
}

func handleAuthError(c *gin.Context, message string) {
	if strings.Contains(c.GetHeader("Accept"), "text/html") {
		c.Redirect(http.StatusFound, "/")
	} else {
		c.JSON(http.StatusUnauthorized, gin.H{"error": message})
	}
	c.Abort()
}
