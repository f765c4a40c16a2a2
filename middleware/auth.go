package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Players get a token when they create or join a lobby; leave and
// start-session calls must present it, so only the player who holds the
// token can act as that player id.

const playerIDKey = "player_id"

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "noodleio-dev-secret"
	}
	return []byte(secret)
}

// IssuePlayerToken mints a signed token for a lobby player.
func IssuePlayerToken(playerID, playerName string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  playerID,
		"name": playerName,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// ParsePlayerToken validates a token and returns the player id it names.
func ParsePlayerToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

// AuthRequired checks the Bearer token and stores the player id in the
// request context for handlers to pick up.
func AuthRequired(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	playerID, err := ParsePlayerToken(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	c.Set(playerIDKey, playerID)
	c.Next()
}

// PlayerID returns the authenticated player id set by AuthRequired.
func PlayerID(c *gin.Context) string {
	id, _ := c.Get(playerIDKey)
	s, _ := id.(string)
	return s
}
