package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const ContextKeyAPIKeyHash = "api_key_hash"

// APIKeyAuth returns middleware that validates the configured API key header
// with a constant-time comparison. Only a short fingerprint of the presented
// key is ever logged.
func APIKeyAuth(headerName, masterKey string) gin.HandlerFunc {
	master := normalizeKey(masterKey)
	return func(c *gin.Context) {
		incoming := normalizeKey(c.GetHeader(headerName))
		if incoming == "" {
			log.Printf("auth: missing API key from %s", c.ClientIP())
			c.Header("WWW-Authenticate", "ApiKey")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "missing API key in header"},
			})
			return
		}

		if master == "" {
			log.Printf("auth: master API key not configured")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   gin.H{"code": "INTERNAL_ERROR", "message": "API key authentication not configured"},
			})
			return
		}

		if subtle.ConstantTimeCompare([]byte(incoming), []byte(master)) != 1 {
			log.Printf("auth: invalid API key from %s (hash=%s)", c.ClientIP(), fingerprintKey(incoming))
			c.Header("WWW-Authenticate", "ApiKey")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "invalid or missing API key"},
			})
			return
		}

		c.Set(ContextKeyAPIKeyHash, fingerprintKey(incoming))
		c.Next()
	}
}

// fingerprintKey returns a short SHA-256 fingerprint for anonymized logging.
func fingerprintKey(key string) string {
	if key == "" {
		return "none"
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:16]
}

func normalizeKey(key string) string {
	key = strings.TrimSpace(key)
	key = strings.ReplaceAll(key, "\r", "")
	return strings.ReplaceAll(key, "\n", "")
}
