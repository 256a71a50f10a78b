package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"gopherai-pdfqa/internal/pkg/jwtutil"
	"gopherai-pdfqa/internal/transport/http/response"
)

// ContextSubjectKey holds the token subject of an authenticated client.
const ContextSubjectKey = "subject"

var (
	errMissingHeader = errors.New("missing authorization header")
	errBadScheme     = errors.New("invalid authorization scheme")
)

// AuthJWT guards a route with HS256 bearer tokens issued by cmd/token.
func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := jwtutil.ParseToken(secret, raw)
		if err != nil {
			log.Debug().
				Err(err).
				Str("request_id", c.GetString(ContextRequestIDKey)).
				Msg("bearer token rejected")
			response.Abort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		c.Set(ContextSubjectKey, claims.Subject)
		c.Next()
	}
}

// bearerToken pulls the token out of an Authorization header. The scheme
// name is matched case-insensitively.
func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errMissingHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errBadScheme
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errBadScheme
	}
	return token, nil
}
