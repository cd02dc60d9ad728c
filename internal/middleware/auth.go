package middleware

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/drift-desk/driftdesk/db"
	"github.com/drift-desk/driftdesk/internal/auth"
	"github.com/drift-desk/driftdesk/internal/models"
	"github.com/drift-desk/driftdesk/internal/types"
)

type AuthenticatedUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

var errInvalidCredentials = errors.New("invalid credentials")

// AuthMiddleware resolves the principal from either a Bearer token or Basic
// credentials. Invalid credentials, a missing user and an inactive account
// all fail the same way.
func AuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")

		if authHeader == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)

		if len(parts) != 2 {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Basic or Bearer {credentials}"})
			return
		}

		var (
			user models.User
			err  error
		)

		switch parts[0] {
		case "Bearer":
			user, err = resolveBearer(parts[1])
		case "Basic":
			user, err = resolveBasic(parts[1])
		default:
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unsupported authorization scheme"})
			return
		}

		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser{
			ID:       user.ID,
			Username: user.Username,
			FullName: user.FullName,
			Role:     user.Role,
		})
		ctx.Next()
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		value, exists := ctx.Get(types.ContextUserKey)

		if !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		user, ok := value.(AuthenticatedUser)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		if user.Role != models.RoleAdmin {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
			return
		}

		ctx.Next()
	}
}

func resolveBearer(tokenString string) (models.User, error) {
	token, err := auth.VerifyJWT(tokenString)

	if err != nil {
		return models.User{}, errInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)

	if !ok {
		return models.User{}, errInvalidCredentials
	}

	username, ok := claims["sub"].(string)

	if !ok || username == "" {
		return models.User{}, errInvalidCredentials
	}

	return lookupActiveUser(username)
}

func resolveBasic(encoded string) (models.User, error) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)

	if err != nil {
		return models.User{}, errInvalidCredentials
	}

	username, password, found := strings.Cut(string(decoded), ":")

	if !found {
		return models.User{}, errInvalidCredentials
	}

	user, err := lookupActiveUser(username)

	if err != nil {
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, errInvalidCredentials
	}

	return user, nil
}

func lookupActiveUser(username string) (models.User, error) {
	var user models.User

	if err := db.DB.Where("username = ?", username).First(&user).Error; err != nil {
		return models.User{}, errInvalidCredentials
	}

	if !user.IsActive {
		return models.User{}, errInvalidCredentials
	}

	return user, nil
}
