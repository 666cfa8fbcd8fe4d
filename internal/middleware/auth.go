package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/arenaworks/arena-api/internal/model"
	"github.com/arenaworks/arena-api/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

type AuthMiddleware struct {
	userRepo repository.UserRepository
	secret   string
}

func NewAuthMiddleware(userRepo repository.UserRepository, secret string) *AuthMiddleware {
	return &AuthMiddleware{
		userRepo: userRepo,
		secret:   secret,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.secret), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.Subject)
		c.Next()
	}
}

// RequireRole rejects callers whose role sits below min.
func (m *AuthMiddleware) RequireRole(min model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := m.currentUser(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			c.Abort()
			return
		}

		if user.Role < min {
			c.JSON(http.StatusForbidden, gin.H{"error": fmt.Sprintf("%s access required", min)})
			c.Abort()
			return
		}

		c.Set("auth_user", user)
		c.Next()
	}
}

// RequireSelfOrRole allows the bound user themselves through, or any
// caller at or above min. BindUser must run earlier in the chain.
func (m *AuthMiddleware) RequireSelfOrRole(min model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := m.currentUser(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			c.Abort()
			return
		}

		target := TargetUser(c)
		if target == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			c.Abort()
			return
		}

		if user.ID != target.ID && user.Role < min {
			c.JSON(http.StatusForbidden, gin.H{"error": fmt.Sprintf("%s access required", min)})
			c.Abort()
			return
		}

		c.Set("auth_user", user)
		c.Next()
	}
}

// BindUser resolves the :user path parameter (numeric id, or username as
// fallback) and stores the record for downstream handlers. Unresolvable
// targets stop the chain with 404.
func (m *AuthMiddleware) BindUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		param := c.Param("user")

		var (
			user *model.User
			err  error
		)
		if id, parseErr := strconv.ParseUint(param, 10, 64); parseErr == nil {
			user, err = m.userRepo.FindByID(c.Request.Context(), uint(id))
		} else {
			user, err = m.userRepo.FindByUsername(c.Request.Context(), param)
		}

		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve user"})
			}
			c.Abort()
			return
		}

		c.Set("target_user", user)
		c.Next()
	}
}

// AuthUser returns the caller's record cached by the role middleware, or nil.
func AuthUser(c *gin.Context) *model.User {
	value, exists := c.Get("auth_user")
	if !exists {
		return nil
	}
	user, ok := value.(*model.User)
	if !ok {
		return nil
	}
	return user
}

// TargetUser returns the record bound by BindUser, or nil.
func TargetUser(c *gin.Context) *model.User {
	value, exists := c.Get("target_user")
	if !exists {
		return nil
	}
	user, ok := value.(*model.User)
	if !ok {
		return nil
	}
	return user
}

func (m *AuthMiddleware) currentUser(c *gin.Context) (*model.User, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return nil, fmt.Errorf("not authenticated")
	}

	id, err := strconv.ParseUint(userID.(string), 10, 64)
	if err != nil {
		return nil, err
	}

	return m.userRepo.FindByID(c.Request.Context(), uint(id))
}
