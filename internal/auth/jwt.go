package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gestor-dev/gestor/internal/models"
	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

var jwtSecret string

const (
	accessTokenTTL  = time.Hour
	refreshTokenTTL = time.Hour * 168
)

func InitJWTSecret() error {
	jwtSecret = os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	return nil
}

func GenerateAccessToken(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"rol":      string(user.Rol),
		"exp":      time.Now().Add(accessTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// GenerateRefreshToken signs a refresh token and persists its JTI so it can
// be redeemed exactly once.
func GenerateRefreshToken(database *gorm.DB, user models.User) (string, error) {
	jti, err := uuid.NewV4()

	if err != nil {
		return "", err
	}

	expiresAt := time.Now().Add(refreshTokenTTL)

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"type":    "refresh",
		"jti":     jti.String(),
		"exp":     expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(jwtSecret))

	if err != nil {
		return "", err
	}

	record := models.Token{
		UserID:    user.ID,
		JTI:       jti,
		ExpiresAt: expiresAt,
	}

	if err := database.Create(&record).Error; err != nil {
		return "", err
	}

	return signed, nil
}

func GenerateTokenPair(database *gorm.DB, user models.User) (string, string, error) {
	access, err := GenerateAccessToken(user)

	if err != nil {
		return "", "", err
	}

	refresh, err := GenerateRefreshToken(database, user)

	if err != nil {
		return "", "", err
	}

	return access, refresh, nil
}

func VerifyJWT(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("Invalid or expired token")
	}

	return token, nil
}

// RedeemRefreshToken validates a refresh token against its stored JTI,
// consumes it and returns the user it belongs to. The row is deleted so
// the token cannot be replayed.
func RedeemRefreshToken(database *gorm.DB, tokenString string) (models.User, error) {
	token, err := VerifyJWT(tokenString)

	if err != nil {
		return models.User{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)

	if !ok {
		return models.User{}, fmt.Errorf("invalid token claims")
	}

	tokenType, ok := claims["type"].(string)

	if !ok || tokenType != "refresh" {
		return models.User{}, fmt.Errorf("not a refresh token")
	}

	jtiStr, ok := claims["jti"].(string)

	if !ok {
		return models.User{}, fmt.Errorf("missing jti in token")
	}

	jti, err := uuid.FromString(jtiStr)

	if err != nil {
		return models.User{}, fmt.Errorf("invalid jti format: %w", err)
	}

	userIDFloat, ok := claims["user_id"].(float64)

	if !ok {
		return models.User{}, fmt.Errorf("invalid user ID in token claims")
	}

	var record models.Token

	err = database.Where("jti = ? AND user_id = ? AND expires_at > ?", jti, uint(userIDFloat), time.Now()).First(&record).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, fmt.Errorf("refresh token not found or expired")
		}
		return models.User{}, err
	}

	var user models.User

	if err := database.First(&user, record.UserID).Error; err != nil {
		return models.User{}, err
	}

	if err := database.Unscoped().Delete(&record).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}
