package helper

import (
	"errors"
	"strings"
	"time"

	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 8

type Auth struct {
	Secret string
	TTL    time.Duration
}

func SetupAuth(s string, ttl time.Duration) Auth {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return Auth{
		Secret: s,
		TTL:    ttl,
	}
}

func (a Auth) GenerateToken(userID uint, email string, role string) (string, error) {
	if userID == 0 || email == "" || role == "" {
		return "", errors.New("required inputs are missing to generate token")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"role":    role,
		"iat":     now.Unix(),
		"exp":     now.Add(a.TTL).Unix(),
	})

	tokenStr, err := token.SignedString([]byte(a.Secret))
	if err != nil {
		return "", errors.New("unable to sign the token")
	}

	return tokenStr, nil
}

func (a Auth) VerifyToken(tokenString string) (dto.AuthResponse, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return dto.AuthResponse{}, errors.New("missing token")
	}

	// accept both "Bearer <token>" and a bare token
	if strings.HasPrefix(strings.ToLower(tokenString), "bearer ") {
		parts := strings.SplitN(tokenString, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
			return dto.AuthResponse{}, errors.New("invalid token format")
		}
		tokenString = strings.TrimSpace(parts[1])
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return dto.AuthResponse{}, errors.New("token expired")
		}
		return dto.AuthResponse{}, errors.New("token parse error")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return dto.AuthResponse{}, errors.New("invalid token claims")
	}

	expFloat, ok := claims["exp"].(float64)
	if !ok {
		return dto.AuthResponse{}, errors.New("missing expiry")
	}
	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return dto.AuthResponse{}, errors.New("invalid subject")
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	iat, _ := claims["iat"].(float64)

	return dto.AuthResponse{
		UserID: int(userID),
		Email:  email,
		Role:   role,
		Expiry: expFloat,
		Iat:    iat,
	}, nil
}

func HashPassword(plain string) (string, error) {
	if len(plain) < MinPasswordLength {
		return "", errors.New("password must be at least 8 characters")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.New("failed to hash password")
	}
	return string(b), nil
}

func VerifyPassword(plain, hashed string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)); err != nil {
		return errors.New("invalid email or password")
	}
	return nil
}
