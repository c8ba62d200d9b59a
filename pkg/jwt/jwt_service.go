package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"kalorikollen/domain"
	"kalorikollen/internal/utils"

	"github.com/golang-jwt/jwt/v4"
)

const deviceTokenTTL = 365 * 24 * time.Hour

type (
	JWTService interface {
		GenerateTokenDevice(deviceID string) (string, error)
		ValidateTokenDevice(token string) (*jwt.Token, error)
		GetDeviceIDByToken(token string) (string, error)
	}

	jwtDeviceClaim struct {
		DeviceID string `json:"device_id"`
		jwt.RegisteredClaims
	}

	jwtService struct {
		secretKey string
		issuer    string
		ttl       time.Duration
	}
)

func getSecretKey() string {
	utils.LoadConfig()
	return utils.GetConfig("JWT_SECRET")
}

// NewJWTService signs device tokens with JWT_SECRET. An empty secret would
// let anyone mint a token for any device, so it is an error.
func NewJWTService() (JWTService, error) {
	return newDeviceJWTService(getSecretKey())
}

func newDeviceJWTService(secretKey string) (JWTService, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, domain.ErrSecretMissing
	}
	return newJWTService(secretKey, deviceTokenTTL), nil
}

func newJWTService(secretKey string, ttl time.Duration) *jwtService {
	return &jwtService{
		secretKey: secretKey,
		issuer:    "KALORIKOLLEN",
		ttl:       ttl,
	}
}

func (j *jwtService) GenerateTokenDevice(deviceID string) (string, error) {
	now := time.Now()
	claims := jwtDeviceClaim{
		deviceID,
		jwt.RegisteredClaims{
			Subject:   deviceID,
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

func (j *jwtService) parseToken(t_ *jwt.Token) (any, error) {
	if _, ok := t_.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t_.Header["alg"])
	}
	return []byte(j.secretKey), nil
}

func (j *jwtService) ValidateTokenDevice(token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &jwtDeviceClaim{}, j.parseToken)
}

func (j *jwtService) GetDeviceIDByToken(token string) (string, error) {
	t_Token, err := j.ValidateTokenDevice(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrTokenExpired
		}
		return "", domain.ErrTokenInvalid
	}
	if !t_Token.Valid {
		return "", domain.ErrTokenInvalid
	}

	claims, ok := t_Token.Claims.(*jwtDeviceClaim)
	if !ok || claims.DeviceID == "" {
		return "", domain.ErrTokenInvalid
	}
	return claims.DeviceID, nil
}
