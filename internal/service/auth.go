package service

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/templui/betterme/internal/model"
)

const SessionCookieName = "session"

var ErrInvalidSession = errors.New("invalid session")

// AuthService signs the identity asserted by a provider into an HS256 JWT
// kept in a cookie. The user record is resolved from it on every request.
type AuthService struct {
	jwtSecret     string
	jwtExpiry     time.Duration
	secureCookies bool
}

func NewAuthService(jwtSecret string, jwtExpiry time.Duration, secureCookies bool) *AuthService {
	return &AuthService{
		jwtSecret:     jwtSecret,
		jwtExpiry:     jwtExpiry,
		secureCookies: secureCookies,
	}
}

func (s *AuthService) Expiry() time.Duration {
	return s.jwtExpiry
}

func (s *AuthService) GenerateJWT(identity *model.ExternalIdentity) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":         identity.ID,
		"email":       identity.Email,
		"given_name":  identity.GivenName,
		"family_name": identity.FamilyName,
		"picture":     identity.Picture,
		"exp":         now.Add(s.jwtExpiry).Unix(),
		"iat":         now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (s *AuthService) VerifyJWT(tokenString string) (*model.ExternalIdentity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSession
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidSession
	}

	identity := &model.ExternalIdentity{ID: sub}
	identity.Email, _ = claims["email"].(string)
	identity.GivenName, _ = claims["given_name"].(string)
	identity.FamilyName, _ = claims["family_name"].(string)
	identity.Picture, _ = claims["picture"].(string)

	return identity, nil
}

func (s *AuthService) SetJWTCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Expires:  time.Now().Add(s.jwtExpiry),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearJWTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
