package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gabekutner/roommatefinder-backend/models"
)

const otpTTL = 10 * time.Minute

// IssueOTP creates (or reuses) the profile for an identifier and stores a
// bcrypt hash of a fresh 4-digit code. Delivery is out of scope here; the
// code is logged so dev setups can complete the flow without email.
func IssueOTP(identifier string) error {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if identifier == "" {
		return fmt.Errorf("identifier required")
	}
	var profile models.Profile
	if err := db.Where("identifier = ?", identifier).First(&profile).Error; err != nil {
		profile = models.Profile{Identifier: identifier}
		if err := db.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to create profile: %v", err)
		}
	}

	code, err := randomOTPCode()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	otp := models.OTP{Identifier: identifier, CodeHash: hash, ExpiresAt: time.Now().Add(otpTTL)}
	if err := db.Create(&otp).Error; err != nil {
		return err
	}
	// TODO: hook up the mailer; until then the code only appears in logs.
	log.Printf("issued OTP for %s: %s", identifier, code)
	return nil
}

// VerifyOTP checks the newest unconsumed code for the identifier, marks it
// consumed and the profile verified, and returns the profile.
func VerifyOTP(identifier, code string) (*models.Profile, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	var otp models.OTP
	err := db.Where("identifier = ? AND consumed = ?", identifier, false).
		Order("created_at desc").First(&otp).Error
	if err != nil {
		return nil, fmt.Errorf("invalid code")
	}
	if time.Now().After(otp.ExpiresAt) {
		return nil, fmt.Errorf("code expired")
	}
	if bcrypt.CompareHashAndPassword(otp.CodeHash, []byte(code)) != nil {
		return nil, fmt.Errorf("invalid code")
	}
	db.Model(&otp).Update("consumed", true)

	var profile models.Profile
	if err := db.Where("identifier = ?", identifier).First(&profile).Error; err != nil {
		return nil, fmt.Errorf("profile not found")
	}
	if !profile.OtpVerified {
		db.Model(&profile).Update("otp_verified", true)
		profile.OtpVerified = true
	}
	return &profile, nil
}

func randomOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

// mintAccessToken signs a short-lived HS256 token for the profile.
func mintAccessToken(profile *models.Profile, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        profile.ID.String(),
		"identifier": profile.Identifier,
		"exp":        time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(jwtSecret)
}

// parseAccessToken validates the token and returns the profile id claim.
func parseAccessToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid claims")
	}
	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid subject")
	}
	return id, nil
}

// createAndStoreRefreshToken generates a random refresh token, stores its hash with expiry and returns the raw token string
func createAndStoreRefreshToken(profileID uuid.UUID) (string, error) {
	// generate random 32-byte token (hex)
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	// hash for storage
	h := sha256.Sum256([]byte(token))
	th := hex.EncodeToString(h[:])
	rt := models.RefreshToken{ProfileID: profileID, TokenHash: th, ExpiresAt: time.Now().Add(30 * 24 * time.Hour)}
	if err := db.Create(&rt).Error; err != nil {
		return "", err
	}
	return token, nil
}

// helper to find refresh token record by raw token string
func findRefreshTokenByRaw(token string) (*models.RefreshToken, error) {
	h := sha256.Sum256([]byte(token))
	th := hex.EncodeToString(h[:])
	var rt models.RefreshToken
	if err := db.Where("token_hash = ?", th).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}
