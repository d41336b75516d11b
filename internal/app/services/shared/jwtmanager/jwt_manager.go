package jwtmanager

import (
	"context"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"smartmarkers-service/internal/pkg/constvars"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

const (
	algES256 = "ES256"
	algRS256 = "RS256"
)

// JWTManager signs and verifies the session verification tokens handed to
// the clinician who opens a verified session.
type JWTManager struct {
	log     *zap.Logger
	alg     string
	ttl     time.Duration
	ecPriv  *ecdsa.PrivateKey
	rsaPriv *rsa.PrivateKey
}

type CreateTokenInput struct {
	Subject string
}

type CreateTokenOutput struct {
	Token string
}

type VerifyTokenInput struct {
	Token string
}

type VerifyTokenOutput struct {
	Valid  bool
	Claims map[string]interface{}
}

// NewJWTManager loads a PEM private key for ES256 (default) or RS256.
func NewJWTManager(alg, pemKey string, ttl time.Duration, log *zap.Logger) (*JWTManager, error) {
	alg = strings.ToUpper(strings.TrimSpace(alg))
	if alg == "" {
		alg = algES256
	}

	pemKey = strings.TrimSpace(pemKey)
	if pemKey == "" {
		return nil, fmt.Errorf("VERIFICATION_JWT_KEY is empty")
	}

	block, _ := pem.Decode([]byte(pemKey))
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM for VERIFICATION_JWT_KEY")
	}

	jm := &JWTManager{
		log: log,
		alg: alg,
		ttl: ttl,
	}

	switch alg {
	case algES256:
		ecKey, err := parseECPrivateKey(block)
		if err != nil {
			return nil, err
		}
		jm.ecPriv = ecKey
	case algRS256:
		rsaKey, err := parseRSAPrivateKey(block)
		if err != nil {
			return nil, err
		}
		jm.rsaPriv = rsaKey
	default:
		return nil, fmt.Errorf("unsupported JWT algorithm: %s", alg)
	}

	return jm, nil
}

// CreateToken signs sub, iat, nbf and exp claims for the given subject.
func (j *JWTManager) CreateToken(ctx context.Context, in *CreateTokenInput) (*CreateTokenOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	j.log.Info("JWTManager.CreateToken called", zap.String(constvars.LoggingRequestIDKey, requestID))

	if in == nil || strings.TrimSpace(in.Subject) == "" {
		return nil, fmt.Errorf("subject is required")
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": in.Subject,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": now.Add(j.ttl).Unix(),
	}

	var (
		signed string
		err    error
	)
	switch j.alg {
	case algES256:
		signed, err = jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(j.ecPriv)
	case algRS256:
		signed, err = jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(j.rsaPriv)
	default:
		return nil, fmt.Errorf("unsupported algorithm: %s", j.alg)
	}
	if err != nil {
		return nil, err
	}
	return &CreateTokenOutput{Token: signed}, nil
}

// VerifyToken checks signature and time claims. An unparsable or expired
// token is reported as invalid, not as an error.
func (j *JWTManager) VerifyToken(ctx context.Context, in *VerifyTokenInput) (*VerifyTokenOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	j.log.Info("JWTManager.VerifyToken called", zap.String(constvars.LoggingRequestIDKey, requestID))

	if in == nil || strings.TrimSpace(in.Token) == "" {
		return &VerifyTokenOutput{Valid: false}, fmt.Errorf("token is required")
	}

	keyFunc := func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != j.alg {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Header["alg"])
		}
		switch j.alg {
		case algES256:
			if j.ecPriv == nil {
				return nil, errors.New("ec private key not loaded")
			}
			return j.ecPriv.Public().(*ecdsa.PublicKey), nil
		case algRS256:
			if j.rsaPriv == nil {
				return nil, errors.New("rsa private key not loaded")
			}
			return j.rsaPriv.Public().(*rsa.PublicKey), nil
		default:
			return nil, fmt.Errorf("unsupported algorithm: %s", j.alg)
		}
	}

	parsed, err := jwt.Parse(in.Token, keyFunc)
	if err != nil || !parsed.Valid {
		return &VerifyTokenOutput{Valid: false}, nil
	}

	claims := make(map[string]interface{})
	if c, ok := parsed.Claims.(jwt.MapClaims); ok {
		for k, v := range c {
			claims[k] = v
		}
	}
	return &VerifyTokenOutput{Valid: true, Claims: claims}, nil
}

func parseECPrivateKey(block *pem.Block) (*ecdsa.PrivateKey, error) {
	if block.Type == "EC PRIVATE KEY" {
		key, err := x509.ParseECPrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse EC private key: %w", err)
		}
		return key, nil
	}
	if block.Type == "PRIVATE KEY" {
		keyAny, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse PKCS8 private key: %w", err)
		}
		if ec, ok := keyAny.(*ecdsa.PrivateKey); ok {
			return ec, nil
		}
		return nil, fmt.Errorf("PKCS8 key is not ECDSA")
	}
	return nil, fmt.Errorf("unsupported EC PEM type: %s", block.Type)
}

func parseRSAPrivateKey(block *pem.Block) (*rsa.PrivateKey, error) {
	switch block.Type {
	case "RSA PRIVATE KEY":
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse PKCS1 private key: %w", err)
		}
		return key, nil
	case "PRIVATE KEY":
		keyAny, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse PKCS8 private key: %w", err)
		}
		if rsaKey, ok := keyAny.(*rsa.PrivateKey); ok {
			return rsaKey, nil
		}
		return nil, fmt.Errorf("PKCS8 key is not RSA")
	default:
		return nil, fmt.Errorf("unsupported RSA PEM type: %s", block.Type)
	}
}
