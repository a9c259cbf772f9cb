package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken es el único resultado de error de Validate: token mal formado, firma incorrecta,
// algoritmo inesperado o expirado. ErrExpired se añade solo para distinguir la expiración en logs.
var (
	ErrInvalidToken = errors.New("jwt: token inválido")
	ErrExpired      = errors.New("jwt: token expirado")
)

// Channel canal de login que originó el token.
type Channel string

const (
	ChannelBackOffice Channel = "backoffice"
	ChannelPOS        Channel = "pos"
)

// Claims incluye los claims estándar JWT más la identidad y el tenant de la cuenta.
// El middleware vuelve a resolver la cuenta en DB, así que los roles no viajan en el token.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string  `json:"user_id"`
	Username  string  `json:"username"`
	CompanyID string  `json:"company_id,omitempty"`
	OutletID  string  `json:"outlet_id,omitempty"`
	Channel   Channel `json:"channel"`
}

// Config parámetros del emisor; se construye una sola vez al arrancar.
type Config struct {
	Secret    string
	Algorithm string // HS256 (por defecto), HS384 o HS512
	Issuer    string
	Now       func() time.Time // reloj inyectable; nil = time.Now
}

// Issuer firma y valida tokens con una clave y algoritmo fijos para todo el proceso.
type Issuer struct {
	secret []byte
	method jwt.SigningMethod
	issuer string
	now    func() time.Time
}

// NewIssuer valida la configuración y construye el emisor.
func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("jwt: algoritmo no soportado %q (use HS256, HS384 o HS512)", alg)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Issuer{secret: []byte(cfg.Secret), method: method, issuer: cfg.Issuer, now: now}, nil
}

// Issue firma los claims con exp = ahora + ttl. Devuelve el token y su instante de expiración.
func (i *Issuer) Issue(claims Claims, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		return "", time.Time{}, fmt.Errorf("jwt: ttl debe ser positivo")
	}
	now := i.now()
	exp := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    i.issuer,
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(i.method, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: firmar: %w", err)
	}
	return token, exp, nil
}

// Validate verifica firma, algoritmo, emisor y expiración contra el reloj inyectado.
// Cualquier fallo devuelve un error que envuelve ErrInvalidToken.
func (i *Issuer) Validate(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, ErrExpired)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
