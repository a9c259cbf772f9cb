package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/windi9/dwc-pos/internal/application/dto"
	"github.com/windi9/dwc-pos/internal/application/rbac"
	"github.com/windi9/dwc-pos/internal/domain"
	"github.com/windi9/dwc-pos/internal/domain/access"
	"github.com/windi9/dwc-pos/internal/domain/entity"
	"github.com/windi9/dwc-pos/internal/domain/repository"
	"github.com/windi9/dwc-pos/pkg/jwt"
	"github.com/windi9/dwc-pos/pkg/logger"
)

// Config vigencias y URL pública usadas por los flujos de autenticación.
type Config struct {
	BackOfficeTTL time.Duration
	POSTTL        time.Duration
	ActivationTTL time.Duration
	LoginCodeTTL  time.Duration
	PublicBaseURL string
}

// MaxLoginCodeAttempts intentos fallidos que anulan el código de login pendiente.
const MaxLoginCodeAttempts = 5

// Deps colaboradores del caso de uso.
type Deps struct {
	Users       repository.UserRepository
	Roles       repository.RoleRepository
	LoginCodes  repository.VerificationRepository // PostgreSQL o Redis
	Tx          TxRunner
	Credentials *CredentialStore
	Tokens      TokenIssuer
	Notifier    Notifier
	Clock       Clock
	Log         *logger.Logger
}

// AuthUseCase orquesta registro, activación, login de back office (con código de verificación)
// y login POS con PIN.
type AuthUseCase struct {
	users    repository.UserRepository
	codes    repository.VerificationRepository
	graph    *rbac.Graph
	tx       TxRunner
	creds    *CredentialStore
	tokens   TokenIssuer
	notifier Notifier
	clock    Clock
	cfg      Config
	log      *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(deps Deps, cfg Config) *AuthUseCase {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &AuthUseCase{
		users:    deps.Users,
		codes:    deps.LoginCodes,
		graph:    rbac.NewGraph(deps.Roles),
		tx:       deps.Tx,
		creds:    deps.Credentials,
		tokens:   deps.Tokens,
		notifier: deps.Notifier,
		clock:    clock,
		cfg:      cfg,
		log:      log.Named("auth"),
	}
}

// Register crea una cuenta sin verificar con el rol por defecto y envía el enlace de activación.
// Cuenta, rol y token de activación se persisten en una sola transacción; la unicidad la
// garantiza la base de datos (el pre-check solo da un error más amable).
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	username, err := NormalizeUsername(in.Username)
	if err != nil {
		return nil, err
	}
	email, err := NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	user := &entity.User{
		ID:          uuid.NewString(),
		Username:    username,
		Email:       email,
		FullName:    NormalizeName(in.FullName),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.creds.SetPassword(user, in.Password); err != nil {
		return nil, err
	}
	if err := EnsureIdentityAvailable(ctx, uc.users, username, email, ""); err != nil {
		return nil, err
	}

	raw, hash, err := newActivationToken()
	if err != nil {
		return nil, err
	}
	err = uc.tx.RunAccountTx(ctx, func(users repository.UserRepository, roles repository.RoleRepository, verifications repository.VerificationRepository) error {
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		if err := rbac.NewGraph(roles).AssignRole(ctx, user.ID, entity.DefaultRole); err != nil {
			return err
		}
		return verifications.Save(ctx, &entity.VerificationToken{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Purpose:   entity.PurposeActivationLink,
			TokenHash: hash,
			ExpiresAt: now.Add(uc.cfg.ActivationTTL),
			CreatedAt: now,
		})
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("registrar cuenta: %w", err)
	}

	uc.notifier.SendVerificationLink(ctx, user.Email, uc.activationLink(raw))
	uc.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("cuenta registrada, pendiente de verificación")

	return dto.ToUserResponse(user, []entity.Role{{Name: entity.DefaultRole, IsActive: true}}), nil
}

// VerifyEmail consume el token del enlace de activación y verifica exactamente la cuenta a la que
// fue emitido. Token desconocido, usado o vencido → ErrInvalidOrExpiredCode.
func (uc *AuthUseCase) VerifyEmail(ctx context.Context, rawToken string) error {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return domain.ErrInvalidOrExpiredCode
	}
	now := uc.clock.Now()
	var userID string
	err := uc.tx.RunAccountTx(ctx, func(users repository.UserRepository, _ repository.RoleRepository, verifications repository.VerificationRepository) error {
		tok, err := verifications.Consume(ctx, entity.PurposeActivationLink, hashSecret(rawToken), now)
		if err != nil {
			return err
		}
		if tok == nil {
			return domain.ErrInvalidOrExpiredCode
		}
		userID = tok.UserID
		if err := users.MarkEmailVerified(ctx, tok.UserID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrInvalidOrExpiredCode
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidOrExpiredCode) {
			return domain.ErrInvalidOrExpiredCode
		}
		return fmt.Errorf("verificar email: %w", err)
	}
	uc.log.Info().Str("user_id", userID).Msg("email verificado por enlace de activación")
	return nil
}

// Login autentica por username/email + password en el canal de back office.
// Si el email no está verificado no emite token: envía un código y devuelve ErrVerificationRequired.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := uc.lookup(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		uc.creds.EqualizeTiming(in.Password)
		uc.log.Debug().Msg("login rechazado: cuenta inexistente")
		return nil, domain.ErrInvalidCredentials
	}
	if !uc.creds.VerifyPassword(user, in.Password) {
		uc.log.Debug().Str("user_id", user.ID).Msg("login rechazado: password incorrecto")
		return nil, domain.ErrInvalidCredentials
	}
	if !user.CanSignIn() {
		return nil, domain.ErrInactiveAccount
	}
	if !user.EmailVerified {
		if err := uc.sendLoginCode(ctx, user); err != nil {
			return nil, err
		}
		return nil, domain.ErrVerificationRequired
	}
	return uc.issue(user, jwt.ChannelBackOffice, uc.cfg.BackOfficeTTL)
}

// VerifyLoginCode canjea el código enviado en Login por un token de back office.
// El código es de un solo uso y prueba la posesión del buzón, así que también verifica el email.
func (uc *AuthUseCase) VerifyLoginCode(ctx context.Context, in dto.VerifyCodeRequest) (*dto.TokenResponse, error) {
	email, err := NormalizeEmail(in.Email)
	if err != nil || !IsPin(in.Code) {
		return nil, domain.ErrInvalidOrExpiredCode
	}
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("buscar cuenta: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidOrExpiredCode
	}
	if !user.CanSignIn() {
		return nil, domain.ErrInactiveAccount
	}

	tok, err := uc.codes.Consume(ctx, entity.PurposeLoginCode, loginCodeHash(user.ID, in.Code), uc.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("consumir código: %w", err)
	}
	if tok == nil || tok.UserID != user.ID {
		uc.log.Debug().Str("user_id", user.ID).Msg("código de login inválido o expirado")
		uc.recordFailedCode(ctx, user.ID)
		return nil, domain.ErrInvalidOrExpiredCode
	}

	if !user.EmailVerified {
		if err := uc.users.MarkEmailVerified(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("marcar email verificado: %w", err)
		}
		user.EmailVerified = true
	}
	return uc.issue(user, jwt.ChannelBackOffice, uc.cfg.BackOfficeTTL)
}

// PosLogin autentica una terminal POS con username/email + PIN. No hay verificación de email
// y el token emitido es de vida corta.
func (uc *AuthUseCase) PosLogin(ctx context.Context, in dto.PosLoginRequest) (*dto.TokenResponse, error) {
	user, err := uc.lookup(ctx, in.UsernameOrEmail)
	if err != nil {
		return nil, err
	}
	if user == nil {
		uc.creds.EqualizeTiming(in.Pin)
		return nil, domain.ErrInvalidCredentials
	}
	if !uc.creds.VerifyPin(user, in.Pin) {
		uc.log.Debug().Str("user_id", user.ID).Bool("pin_configured", user.PinHash != nil).Msg("login POS rechazado")
		return nil, domain.ErrInvalidCredentials
	}
	if !user.CanSignIn() {
		return nil, domain.ErrInactiveAccount
	}
	return uc.issue(user, jwt.ChannelPOS, uc.cfg.POSTTL)
}

// Me devuelve la cuenta autenticada con sus roles y permisos resueltos.
func (uc *AuthUseCase) Me(ctx context.Context, p *access.Principal) (*dto.MeResponse, error) {
	if p == nil || p.User == nil {
		return nil, domain.ErrUnauthorized
	}
	roles, err := uc.graph.RolesOf(ctx, p.UserID())
	if err != nil {
		return nil, err
	}
	perms, err := uc.graph.PermissionsOf(ctx, p.UserID())
	if err != nil {
		return nil, err
	}
	out := &dto.MeResponse{
		User:        *dto.ToUserResponse(p.User, roles),
		Roles:       make([]string, 0, len(roles)),
		Permissions: make([]string, 0, len(perms)),
		Superadmin:  p.Superadmin,
		Channel:     string(p.Channel),
	}
	for _, r := range roles {
		out.Roles = append(out.Roles, string(r.Name))
	}
	for _, perm := range perms {
		out.Permissions = append(out.Permissions, string(perm.Name))
	}
	return out, nil
}

func (uc *AuthUseCase) lookup(ctx context.Context, login string) (*entity.User, error) {
	ident, ok := normalizeLogin(login)
	if !ok {
		return nil, nil
	}
	user, err := uc.users.FindByLogin(ctx, ident)
	if err != nil {
		return nil, fmt.Errorf("buscar cuenta: %w", err)
	}
	return user, nil
}

// recordFailedCode cuenta el intento fallido y anula el código pendiente al llegar a MaxLoginCodeAttempts.
func (uc *AuthUseCase) recordFailedCode(ctx context.Context, userID string) {
	n, err := uc.codes.RecordFailedAttempt(ctx, userID, entity.PurposeLoginCode)
	if err != nil {
		uc.log.Error().Err(err).Str("user_id", userID).Msg("no se pudo registrar el intento fallido")
		return
	}
	if n < MaxLoginCodeAttempts {
		return
	}
	if err := uc.codes.DeletePending(ctx, userID, entity.PurposeLoginCode); err != nil {
		uc.log.Error().Err(err).Str("user_id", userID).Msg("no se pudo anular el código de login")
		return
	}
	uc.log.Warn().Str("user_id", userID).Int("attempts", n).Msg("código de login anulado por intentos fallidos")
}

// sendLoginCode invalida los códigos pendientes de la cuenta y envía uno nuevo.
func (uc *AuthUseCase) sendLoginCode(ctx context.Context, user *entity.User) error {
	code, err := newLoginCode()
	if err != nil {
		return err
	}
	if err := uc.codes.DeletePending(ctx, user.ID, entity.PurposeLoginCode); err != nil {
		return fmt.Errorf("invalidar códigos previos: %w", err)
	}
	now := uc.clock.Now()
	if err := uc.codes.Save(ctx, &entity.VerificationToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Purpose:   entity.PurposeLoginCode,
		TokenHash: loginCodeHash(user.ID, code),
		ExpiresAt: now.Add(uc.cfg.LoginCodeTTL),
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("guardar código de login: %w", err)
	}
	uc.notifier.SendVerificationCode(ctx, user.Email, code)
	uc.log.Info().Str("user_id", user.ID).Msg("email sin verificar: código de login enviado")
	return nil
}

func (uc *AuthUseCase) issue(user *entity.User, channel jwt.Channel, ttl time.Duration) (*dto.TokenResponse, error) {
	token, exp, err := uc.tokens.Issue(jwt.Claims{
		UserID:    user.ID,
		Username:  user.Username,
		CompanyID: user.CompanyRef(),
		OutletID:  user.OutletRef(),
		Channel:   channel,
	}, ttl)
	if err != nil {
		return nil, fmt.Errorf("emitir token: %w", err)
	}
	uc.log.Info().Str("user_id", user.ID).Str("channel", string(channel)).Msg("token emitido")
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   exp,
		Channel:     string(channel),
		User:        *dto.ToUserResponse(user, nil),
	}, nil
}

func (uc *AuthUseCase) activationLink(raw string) string {
	return uc.cfg.PublicBaseURL + "/api/v1/auth/verify-email?token=" + url.QueryEscape(raw)
}

// EnsureIdentityAvailable comprueba que username y email no estén en uso por otra cuenta.
// Es solo una optimización para el mensaje de error: la restricción única de la base de datos
// sigue siendo la garantía ante inserciones concurrentes.
func EnsureIdentityAvailable(ctx context.Context, users repository.UserRepository, username, email, exceptID string) error {
	if username != "" {
		u, err := users.GetByUsername(ctx, username)
		if err != nil {
			return fmt.Errorf("buscar username: %w", err)
		}
		if u != nil && u.ID != exceptID {
			return fmt.Errorf("username ya registrado: %w", domain.ErrConflict)
		}
	}
	if email != "" {
		u, err := users.GetByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("buscar email: %w", err)
		}
		if u != nil && u.ID != exceptID {
			return fmt.Errorf("email ya registrado: %w", domain.ErrConflict)
		}
	}
	return nil
}
