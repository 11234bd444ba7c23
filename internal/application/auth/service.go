package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/nitinder-api/internal/domain"
	"github.com/nitinder-api/internal/pkg/id"
	"github.com/nitinder-api/internal/pkg/otp"
	"github.com/nitinder-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

const otpLength = 6

// SendOTPResult is returned after a registration code was issued.
type SendOTPResult struct {
	Message   string `json:"message"`
	ExpiresIn int    `json:"expiresIn"`
}

type Service interface {
	SendOTP(ctx context.Context, req domain.SendOTPRequest) (*SendOTPResult, error)
	VerifyOTPAndRegister(ctx context.Context, req domain.VerifyOTPRequest) (*domain.AuthResult, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResult, error)
}

type otpStore interface {
	Put(ctx context.Context, o *domain.EmailOTP) error
	DeleteByEmail(ctx context.Context, email string) error
	LatestUnverified(ctx context.Context, email string) (*domain.EmailOTP, error)
	IncrementAttempts(ctx context.Context, email, otpID string) error
	MarkVerified(ctx context.Context, email, otpID string, at time.Time) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
}

type profileDirectory interface {
	CreateEmpty(ctx context.Context, userID, name string) (*domain.Profile, error)
	Me(ctx context.Context, userID string) (*domain.Profile, error)
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type throttle interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

type jwtSigner interface {
	Sign(userID, email, sessionID string) (string, error)
}

type service struct {
	otpRepo      otpStore
	userRepo     userStore
	sessionRepo  sessionStore
	profiles     profileDirectory
	mailer       mailer
	throttle     throttle
	jwtProvider  jwtSigner
	emailPattern *regexp.Regexp
	otpTTL       time.Duration
	maxAttempts  int
	now          func() time.Time
}

// ServiceDeps wires the auth service. Throttle is optional.
type ServiceDeps struct {
	OTPRepo      otpStore
	UserRepo     userStore
	SessionRepo  sessionStore
	Profiles     profileDirectory
	Mailer       mailer
	Throttle     throttle
	JWTProvider  jwtSigner
	EmailPattern *regexp.Regexp
	OTPTTL       time.Duration
	MaxAttempts  int
}

func NewService(deps ServiceDeps) Service {
	return &service{
		otpRepo:      deps.OTPRepo,
		userRepo:     deps.UserRepo,
		sessionRepo:  deps.SessionRepo,
		profiles:     deps.Profiles,
		mailer:       deps.Mailer,
		throttle:     deps.Throttle,
		jwtProvider:  deps.JWTProvider,
		emailPattern: deps.EmailPattern,
		otpTTL:       deps.OTPTTL,
		maxAttempts:  deps.MaxAttempts,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) SendOTP(ctx context.Context, req domain.SendOTPRequest) (*SendOTPResult, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, fmt.Errorf("email is required: %w", domain.ErrBadRequest)
	}
	if !s.emailPattern.MatchString(email) {
		return nil, fmt.Errorf("only NITJ student emails are allowed (format: name.branch.year@nitj.ac.in): %w", domain.ErrBadRequest)
	}
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("user already exists with this email: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if s.throttle != nil {
		ok, err := s.throttle.Allow(ctx, email)
		if err != nil {
			slog.Warn("otp throttle unavailable", "err", err)
		} else if !ok {
			return nil, fmt.Errorf("please wait before requesting another OTP: %w", domain.ErrTooManyRequests)
		}
	}

	code, err := s.issueOTP(ctx, email)
	if err != nil {
		if s.throttle != nil {
			_ = s.throttle.Reset(ctx, email)
		}
		return nil, err
	}

	go func() {
		body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(s.otpTTL.Minutes()))
		if err := s.mailer.SendEmail(email, "Your verification code", body); err != nil {
			slog.Error("send otp email", "email", email, "err", err)
		}
	}()

	return &SendOTPResult{Message: "OTP sent to your email", ExpiresIn: int(s.otpTTL.Seconds())}, nil
}

// issueOTP replaces any outstanding codes for email with a fresh one.
func (s *service) issueOTP(ctx context.Context, email string) (string, error) {
	if err := s.otpRepo.DeleteByEmail(ctx, email); err != nil {
		return "", err
	}
	code, err := otp.Generate(otpLength)
	if err != nil {
		return "", err
	}
	now := s.now()
	rec := &domain.EmailOTP{
		Email:     email,
		OTPID:     id.NewAt(now),
		Code:      code,
		ExpiresAt: now.Add(s.otpTTL).Unix(),
		CreatedAt: now,
	}
	if err := s.otpRepo.Put(ctx, rec); err != nil {
		return "", err
	}
	return code, nil
}

func (s *service) VerifyOTPAndRegister(ctx context.Context, req domain.VerifyOTPRequest) (*domain.AuthResult, error) {
	req.Email = normalizeEmail(req.Email)
	req.OTP = strings.TrimSpace(req.OTP)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Password = strings.TrimSpace(req.Password)
	if req.Email == "" || req.OTP == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		return nil, fmt.Errorf("missing required fields: %w", domain.ErrBadRequest)
	}
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	if !s.emailPattern.MatchString(req.Email) {
		return nil, fmt.Errorf("only NITJ student emails are allowed: %w", domain.ErrBadRequest)
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("user already exists: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	rec, err := s.otpRepo.LatestUnverified(ctx, req.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("no OTP found for this email: %w", domain.ErrBadRequest)
	}
	if err != nil {
		return nil, err
	}
	now := s.now()
	if rec.Expired(now) {
		return nil, fmt.Errorf("OTP has expired. Please request a new one: %w", domain.ErrBadRequest)
	}
	if rec.Exhausted(s.maxAttempts) {
		return nil, fmt.Errorf("too many failed attempts. Please request a new OTP: %w", domain.ErrBadRequest)
	}
	if rec.Code != req.OTP {
		if err := s.otpRepo.IncrementAttempts(ctx, rec.Email, rec.OTPID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("invalid OTP code: %w", domain.ErrBadRequest)
	}
	if err := s.otpRepo.MarkVerified(ctx, rec.Email, rec.OTPID, now); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		UserID:       id.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Put(ctx, u); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.FirstName + " " + req.LastName)
	if _, err := s.profiles.CreateEmpty(ctx, u.UserID, name); err != nil {
		return nil, err
	}
	return s.startSession(ctx, u, name)
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResult, error) {
	email := normalizeEmail(req.Email)
	password := strings.TrimSpace(req.Password)
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password required: %w", domain.ErrBadRequest)
	}
	if !s.emailPattern.MatchString(email) {
		return nil, fmt.Errorf("only NITJ student emails are allowed (format: name.branch.year@nitj.ac.in): %w", domain.ErrBadRequest)
	}
	u, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if !u.Active() {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	name := u.Email
	if p, err := s.profiles.Me(ctx, u.UserID); err == nil && p.Name != "" {
		name = p.Name
	}
	return s.startSession(ctx, u, name)
}

func (s *service) startSession(ctx context.Context, u *domain.User, name string) (*domain.AuthResult, error) {
	now := s.now()
	sess := &domain.Session{
		SessionID: id.New(),
		UserID:    u.UserID,
		Enable:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessionRepo.Put(ctx, sess); err != nil {
		return nil, err
	}
	token, err := s.jwtProvider.Sign(u.UserID, u.Email, sess.SessionID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return &domain.AuthResult{Token: token, Name: name, Session: sess}, nil
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }
