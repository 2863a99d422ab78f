package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/SaurabhAlex/school-management-web/core/session"
	inmemdb "github.com/SaurabhAlex/school-management-web/storage/inmem"
)

const tokenContextKey = "userToken"

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

type tokenIssuer struct {
	config middleware.JWTConfig
	ttl    time.Duration
	now    func() time.Time
}

func newTokenIssuer(secret string, ttl time.Duration) *tokenIssuer {
	return &tokenIssuer{
		config: middleware.JWTConfig{
			SigningKey:    []byte(secret),
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    tokenContextKey,
			Claims:        new(Claims),
		},
		ttl: ttl,
		now: time.Now,
	}
}

// middleware accepts valid tokens of accounts that still exist.
func (ti *tokenIssuer) middleware(db *inmemdb.DB) echo.MiddlewareFunc {
	verify := middleware.JWTWithConfig(ti.config)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(func(ctx echo.Context) error {
			if _, err := getContextAccount(ctx, db); err != nil {
				return err
			}
			return next(ctx)
		})
	}
}

func (ti *tokenIssuer) claims(acc inmemdb.Account) *Claims {
	now := ti.now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    "school-api",
			Subject:   acc.ID,
			ExpiresAt: now.Add(ti.ttl).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: acc.Email,
		Role:  acc.Role.String(),
	}
}

// GenerateToken generates a signed JWT token string for acc.
func (ti *tokenIssuer) GenerateToken(acc inmemdb.Account) (string, error) {
	method := jwt.GetSigningMethod(ti.config.SigningMethod)
	token := jwt.NewWithClaims(method, ti.claims(acc))

	ss, err := token.SignedString(ti.config.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func authenticate(db *inmemdb.DB, creds session.Credentials, role session.Role) (inmemdb.Account, error) {
	acc, err := db.AccountByEmail(creds.Email, role)
	if err != nil {
		if err == inmemdb.ErrNotFound {
			return inmemdb.Account{}, errAuthenticationFailed
		}
		return inmemdb.Account{}, errors.Wrap(err, "finding account by email")
	}
	if err = acc.CheckPassword(creds.Password); err != nil {
		return inmemdb.Account{}, errAuthenticationFailed
	}
	return acc, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextAccount(ctx echo.Context, db *inmemdb.DB) (inmemdb.Account, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return inmemdb.Account{}, err
	}
	acc, err := db.Accounts.Get(claims.Subject)
	if err != nil {
		// the account is gone, its token is worthless
		return inmemdb.Account{}, errUnauthorized
	}
	return acc, nil
}
