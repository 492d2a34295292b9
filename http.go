package auth

import (
	"time"

	"github.com/goliatone/go-cookie-auth/middleware/jwtware"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// Response messages that are not carried by an error
const (
	MessageSignedIn  = "You have successfully logged in"
	MessageSignedOut = "Successfully logged out"
)

// OwnerResolver returns the owner id of the resource addressed by c
type OwnerResolver func(c router.Context) string

// OwnerFromParam resolves the owner from a route parameter
func OwnerFromParam(name string) OwnerResolver {
	return func(c router.Context) string {
		return c.Param(name)
	}
}

type RouteAuthenticator struct {
	auth       Authenticator
	cfg        Config
	cookie     CookieConfig
	extractors []jwtware.JWTExtractor
	listeners  []ValidationListener
	now        func() time.Time
	Logger     Logger
}

func NewHTTPAuthenticator(auther Authenticator, cfg Config) *RouteAuthenticator {
	return &RouteAuthenticator{
		auth:       auther,
		cfg:        cfg,
		cookie:     cfg.GetCookie(),
		extractors: jwtware.GetExtractors(cfg.GetTokenLookup()),
		now:        time.Now,
		Logger:     defaultLogger(),
	}
}

func (a *RouteAuthenticator) WithLogger(l Logger) *RouteAuthenticator {
	a.Logger = normalizeLogger(l)
	return a
}

// WithValidationListeners adds listeners that run on every protected
// request after the identity has been resolved.
func (a *RouteAuthenticator) WithValidationListeners(listeners ...ValidationListener) *RouteAuthenticator {
	a.listeners = append(a.listeners, listeners...)
	return a
}

// SignIn handles the sign in request. The token travels only in the
// session cookie.
func (a *RouteAuthenticator) SignIn(c router.Context) error {
	req := SignInRequest{}
	if err := c.Bind(&req); err != nil {
		a.Logger.Debug("sign in body could not be parsed", "error", err)
		req = SignInRequest{}
	}

	result, err := a.auth.SignIn(c.Context(), req)
	if err != nil {
		return sendJSON(c, router.StatusBadRequest, Response{
			Status:   StatusFail,
			Message:  publicMessage(err, "Unable to sign in"),
			LoggedIn: loggedIn(false),
		})
	}

	writeSessionCookie(c, a.cookie, result.Token, a.now())

	return sendJSON(c, router.StatusOK, Response{
		Status:   StatusSuccess,
		Message:  MessageSignedIn,
		LoggedIn: loggedIn(true),
	})
}

// SignOut clears the session cookie whether or not a session exists
func (a *RouteAuthenticator) SignOut(c router.Context) error {
	userID := ""
	if raw, err := jwtware.ExtractRawTokenFromContext(c, a.extractors); err == nil {
		if claims, err := a.auth.TokenCodec().Verify(raw); err == nil {
			userID = claims.UserID()
		}
	}

	clearSessionCookie(c, a.cookie)
	a.auth.RecordActivity(c.Context(), ActivityEvent{
		EventType: ActivityEventLogout,
		UserID:    userID,
	})

	return sendJSON(c, router.StatusOK, Response{
		Status:  StatusSuccess,
		Message: MessageSignedOut,
	})
}

// LoggedIn reports as a bare JSON boolean whether the request carries a
// token that verifies. The user is not reloaded.
func (a *RouteAuthenticator) LoggedIn(c router.Context) error {
	raw, err := jwtware.ExtractRawTokenFromContext(c, a.extractors)
	if err != nil {
		return c.JSON(router.StatusOK, false)
	}
	return c.JSON(router.StatusOK, a.auth.SessionValid(raw))
}

// Protect verifies the session token, reloads the user and stores the
// resulting RequestIdentity in the request locals and context.
func (a *RouteAuthenticator) Protect() router.MiddlewareFunc {
	cfg := jwtware.Config{
		TokenLookup:  a.cfg.GetTokenLookup(),
		ContextKey:   "credentials",
		ErrorHandler: a.gateErrorHandler,
		Verifier: jwtware.TokenVerifierFunc(func(raw string) (jwtware.Claims, error) {
			claims, err := a.auth.TokenCodec().Verify(raw)
			if err != nil {
				return nil, err
			}
			return claims, nil
		}),
		ValidationListeners: []jwtware.ValidationListener{
			a.resolveIdentity,
		},
	}
	RegisterValidationListeners(&cfg, a.listeners...)

	return jwtware.New(cfg)
}

func (a *RouteAuthenticator) resolveIdentity(c router.Context, claims jwtware.Claims) error {
	jc, ok := claims.(*JWTClaims)
	if !ok {
		return ErrInvalidSession
	}

	identity, err := a.auth.ResolveIdentity(c.Context(), jc)
	if err != nil {
		return err
	}

	setRouterIdentity(c, a.cfg.GetContextKey(), identity)
	return nil
}

// IsOwner blocks the request unless the authenticated subject owns the
// addressed resource. It must be mounted after Protect. The owner is read
// from the "id" route parameter unless a resolver is given.
func (a *RouteAuthenticator) IsOwner(resolver ...OwnerResolver) router.MiddlewareFunc {
	resolve := OwnerFromParam("id")
	if len(resolver) > 0 && resolver[0] != nil {
		resolve = resolver[0]
	}

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			identity, ok := GetRouterIdentity(c, a.cfg.GetContextKey())
			owner := resolve(c)

			if !ok || !identity.Complete() || owner == "" || identity.SubjectID() != owner {
				a.Logger.Info("ownership check failed",
					"subject", identity.SubjectID(),
					"owner", owner,
					"path", c.OriginalURL(),
				)
				return sendJSON(c, HTTPStatusOf(ErrNotOwner), Response{
					Status:  StatusFailed,
					Message: ErrNotOwner.Message,
				})
			}

			return c.Next()
		}
	}
}

// gateErrorHandler answers with 200 and an embedded error so clients can
// branch on the body. A stale session is reported as a completed logout.
func (a *RouteAuthenticator) gateErrorHandler(c router.Context, err error) error {
	switch {
	case errors.Is(err, jwtware.ErrJWTMissingOrMalformed):
		err = ErrNotAuthenticated
	case errors.Is(err, ErrStaleSession):
		clearSessionCookie(c, a.cookie)
		return sendJSON(c, router.StatusOK, Response{
			Status:  StatusSuccess,
			Message: ErrStaleSession.Message,
		})
	}

	if reason, ok := ReasonOf(err); ok {
		a.Logger.Info("session token rejected", "reason", reason.String(), "path", c.OriginalURL())
		err = ErrInvalidSession
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) || richErr.Category == errors.CategoryInternal {
		a.Logger.Error("authentication gate failure",
			"error", err,
			"path", c.OriginalURL(),
		)
		return sendJSON(c, router.StatusInternalServerError, Response{
			Status: StatusFail,
			Error:  "Unable to authenticate request",
		})
	}

	a.Logger.Debug("authentication gate rejected request",
		"text_code", richErr.TextCode,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	return sendJSON(c, router.StatusOK, Response{
		Error: richErr.Message,
	})
}

// publicMessage hides internal failures behind fallback
func publicMessage(err error, fallback string) string {
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.Category != errors.CategoryInternal {
		return richErr.Message
	}
	return fallback
}
