package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
)

// Response messages used by the controller
const (
	MessagePasswordUpdated = "Password updated. Please login again"
	MessageUserDeleted     = "User deleted"
	MessageUnexpected      = "An unexpected server error occurred"
)

type AuthControllerRoutes struct {
	SignIn   string
	SignOut  string
	Register string
	LoggedIn string
}

type ProfileControllerRoutes struct {
	Profile  string
	Password string
}

type AuthController struct {
	Logger        Logger
	Auther        Authenticator
	HTTP          *RouteAuthenticator
	Routes        *AuthControllerRoutes
	ProfileRoutes *ProfileControllerRoutes
	Repo          RepositoryManager
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(l Logger) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Logger = normalizeLogger(l)
		return ac
	}
}

func WithAuthRoutes(routes AuthControllerRoutes) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Routes = &routes
		return ac
	}
}

// WithRepository enables the profile routes backed by repo
func WithRepository(repo RepositoryManager) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Repo = repo
		return ac
	}
}

func NewAuthController(auther Authenticator, httpAuth *RouteAuthenticator, opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defaultLogger(),
		Auther: auther,
		HTTP:   httpAuth,
		Routes: &AuthControllerRoutes{
			SignIn:   "/signin",
			SignOut:  "/signout",
			Register: "/register",
			LoggedIn: "/loggedin",
		},
		ProfileRoutes: &ProfileControllerRoutes{
			Profile:  "/users/:id",
			Password: "/users/:id/password",
		},
	}

	for _, opt := range opts {
		if opt != nil {
			c = opt(c)
		}
	}

	return c
}

// RegisterAuthRoutes mounts the session routes and, when a repository is
// configured, the profile routes.
func RegisterAuthRoutes[T any](app router.Router[T], controller *AuthController) {
	app.Post(controller.Routes.SignIn, controller.HTTP.SignIn).
		SetName("sign-in.post")
	app.Get(controller.Routes.SignOut, controller.HTTP.SignOut).
		SetName("sign-out.get")
	app.Post(controller.Routes.Register, controller.Register).
		SetName("register.post")
	app.Get(controller.Routes.LoggedIn, controller.HTTP.LoggedIn).
		SetName("logged-in.get")

	if controller.Repo == nil {
		return
	}

	protect := controller.HTTP.Protect()
	owner := controller.HTTP.IsOwner()

	app.Get(controller.ProfileRoutes.Profile, controller.ProfileShow, protect).
		SetName("profile.get")
	app.Patch(controller.ProfileRoutes.Password, controller.PasswordUpdate, protect, owner).
		SetName("profile-password.patch")
	app.Delete(controller.ProfileRoutes.Profile, controller.ProfileDelete, protect, owner).
		SetName("profile.delete")
}

// Register creates a user. Validation and conflict failures render the
// whole error object under "error", unlike the message-only convention
// of the other handlers. Server side failures are logged and hidden.
func (a *AuthController) Register(c router.Context) error {
	req := RegisterRequest{}
	if err := c.Bind(&req); err != nil {
		return sendJSON(c, router.StatusBadRequest, Response{
			Status: StatusFail,
			Error: errors.Wrap(err, errors.CategoryBadInput, "Invalid registration payload").
				WithCode(errors.CodeBadRequest),
		})
	}

	user, err := a.Auther.Register(c.Context(), req)
	if err != nil {
		if HTTPStatusOf(err) >= router.StatusInternalServerError {
			return a.internalError(c, "registration failed", err)
		}
		return sendJSON(c, router.StatusBadRequest, Response{
			Status: StatusFail,
			Error:  err,
		})
	}

	return sendJSON(c, router.StatusOK, Response{
		Status: StatusSuccess,
		Data:   map[string]any{"user": user},
	})
}

// ProfileShow renders the authenticated user's view of a profile
func (a *AuthController) ProfileShow(c router.Context) error {
	user, err := a.Repo.Users().GetByID(c.Context(), c.Param("id"), SelectWithoutPassword())
	if err != nil {
		return a.profileError(c, err)
	}

	return sendJSON(c, router.StatusOK, Response{
		Status: StatusSuccess,
		Data:   map[string]any{"user": user.Sanitize()},
	})
}

// PasswordUpdate stores a new password. Every token issued before the
// change, including the caller's, becomes stale.
func (a *AuthController) PasswordUpdate(c router.Context) error {
	req := PasswordUpdateRequest{}
	if err := c.Bind(&req); err != nil {
		req = PasswordUpdateRequest{}
	}

	if err := req.Validate(); err != nil {
		return sendJSON(c, router.StatusBadRequest, Response{
			Status:  StatusFail,
			Message: MessageOf(err),
			Error:   err,
		})
	}

	id := c.Param("id")
	if err := a.Repo.Users().UpdatePassword(c.Context(), id, req.Password); err != nil {
		return a.profileError(c, err)
	}

	clearSessionCookie(c, a.HTTP.cookie)
	a.emit(c, ActivityEventPasswordChanged, id)

	return sendJSON(c, router.StatusOK, Response{
		Status:  StatusSuccess,
		Message: MessagePasswordUpdated,
	})
}

// ProfileDelete soft deletes the profile and ends the session
func (a *AuthController) ProfileDelete(c router.Context) error {
	id := c.Param("id")
	users := a.Repo.Users()

	err := a.Repo.RunInTx(c.Context(), nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := users.GetByIDTx(ctx, tx, id)
		if err != nil {
			return err
		}
		return users.DeleteTx(ctx, tx, user)
	})
	if err != nil {
		return a.profileError(c, err)
	}

	clearSessionCookie(c, a.HTTP.cookie)
	a.emit(c, ActivityEventUserDeleted, id)

	return sendJSON(c, router.StatusOK, Response{
		Status:  StatusSuccess,
		Message: MessageUserDeleted,
	})
}

func (a *AuthController) emit(c router.Context, event ActivityEventType, userID string) {
	a.Auther.RecordActivity(c.Context(), ActivityEvent{
		EventType: event,
		UserID:    userID,
	})
}

func (a *AuthController) profileError(c router.Context, err error) error {
	if IsRecordNotFound(err) {
		return sendJSON(c, router.StatusNotFound, Response{
			Status:  StatusFail,
			Message: "User not found",
		})
	}
	return a.internalError(c, "profile request failed", err)
}

func (a *AuthController) internalError(c router.Context, msg string, err error) error {
	a.Logger.Error(msg, "path", c.OriginalURL(), "error", err)
	return sendJSON(c, router.StatusInternalServerError, Response{
		Status:  StatusFail,
		Message: MessageUnexpected,
	})
}
