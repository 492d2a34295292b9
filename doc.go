// Package auth provides cookie carried session authentication for go-router
// applications: JWT issuance and verification, a sign-in flow backed by a
// user store, and middleware that propagates the authenticated identity
// through the request pipeline.
//
// Session lifecycle:
//   - Auther.SignIn verifies credentials against the user store and issues a
//     signed token. RouteAuthenticator attaches it to the response as an
//     HttpOnly, Secure, SameSite=None, Partitioned cookie.
//   - RouteAuthenticator.Protect verifies the cookie token, reloads the user
//     and rejects tokens issued before the user's last credential change. A
//     stale token clears the cookie and ends the session.
//   - RouteAuthenticator.IsOwner compares the authenticated subject with the
//     owner of the addressed resource.
//   - RouteAuthenticator.LoggedIn answers whether a request carries a valid
//     token without reloading the user, so it cannot detect stale sessions.
//
// Storage:
//   - Users builds on a go-repository-bun Repository[*User] and adds the
//     password and login tracking updates. OpenDatabase supports SQLite and
//     Postgres and Migrate applies the embedded goose migrations.
//
// Activity sinks:
//   - ActivitySink receives sign-in, sign-out and stale logout events. Sinks
//     run best-effort, errors are logged and never fail the request.
package auth
