package auth

import (
	"strings"
	"time"

	"github.com/goliatone/go-router"
	"github.com/valyala/fasthttp"
)

func writeSessionCookie(c router.Context, cfg CookieConfig, value string, now time.Time) {
	cookie := sessionCookie(cfg)
	cookie.Value = value

	seconds := int(cfg.MaxAge / time.Second)
	if seconds > 0 {
		cookie.MaxAge = seconds
		cookie.Expires = now.Add(cfg.MaxAge)
	}

	setCookie(c, cfg, cookie)
}

// clearSessionCookie expires the cookie with the same attributes it was
// set with. Browsers match partitioned cookies by attribute set.
func clearSessionCookie(c router.Context, cfg CookieConfig) {
	cookie := sessionCookie(cfg)
	cookie.Value = ""
	cookie.MaxAge = -1
	cookie.Expires = fasthttp.CookieExpireDelete

	setCookie(c, cfg, cookie)
}

func sessionCookie(cfg CookieConfig) *router.Cookie {
	path := cfg.Path
	if path == "" {
		path = "/"
	}

	sameSite := strings.TrimSpace(cfg.SameSite)
	if sameSite == "" {
		sameSite = "disabled"
	}

	return &router.Cookie{
		Name:     cfg.Name,
		Path:     path,
		Domain:   cfg.Domain,
		HTTPOnly: cfg.HTTPOnly,
		Secure:   cfg.Secure,
		SameSite: sameSite,
	}
}

// router.Cookie has no Partitioned attribute, partitioned cookies are
// serialized by fasthttp and sent as a raw header.
func setCookie(c router.Context, cfg CookieConfig, cookie *router.Cookie) {
	if !cfg.Partitioned {
		c.Cookie(cookie)
		return
	}

	fc := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(fc)

	fc.SetKey(cookie.Name)
	fc.SetValue(cookie.Value)
	fc.SetPath(cookie.Path)
	if cookie.Domain != "" {
		fc.SetDomain(cookie.Domain)
	}
	if cookie.MaxAge != 0 {
		fc.SetMaxAge(cookie.MaxAge)
	}
	if !cookie.Expires.IsZero() {
		fc.SetExpire(cookie.Expires)
	}
	fc.SetHTTPOnly(cookie.HTTPOnly)
	fc.SetSecure(cookie.Secure)
	fc.SetSameSite(sameSiteMode(cookie.SameSite))
	fc.SetPartitioned(true)

	c.SetHeader(fasthttp.HeaderSetCookie, fc.String())
}

func sameSiteMode(v string) fasthttp.CookieSameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "none":
		return fasthttp.CookieSameSiteNoneMode
	case "strict":
		return fasthttp.CookieSameSiteStrictMode
	case "lax":
		return fasthttp.CookieSameSiteLaxMode
	default:
		return fasthttp.CookieSameSiteDisabled
	}
}
