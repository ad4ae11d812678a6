package session

import "time"

// Config holds session lifecycle options
type Config interface {
	GetSessionTimeout() time.Duration
	GetInactivityTimeout() time.Duration
	GetWarningTimeout() time.Duration
	GetLoginSettleDelay() time.Duration
	GetLogoutSettleDelay() time.Duration
	GetIdentityFetchTimeout() time.Duration
	GetBootstrapFetchTimeout() time.Duration
	GetStaffFetchTimeout() time.Duration
	GetRetryDelay() time.Duration
	GetDefaultPhoneRegion() string
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
	GetContextKey() string
	GetTokenLookup() string
	GetAuthScheme() string
	GetRejectedRouteKey() string
	GetRejectedRouteDefault() string
}

// ConsoleConfig is the concrete Config used by the console. Zero values fall
// back to the defaults below at constructor time, so a partially filled
// struct is safe.
type ConsoleConfig struct {
	SessionTimeout        time.Duration
	InactivityTimeout     time.Duration
	WarningTimeout        time.Duration
	LoginSettleDelay      time.Duration
	LogoutSettleDelay     time.Duration
	IdentityFetchTimeout  time.Duration
	BootstrapFetchTimeout time.Duration
	StaffFetchTimeout     time.Duration
	RetryDelay            time.Duration
	DefaultPhoneRegion    string
	SigningKey            string
	TokenExpiration       int
	Issuer                string
	Audience              []string
	ContextKey            string
	TokenLookup           string
	AuthScheme            string
	RejectedRouteKey      string
	RejectedRouteDefault  string
}

// DefaultConfig returns the console defaults: 30 minute session timeout,
// 8 minute inactivity window with a 2 minute warning, and the settle delays
// the remote provider's eventual consistency requires.
func DefaultConfig() *ConsoleConfig {
	return &ConsoleConfig{
		SessionTimeout:        30 * time.Minute,
		InactivityTimeout:     8 * time.Minute,
		WarningTimeout:        2 * time.Minute,
		LoginSettleDelay:      300 * time.Millisecond,
		LogoutSettleDelay:     200 * time.Millisecond,
		IdentityFetchTimeout:  2 * time.Second,
		BootstrapFetchTimeout: 3 * time.Second,
		StaffFetchTimeout:     10 * time.Second,
		RetryDelay:            250 * time.Millisecond,
		DefaultPhoneRegion:    "US",
		TokenExpiration:       24,
		ContextKey:            "console_session",
		TokenLookup:           "cookie:console_session,header:Authorization",
		AuthScheme:            "Bearer",
		RejectedRouteKey:      "console_redirect",
		RejectedRouteDefault:  "/",
	}
}

func (c *ConsoleConfig) GetSessionTimeout() time.Duration {
	return durationOr(c.SessionTimeout, 30*time.Minute)
}

func (c *ConsoleConfig) GetInactivityTimeout() time.Duration {
	return durationOr(c.InactivityTimeout, 8*time.Minute)
}

func (c *ConsoleConfig) GetWarningTimeout() time.Duration {
	return durationOr(c.WarningTimeout, 2*time.Minute)
}

func (c *ConsoleConfig) GetLoginSettleDelay() time.Duration {
	return durationOr(c.LoginSettleDelay, 300*time.Millisecond)
}

func (c *ConsoleConfig) GetLogoutSettleDelay() time.Duration {
	return durationOr(c.LogoutSettleDelay, 200*time.Millisecond)
}

func (c *ConsoleConfig) GetIdentityFetchTimeout() time.Duration {
	return durationOr(c.IdentityFetchTimeout, 2*time.Second)
}

func (c *ConsoleConfig) GetBootstrapFetchTimeout() time.Duration {
	return durationOr(c.BootstrapFetchTimeout, 3*time.Second)
}

func (c *ConsoleConfig) GetStaffFetchTimeout() time.Duration {
	return durationOr(c.StaffFetchTimeout, 10*time.Second)
}

func (c *ConsoleConfig) GetRetryDelay() time.Duration {
	return durationOr(c.RetryDelay, 250*time.Millisecond)
}

func (c *ConsoleConfig) GetDefaultPhoneRegion() string {
	if c.DefaultPhoneRegion == "" {
		return "US"
	}
	return c.DefaultPhoneRegion
}

func (c *ConsoleConfig) GetSigningKey() string { return c.SigningKey }

func (c *ConsoleConfig) GetTokenExpiration() int {
	if c.TokenExpiration <= 0 {
		return 24
	}
	return c.TokenExpiration
}

func (c *ConsoleConfig) GetIssuer() string { return c.Issuer }

func (c *ConsoleConfig) GetAudience() []string { return c.Audience }

func (c *ConsoleConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return "console_session"
	}
	return c.ContextKey
}

func (c *ConsoleConfig) GetTokenLookup() string {
	if c.TokenLookup == "" {
		return "cookie:console_session,header:Authorization"
	}
	return c.TokenLookup
}

func (c *ConsoleConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return "Bearer"
	}
	return c.AuthScheme
}

func (c *ConsoleConfig) GetRejectedRouteKey() string {
	if c.RejectedRouteKey == "" {
		return "console_redirect"
	}
	return c.RejectedRouteKey
}

func (c *ConsoleConfig) GetRejectedRouteDefault() string {
	if c.RejectedRouteDefault == "" {
		return "/"
	}
	return c.RejectedRouteDefault
}

func durationOr(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
