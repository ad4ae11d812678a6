// Package session manages the authenticated-session lifecycle for the asset
// console: establishing, caching, validating, refreshing, and tearing down
// sessions against an opaque backend-as-a-service provider.
//
// Lifecycle:
//   - Authenticator performs login (defensive cleanup, credential exchange,
//     identity enrichment with graceful degradation), best-effort logout, and
//     session bootstrap from cache or remote with bounded retry.
//   - CredentialStore persists the cached session tuple (identity, staff
//     profile, last activity, expiry). MemoryStore keeps it in-process;
//     BunStore survives restarts.
//   - Resolver maps an identity to its StaffProfile with organization scoping
//     and cache invalidation; permission predicates are pure functions over
//     the profile's role tags.
//   - Watchdog is the inactivity state machine (Idle, WarningShown, Expired)
//     that raises a pre-expiry warning and forces logout on prolonged idle.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by the Authenticator
//     and the Watchdog to describe login, logout, warning, and expiry events.
//     Sinks run best-effort (errors are logged) so you can forward to a
//     database or queue without blocking authentication.
package session
