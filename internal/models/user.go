// Package models defines the core domain models for the application.
// Every entity here is either owned by the upstream identity provider
// (profiles, accounts, daily login stats) or derived from it per request
// (dashboard rows, statistics snapshots). Nothing is persisted locally.
//
// Derived types carry the exact JSON field names the frontend consumes
// (camelCase), while upstream-owned types mirror the management API's
// snake_case wire format.
package models

// Profile is a single user record as returned by the management API's
// per-user read endpoint. Only the fields the profile card needs are
// decoded; everything else the upstream returns is ignored.
//
// JSON example:
//
//	{
//	  "email": "user@example.com",
//	  "name": "Jane Doe",
//	  "picture": "https://s.gravatar.com/avatar/...",
//	  "email_verified": true
//	}
type Profile struct {
	Email         string `json:"email"`          // User's email address
	Name          string `json:"name"`           // Display name
	Picture       string `json:"picture"`        // Profile picture URL
	EmailVerified bool   `json:"email_verified"` // Whether the email has been verified
}

// Account is one entry of the management API's user list. It is the raw
// upstream shape; the dashboard endpoint reshapes it into a DashboardRow
// without reformatting any of the date strings.
type Account struct {
	UserID      string `json:"user_id"`      // Stable subject identifier
	Email       string `json:"email"`        // Email address
	Name        string `json:"name"`         // Display name
	CreatedAt   string `json:"created_at"`   // Signup timestamp, upstream format
	LoginsCount int64  `json:"logins_count"` // Lifetime login count
	LastLogin   string `json:"last_login"`   // Most recent login timestamp, upstream format
}

// DashboardRow is one row of the operational dashboard, derived from an
// Account. Timestamps are passed through verbatim; formatting happens at
// render time only.
type DashboardRow struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	SignupDate string `json:"signupDate"`
	LoginCount int64  `json:"loginCount"`
	LastLogin  string `json:"lastLogin"`
}

// DailyStat is one entry of the provider's daily login time series.
// Date is kept as the raw upstream string because the statistics
// lookup compares it as a full timestamp, not a calendar date.
type DailyStat struct {
	Date   string `json:"date"`   // Day marker, full ISO timestamp at midnight
	Logins int64  `json:"logins"` // Login count for that day
}

// Statistic is the per-request statistics snapshot shown above the
// dashboard table. Recomputed fresh on every request; never cached.
//
// JSON example:
//
//	{
//	  "totalUsers": 42,
//	  "activeUsers": 9,
//	  "averageActiveUsers": 6
//	}
type Statistic struct {
	TotalUsers         int     `json:"totalUsers"`         // Total user count reported upstream
	ActiveUsers        int64   `json:"activeUsers"`        // Logins recorded for today
	AverageActiveUsers float64 `json:"averageActiveUsers"` // 7-day trailing average of daily logins
}

// Overview bundles the dashboard rows and the statistics snapshot for
// the combined fetch. Both halves are produced in one request with
// all-or-nothing semantics.
type Overview struct {
	Dashboard []DashboardRow `json:"dashboard"`
	Statistic *Statistic     `json:"statistic"`
}

// Session is the authenticated identity attached to a request. It is
// read-only to this system: issued at login from the identity provider's
// userinfo response and carried in a signed cookie until it expires.
type Session struct {
	Subject string `json:"sub"`     // Stable subject identifier, matched against path params
	Email   string `json:"email"`   // Email address at login time
	Name    string `json:"name"`    // Display name at login time
	Picture string `json:"picture"` // Profile picture URL at login time
}
