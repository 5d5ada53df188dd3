package models

import (
	"strings"
	"time"
)

// UserProfile is the remote profile document. Its ID equals the
// authentication id of the user. List fields are sets and never nil once
// normalized.
type UserProfile struct {
	ID                string     `json:"userUID" firestore:"userUID"`
	Username          string     `json:"username" firestore:"username"`
	Email             string     `json:"userEmail" firestore:"userEmail"`
	Description       string     `json:"userDescription" firestore:"userDescription"`
	ProfilePictureURL string     `json:"pfp" firestore:"pfp"`
	Streak            int        `json:"streak" firestore:"streak"`
	Score             int        `json:"score" firestore:"score"`
	Friends           []string   `json:"friends" firestore:"friends"`
	FriendRequests    []string   `json:"friendRequestsReceived" firestore:"friendRequestsReceived"`
	Blocked           []string   `json:"usersBlocked" firestore:"usersBlocked"`
	AppsUsed          []string   `json:"appsUsed" firestore:"appsUsed"`
	PhoneNumber       string     `json:"phoneNumber" firestore:"phoneNumber"`
	CountryCode       string     `json:"countryCode" firestore:"countryCode"`
	CreatedAt         *time.Time `json:"creationDate,omitempty" firestore:"creationDate,omitempty"`
	Banned            bool       `json:"isBanned" firestore:"isBanned"`
	BanReason         string     `json:"banReason" firestore:"banReason"`
	BannedUntil       *time.Time `json:"bannedUntil,omitempty" firestore:"bannedUntil,omitempty"`
}

// NewUserProfile returns a profile with empty social sets.
func NewUserProfile(id, username, email string) *UserProfile {
	u := &UserProfile{ID: id, Username: NormalizeUsername(username), Email: email}
	u.Normalize()
	return u
}

// NormalizeUsername lowercases and trims a username.
func NormalizeUsername(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Normalize replaces nil list fields with empty sets.
func (u *UserProfile) Normalize() {
	if u.Friends == nil {
		u.Friends = []string{}
	}
	if u.FriendRequests == nil {
		u.FriendRequests = []string{}
	}
	if u.Blocked == nil {
		u.Blocked = []string{}
	}
	if u.AppsUsed == nil {
		u.AppsUsed = []string{}
	}
}

func (u *UserProfile) IsFriend(id string) bool       { return Contains(u.Friends, id) }
func (u *UserProfile) HasRequestFrom(id string) bool { return Contains(u.FriendRequests, id) }
func (u *UserProfile) HasBlocked(id string) bool     { return Contains(u.Blocked, id) }

// BanActive reports whether the ban is in force at now. A ban without an
// end date never expires.
func (u *UserProfile) BanActive(now time.Time) bool {
	if !u.Banned {
		return false
	}
	return u.BannedUntil == nil || now.Before(*u.BannedUntil)
}

// UserList names a set-valued field of a profile.
type UserList string

const (
	ListFriends        UserList = "friends"
	ListFriendRequests UserList = "friendRequestsReceived"
	ListBlocked        UserList = "usersBlocked"
	ListAppsUsed       UserList = "appsUsed"
)

// Valid reports whether l names a known list.
func (l UserList) Valid() bool {
	switch l {
	case ListFriends, ListFriendRequests, ListBlocked, ListAppsUsed:
		return true
	}
	return false
}

// Values returns the current contents of list l.
func (u *UserProfile) Values(l UserList) []string {
	switch l {
	case ListFriends:
		return u.Friends
	case ListFriendRequests:
		return u.FriendRequests
	case ListBlocked:
		return u.Blocked
	case ListAppsUsed:
		return u.AppsUsed
	}
	return nil
}

// SetValues replaces the contents of list l.
func (u *UserProfile) SetValues(l UserList, values []string) {
	switch l {
	case ListFriends:
		u.Friends = values
	case ListFriendRequests:
		u.FriendRequests = values
	case ListBlocked:
		u.Blocked = values
	case ListAppsUsed:
		u.AppsUsed = values
	}
}

// ProfileUpdate is a partial write to a profile. Nil fields are left
// unchanged.
type ProfileUpdate struct {
	Username          *string    `json:"username,omitempty"`
	Description       *string    `json:"userDescription,omitempty"`
	ProfilePictureURL *string    `json:"pfp,omitempty"`
	Streak            *int       `json:"streak,omitempty"`
	Score             *int       `json:"score,omitempty"`
	PhoneNumber       *string    `json:"phoneNumber,omitempty"`
	CountryCode       *string    `json:"countryCode,omitempty"`
	CreatedAt         *time.Time `json:"creationDate,omitempty"`
}

// Empty reports whether the update changes nothing.
func (p ProfileUpdate) Empty() bool {
	return p.Username == nil && p.Description == nil && p.ProfilePictureURL == nil &&
		p.Streak == nil && p.Score == nil && p.PhoneNumber == nil && p.CountryCode == nil &&
		p.CreatedAt == nil
}

// Apply copies the set fields of p onto u. CreatedAt only fills a missing
// creation date.
func (p ProfileUpdate) Apply(u *UserProfile) {
	if p.Username != nil {
		u.Username = NormalizeUsername(*p.Username)
	}
	if p.Description != nil {
		u.Description = *p.Description
	}
	if p.ProfilePictureURL != nil {
		u.ProfilePictureURL = *p.ProfilePictureURL
	}
	if p.Streak != nil {
		u.Streak = *p.Streak
	}
	if p.Score != nil {
		u.Score = *p.Score
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = *p.PhoneNumber
	}
	if p.CountryCode != nil {
		u.CountryCode = *p.CountryCode
	}
	if p.CreatedAt != nil && u.CreatedAt == nil {
		t := *p.CreatedAt
		u.CreatedAt = &t
	}
}

// UsernamePrefixUpper returns the exclusive upper bound of a prefix range
// query on usernames.
func UsernamePrefixUpper(prefix string) string {
	return prefix + "\uf8ff"
}
