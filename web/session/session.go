// Package session keeps the login state of a browser in a signed cookie.
package session

import (
	"github.com/ctopbusca/ctop-busca/config"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "ctop-busca"
	loginUser  = "LOGIN_USER"
)

// Session is the login state of one browser. The zero value is logged out.
type Session struct {
	Username string `json:"username"`
}

func (s Session) LoggedIn() bool {
	return s.Username != ""
}

// IsAdmin reports whether the session belongs to the admin account.
func (s Session) IsAdmin() bool {
	return s.Username == config.AdminUsername
}

func (s *Session) LogIn(username string) {
	s.Username = username
}

func (s *Session) LogOut() {
	s.Username = ""
}

// Load reads the session of the current request.
func Load(c *gin.Context) Session {
	s := sessions.Default(c)
	if name, ok := s.Get(loginUser).(string); ok {
		return Session{Username: name}
	}
	return Session{}
}

// Save stores sess in the cookie. A logged out session clears it.
func Save(c *gin.Context, sess Session) error {
	if !sess.LoggedIn() {
		return Clear(c)
	}
	s := sessions.Default(c)
	s.Set(loginUser, sess.Username)
	s.Options(sessions.Options{Path: "/", HttpOnly: true})
	return s.Save()
}

// Clear removes the session cookie.
func Clear(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1, HttpOnly: true})
	return s.Save()
}
