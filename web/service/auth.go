package service

import (
	"github.com/ctopbusca/ctop-busca/logger"
	"github.com/ctopbusca/ctop-busca/web/session"
)

// AuthService moves a session between logged out and logged in.
type AuthService struct {
	credentials *CredentialService
	accessLog   *AccessLogService
}

func NewAuthService(credentials *CredentialService, accessLog *AccessLogService) *AuthService {
	return &AuthService{credentials: credentials, accessLog: accessLog}
}

// Login logs sess in as username when the password matches and records the
// access. A failed attempt leaves sess unchanged.
func (s *AuthService) Login(sess *session.Session, username, password string) bool {
	if !s.credentials.Verify(username, password) {
		logger.Infof("failed login for %q", username)
		return false
	}
	sess.LogIn(username)
	s.accessLog.Record(username)
	return true
}

func (s *AuthService) Logout(sess *session.Session) {
	sess.LogOut()
}
