// Package controller holds the HTTP handlers of the ctop-busca panel.
package controller

import (
	"net/http"

	"github.com/ctopbusca/ctop-busca/web/locale"
	"github.com/ctopbusca/ctop-busca/web/session"

	"github.com/gin-gonic/gin"
)

// BaseController provides the login and admin checks shared by controllers.
type BaseController struct{}

// checkLogin aborts requests without a logged in session.
func (a *BaseController) checkLogin(c *gin.Context) {
	if !session.Load(c).LoggedIn() {
		if isAjax(c) || isAPI(c) {
			pureJsonMsg(c, http.StatusUnauthorized, false, I18nWeb(c, "pages.login.loginAgain"))
		} else {
			c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path"))
		}
		c.Abort()
		return
	}
	c.Next()
}

// checkAdmin must run after checkLogin.
func (a *BaseController) checkAdmin(c *gin.Context) {
	if !session.Load(c).IsAdmin() {
		pureJsonMsg(c, http.StatusForbidden, false, I18nWeb(c, "pages.admin.onlyAdmin"))
		c.Abort()
		return
	}
	c.Next()
}

// I18nWeb translates name for the language of the request.
func I18nWeb(c *gin.Context, name string, params ...string) string {
	return locale.Localize(locale.FromContext(c), name, params...)
}
