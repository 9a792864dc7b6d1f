package controller

import (
	"net/http"

	"github.com/ctopbusca/ctop-busca/logger"
	"github.com/ctopbusca/ctop-busca/web/entity"
	"github.com/ctopbusca/ctop-busca/web/service"
	"github.com/ctopbusca/ctop-busca/web/session"

	"github.com/gin-gonic/gin"
)

// IndexController serves the login page and the login/logout actions.
type IndexController struct {
	BaseController

	authService *service.AuthService
}

func NewIndexController(g *gin.RouterGroup, authService *service.AuthService) *IndexController {
	a := &IndexController{authService: authService}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	g.GET("/", a.index)
	g.GET("/logout", a.logout)

	g.POST("/login", a.login)
}

func (a *IndexController) index(c *gin.Context) {
	if session.Load(c).LoggedIn() {
		c.Redirect(http.StatusTemporaryRedirect, "panel/")
		return
	}
	html(c, "login.html", "pages.login.title", nil)
}

func (a *IndexController) login(c *gin.Context) {
	var form entity.LoginForm

	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "pages.login.toasts.invalidFormData"))
		return
	}
	if form.Username == "" {
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "pages.login.toasts.emptyUsername"))
		return
	}
	if form.Password == "" {
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "pages.login.toasts.emptyPassword"))
		return
	}

	sess := session.Load(c)
	if !a.authService.Login(&sess, form.Username, form.Password) {
		logger.Warningf("wrong username or password for %q, IP: %s", form.Username, getRemoteIp(c))
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "pages.login.toasts.wrongUsernameOrPassword"))
		return
	}

	if err := session.Save(c, sess); err != nil {
		logger.Warning("Unable to save session:", err)
		pureJsonMsg(c, http.StatusInternalServerError, false, I18nWeb(c, "fail"))
		return
	}

	logger.Infof("%s logged in, IP: %s", sess.Username, getRemoteIp(c))
	jsonMsg(c, I18nWeb(c, "pages.login.toasts.successLogin"), nil)
}

func (a *IndexController) logout(c *gin.Context) {
	sess := session.Load(c)
	if sess.LoggedIn() {
		logger.Infof("%s logged out", sess.Username)
	}
	a.authService.Logout(&sess)
	if err := session.Save(c, sess); err != nil {
		logger.Warning("Unable to clear session:", err)
	}
	c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path"))
}
