package controller

import (
	"errors"
	"net/http"
	"slices"

	"github.com/ctopbusca/ctop-busca/config"
	"github.com/ctopbusca/ctop-busca/geocode"
	"github.com/ctopbusca/ctop-busca/logger"
	"github.com/ctopbusca/ctop-busca/web/entity"
	"github.com/ctopbusca/ctop-busca/web/locale"
	"github.com/ctopbusca/ctop-busca/web/service"

	"github.com/gin-gonic/gin"
)

// AdminController lets the administrator manage users, read the access
// log and look after the panel.
type AdminController struct {
	BaseController

	credentialService *service.CredentialService
	accessLogService  *service.AccessLogService
	settingService    *service.SettingService
	resolver          *geocode.Resolver
}

func NewAdminController(
	g *gin.RouterGroup,
	credentialService *service.CredentialService,
	accessLogService *service.AccessLogService,
	settingService *service.SettingService,
	resolver *geocode.Resolver,
) *AdminController {
	a := &AdminController{
		credentialService: credentialService,
		accessLogService:  accessLogService,
		settingService:    settingService,
		resolver:          resolver,
	}
	a.initRouter(g)
	return a
}

func (a *AdminController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/admin")
	g.Use(a.checkLogin, a.checkAdmin)

	g.GET("/users", a.listUsers)
	g.POST("/users", a.addUser)
	g.POST("/users/del/:username", a.delUser)
	g.GET("/access-log", a.accessLog)
	g.GET("/logs", a.getLogs)
	g.GET("/geocode-stats", a.geocodeStats)
	g.GET("/lang", a.getLang)
	g.POST("/lang", a.setLang)
}

type userView struct {
	Username  string `json:"username"`
	Removable bool   `json:"removable"`
}

func (a *AdminController) listUsers(c *gin.Context) {
	names, err := a.credentialService.List()
	if err != nil {
		jsonMsg(c, a.userErrorMessage(c, err), err)
		return
	}
	users := make([]userView, len(names))
	for i, n := range names {
		users[i] = userView{Username: n, Removable: n != config.AdminUsername}
	}
	jsonObj(c, users, nil)
}

func (a *AdminController) addUser(c *gin.Context) {
	var form entity.UserForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "pages.login.toasts.invalidFormData"))
		return
	}
	if err := a.credentialService.Create(form.Username, form.Password); err != nil {
		jsonMsg(c, a.userErrorMessage(c, err), err)
		return
	}
	jsonMsg(c, I18nWeb(c, "pages.admin.userCreated", "username=="+form.Username), nil)
}

func (a *AdminController) delUser(c *gin.Context) {
	username := c.Param("username")
	if err := a.credentialService.Delete(username); err != nil {
		jsonMsg(c, a.userErrorMessage(c, err), err)
		return
	}
	jsonMsg(c, I18nWeb(c, "pages.admin.userDeleted", "username=="+username), nil)
}

func (a *AdminController) accessLog(c *gin.Context) {
	events, err := a.accessLogService.Recent()
	if err != nil {
		jsonMsg(c, I18nWeb(c, "fail"), err)
		return
	}
	msg := ""
	if len(events) == 0 {
		msg = I18nWeb(c, "pages.admin.noAccess")
	}
	jsonMsgObj(c, msg, events, nil)
}

func (a *AdminController) getLogs(c *gin.Context) {
	query := entity.LogsQuery{Count: 100, Level: "info"}
	if err := c.ShouldBindQuery(&query); err != nil {
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "pages.login.toasts.invalidFormData"))
		return
	}
	jsonObj(c, logger.GetLogs(query.Count, query.Level), nil)
}

func (a *AdminController) geocodeStats(c *gin.Context) {
	jsonObj(c, a.resolver.Totals(), nil)
}

func (a *AdminController) getLang(c *gin.Context) {
	lang, err := a.settingService.GetLang()
	if err != nil {
		jsonMsg(c, I18nWeb(c, "fail"), err)
		return
	}
	jsonObj(c, gin.H{"lang": lang, "languages": locale.Languages()}, nil)
}

// setLang stores the language used for browsers that ask for none. The
// localizer middleware reads it when the router is built.
func (a *AdminController) setLang(c *gin.Context) {
	var form entity.LangForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "pages.login.toasts.invalidFormData"))
		return
	}
	if !slices.Contains(locale.Languages(), form.Lang) {
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "pages.admin.unknownLang"))
		return
	}
	if err := a.settingService.SetLang(form.Lang); err != nil {
		jsonMsg(c, I18nWeb(c, "fail"), err)
		return
	}
	jsonMsg(c, I18nWeb(c, "pages.admin.langSaved"), nil)
}

func (a *AdminController) userErrorMessage(c *gin.Context, err error) string {
	switch {
	case errors.Is(err, service.ErrEmptyCredential):
		return I18nWeb(c, "pages.admin.emptyCredential")
	case errors.Is(err, service.ErrAlreadyExists):
		return I18nWeb(c, "pages.admin.userExists")
	case errors.Is(err, service.ErrNotFound):
		return I18nWeb(c, "pages.admin.userNotFound")
	case errors.Is(err, service.ErrProtected):
		return I18nWeb(c, "pages.admin.userProtected")
	case errors.Is(err, service.ErrStoreUnavailable):
		return I18nWeb(c, "pages.admin.storeUnavailable")
	default:
		return I18nWeb(c, "fail")
	}
}
