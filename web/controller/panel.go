package controller

import (
	"github.com/ctopbusca/ctop-busca/web/session"

	"github.com/gin-gonic/gin"
)

// PanelController serves the search page.
type PanelController struct {
	BaseController
}

func NewPanelController(g *gin.RouterGroup) *PanelController {
	a := &PanelController{}
	a.initRouter(g)
	return a
}

func (a *PanelController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/panel")
	g.Use(a.checkLogin)

	g.GET("/", a.index)
}

func (a *PanelController) index(c *gin.Context) {
	sess := session.Load(c)
	html(c, "panel.html", "pages.search.title", gin.H{
		"username": sess.Username,
		"is_admin": sess.IsAdmin(),
	})
}
