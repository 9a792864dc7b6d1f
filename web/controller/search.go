package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ctopbusca/ctop-busca/address"
	"github.com/ctopbusca/ctop-busca/web/entity"
	"github.com/ctopbusca/ctop-busca/web/service"

	"github.com/gin-gonic/gin"
)

// SearchController exposes the address search, its CSV export and the map.
type SearchController struct {
	BaseController

	searchService *service.SearchService
	datasetPath   string
}

func NewSearchController(g *gin.RouterGroup, searchService *service.SearchService, datasetPath string) *SearchController {
	a := &SearchController{searchService: searchService, datasetPath: datasetPath}
	a.initRouter(g)
	return a
}

func (a *SearchController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/search")
	g.Use(a.checkLogin)

	g.POST("", a.search)
	g.GET("/export", a.export)
	g.POST("/map", a.showMap)
}

func (a *SearchController) search(c *gin.Context) {
	var state address.FilterState
	if err := c.ShouldBind(&state); err != nil {
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "pages.login.toasts.invalidFormData"))
		return
	}
	res, err := a.searchService.Search(state)
	if err != nil {
		a.searchError(c, res, err)
		return
	}
	msg := I18nWeb(c, "pages.search.results", fmt.Sprintf("count==%d", res.Count))
	if res.Count == 0 {
		msg = I18nWeb(c, "pages.search.noResults")
	}
	jsonMsgObj(c, msg, res, nil)
}

func (a *SearchController) export(c *gin.Context) {
	var state address.FilterState
	if err := c.ShouldBindQuery(&state); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, I18nWeb(c, "pages.login.toasts.invalidFormData"))
		return
	}
	var buf bytes.Buffer
	if err := a.searchService.Export(&buf, state); err != nil {
		a.searchError(c, nil, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(state)))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (a *SearchController) showMap(c *gin.Context) {
	var state address.FilterState
	if err := c.ShouldBind(&state); err != nil {
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "pages.login.toasts.invalidFormData"))
		return
	}
	res, err := a.searchService.Map(c.Request.Context(), state)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		jsonMsgObj(c, I18nWeb(c, "pages.search.geocodeInterrupted"), res, err)
	case err != nil:
		var sr *service.SearchResult
		if res != nil {
			sr = &res.SearchResult
		}
		a.searchError(c, sr, err)
	case res.Warning != "":
		c.JSON(http.StatusOK, entity.Msg{Success: true, Msg: I18nWeb(c, "pages.search.geocodeUnavailable"), Obj: res})
	default:
		jsonObj(c, res, nil)
	}
}

// searchError answers with the localized reason. A missing city still
// carries the city list so the page can offer it.
func (a *SearchController) searchError(c *gin.Context, res *service.SearchResult, err error) {
	switch {
	case errors.Is(err, address.ErrCityRequired):
		c.JSON(http.StatusOK, entity.Msg{Success: false, Msg: I18nWeb(c, "pages.search.cityRequired"), Obj: res})
	case service.IsDatasetMissing(err):
		jsonMsg(c, I18nWeb(c, "pages.search.datasetMissing", "path=="+a.datasetPath), err)
	default:
		jsonMsg(c, I18nWeb(c, "fail"), err)
	}
}

var filenameReplacer = strings.NewReplacer(" ", "_", "/", "_", `\`, "_", `"`, "")

func exportFilename(state address.FilterState) string {
	parts := []string{"enderecos", state.City}
	for _, v := range []string{state.AccessPoint, state.Facility} {
		if v != "" && v != address.All {
			parts = append(parts, v)
		}
	}
	return filenameReplacer.Replace(strings.Join(parts, "_")) + ".csv"
}
