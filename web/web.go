// Package web runs the ctop-busca panel: HTTP serving, routing, templates
// and background jobs.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/ctopbusca/ctop-busca/config"
	"github.com/ctopbusca/ctop-busca/logger"
	"github.com/ctopbusca/ctop-busca/util/common"
	"github.com/ctopbusca/ctop-busca/web/controller"
	"github.com/ctopbusca/ctop-busca/web/job"
	"github.com/ctopbusca/ctop-busca/web/locale"
	"github.com/ctopbusca/ctop-busca/web/middleware"
	"github.com/ctopbusca/ctop-busca/web/service"
	"github.com/ctopbusca/ctop-busca/web/session"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

//go:embed assets
var assetsFS embed.FS

//go:embed html/*
var htmlFS embed.FS

//go:embed translation/*
var i18nFS embed.FS

var startTime = time.Now()

type wrapAssetsFS struct {
	embed.FS
}

func (f *wrapAssetsFS) Open(name string) (fs.File, error) {
	file, err := f.FS.Open("assets/" + name)
	if err != nil {
		return nil, err
	}
	return &wrapAssetsFile{File: file}, nil
}

type wrapAssetsFile struct {
	fs.File
}

func (f *wrapAssetsFile) Stat() (fs.FileInfo, error) {
	info, err := f.File.Stat()
	if err != nil {
		return nil, err
	}
	return &wrapAssetsFileInfo{FileInfo: info}, nil
}

// wrapAssetsFileInfo reports the process start as modification time so
// browsers can cache embedded assets.
type wrapAssetsFileInfo struct {
	fs.FileInfo
}

func (f *wrapAssetsFileInfo) ModTime() time.Time {
	return startTime
}

// Server is the panel web server together with its scheduled jobs.
type Server struct {
	cfg      *config.Config
	services *service.Services

	httpServer *http.Server
	listener   net.Listener

	index  *controller.IndexController
	panel  *controller.PanelController
	search *controller.SearchController
	admin  *controller.AdminController

	settingService service.SettingService

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

func NewServer(cfg *config.Config, services *service.Services) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{cfg: cfg, services: services, ctx: ctx, cancel: cancel}
}

// getHtmlFiles lists web/html from the working directory; debug mode only.
func (s *Server) getHtmlFiles() ([]string, error) {
	files := make([]string, 0)
	dir, _ := os.Getwd()
	err := fs.WalkDir(os.DirFS(dir), "web/html", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (s *Server) getHtmlTemplate(funcMap template.FuncMap) (*template.Template, error) {
	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(htmlFS, "html", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			newT, err := t.ParseFS(htmlFS, path+"/*.html")
			if err != nil {
				// ignore folders without matches
				return nil
			}
			t = newT
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// NewRouter builds the gin engine with all middleware and controllers.
func (s *Server) NewRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()
	engine.Use(middleware.RequestIDMiddleware())

	if s.cfg.Domain != "" {
		engine.Use(middleware.DomainValidatorMiddleware(s.cfg.Domain))
	}

	secret, err := s.settingService.GetSecret()
	if err != nil {
		return nil, err
	}

	basePath := s.cfg.BasePath
	engine.Use(func(c *gin.Context) {
		c.Set("base_path", basePath)
	})

	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	store := cookie.NewStore(secret)
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	engine.Use(sessions.Sessions(session.CookieName, store))

	if err := locale.InitLocalizer(i18nFS); err != nil {
		return nil, err
	}
	lang, err := s.settingService.GetLang()
	if err != nil {
		logger.Warning("unable to read panel language:", err)
		lang = "pt-BR"
	}
	engine.Use(locale.LocalizerMiddleware(lang))

	funcMap := template.FuncMap{"i18n": locale.Localize}
	engine.SetFuncMap(funcMap)

	if config.IsDebug() {
		files, err := s.getHtmlFiles()
		if err != nil {
			return nil, err
		}
		engine.LoadHTMLFiles(files...)
		engine.StaticFS(basePath+"assets", http.FS(os.DirFS("web/assets")))
	} else {
		tpl, err := s.getHtmlTemplate(funcMap)
		if err != nil {
			return nil, err
		}
		engine.SetHTMLTemplate(tpl)
		engine.StaticFS(basePath+"assets", http.FS(&wrapAssetsFS{FS: assetsFS}))
	}

	g := engine.Group(basePath)
	g.Use(middleware.RateLimitMiddleware(middleware.DefaultRateLimitConfig()))
	s.index = controller.NewIndexController(g, s.services.Auth)
	s.panel = controller.NewPanelController(g)

	api := g.Group("/panel/api")
	s.search = controller.NewSearchController(api, s.services.Search, s.cfg.DatasetPath)
	s.admin = controller.NewAdminController(api, s.services.Credentials, s.services.AccessLog, &s.settingService, s.services.Resolver)

	engine.Use(middleware.RedirectMiddleware(basePath))

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	return engine, nil
}

// startTask schedules the maintenance jobs.
func (s *Server) startTask() {
	if _, err := s.cron.AddJob("@daily", job.NewPruneGeocodeCacheJob(s.services.GeocodeCache, s.cfg.Geocoder.NegativeCacheTTL())); err != nil {
		logger.Warning("add prune geocode cache job:", err)
	}
	if _, err := s.cron.AddJob("@hourly", job.NewCheckpointJob()); err != nil {
		logger.Warning("add checkpoint job:", err)
	}
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	loc, err := time.LoadLocation(s.cfg.TimeLocation)
	if err != nil {
		return err
	}
	s.cron = cron.New(cron.WithLocation(loc))
	s.cron.Start()

	engine, err := s.NewRouter()
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(s.cfg.Listen, strconv.Itoa(s.cfg.Port))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	logger.Info("Web server running HTTP on", listener.Addr())

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return s.ctx },
	}

	go func() {
		_ = s.httpServer.Serve(listener)
	}()

	s.startTask()
	return nil
}

// Stop shuts the server down. Running geocoding passes see their request
// context cancelled and keep what they resolved so far.
func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
	var err1, err2 error
	if s.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err1 = s.httpServer.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			err2 = err
		}
	}
	return common.Combine(err1, err2)
}
