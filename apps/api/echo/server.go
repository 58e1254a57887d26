package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/mtunza/tiba/core"
	"github.com/mtunza/tiba/core/child"
	"github.com/mtunza/tiba/core/document"
	"github.com/mtunza/tiba/core/therapy"
	"github.com/mtunza/tiba/core/user"
)

var (
	appValidator  *validator.Validate
	appTranslator ut.Translator
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Conf   *core.Config
		Logger core.Logger

		UserSvc     user.Service
		ChildSvc    child.Service
		TherapySvc  therapy.Service
		DocumentSvc document.Service
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf
	initAuth(conf)

	enLocale := en.New()
	appTranslator, _ = ut.New(enLocale, enLocale).GetTranslator(enLocale.Locale())
	appValidator = validator.New()
	core.InitValidators(appValidator, appTranslator)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	registerMetrics()
	s.app.Use(instrument())

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)
	s.app.GET("/metrics", metricsHandler())

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerAuthAPI(v1, jwt, s.opts.UserSvc)

	// role-scoped subtrees; a valid token with the wrong role gets a 403
	cg := v1.Group("/counselor", jwt, roleMiddleware(user.RoleCounselor))
	pg := v1.Group("/parent", jwt, roleMiddleware(user.RoleParent))

	registerUserAPI(cg, s.opts.UserSvc)
	registerChildAPI(cg, pg, s.opts.ChildSvc)
	registerTherapyAPI(cg, pg, s.opts.TherapySvc)
	registerDocumentAPI(cg, pg, s.opts.DocumentSvc, s.opts.ChildSvc)
}

func (s *server) Start() {
	go func() {
		if err := s.app.Start(s.opts.Address); err != nil && err != http.ErrServerClosed {
			s.opts.Logger.Error("server start", err)
			s.signalShutdown()
		}
	}()

	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	<-s.shutdown

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.Conf.Server.ShutdownTimeout)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		s.opts.Logger.Error("graceful shutdown failed", errors.Wrap(err, "stopping server"))
		_ = s.app.Close()
	}
}

func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Tiba API!")
}
