// Package server exposes the record store, the dashboard and the export over a JSON API.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Compufreak345/dbg"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/scgdepot/tankerlog/auth"
	"github.com/scgdepot/tankerlog/datapolish"
	"github.com/scgdepot/tankerlog/jsonapi"
	"github.com/scgdepot/tankerlog/jsonapi/export"
	"github.com/scgdepot/tankerlog/jsonapi/recordManager"
	"github.com/scgdepot/tankerlog/models"
	"github.com/scgdepot/tankerlog/tools"
	"github.com/scgdepot/tankerlog/translate"
)

const sTag = dbg.Tag("tankerlog/server")

// Options configure a Server.
type Options struct {
	AllowOrigins    []string
	DefaultLanguage string
}

// Server routes API calls to the record store and the exporter.
type Server struct {
	store       *recordManager.Store
	exporter    *export.Exporter
	tokens      *auth.TokenActorSource
	defaultLang string
	engine      *gin.Engine
}

// New sets up the gin engine with all routes.
func New(store *recordManager.Store, exporter *export.Exporter, tokens *auth.TokenActorSource, opts Options) *Server {
	s := &Server{
		store:       store,
		exporter:    exporter,
		tokens:      tokens,
		defaultLang: translate.NormalizeLanguage(opts.DefaultLanguage),
	}
	r := gin.New()
	r.Use(requestLog(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)
	r.Use(cors.New(corsConfig(opts.AllowOrigins)))
	r.Use(tokens.Middleware())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	api := r.Group("/api")
	api.GET("/records", s.listRecords)
	api.GET("/records/empty", s.emptyRecord)
	api.GET("/records/:id", s.getRecord)
	api.GET("/dashboard", s.dashboard)
	api.GET("/dates", s.dateRange)
	api.GET("/exports/:name", s.download)

	mut := api.Group("")
	mut.Use(s.requireActor())
	mut.POST("/records", s.createRecord)
	mut.PATCH("/records/:id", s.updateRecord)
	mut.DELETE("/records/:id", s.deleteRecord)
	mut.POST("/import", s.importLegacy)
	mut.POST("/export", s.exportRecords)

	s.engine = r
	return s
}

// Handler returns the http.Handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		dbg.I(sTag, "Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept-Language"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		dbg.D(sTag, "%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// language picks the answer language: ?lang=, then Accept-Language, then the configured default.
func (s *Server) language(c *gin.Context) string {
	if l := c.Query("lang"); l != "" {
		return translate.NormalizeLanguage(l)
	}
	if h := c.GetHeader("Accept-Language"); h != "" {
		return translate.MatchLanguage(h)
	}
	return s.defaultLang
}

func (s *Server) actor(c *gin.Context) *models.Actor {
	return s.tokens.CurrentActor(c.Request.Context())
}

func (s *Server) requireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a := s.actor(c); a == nil || a.Id == "" {
			ans := models.GetBadJSONAnswer(models.ErrCodeUnauthenticated, translate.Resolve(s.language(c), recordManager.Unauthenticated))
			c.AbortWithStatusJSON(http.StatusUnauthorized, ans)
			return
		}
		c.Next()
	}
}

// statusFor maps an answer's error code to the HTTP status.
func statusFor(ans models.JSONAnswer, okStatus int) int {
	if !ans.Error {
		return okStatus
	}
	switch ans.ErrorCode {
	case models.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case models.ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case models.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) body(c *gin.Context) string {
	data, err := c.GetRawData()
	if err != nil {
		dbg.W(sTag, "Unable to read body of %s : %s", c.Request.URL.Path, err)
		return ""
	}
	return string(data)
}

func splitIds(v string) []string {
	if v == "" {
		return nil
	}
	res := make([]string, 0)
	for _, id := range strings.Split(v, ",") {
		if id = strings.TrimSpace(id); id != "" {
			res = append(res, id)
		}
	}
	return res
}

func (s *Server) listRecords(c *gin.Context) {
	f := datapolish.Filter{
		Date:  c.Query("date"),
		Start: c.Query("start"),
		End:   c.Query("end"),
		Text:  c.Query("q"),
		Ids:   splitIds(c.Query("ids")),
	}
	ans, _ := recordManager.JSONGetRecords(f, s.store)
	c.JSON(statusFor(ans.JSONAnswer, http.StatusOK), ans)
}

func (s *Server) emptyRecord(c *gin.Context) {
	ans, _ := recordManager.JSONGetEmptyRecord(s.store)
	c.JSON(statusFor(ans.JSONAnswer, http.StatusOK), ans)
}

func (s *Server) getRecord(c *gin.Context) {
	ans, _ := recordManager.JSONGetRecord(c.Param("id"), s.language(c), s.store)
	c.JSON(statusFor(ans.JSONAnswer, http.StatusOK), ans)
}

func (s *Server) createRecord(c *gin.Context) {
	ans, _ := recordManager.JSONCreateRecord(s.body(c), s.actor(c), s.language(c), s.store)
	c.JSON(statusFor(ans.JSONAnswer, http.StatusCreated), ans)
}

func (s *Server) updateRecord(c *gin.Context) {
	ans, _ := recordManager.JSONUpdateRecord(c.Param("id"), s.body(c), s.language(c), s.store)
	c.JSON(statusFor(ans.JSONAnswer, http.StatusOK), ans)
}

func (s *Server) deleteRecord(c *gin.Context) {
	ans, _ := recordManager.JSONDeleteRecord(c.Param("id"), s.language(c), s.store)
	c.JSON(statusFor(ans.JSONAnswer, http.StatusOK), ans)
}

func (s *Server) importLegacy(c *gin.Context) {
	ans, _ := recordManager.JSONImportLegacy([]byte(s.body(c)), s.actor(c), s.language(c), s.store)
	c.JSON(statusFor(ans.JSONAnswer, http.StatusOK), ans)
}

func (s *Server) dashboard(c *gin.Context) {
	data, err := jsonapi.GetDashboard(s.store.List(), c.Query("date"), c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.GetBadJSONAnswer(models.ErrCodeInternal, translate.Resolve(s.language(c), recordManager.InternalError)))
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (s *Server) dateRange(c *gin.Context) {
	data, err := jsonapi.GetDateRange(s.store.List())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.GetBadJSONAnswer(models.ErrCodeInternal, translate.Resolve(s.language(c), recordManager.InternalError)))
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (s *Server) exportRecords(c *gin.Context) {
	lang := s.language(c)
	req := export.ExportRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.GetBadJSONAnswer(models.ErrCodeInvalidArgument, translate.Resolve(lang, recordManager.InvalidFormat)))
		return
	}
	if req.Language == "" {
		req.Language = lang
	}
	ans, _ := export.JSONExport(req, s.store.List(), s.exporter)
	if ans.Success {
		// clients download through /api/exports/:name
		ans.ResPath = "/api/exports/" + ans.FileName
	}
	c.JSON(statusFor(ans.JSONAnswer, http.StatusOK), ans)
}

func (s *Server) download(c *gin.Context) {
	p, err := tools.GetCleanFilePath(c.Param("name"), s.exporter.Dir)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if st, err := os.Stat(p); err != nil || st.IsDir() {
		c.Status(http.StatusNotFound)
		return
	}
	c.FileAttachment(p, c.Param("name"))
}
