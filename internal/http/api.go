package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"taskmaster/internal/domain"
	"taskmaster/internal/service"
	"taskmaster/internal/service/auth"
	"taskmaster/internal/validation"
)

const apiPrefix = "/api/v1"

// Handler wires HTTP routes to the task handlers and the account service.
type Handler struct {
	tasks    *service.TaskHandlers
	accounts service.AccountService
	tokens   *auth.TokenService
	validate *validation.Validator
	log      logrus.FieldLogger
}

func NewHandler(tasks *service.TaskHandlers, accounts service.AccountService, tokens *auth.TokenService, validate *validation.Validator, log logrus.FieldLogger) *Handler {
	return &Handler{
		tasks:    tasks,
		accounts: accounts,
		tokens:   tokens,
		validate: validate,
		log:      log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(requestLogger(h.log))

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})

	api := router.Group(apiPrefix)

	account := api.Group("/Account")
	{
		account.POST("/Login", h.login)
		account.POST("/Register", h.register)
		account.POST("/RefreshToken", h.refreshToken)
		account.POST("/SignOut", h.signOut)
	}

	tasks := api.Group("/Task")
	tasks.Use(requireRole(h.tokens, domain.RoleClient))
	{
		tasks.GET("", h.listTasks)
		tasks.POST("", h.createTask)
		tasks.GET("/:id", h.getTask)
		tasks.PUT("/:id", h.updateTask)
		tasks.DELETE("/:id", h.deleteTask)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Location")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// writeError translates a handler error into its status code and body.
func (h *Handler) writeError(c *gin.Context, err error) {
	var verr *validation.Errors
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "error": verr.Messages()})
	case errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoContent):
		c.Status(http.StatusNoContent)
	default:
		h.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func parseTaskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return 0, false
	}
	return id, true
}
