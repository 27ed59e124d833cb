package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmaster/internal/service"
)

func (h *Handler) listTasks(c *gin.Context) {
	resp, err := h.tasks.GetAll.Handle(c.Request.Context(), service.GetAllTasksQuery{})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getTask(c *gin.Context) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	resp, err := h.tasks.GetByID.Handle(c.Request.Context(), service.GetTaskByIDQuery{ID: id})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createTask(c *gin.Context) {
	var req taskRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.tasks.Create.Handle(c.Request.Context(), req.createCommand())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !resp.Succeeded {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "error": resp.Message})
		return
	}

	c.Header("Location", fmt.Sprintf("%s/Task/%d", apiPrefix, resp.Data))
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) updateTask(c *gin.Context) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	var req taskRequest
	if !bindJSON(c, &req) {
		return
	}

	// the path addresses the task; a body id is ignored
	resp, err := h.tasks.Update.Handle(c.Request.Context(), req.updateCommand(id))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) deleteTask(c *gin.Context) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	if _, err := h.tasks.Delete.Handle(c.Request.Context(), service.DeleteTaskCommand{ID: id}); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
