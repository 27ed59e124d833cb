package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"taskmaster/internal/service"
)

const (
	msgInvalidDueDate = "The due date is not a valid date."
	msgInvalidBody    = "The request body is not valid JSON."
)

var errInvalidDueDate = errors.New("invalid due date")

// dueDateLayouts are tried in order; layouts without a zone use the server's location.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// dueDate accepts RFC 3339 timestamps and plain calendar dates.
type dueDate struct {
	time.Time
}

func (d *dueDate) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%w: %s", errInvalidDueDate, b)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("%w: %q", errInvalidDueDate, raw)
}

type taskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     dueDate `json:"dueDate"`
	UserName    string  `json:"userName"`
}

func (r taskRequest) createCommand() service.CreateTaskCommand {
	return service.CreateTaskCommand{
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate.Time,
		UserName:    r.UserName,
	}
}

func (r taskRequest) updateCommand(id int64) service.UpdateTaskCommand {
	return service.UpdateTaskCommand{
		ID:          id,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate.Time,
	}
}

// bindJSON decodes the body into dst. On failure it answers 400 in the same
// shape as rule violations and returns false.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	msg := msgInvalidBody
	if errors.Is(err, errInvalidDueDate) {
		msg = msgInvalidDueDate
	}
	c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "error": []string{msg}})
	return false
}
