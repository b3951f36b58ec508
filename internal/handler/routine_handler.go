package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"routtie/internal/model"
	"routtie/internal/store"
)

type RoutineHandler struct {
	stores *store.Manager
}

func NewRoutineHandler(stores *store.Manager) *RoutineHandler {
	return &RoutineHandler{stores: stores}
}

type routineRequest struct {
	Title string            `json:"title"`
	Days  []string          `json:"days"`
	Times []model.TimeOfDay `json:"times"`
}

func (h *RoutineHandler) userStore(c *gin.Context) (*store.Store, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return nil, false
	}
	return h.stores.Attach(userID.(int)), true
}

// List handles GET /routines, returning today's, other and completed buckets
// ordered by closest upcoming time.
func (h *RoutineHandler) List(c *gin.Context) {
	s, ok := h.userStore(c)
	if !ok {
		return
	}

	s.SortByClosestUpcomingTime()

	c.JSON(http.StatusOK, gin.H{
		"today":     emptyIfNil(s.RoutinesForToday()),
		"other":     emptyIfNil(s.OtherRoutines()),
		"completed": emptyIfNil(s.CompletedRoutines()),
	})
}

// Create handles POST /routines.
func (h *RoutineHandler) Create(c *gin.Context) {
	s, ok := h.userStore(c)
	if !ok {
		return
	}

	var req routineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := model.ValidateRoutineInput(req.Title, req.Days, req.Times); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r := s.Create(req.Title, req.Days, req.Times)
	c.JSON(http.StatusOK, r)
}

// Update handles PUT /routines/:id. Unknown ids are a silent no-op.
func (h *RoutineHandler) Update(c *gin.Context) {
	s, ok := h.userStore(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid routine id"})
		return
	}

	var req routineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := model.ValidateRoutineInput(req.Title, req.Days, req.Times); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.Update(id, req.Title, req.Days, req.Times)
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// Delete handles DELETE /routines/:id.
func (h *RoutineHandler) Delete(c *gin.Context) {
	s, ok := h.userStore(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid routine id"})
		return
	}

	s.Delete(id)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Toggle handles POST /routines/:id/toggle.
func (h *RoutineHandler) Toggle(c *gin.Context) {
	s, ok := h.userStore(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid routine id"})
		return
	}

	var req struct {
		Time model.TimeOfDay `json:"time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	s.ToggleOccurrence(id, req.Time)
	c.JSON(http.StatusOK, gin.H{"status": "toggled"})
}

func emptyIfNil(routines []model.Routine) []model.Routine {
	if routines == nil {
		return []model.Routine{}
	}
	return routines
}
