package handler

import (
	"context"
	"errors"
	"math"
	"net/http"

	"bloodlink-api/internal/models"
	"bloodlink-api/internal/service"

	"github.com/gin-gonic/gin"
)

// NearestHandler handles nearest-donor lookup requests
type NearestHandler struct {
	service MatchService
}

// Service interface for dependency injection
type MatchService interface {
	NearestDonors(ctx context.Context, userID string) (models.User, []service.RankedDonor, error)
}

// NewNearestHandler creates a new nearest handler
func NewNearestHandler(svc MatchService) *NearestHandler {
	return &NearestHandler{service: svc}
}

type rankedEntry struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	BloodGroup string  `json:"bloodGroup"`
	Km         float64 `json:"km"`
}

type nearestEntry struct {
	rankedEntry
	Address string `json:"address"`
}

// Nearest handles GET /api/nearest requests
//
//	@Summary	Rank compatible donors by distance from the requesting user.
//	@Produce	json
//	@Param		userId	query	string	true	"requesting user id"
//	@Success	200
//	@Failure	400
//	@Failure	404
//	@Router		/nearest [get]
func (h *NearestHandler) Nearest(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId query parameter is required"})
		return
	}

	requester, ranked, err := h.service.NearestDonors(c.Request.Context(), userID)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Requesting user not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if len(ranked) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"ok":      true,
			"nearest": nil,
			"message": "No compatible donors yet",
		})
		return
	}

	me := gin.H{
		"id":         requester.ID,
		"name":       requester.Name,
		"bloodGroup": requester.BloodGroup,
	}
	if requester.Location != nil {
		me["lat"] = requester.Location.Lat
		me["lon"] = requester.Location.Lon
	}

	top5 := make([]rankedEntry, 0, 5)
	for _, d := range ranked {
		if len(top5) == 5 {
			break
		}
		top5 = append(top5, rankedEntry{
			ID:         d.User.ID,
			Name:       d.User.Name,
			BloodGroup: string(d.User.BloodGroup),
			Km:         roundKm(d.DistanceKm),
		})
	}

	best := ranked[0]
	nearest := nearestEntry{rankedEntry: top5[0]}
	if best.User.Location != nil {
		nearest.Address = best.User.Location.NormalizedAddress
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"me":      me,
		"nearest": nearest,
		"top5":    top5,
	})
}

func roundKm(km float64) float64 {
	return math.Round(km*100) / 100
}
