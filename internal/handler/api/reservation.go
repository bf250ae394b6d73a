package api

import (
	"errors"
	"net/http"

	reqdto "casita-reservations/internal/handler/dto/request"
	resdto "casita-reservations/internal/handler/dto/response"
	"casita-reservations/internal/handler/httperr"
	"casita-reservations/internal/pkg/errs"
	"casita-reservations/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReservationHandler struct {
	commands usecase.ReservationCommands
	queries  usecase.ReservationQueries
}

func NewReservationHandler(commands usecase.ReservationCommands, queries usecase.ReservationQueries) *ReservationHandler {
	return &ReservationHandler{
		commands: commands,
		queries:  queries,
	}
}

func (h *ReservationHandler) Create(c *gin.Context) {
	var req reqdto.CreateReservationRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	rm, err := h.commands.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrDomainValidationFailed):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid reservation fields",
			})
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.CreateReservationResponse{
		ID:     rm.ID,
		Status: rm.Status,
	})
}

func (h *ReservationHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID format",
		})
		return
	}

	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Token is required",
		})
		return
	}

	rm, err := h.queries.GetByToken(c.Request.Context(), id, token)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrReservationNotFound), errors.Is(err, errs.ErrInvalidToken):
			// Collapsed so a token probe cannot distinguish the two.
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Reservation not found or invalid token",
			})
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromReservationRM(rm))
}

func (h *ReservationHandler) List(c *gin.Context) {
	items, err := h.queries.List(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	response := make([]*resdto.ReservationListResponse, len(items))
	for i, rm := range items {
		response[i] = resdto.FromReservationListRM(rm)
	}

	c.JSON(http.StatusOK, response)
}
