package handler

import (
	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status     string `json:"status"`
	ChainID    int64  `json:"chainId"`
	EntryPoint string `json:"entryPoint"`
	History    bool   `json:"history"`
}

// HealthCheck godoc
// @Summary Health check endpoint
// @Description Report the chain the server is bound to and whether history is enabled
// @Tags health
// @Produce json
// @Success 200 {object} StandardResponse{data=HealthResponse}
// @Router /health [get]
func (h *Handlers) handleHealthCheck(c *gin.Context) {
	respondWithSuccess(c, HealthResponse{
		Status:     "ok",
		ChainID:    h.chainID,
		EntryPoint: h.entryPoint.Hex(),
		History:    h.operations != nil,
	})
}
