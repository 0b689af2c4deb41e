package api

import (
	"net/http"

	"github.com/banachtech/g2calib/black"
	"github.com/banachtech/g2calib/model"
	"github.com/banachtech/g2calib/report"
	"github.com/gin-gonic/gin"
)

type mapRequest struct {
	A     *float64 `json:"a" binding:"required"`
	Sigma *float64 `json:"sigma" binding:"required"`
	B     *float64 `json:"b" binding:"required"`
	Eta   *float64 `json:"eta" binding:"required"`
	Rho   *float64 `json:"rho" binding:"required"`
}

func (server *Server) mapParameters(c *gin.Context) {
	var req mapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	hw, err := model.Map(*req.A, *req.Sigma, *req.B, *req.Eta, *req.Rho)
	if err != nil {
		server.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, hw)
}

type reportRequest struct {
	Instruments []report.InstrumentPricingResult `json:"instruments"`
}

func (server *Server) report(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	rep, err := report.Report(req.Instruments)
	if err != nil {
		server.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

type impliedVolRequest struct {
	Swaption black.Swaption        `json:"swaption"`
	Price    *float64              `json:"price" binding:"required"`
	Settings *black.SolverSettings `json:"settings"`
}

type impliedVolResponse struct {
	ImpliedVolatility float64 `json:"implied_volatility"`
}

func (server *Server) impliedVol(c *gin.Context) {
	var req impliedVolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	settings := black.DefaultSolverSettings()
	if req.Settings != nil {
		settings = *req.Settings
	}

	vol, err := black.ImpliedVol(req.Swaption, *req.Price, settings)
	if err != nil {
		server.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, impliedVolResponse{ImpliedVolatility: vol})
}
