package api

import (
	"net/http"

	"github.com/banachtech/g2calib/calendar"
	"github.com/banachtech/g2calib/data"
	"github.com/banachtech/g2calib/db"
	"github.com/banachtech/g2calib/mainfuncs"
	"github.com/gin-gonic/gin"
)

const defaultListLimit = 20

func (server *Server) createRun(c *gin.Context) {
	var req data.RunFile
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	in, err := mainfuncs.NewRunInput(req)
	if err != nil {
		server.abort(c, err)
		return
	}
	res, err := mainfuncs.Run(in)
	if err != nil {
		server.abort(c, err)
		return
	}

	run, err := server.store.CreateRun(c, NewCreateRunParams(res))
	if err != nil {
		server.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// NewCreateRunParams converts a finished run into its stored form.
func NewCreateRunParams(res mainfuncs.RunResult) db.CreateRunParams {
	arg := db.CreateRunParams{
		EvaluationDate: res.EvaluationDate.Format(calendar.Layout),
		Parameters:     res.Parameters,
		HullWhite2F:    res.HullWhite2F,
		Report:         res.Report,
	}
	for _, inst := range res.Instruments {
		arg.Labels = append(arg.Labels, inst.Label)
	}
	return arg
}

type getRunRequest struct {
	ID string `uri:"id" binding:"required"`
}

func (server *Server) getRun(c *gin.Context) {
	var req getRunRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	run, err := server.store.GetRun(c, req.ID)
	if err != nil {
		server.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

type listRunsRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (server *Server) listRuns(c *gin.Context) {
	var req listRunsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	if req.Limit == 0 {
		req.Limit = defaultListLimit
	}

	runs, err := server.store.ListRuns(c, req.Limit)
	if err != nil {
		server.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, runs)
}
