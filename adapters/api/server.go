// Package api exposes the relocation engine over HTTP, grounded on
// jndunlap-gohypo's gin handler/response-struct split (ui/data_handlers.go):
// decode -> validate -> core call -> JSON response.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"locatego/adapters/wire"
	"locatego/src"
)

// Server wires a locate.EngineConfig and travel-time predictor into a gin
// router exposing POST /locate.
type Server struct {
	Config    locate.EngineConfig
	Predictor locate.TravelTimePredictor
}

// NewServer constructs a Server with the given configuration and predictor.
func NewServer(cfg locate.EngineConfig, predictor locate.TravelTimePredictor) *Server {
	return &Server{Config: cfg, Predictor: predictor}
}

// Router builds the gin engine with the /locate route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.POST("/locate", s.handleLocate)
	return r
}

func (s *Server) handleLocate(c *gin.Context) {
	var req wire.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	engine := req.BuildEngine(s.Predictor, s.Config)
	result := engine.Run(context.Background())

	c.JSON(http.StatusOK, wire.FromEngineResult(req.ID, result))
}
