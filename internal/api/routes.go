package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sourcecred/credrank/internal/graphcore"
	"github.com/sourcecred/credrank/internal/shadow"
	"github.com/sourcecred/credrank/internal/solver"
	"github.com/sourcecred/credrank/internal/store"
	"github.com/sourcecred/credrank/pkg/address"
	"github.com/sourcecred/credrank/pkg/models"
)

// maxParticipants caps a single build request to prevent an
// unbounded power-iteration matrix from a single caller.
const maxParticipants = 50_000

type APIHandler struct {
	docStore *store.Store
	wsHub    *Hub
}

func SetupRouter(docStore *store.Store, wsHub *Hub) *gin.Engine {
	r := gin.Default()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	handler := &APIHandler{docStore: docStore, wsHub: wsHub}

	pub := r.Group("/api/v1")
	{
		pub.GET("/health", handler.handleHealth)
		pub.GET("/stream", wsHub.Subscribe)
		pub.GET("/graphs", handler.handleListGraphs)
		pub.GET("/graphs/:contentHash", handler.handleGetGraph)
		pub.GET("/credgraphs/:contentHash", handler.handleGetCredGraph)
		pub.GET("/credgraphs/:contentHash/participants", handler.handleGetParticipants)
	}

	protected := r.Group("/api/v1")
	protected.Use(AuthMiddleware())
	protected.Use(NewRateLimiter(30, 5).Middleware())
	{
		protected.POST("/build", handler.handleBuild)
		protected.POST("/shadow/compare", handler.handleShadowCompare)
	}

	return r
}

// buildRequest is the HTTP-facing counterpart of graphcore.BuildArgs:
// the same fields, but JSON-serializable and backed by a
// StaticWeightedGraph instead of the WeightedGraph interface.
type buildRequest struct {
	Nodes        []address.NodeAddress        `json:"nodes"`
	Edges        []buildRequestEdge           `json:"edges"`
	NodeWeights  map[string]float64           `json:"nodeWeights"`
	EdgeWeights  map[string]models.EdgeWeight `json:"edgeWeights"`
	Participants []models.Participant         `json:"participants"`
	Intervals    []models.Interval            `json:"intervals"`
	Parameters   models.Parameters            `json:"parameters"`
}

type buildRequestEdge struct {
	Address     address.EdgeAddress `json:"address"`
	Src         address.NodeAddress `json:"src"`
	Dst         address.NodeAddress `json:"dst"`
	TimestampMs float64             `json:"timestampMs"`
}

func (req buildRequest) toWeightedGraph() models.StaticWeightedGraph {
	inputEdges := make([]models.InputEdge, len(req.Edges))
	for i, e := range req.Edges {
		inputEdges[i] = models.InputEdge{Address: e.Address, Src: e.Src, Dst: e.Dst, TimestampMs: e.TimestampMs}
	}

	weights := models.NewWeightConfig()
	for k, v := range req.NodeWeights {
		weights.NodeWeights[k] = v
	}
	for k, v := range req.EdgeWeights {
		weights.EdgeWeights[k] = v
	}

	return models.StaticWeightedGraph{
		NodeAddresses: req.Nodes,
		InputEdges:    inputEdges,
		WeightConfig:  weights,
	}
}

// handleBuild runs the full pipeline spec.md §4 describes: build the
// Markov process graph (phases 1-6), solve it for a stationary
// distribution, bind the result into a cred graph, and persist both
// documents. Build-phase progress is broadcast over the websocket hub
// so a dashboard can show a live progress bar for large graphs.
func (h *APIHandler) handleBuild(c *gin.Context) {
	var req buildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.Participants) > maxParticipants {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many participants", "max": maxParticipants})
		return
	}

	h.broadcastProgress("building", "constructing markov process graph")
	g, err := graphcore.Build(graphcore.BuildArgs{
		WeightedGraph: req.toWeightedGraph(),
		Participants:  req.Participants,
		Intervals:     req.Intervals,
		Parameters:    req.Parameters,
	})
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	view := graphcore.NewChainView(g)
	graphDoc, err := view.ToSparseChain()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.broadcastProgress("solving", "running power iteration to convergence")
	scores, iterations, converged, err := solver.PowerIterate(view, solver.DefaultOptions())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	credGraph, err := graphcore.NewCredGraph(view, scores)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	credDoc, err := credGraph.ToCredGraphDocument()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if h.docStore != nil {
		if err := h.docStore.SaveGraphDocument(c.Request.Context(), graphDoc); err != nil {
			log.Printf("[API] failed to persist graph document: %v", err)
		}
		if err := h.docStore.SaveCredGraphDocument(c.Request.Context(), credDoc); err != nil {
			log.Printf("[API] failed to persist cred graph document: %v", err)
		}
	}

	h.broadcastProgress("done", "cred graph ready")
	c.JSON(http.StatusOK, gin.H{
		"graph":      graphDoc,
		"credGraph":  credDoc,
		"iterations": iterations,
		"converged":  converged,
	})
}

func (h *APIHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "operational",
		"engine":      "CredRank engine",
		"dbConnected": h.docStore != nil,
	})
}

func (h *APIHandler) handleListGraphs(c *gin.Context) {
	if h.docStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "document store not connected"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	hashes, total, err := h.docStore.ListGraphDocuments(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": hashes, "totalCount": total, "page": page, "limit": limit})
}

func (h *APIHandler) handleGetGraph(c *gin.Context) {
	if h.docStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "document store not connected"})
		return
	}
	doc, err := h.docStore.GetGraphDocument(c.Request.Context(), c.Param("contentHash"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *APIHandler) handleGetCredGraph(c *gin.Context) {
	if h.docStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "document store not connected"})
		return
	}
	doc, err := h.docStore.GetCredGraphDocument(c.Request.Context(), c.Param("contentHash"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *APIHandler) handleGetParticipants(c *gin.Context) {
	if h.docStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "document store not connected"})
		return
	}
	doc, err := h.docStore.GetCredGraphDocument(c.Request.Context(), c.Param("contentHash"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	cg, err := graphcore.FromCredGraphDocument(doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": cg.Participants()})
}

// shadowCompareRequest names a stored cred graph document by its
// ContentHash; the handler reruns the solver against the markov
// process graph embedded in it and compares the rerun against the
// document's stored production scores — catching solver
// non-determinism or a convergence regression before it reaches a
// published cred graph.
type shadowCompareRequest struct {
	ContentHash string `json:"contentHash"`
}

func (h *APIHandler) handleShadowCompare(c *gin.Context) {
	if h.docStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "document store not connected"})
		return
	}

	var req shadowCompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	credDoc, err := h.docStore.GetCredGraphDocument(c.Request.Context(), req.ContentHash)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	productionCred, err := graphcore.FromCredGraphDocument(credDoc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	shadowView, err := graphcore.FromSparseChain(credDoc.Payload.Mpg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	runner := shadow.NewShadowRunner(h.docStore, shadow.DefaultShadowSolve)
	report, err := runner.RunShadowAnalysis(c.Request.Context(), req.ContentHash, productionCred.Scores(), shadowView)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *APIHandler) broadcastProgress(phase, message string) {
	if h.wsHub == nil {
		return
	}
	payload, err := json.Marshal(gin.H{"type": "build_progress", "phase": phase, "message": message})
	if err != nil {
		return
	}
	h.wsHub.Broadcast(payload)
}
