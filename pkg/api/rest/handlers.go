package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	grpcapi "github.com/kb10uy/kdscan/pkg/api/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// httpStatusFromError maps the gRPC status code carried by err (the
// handlers below call straight into a grpcapi.ClusterServiceServer,
// which returns status.Error values) to the HTTP status a REST client
// expects, the same correspondence grpc-gateway uses.
func httpStatusFromError(err error) int {
	switch status.Code(err) {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.FailedPrecondition:
		return http.StatusConflict
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unimplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// Handler wraps the cluster engine and provides HTTP handlers. It
// calls the engine's RPC methods directly in-process rather than
// dialing the gRPC listener over the network: the REST gateway and
// the gRPC service are two transports onto the same
// grpcapi.ClusterServiceServer implementation, so there is no second
// hand-written JSON-codec gRPC client to keep in sync.
type Handler struct {
	engine grpcapi.ClusterServiceServer
}

// NewHandler creates a new REST API handler over engine.
func NewHandler(engine grpcapi.ClusterServiceServer) *Handler {
	return &Handler{engine: engine}
}

// HealthCheck handles GET /v1/health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp, err := h.engine.HealthCheck(r.Context(), &grpcapi.HealthCheckRequest{})
	if err != nil {
		writeError(w, fmt.Sprintf("Health check failed: %v", err), httpStatusFromError(err))
		return
	}

	writeJSON(w, resp, http.StatusOK)
}

// GetStats handles GET /v1/stats and GET /v1/stats/{collection}
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v1/stats")
	collection := strings.TrimPrefix(path, "/")

	resp, err := h.engine.Stats(r.Context(), &grpcapi.StatsRequest{Collection: collection})
	if err != nil {
		writeError(w, fmt.Sprintf("Failed to get stats: %v", err), httpStatusFromError(err))
		return
	}

	writeJSON(w, resp, http.StatusOK)
}

// Insert handles POST /v1/points
func (h *Handler) Insert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req grpcapi.InsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	resp, err := h.engine.Insert(r.Context(), &req)
	if err != nil {
		writeError(w, fmt.Sprintf("Insert failed: %v", err), httpStatusFromError(err))
		return
	}

	writeJSON(w, resp, http.StatusCreated)
}

// Build handles POST /v1/collections/{name}/build
func (h *Handler) Build(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	collection := collectionFromPath(r.URL.Path, "/build")
	var req grpcapi.BuildRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
			return
		}
	}
	req.Collection = collection

	resp, err := h.engine.Build(r.Context(), &req)
	if err != nil {
		writeError(w, fmt.Sprintf("Build failed: %v", err), httpStatusFromError(err))
		return
	}

	writeJSON(w, resp, http.StatusOK)
}

// Cluster handles POST /v1/collections/{name}/cluster
func (h *Handler) Cluster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	collection := collectionFromPath(r.URL.Path, "/cluster")
	var req grpcapi.ClusterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	req.Collection = collection

	resp, err := h.engine.Cluster(r.Context(), &req)
	if err != nil {
		writeError(w, fmt.Sprintf("Cluster failed: %v", err), httpStatusFromError(err))
		return
	}

	writeJSON(w, resp, http.StatusOK)
}

// Search handles POST /v1/collections/{name}/search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	collection := collectionFromPath(r.URL.Path, "/search")
	var req grpcapi.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	req.Collection = collection

	resp, err := h.engine.Search(r.Context(), &req)
	if err != nil {
		writeError(w, fmt.Sprintf("Search failed: %v", err), httpStatusFromError(err))
		return
	}

	writeJSON(w, resp, http.StatusOK)
}

// RangeQuery handles POST /v1/collections/{name}/range
func (h *Handler) RangeQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	collection := collectionFromPath(r.URL.Path, "/range")
	var req grpcapi.RangeQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	req.Collection = collection

	resp, err := h.engine.RangeQuery(r.Context(), &req)
	if err != nil {
		writeError(w, fmt.Sprintf("Range query failed: %v", err), httpStatusFromError(err))
		return
	}

	writeJSON(w, resp, http.StatusOK)
}

// collectionFromPath extracts the {name} segment from
// /v1/collections/{name}<suffix>.
func collectionFromPath(path, suffix string) string {
	trimmed := strings.TrimPrefix(path, "/v1/collections/")
	return strings.TrimSuffix(trimmed, suffix)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode response: %v", err), http.StatusInternalServerError)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  message,
		"status": statusCode,
	})
}

// ServeDocs serves the OpenAPI spec describing the collection API.
func ServeDocs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	content, err := os.ReadFile("docs/api/openapi.yaml")
	if err != nil {
		writeError(w, "OpenAPI spec not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/x-yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

// ServeSwaggerUI serves a Swagger UI page pointed at the OpenAPI spec.
func ServeSwaggerUI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	html := `<!DOCTYPE html>
<html>
<head>
    <title>kdscan API Documentation</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            SwaggerUIBundle({
                url: "/docs/openapi.yaml",
                dom_id: '#swagger-ui',
                presets: [
                    SwaggerUIBundle.presets.apis,
                    SwaggerUIBundle.SwaggerUIStandalonePreset
                ],
                layout: "BaseLayout"
            });
        };
    </script>
</body>
</html>`

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// ParseIntQuery parses an integer query parameter.
func ParseIntQuery(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return parsed
}
