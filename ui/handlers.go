package ui

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"maudash/domain/metrics"
	"maudash/internal/errors"
	"maudash/internal/session"
	"maudash/internal/views"
)

const defaultTopLimit = 10

// handleUpload ingests one workbook. Re-uploading identical bytes returns
// the already-shaped upload without re-parsing.
func (s *Server) handleUpload(c *gin.Context) {
	log.Printf("[handleUpload] Starting workbook upload")

	file, header, err := c.Request.FormFile("workbook")
	if err != nil {
		log.Printf("[handleUpload] FAILED - No file uploaded: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded", "code": errors.CodeInvalidInput})
		return
	}
	defer file.Close()

	maxBytes := s.config.Uploads.MaxUploadMB * 1024 * 1024
	if header.Size > maxBytes {
		log.Printf("[handleUpload] FAILED - File too large: %d bytes", header.Size)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("File size (%.1f MB) exceeds the %dMB limit", float64(header.Size)/(1024*1024), s.config.Uploads.MaxUploadMB),
			"code":  errors.CodeInvalidInput,
		})
		return
	}

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".xlsx") {
		log.Printf("[handleUpload] FAILED - Invalid file extension: %s", header.Filename)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only Excel (.xlsx) workbooks are allowed", "code": errors.CodeInvalidInput})
		return
	}

	upload, created, err := s.store.Ingest(file, header.Filename)
	if err != nil {
		log.Printf("[handleUpload] FAILED - Ingestion failed: %v", err)
		status := http.StatusInternalServerError
		switch errors.GetCode(err) {
		case errors.CodeSheetMissing, errors.CodeIngestionError, errors.CodeInvalidInput:
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
		return
	}

	log.Printf("[handleUpload] Upload %s registered (created=%v)", upload.ID, created)
	c.JSON(http.StatusOK, uploadManifest(upload, created))
}

func (s *Server) handleGetUpload(c *gin.Context) {
	upload, ok := s.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "upload not found", "code": errors.CodeNotFound})
		return
	}
	c.JSON(http.StatusOK, uploadManifest(upload, false))
}

// uploadManifest summarizes an upload for the client: which datasets exist,
// their periods, and whether trend views apply.
func uploadManifest(upload *session.Upload, created bool) gin.H {
	datasets := gin.H{}
	for key, shaped := range upload.Datasets {
		datasets[string(key)] = gin.H{
			"sheet":        key.SheetName(),
			"periods":      shaped.Periods,
			"multi_period": shaped.MultiPeriod(),
			"records":      len(shaped.Records),
			"aggregates":   len(shaped.Aggregates),
			"countries":    len(views.Countries(shaped.Records)),
		}
	}
	return gin.H{
		"upload_id": upload.ID,
		"filename":  upload.Filename,
		"created":   created,
		"datasets":  datasets,
	}
}

// shapedDataset resolves the :id/:dataset pair, writing the 404 itself on a
// miss.
func (s *Server) shapedDataset(c *gin.Context) (metrics.ShapedTable, bool) {
	key := metrics.DatasetKey(c.Param("dataset"))
	if !key.IsValid() {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown dataset, want signals or devices", "code": errors.CodeNotFound})
		return metrics.ShapedTable{}, false
	}

	shaped, ok := s.store.Dataset(c.Param("id"), key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "upload not found", "code": errors.CodeNotFound})
		return metrics.ShapedTable{}, false
	}
	return shaped, true
}

// selectedPeriod picks the period for single-period views: the ?period=
// query when given, otherwise the latest period (matching the original
// dashboard's default selection).
func (s *Server) selectedPeriod(c *gin.Context, shaped metrics.ShapedTable) (string, bool) {
	period := c.Query("period")
	if period == "" {
		if len(shaped.Periods) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dataset has no periods", "code": errors.CodeInvalidInput})
			return "", false
		}
		return shaped.Periods[len(shaped.Periods)-1], true
	}

	for _, p := range shaped.Periods {
		if p == period {
			return period, true
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown period %q", period), "code": errors.CodeInvalidInput})
	return "", false
}

func (s *Server) handlePeriods(c *gin.Context) {
	shaped, ok := s.shapedDataset(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"periods": shaped.Periods, "multi_period": shaped.MultiPeriod()})
}

func (s *Server) handleCountries(c *gin.Context) {
	shaped, ok := s.shapedDataset(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"countries": views.Countries(shaped.Records)})
}

func (s *Server) handleMap(c *gin.Context) {
	shaped, ok := s.shapedDataset(c)
	if !ok {
		return
	}
	period, ok := s.selectedPeriod(c, shaped)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"period": period,
		"points": views.MapPoints(shaped.Records, period),
	})
}

func (s *Server) handleTop(c *gin.Context) {
	shaped, ok := s.shapedDataset(c)
	if !ok {
		return
	}
	period, ok := s.selectedPeriod(c, shaped)
	if !ok {
		return
	}

	limit := defaultTopLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer", "code": errors.CodeInvalidInput})
			return
		}
		limit = parsed
	}

	c.JSON(http.StatusOK, gin.H{
		"period":    period,
		"countries": views.TopCountries(shaped.Records, period, limit),
	})
}

func (s *Server) handleRecords(c *gin.Context) {
	shaped, ok := s.shapedDataset(c)
	if !ok {
		return
	}
	period, ok := s.selectedPeriod(c, shaped)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"period":  period,
		"records": views.SortedByValue(views.ForPeriod(shaped.Records, period)),
	})
}

// selectedCountries parses ?countries=a,b,c. When absent, the first five
// countries of the dataset are used, matching the original dashboard's
// default multiselect.
func selectedCountries(c *gin.Context, shaped metrics.ShapedTable) []string {
	raw := c.Query("countries")
	if raw == "" {
		countries := views.Countries(shaped.Records)
		if len(countries) > 5 {
			countries = countries[:5]
		}
		return countries
	}

	var countries []string
	for _, name := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			countries = append(countries, trimmed)
		}
	}
	return countries
}

// requireMultiPeriod gates trend views: single-period tables have no time
// axis to draw.
func requireMultiPeriod(c *gin.Context, shaped metrics.ShapedTable) bool {
	if shaped.MultiPeriod() {
		return true
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error": "trend views are not available for single-period data",
		"code":  errors.CodeInvalidInput,
	})
	return false
}

func (s *Server) handleTrend(c *gin.Context) {
	shaped, ok := s.shapedDataset(c)
	if !ok {
		return
	}
	if !requireMultiPeriod(c, shaped) {
		return
	}

	countries := selectedCountries(c, shaped)
	c.JSON(http.StatusOK, gin.H{
		"periods": shaped.Periods,
		"series":  views.Trends(shaped.Records, shaped.Periods, countries),
	})
}

func (s *Server) handleTrendSlopes(c *gin.Context) {
	shaped, ok := s.shapedDataset(c)
	if !ok {
		return
	}
	if !requireMultiPeriod(c, shaped) {
		return
	}

	countries := selectedCountries(c, shaped)
	c.JSON(http.StatusOK, gin.H{
		"periods": shaped.Periods,
		"slopes":  views.TrendSlopes(shaped.Records, shaped.Periods, countries),
	})
}

// handleAggregates serves the International/Global rollup rows. An empty
// set is a normal response, not an error.
func (s *Server) handleAggregates(c *gin.Context) {
	shaped, ok := s.shapedDataset(c)
	if !ok {
		return
	}

	response := gin.H{
		"records": views.SortedAggregates(shaped.Aggregates),
	}
	if shaped.MultiPeriod() {
		response["series"] = views.AggregateTrends(shaped.Aggregates, shaped.Periods)
	}
	c.JSON(http.StatusOK, response)
}

func (s *Server) handleSummary(c *gin.Context) {
	shaped, ok := s.shapedDataset(c)
	if !ok {
		return
	}
	period, ok := s.selectedPeriod(c, shaped)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, views.Summarize(shaped.Records, period))
}
