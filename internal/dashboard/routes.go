package dashboard

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// registerRoutes sets up the read-only JSON API on the Gin router.
func registerRoutes(router *gin.Engine, db *gorm.DB, lowStockThreshold int) {
	router.GET("/healthz", handleHealth(db))

	api := router.Group("/api")
	api.GET("/stamps", handleStampList(db))
	api.GET("/stamps/:id", handleStampDetail(db))
	api.GET("/stamps/:id/drawings", handleStampDrawings(db))
	api.GET("/lowstock", handleLowStock(db, lowStockThreshold))
	api.GET("/drawings", handleDrawings(db))
}

func handleHealth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func handleStampList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		summaries, err := StampSummaries(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		c.JSON(http.StatusOK, summaries)
	}
}

func handleStampDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stamp id"})
			return
		}
		detail, err := GetStampDetail(db, uint(id))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "stamp not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

func handleStampDrawings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stamp id"})
			return
		}
		rows, err := DrawingList(db, uint(id))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

func handleLowStock(db *gorm.DB, defaultThreshold int) gin.HandlerFunc {
	return func(c *gin.Context) {
		threshold := defaultThreshold
		if raw := c.Query("threshold"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid threshold"})
				return
			}
			threshold = n
		}
		rows, err := LowStockReport(db, threshold)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"threshold": threshold, "items": rows})
	}
}

func handleDrawings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := DrawingList(db, 0)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}
