package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BibekPathak/shark-db/internal/engine"
	"github.com/BibekPathak/shark-db/internal/metrics"
	"github.com/BibekPathak/shark-db/internal/store"
)

type entryJSON struct {
	Key   string `json:"key"`
	Value []byte `json:"value"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "tables": len(s.engine.ListTables())})
}

func (s *Server) handleListTables(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.ListTables())
}

func (s *Server) handleCreateTable(c *gin.Context) {
	name := c.Query("name")
	err := s.engine.CreateTable(name)
	metrics.Op("create_table", err)
	if err != nil {
		writeError(c, err)
		return
	}
	metrics.TableCount.Set(float64(len(s.engine.ListTables())))
	c.JSON(http.StatusCreated, gin.H{"table": name})
}

func (s *Server) handleDropTable(c *gin.Context) {
	name := c.Param("name")
	err := s.engine.DropTable(name)
	metrics.Op("drop_table", err)
	if err != nil {
		writeError(c, err)
		return
	}
	metrics.TableCount.Set(float64(len(s.engine.ListTables())))
	c.JSON(http.StatusOK, gin.H{"dropped": name})
}

func (s *Server) handleRenameTable(c *gin.Context) {
	oldName := c.Param("name")
	newName := c.Query("to")
	err := s.engine.RenameTable(oldName, newName)
	metrics.Op("rename_table", err)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"table": newName})
}

func (s *Server) handleTruncateTable(c *gin.Context) {
	name := c.Param("name")
	err := s.engine.TruncateTable(name)
	metrics.Op("truncate_table", err)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"truncated": name})
}

func (s *Server) handleDumpTable(c *gin.Context) {
	name := c.Param("name")
	err := s.engine.DumpTable(name, c.Query("file"))
	metrics.Op("dump_table", err)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dumped": name})
}

func (s *Server) handleLoadTable(c *gin.Context) {
	name := c.Param("name")
	err := s.engine.LoadTable(name, c.Query("file"))
	metrics.Op("load_table", err)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"loaded": name})
}

func (s *Server) handlePut(c *gin.Context) {
	value, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	created, err := s.engine.Put(c.Param("table"), []byte(c.Param("key")), value)
	metrics.Op("put", err)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": created})
}

func (s *Server) handleGet(c *gin.Context) {
	value, err := s.engine.Get(c.Param("table"), []byte(c.Param("key")))
	metrics.Op("get", err)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", value)
}

func (s *Server) handleExists(c *gin.Context) {
	ok, err := s.engine.Exists(c.Param("table"), []byte(c.Param("key")))
	metrics.Op("exists", err)
	if err != nil || !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) handleDelete(c *gin.Context) {
	existed, err := s.engine.Delete(c.Param("table"), []byte(c.Param("key")))
	metrics.Op("delete", err)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"existed": existed})
}

func (s *Server) handleScan(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	var start []byte
	if v := c.Query("start"); v != "" {
		start = []byte(v)
	}
	entries, err := s.engine.Scan(c.Param("table"), start, limit)
	metrics.Op("scan", err)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEntryJSON(entries))
}

func (s *Server) handlePrefixScan(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	entries, err := s.engine.PrefixScan(c.Param("table"), []byte(c.Query("prefix")), limit)
	metrics.Op("prefix_scan", err)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEntryJSON(entries))
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.engine.Stats(c.Param("table"))
	metrics.Op("stats", err)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return 0, false
	}
	return limit, true
}

func toEntryJSON(entries []store.Entry) []entryJSON {
	out := make([]entryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryJSON{Key: string(e.Key), Value: e.Value})
	}
	return out
}

// writeError maps engine sentinels onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrTableNotFound), errors.Is(err, engine.ErrKeyNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrTableExists):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrInvalidKey), errors.Is(err, engine.ErrInvalidName):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
